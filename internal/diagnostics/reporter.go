// Package diagnostics renders host-facing, Rust-style reports: structural
// violations recovered from the IR builder's and drivers' fail-fast panics,
// and summaries of what the early-terminate rewrite pass changed. Analyzers
// and drivers never import this package — only cmd/dataflow and repl do,
// after the analysis core has already run.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/radik878/cairo-flow/internal/analysis"
	"github.com/radik878/cairo-flow/internal/ir"
)

// Level is the severity of a Diagnostic.
type Level string

const (
	LevelError Level = "error"
	LevelNote  Level = "note"
	LevelHelp  Level = "help"
)

// Diagnostic is one reportable fact: a structural violation, or one line of
// a rewrite summary. Location is meaningless unless HasLocation is set —
// ir.SourceLocation carries no column, so unlike a real compiler frontend's
// diagnostics this only ever marks a whole line with a single caret, never a span.
type Diagnostic struct {
	Level       Level
	Message     string
	Location    ir.SourceLocation
	HasLocation bool
	Notes       []string
}

// Reporter formats Diagnostics against one source file's text.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for filename/source. source may be empty —
// Format then still prints the location but omits the source excerpt when
// source has no matching line.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders d in the Rust-diagnostic style: a colored header, a
// `--> file:line` location line, the source line itself with a caret
// underneath, and any notes.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Level)
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(&out, "%s: %s\n", levelColor(string(d.Level)), d.Message)

	if !d.HasLocation {
		out.WriteString("\n")
		return out.String()
	}

	width := lineNumberWidth(d.Location.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&out, "%s %s %s\n", indent, dim("-->"), d.Location.String())
	fmt.Fprintf(&out, "%s %s\n", indent, dim("│"))

	if d.Location.Line > 0 && d.Location.Line <= len(r.lines) {
		line := r.lines[d.Location.Line-1]
		fmt.Fprintf(&out, "%s %s %s\n", bold(pad(d.Location.Line, width)), dim("│"), line)
		marker := color.New(color.FgRed, color.Bold).Sprint("^")
		fmt.Fprintf(&out, "%s %s %s\n", indent, dim("│"), marker)
	}

	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&out, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	out.WriteString("\n")
	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case LevelError:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case LevelHelp:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	}
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func pad(line, width int) string {
	return fmt.Sprintf("%*d", width, line)
}

// FromStructuralError builds an error-level Diagnostic from a panic value
// recovered at a host boundary. This never happens on well-formed IR — it
// exists for the host to report a bug in whatever produced the IR, not to
// recover from a condition analysis expects.
func FromStructuralError(err *ir.StructuralError) Diagnostic {
	return Diagnostic{Level: LevelError, Message: err.Message}
}

// RewriteSummary builds one note-level Diagnostic per fix RewriteUnsafePanic
// applied, so a host can report what changed without internal/analysis
// knowing diagnostics exists.
func RewriteSummary(fixes []analysis.Fix) []Diagnostic {
	out := make([]Diagnostic, len(fixes))
	for i, f := range fixes {
		out[i] = Diagnostic{
			Level:       LevelNote,
			Message:     fmt.Sprintf("block %d: truncated at statement %d, replaced with a call to the trap function", f.Block, f.Index),
			Location:    f.Location,
			HasLocation: true,
		}
	}
	return out
}
