// SPDX-License-Identifier: Apache-2.0

// Package repl is an interactive line-at-a-time loop: each line is one
// complete function definition (`fn name(...) { ... }`) in the assembly
// notation, lowered and analyzed as soon as it is entered. It mirrors the host compiler's own REPL in shape (read a
// line, parse it, print the result) but reads this repo's own assembly
// grammar rather than a surface language.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/radik878/cairo-flow/internal/analysis"
	"github.com/radik878/cairo-flow/internal/diagnostics"
	"github.com/radik878/cairo-flow/internal/hostconfig"
	"github.com/radik878/cairo-flow/internal/ir"
	"github.com/radik878/cairo-flow/internal/irtext"
)

// REPL reads function bodies from in and writes results/prompts to out.
type REPL struct {
	in     *bufio.Scanner
	out    io.Writer
	Config hostconfig.Config
}

// New creates a REPL over in/out. cfg controls whether the early-terminate
// rewrite runs after each function is lowered.
func New(in io.Reader, out io.Writer, cfg hostconfig.Config) *REPL {
	return &REPL{in: bufio.NewScanner(in), out: out, Config: cfg}
}

// Run reads one function definition per line until in is exhausted or a
// "quit" line is seen.
func (r *REPL) Run() {
	line := 0
	for {
		fmt.Fprint(r.out, "flow> ")
		if !r.in.Scan() {
			return
		}
		line++
		text := r.in.Text()
		if text == "quit" || text == "exit" {
			return
		}
		if text == "" {
			continue
		}
		r.evalLine(line, text)
	}
}

func (r *REPL) evalLine(line int, text string) {
	name := fmt.Sprintf("<repl:%d>", line)
	reporter := diagnostics.NewReporter(name, text)

	fn, err := irtext.ParseFunction(name, text)
	if err != nil {
		fmt.Fprintln(r.out, color.RedString("%s", err))
		return
	}

	r.evalFunction(fn, reporter)
}

func (r *REPL) evalFunction(fn *ir.LoweredFunction, reporter *diagnostics.Reporter) {
	defer func() {
		if rec := recover(); rec != nil {
			se, ok := rec.(*ir.StructuralError)
			if !ok {
				panic(rec)
			}
			fmt.Fprint(r.out, reporter.Format(diagnostics.FromStructuralError(se)))
		}
	}()

	if r.Config.EnableUnsafePanic {
		fixes := analysis.RewriteUnsafePanic(fn, r.Config.PanicFunc(), r.Config.SideEffectFuncs...)
		for _, d := range diagnostics.RewriteSummary(fixes) {
			fmt.Fprint(r.out, reporter.Format(d))
		}
	}

	fmt.Fprint(r.out, ir.Print(fn))

	equality := analysis.NewForwardDriver(fn, analysis.EqualityAnalysis{}).Run()
	for i, info := range equality {
		if info == nil {
			continue
		}
		state := info.(*analysis.EqualityState)
		fmt.Fprintf(r.out, "block%d exit: %s\n", i, state.Dump())
	}
}
