package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for a LoweredFunction, in the same
// indent-tracking style the host compiler uses for its own SSA dump.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer.
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the pretty-printed representation of a lowered function.
func Print(f *LoweredFunction) string {
	p := NewPrinter()
	p.printFunction(f)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(f *LoweredFunction) {
	p.writeLine("fn %s(%s):", f.Name, joinVars(f.Parameters))
	p.indent++
	for i := range f.Blocks {
		p.printBlock(BlockId(i), &f.Blocks[i])
	}
	p.indent--
}

func (p *Printer) printBlock(id BlockId, b *Block) {
	p.writeLine("block%d:", id)
	p.indent++
	for _, stmt := range b.Statements {
		p.writeLine("%s", stmtString(stmt))
	}
	p.writeLine("%s", blockEndString(&b.End))
	p.indent--
}

func stmtString(s Statement) string {
	switch v := s.(type) {
	case *Const:
		return fmt.Sprintf("v%d = const", v.Output)
	case *Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = fmt.Sprintf("v%d", a.Var)
		}
		if v.HasOutput {
			return fmt.Sprintf("v%d = call %s(%s)", v.Output, v.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("call %s(%s)", v.Callee, strings.Join(args, ", "))
	case *Snapshot:
		return fmt.Sprintf("v%d = snapshot v%d -> v%d", v.OriginalOutput, v.Input.Var, v.SnapshotOutput)
	case *Desnap:
		return fmt.Sprintf("v%d = desnap v%d", v.Output, v.Input.Var)
	case *IntoBox:
		return fmt.Sprintf("v%d = box v%d", v.Output, v.Input.Var)
	case *Unbox:
		return fmt.Sprintf("v%d = unbox v%d", v.Output, v.Input.Var)
	case *StructConstruct:
		return fmt.Sprintf("v%d = struct(...)", v.Output)
	case *StructDestructure:
		return fmt.Sprintf("(...) = destructure v%d", v.Input.Var)
	case *EnumConstruct:
		return fmt.Sprintf("v%d = %s(v%d)", v.Output, v.Variant, v.Input.Var)
	default:
		return "<unknown statement>"
	}
}

func blockEndString(e *BlockEnd) string {
	switch e.Kind {
	case EndGoto:
		return fmt.Sprintf("goto block%d%s", e.Target, remappingString(e.Remapping))
	case EndMatch:
		return fmt.Sprintf("match %s", matchString(e.Match))
	case EndReturn:
		return fmt.Sprintf("return %s", joinUsages(e.Operands))
	case EndPanic:
		return fmt.Sprintf("panic v%d", e.Operand.Var)
	default:
		return "<block end not set>"
	}
}

func matchString(m *MatchInfo) string {
	inputs := joinUsages(m.Inputs)
	arms := make([]string, len(m.Arms))
	for i, a := range m.Arms {
		arms[i] = fmt.Sprintf("block%d(%s)", a.BlockId, joinVars(a.Bindings))
	}
	return fmt.Sprintf("%s(%s) { %s }", m.Function, inputs, strings.Join(arms, ", "))
}

func remappingString(r []Remapping) string {
	if len(r) == 0 {
		return ""
	}
	parts := make([]string, len(r))
	for i, m := range r {
		parts[i] = fmt.Sprintf("v%d <- v%d", m.Dst, m.Src.Var)
	}
	return fmt.Sprintf(" { %s }", strings.Join(parts, ", "))
}

func joinVars(vars []VariableId) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("v%d", v)
	}
	return strings.Join(parts, ", ")
}

func joinUsages(usages []VarUsage) string {
	parts := make([]string, len(usages))
	for i, u := range usages {
		parts[i] = fmt.Sprintf("v%d", u.Var)
	}
	return strings.Join(parts, ", ")
}
