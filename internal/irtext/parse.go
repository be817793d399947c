package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"

	"github.com/radik878/cairo-flow/internal/ir"
)

// ParseProgram parses source into every function it defines, in order.
func ParseProgram(filename, source string) ([]*ir.LoweredFunction, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(FlowLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(4),
	)
	if err != nil {
		return nil, fmt.Errorf("irtext: failed to build parser: %w", err)
	}

	prog, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, formatParseError(source, err)
	}
	funcs := make([]*ir.LoweredFunction, 0, len(prog.Funcs))
	for _, f := range prog.Funcs {
		lowered, err := lowerFunc(f)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, lowered)
	}
	return funcs, nil
}

// ParseFunction parses source and returns its first function. It is the
// common case: almost every fixture describes exactly one.
func ParseFunction(filename, source string) (*ir.LoweredFunction, error) {
	funcs, err := ParseProgram(filename, source)
	if err != nil {
		return nil, err
	}
	if len(funcs) == 0 {
		return nil, fmt.Errorf("irtext: %s defines no function", filename)
	}
	return funcs[0], nil
}

func varID(s string) ir.VariableId {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "v"))
	if err != nil {
		panic(fmt.Sprintf("irtext: malformed variable token %q (lexer guarantees this can't happen)", s))
	}
	return ir.VariableId(n)
}

func blockID(s string) ir.BlockId {
	n, err := strconv.Atoi(strings.TrimPrefix(s, "block"))
	if err != nil {
		panic(fmt.Sprintf("irtext: malformed block token %q (lexer guarantees this can't happen)", s))
	}
	return ir.BlockId(n)
}

func varUsages(vars []string) []ir.VarUsage {
	out := make([]ir.VarUsage, len(vars))
	for i, v := range vars {
		out[i] = ir.VarUsage{Var: varID(v)}
	}
	return out
}

func varIDs(vars []string) []ir.VariableId {
	out := make([]ir.VariableId, len(vars))
	for i, v := range vars {
		out[i] = varID(v)
	}
	return out
}

func location(pos lexer.Position) ir.SourceLocation {
	return ir.SourceLocation{File: pos.Filename, Line: pos.Line}
}

func lowerFunc(f *Func) (lowered *ir.LoweredFunction, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*ir.StructuralError); ok {
				err = fmt.Errorf("irtext: %s: %s", f.Name, se.Message)
				return
			}
			panic(r)
		}
	}()

	for i, b := range f.Blocks {
		if b.Label != fmt.Sprintf("block%d", i) {
			return nil, fmt.Errorf("irtext: %s: block %d must be labeled %q, found %q", f.Name, i, fmt.Sprintf("block%d", i), b.Label)
		}
	}

	b := ir.NewBuilder(f.Name)
	for _, p := range f.Params {
		b.Param(varID(p))
	}

	for _, blk := range f.Blocks {
		stmts := make([]ir.Statement, len(blk.Stmts))
		for i, s := range blk.Stmts {
			stmts[i] = lowerStmt(b, s)
		}
		end := lowerEnd(b, blk.End)
		b.Block(stmts, end)
	}

	return b.Build(), nil
}

func lowerStmt(b *ir.Builder, s *Stmt) ir.Statement {
	switch {
	case s.Destr != nil:
		v := s.Destr
		outputs := varIDs(v.Outputs)
		for _, o := range outputs {
			b.Var(o)
		}
		return &ir.StructDestructure{Input: ir.VarUsage{Var: varID(v.Input)}, Outputs: outputs}
	case s.Const != nil:
		v := s.Const
		b.Var(varID(v.Output))
		return &ir.Const{Output: varID(v.Output)}
	case s.CallOut != nil:
		v := s.CallOut
		b.Var(varID(v.Output))
		return &ir.Call{Output: varID(v.Output), HasOutput: true, Callee: v.Callee, Args: varUsages(v.Args)}
	case s.CallBare != nil:
		v := s.CallBare
		return &ir.Call{HasOutput: false, Callee: v.Callee, Args: varUsages(v.Args)}
	case s.Snap != nil:
		v := s.Snap
		b.Var(varID(v.OriginalOutput))
		b.Var(varID(v.SnapshotOutput))
		return &ir.Snapshot{
			Input:          ir.VarUsage{Var: varID(v.Input)},
			OriginalOutput: varID(v.OriginalOutput),
			SnapshotOutput: varID(v.SnapshotOutput),
		}
	case s.Desnap != nil:
		v := s.Desnap
		b.Var(varID(v.Output))
		return &ir.Desnap{Input: ir.VarUsage{Var: varID(v.Input)}, Output: varID(v.Output)}
	case s.Box != nil:
		v := s.Box
		b.Var(varID(v.Output))
		return &ir.IntoBox{Input: ir.VarUsage{Var: varID(v.Input)}, Output: varID(v.Output)}
	case s.Unbox != nil:
		v := s.Unbox
		b.Var(varID(v.Output))
		return &ir.Unbox{Input: ir.VarUsage{Var: varID(v.Input)}, Output: varID(v.Output)}
	case s.Struct != nil:
		v := s.Struct
		b.Var(varID(v.Output))
		return &ir.StructConstruct{Output: varID(v.Output), Fields: varUsages(v.Fields)}
	case s.Enum != nil:
		v := s.Enum
		b.Var(varID(v.Output))
		return &ir.EnumConstruct{Output: varID(v.Output), Variant: v.Variant, Input: ir.VarUsage{Var: varID(v.Input)}}
	default:
		panic("irtext: statement with no alternative set (grammar bug)")
	}
}

func lowerEnd(b *ir.Builder, e *EndStmt) ir.BlockEnd {
	switch {
	case e.Goto != nil:
		v := e.Goto
		remapping := make([]ir.Remapping, len(v.Remapping))
		for i, r := range v.Remapping {
			b.Var(varID(r.Dst))
			remapping[i] = ir.Remapping{Dst: varID(r.Dst), Src: ir.VarUsage{Var: varID(r.Src)}}
		}
		return ir.Goto(location(v.Pos), blockID(v.Target), remapping...)
	case e.Match != nil:
		v := e.Match
		arms := make([]ir.MatchArm, len(v.Arms))
		for i, a := range v.Arms {
			bindings := varIDs(a.Bindings)
			for _, bind := range bindings {
				b.Var(bind)
			}
			arms[i] = ir.MatchArm{BlockId: blockID(a.Target), Bindings: bindings}
		}
		return ir.Match(ir.MatchInfo{
			Location: location(v.Pos),
			Function: v.Function,
			Inputs:   varUsages(v.Inputs),
			Arms:     arms,
		})
	case e.Ret != nil:
		v := e.Ret
		return ir.Return(location(v.Pos), varUsages(v.Operands)...)
	case e.Panic != nil:
		v := e.Panic
		return ir.Panic(location(v.Pos), ir.VarUsage{Var: varID(v.Operand)})
	default:
		panic("irtext: block end with no alternative set (grammar bug)")
	}
}

// formatParseError renders a friendly caret-style message for a syntax
// error, the same shape the host compiler uses for its own source language.
func formatParseError(src string, err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return err
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		return fmt.Errorf("syntax error at unknown location: %w", err)
	}

	col := pos.Column - 1
	if col < 0 {
		col = 0
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", col) + "^"

	var msg strings.Builder
	fmt.Fprintf(&msg, "%s\n%s\n%s\n→ %s",
		color.RedString("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column),
		line,
		color.HiRedString(caret),
		pe.Message())
	return fmt.Errorf("%s", msg.String())
}
