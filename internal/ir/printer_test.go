package ir

import (
	"strings"
	"testing"
)

func TestPrintRoundTripsStatementShapes(t *testing.T) {
	b := NewBuilder("f")
	b.Param(0)
	b.Block(
		[]Statement{
			&Snapshot{Input: VarUsage{Var: 0}, OriginalOutput: 1, SnapshotOutput: 2},
			&IntoBox{Input: VarUsage{Var: 2}, Output: 3},
			&Unbox{Input: VarUsage{Var: 3}, Output: 4},
		},
		Return(SourceLocation{}, VarUsage{Var: 4}),
	)
	fn := b.Build()

	out := Print(fn)

	for _, want := range []string{
		"fn f(v0):",
		"v1 = snapshot v0 -> v2",
		"v3 = box v2",
		"v4 = unbox v3",
		"return v4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintMatchAndGotoRemapping(t *testing.T) {
	b := NewBuilder("g")
	b.Param(0)
	b.Block(nil, Goto(SourceLocation{}, 1, Remapping{Dst: 1, Src: VarUsage{Var: 0}}))
	b.Block(nil, Match(MatchInfo{Function: "f", Inputs: []VarUsage{{Var: 1}}, Arms: []MatchArm{{BlockId: 0, Bindings: nil}}}))

	fn := b.Build()
	out := Print(fn)

	if !strings.Contains(out, "goto block1 { v1 <- v0 }") {
		t.Errorf("expected remapping in output, got:\n%s", out)
	}
	if !strings.Contains(out, "match f(v1) { block0() }") {
		t.Errorf("expected match in output, got:\n%s", out)
	}
}
