package ir

import "testing"

func TestBuilderBuildsWellFormedFunction(t *testing.T) {
	b := NewBuilder("id")
	b.Param(0)

	loc := SourceLocation{File: "t.flow", Line: 1}
	b.Block([]Statement{&Const{Output: 1}}, Return(loc, VarUsage{Var: 0}))

	fn := b.Build()

	if len(fn.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(fn.Blocks))
	}
	if fn.Blocks[0].End.Kind != EndReturn {
		t.Errorf("expected EndReturn, got %v", fn.Blocks[0].End.Kind)
	}
}

func TestValidateRejectsOutOfRangeGoto(t *testing.T) {
	defer func() {
		rec := recover()
		se, ok := rec.(*StructuralError)
		if !ok {
			t.Fatalf("expected *StructuralError panic, got %v", rec)
		}
		if se.Error() == "" {
			t.Error("expected a non-empty message")
		}
	}()

	b := NewBuilder("bad")
	b.Block(nil, Goto(SourceLocation{}, 7))
	b.Build()
}

func TestValidateRejectsNotSetEnd(t *testing.T) {
	defer func() {
		if rec := recover(); rec == nil {
			t.Fatal("expected a panic for a block with no end set")
		}
	}()

	b := NewBuilder("bad")
	b.Block(nil, BlockEnd{})
	b.Build()
}

func TestValidateRejectsOutOfRangeMatchArm(t *testing.T) {
	defer func() {
		if rec := recover(); rec == nil {
			t.Fatal("expected a panic for an out-of-range match arm target")
		}
	}()

	b := NewBuilder("bad")
	b.Block(nil, Match(MatchInfo{Arms: []MatchArm{{BlockId: 3}}}))
	b.Build()
}

func TestBlockFailsFastOutOfRange(t *testing.T) {
	defer func() {
		rec := recover()
		if _, ok := rec.(*StructuralError); !ok {
			t.Fatalf("expected *StructuralError panic, got %v", rec)
		}
	}()

	fn := &LoweredFunction{Blocks: []Block{{End: Return(SourceLocation{})}}}
	fn.Block(5)
}

func TestSourceLocationString(t *testing.T) {
	if got := (SourceLocation{File: "a.flow", Line: 3}).String(); got != "a.flow:3" {
		t.Errorf("got %q", got)
	}
	if got := (SourceLocation{Line: 3}).String(); got != "<synthetic:3>" {
		t.Errorf("got %q", got)
	}
}
