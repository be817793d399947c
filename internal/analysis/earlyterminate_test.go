package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radik878/cairo-flow/internal/ir"
)

// TestRewriteUnsafePanicDeadRootMatch covers a function whose root block
// ends in a zero-arm Match: the whole function is replaced by a single trap
// at the match's own location.
func TestRewriteUnsafePanicDeadRootMatch(t *testing.T) {
	loc := ir.SourceLocation{File: "e5.flow", Line: 1}
	b := ir.NewBuilder("e5")
	b.Block(nil, ir.Match(ir.MatchInfo{Location: loc, Function: "unreachable_enum"}))
	fn := b.Build()

	fixes := RewriteUnsafePanic(fn, "unsafe_panic")

	assert.Len(t, fixes, 1)
	assert.Equal(t, ir.Root, fixes[0].Block)
	assert.Equal(t, 0, fixes[0].Index)
	assert.Equal(t, loc, fixes[0].Location)

	end := fn.Blocks[0].End
	assert.Equal(t, ir.EndMatch, end.Kind)
	assert.Equal(t, "unsafe_panic", end.Match.Function)
	assert.Empty(t, end.Match.Arms)
}

// TestRewriteUnsafePanicPreservesSideEffectAnchor covers a block with a
// side-effecting call followed by a dead match: the trap must be inserted
// after the call (statement index 1), not in place of it.
func TestRewriteUnsafePanicPreservesSideEffectAnchor(t *testing.T) {
	loc := ir.SourceLocation{File: "e6.flow", Line: 2}
	b := ir.NewBuilder("e6")
	b.Block(
		[]ir.Statement{&ir.Call{Callee: "print", Args: nil}},
		ir.Match(ir.MatchInfo{Location: loc, Function: "unreachable_enum"}),
	)
	fn := b.Build()

	fixes := RewriteUnsafePanic(fn, "unsafe_panic", "print")

	if assert.Len(t, fixes, 1) {
		assert.Equal(t, ir.Root, fixes[0].Block)
		assert.Equal(t, 1, fixes[0].Index, "the trap must land after the print call, not before it")
	}

	block := fn.Blocks[0]
	assert.Len(t, block.Statements, 1, "the print call must survive the rewrite")
	call, ok := block.Statements[0].(*ir.Call)
	assert.True(t, ok)
	assert.Equal(t, "print", call.Callee)

	assert.Equal(t, ir.EndMatch, block.End.Kind)
	assert.Equal(t, "unsafe_panic", block.End.Match.Function)
}

// TestRewriteUnsafePanicIgnoresCallsWithoutSideEffects confirms a call whose
// callee is not in SideEffectFuncs is transparent to the analysis: with
// nothing ever flipping the state to Reachable, the root block is
// unreachable end-to-end and the whole function collapses to one trap,
// same as E5.
func TestRewriteUnsafePanicIgnoresCallsWithoutSideEffects(t *testing.T) {
	loc := ir.SourceLocation{Line: 3}
	b := ir.NewBuilder("no-effect")
	b.Var(0)
	b.Block(
		[]ir.Statement{&ir.Call{Output: 0, HasOutput: true, Callee: "pure_fn"}},
		ir.Match(ir.MatchInfo{Location: loc, Function: "unreachable_enum"}),
	)
	fn := b.Build()

	fixes := RewriteUnsafePanic(fn, "unsafe_panic") // no side-effect funcs named

	assert.Len(t, fixes, 1)
	assert.Equal(t, ir.Root, fixes[0].Block)
	assert.Equal(t, 0, fixes[0].Index, "with no recognized side effect, the root is unreachable end-to-end")
	assert.Empty(t, fn.Blocks[0].Statements, "the whole-function collapse discards the pure call too")
}

// TestRewriteUnsafePanicNoFixesOnReachableFunction confirms a function that
// already returns unconditionally is left untouched.
func TestRewriteUnsafePanicNoFixesOnReachableFunction(t *testing.T) {
	b := ir.NewBuilder("fine")
	b.Block(nil, ir.Return(ir.SourceLocation{}))
	fn := b.Build()

	fixes := RewriteUnsafePanic(fn, "unsafe_panic")
	assert.Empty(t, fixes)
	assert.Equal(t, ir.EndReturn, fn.Blocks[0].End.Kind)
}

func TestRewriteUnsafePanicEmptyFunctionIsNoop(t *testing.T) {
	fn := &ir.LoweredFunction{Name: "empty"}
	assert.Nil(t, RewriteUnsafePanic(fn, "unsafe_panic"))
}
