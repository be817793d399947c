package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radik878/cairo-flow/internal/ir"
)

// TestEqualityIdentityOfSnapshot covers v1 = snapshot(v0); return v1.
// The snapshot's original_output is unioned with its input, and the
// snapshot/original relation connects the two classes.
func TestEqualityIdentityOfSnapshot(t *testing.T) {
	b := ir.NewBuilder("e1")
	b.Param(0)
	b.Var(1)
	b.Var(2)
	b.Block(
		[]ir.Statement{&ir.Snapshot{Input: ir.VarUsage{Var: 0}, OriginalOutput: 2, SnapshotOutput: 1}},
		ir.Return(ir.SourceLocation{}, ir.VarUsage{Var: 1}),
	)
	fn := b.Build()

	results := NewForwardDriver(fn, EqualityAnalysis{}).Run()
	state := results[0].(*EqualityState)

	assert.Equal(t, state.Find(0), state.Find(2), "original_output must be unioned with the snapshot's input")

	snapshotClass, ok := state.GetRelated(0, fieldSnapshot)
	assert.True(t, ok)
	assert.Equal(t, state.Find(1), snapshotClass)
}

// TestEqualityBoxUnboxRoundtrip covers v1 = Box(v0); v2 = Unbox(v1).
// Unboxing an already-boxed value must union the unbox's output back with
// the original unboxed variable.
func TestEqualityBoxUnboxRoundtrip(t *testing.T) {
	b := ir.NewBuilder("e2")
	b.Param(0)
	b.Var(1)
	b.Var(2)
	b.Block(
		[]ir.Statement{
			&ir.IntoBox{Input: ir.VarUsage{Var: 0}, Output: 1},
			&ir.Unbox{Input: ir.VarUsage{Var: 1}, Output: 2},
		},
		ir.Return(ir.SourceLocation{}, ir.VarUsage{Var: 2}),
	)
	fn := b.Build()

	results := NewForwardDriver(fn, EqualityAnalysis{}).Run()
	state := results[0].(*EqualityState)

	assert.Equal(t, state.Find(0), state.Find(2), "v2 must equal v0 after the box/unbox roundtrip")

	boxed, ok := state.GetRelated(0, fieldBoxed)
	assert.True(t, ok)
	assert.Equal(t, state.Find(1), boxed, "Box(v0) = v1 must still hold")
}

// TestEqualityMergeDropsPartialEquality covers a diamond where v2 is
// assigned from v0 on one branch and v1 on the other, with nothing else
// relating v0 and v1. None of the three variables should end up equal.
func TestEqualityMergeDropsPartialEquality(t *testing.T) {
	branchThen := NewEqualityState()
	branchThen.Union(2, 0) // v2 = v0
	branchElse := NewEqualityState()
	branchElse.Union(2, 1) // v2 = v1

	merged := EqualityAnalysis{}.Merge(nil, StatementLocation{}, branchThen, branchElse).(*EqualityState)

	assert.NotEqual(t, merged.Find(0), merged.Find(1))
	assert.Equal(t, ir.VariableId(2), merged.Find(2), "v2 must be its own representative after the join")
}

// TestEqualityMergePreservesRelationThroughIntersection covers two
// branches where v4's equivalence class differs (v1 vs v3 as the odd member
// out) but both agree v2 is in that class and that the class is boxed as v6.
// The box relation must survive at whatever representative the intersected
// class settles on.
func TestEqualityMergePreservesRelationThroughIntersection(t *testing.T) {
	branchA := NewEqualityState()
	branchA.Union(1, 4)
	branchA.Union(2, 4)           // v4 == v1 == v2
	branchA.SetBoxRelationship(1, 6) // Box(v1) = v6

	branchB := NewEqualityState()
	branchB.Union(3, 4)
	branchB.Union(2, 4)           // v4 == v3 == v2
	branchB.SetBoxRelationship(3, 6) // Box(v3) = v6

	merged := EqualityAnalysis{}.Merge(nil, StatementLocation{}, branchA, branchB).(*EqualityState)

	assert.Equal(t, merged.Find(2), merged.Find(4), "v2 is the only member common to v4's class on both branches")
	assert.NotEqual(t, merged.Find(1), merged.Find(4), "v1 does not survive: it was never in v4's branch-B class")
	assert.NotEqual(t, merged.Find(3), merged.Find(4), "v3 does not survive: it was never in v4's branch-A class")

	boxed, ok := merged.GetRelated(4, fieldBoxed)
	assert.True(t, ok, "Box(...) = v6 must survive the intersection since it held in both branches")
	assert.Equal(t, merged.Find(6), boxed)
}
