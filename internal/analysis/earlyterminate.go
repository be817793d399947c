package analysis

import (
	"sort"

	"github.com/radik878/cairo-flow/internal/ir"
)

// ReachableKind is the two-valued state EarlyTerminate threads backward
// through a function: whether a return or a side-effecting call is still
// reachable from a program point.
type ReachableKind int

const (
	Reachable ReachableKind = iota
	Unreachable
)

// ReachableSideEffects is EarlyTerminate's Info. Location is only
// meaningful when Kind == Unreachable: it is the location attached to the
// nearest returning-arm-free match found so far, carried along so a later
// fix can blame a real source position.
type ReachableSideEffects struct {
	Kind     ReachableKind
	Location ir.SourceLocation
}

func (r *ReachableSideEffects) Clone() Info {
	c := *r
	return &c
}

// Fix is one rewrite site recorded by EarlyTerminate: truncate Block's
// statements to Index and replace its end with a call to the trap function.
type Fix struct {
	Block    ir.BlockId
	Index    int
	Location ir.SourceLocation
}

// EarlyTerminate is a backward analyzer that finds code no return and no
// side-effecting call can follow, so that RewriteUnsafePanic can truncate it
// and insert an unconditional trap call. SideEffectFuncs names the
// callees treated as having an observable effect even though they have no
// output (e.g. a debug print or trace intrinsic); everything else is
// considered safe to discard.
type EarlyTerminate struct {
	SideEffectFuncs map[string]bool

	Fixes []Fix
}

var _ Analyzer = (*EarlyTerminate)(nil)
var _ BlockTransferer = (*EarlyTerminate)(nil)
var _ EdgeTransferer = (*EarlyTerminate)(nil)

// NewEarlyTerminate builds an EarlyTerminate that treats calls to any of
// sideEffectFuncs as observable.
func NewEarlyTerminate(sideEffectFuncs ...string) *EarlyTerminate {
	set := make(map[string]bool, len(sideEffectFuncs))
	for _, f := range sideEffectFuncs {
		set[f] = true
	}
	return &EarlyTerminate{SideEffectFuncs: set}
}

func (e *EarlyTerminate) Direction() Direction { return Backward }

func (e *EarlyTerminate) hasSideEffects(stmt ir.Statement) bool {
	call, ok := stmt.(*ir.Call)
	if !ok {
		return false
	}
	return e.SideEffectFuncs[call.Callee]
}

// InitialInfo seeds a block's exit state: a block whose own end is already a
// Match starts out Unreachable (nothing downstream of it has been proven to
// return yet), everything else — Goto, Return, Panic — starts Reachable.
func (e *EarlyTerminate) InitialInfo(_ ir.BlockId, end *ir.BlockEnd) Info {
	if end.Kind == ir.EndMatch {
		return &ReachableSideEffects{Kind: Unreachable, Location: end.Location}
	}
	return &ReachableSideEffects{Kind: Reachable}
}

// TransferBlock overrides the default per-statement walk: it both reacts to
// the block's own end (if it is a still-unreachable Match, the whole match
// is a candidate fix) and scans statements in reverse program order looking
// for the last one with a side effect, which flips the state to Reachable and
// stops the block being a candidate for truncation before that point.
func (e *EarlyTerminate) TransferBlock(info Info, blockId ir.BlockId, block *ir.Block) {
	state := info.(*ReachableSideEffects)

	if block.End.Kind == ir.EndMatch && state.Kind == Unreachable {
		e.Fixes = append(e.Fixes, Fix{Block: blockId, Index: len(block.Statements), Location: block.End.Location})
	}

	if state.Kind == Reachable {
		return
	}

	for i := len(block.Statements) - 1; i >= 0; i-- {
		if e.hasSideEffects(block.Statements[i]) && state.Kind == Unreachable {
			e.Fixes = append(e.Fixes, Fix{Block: blockId, Index: i, Location: state.Location})
			state.Kind = Reachable
			break
		}
	}
}

// Merge reports Reachable as soon as either branch is; when both branches
// are Unreachable the result is Unreachable, re-anchored at the merge
// block's own end location rather than either branch's stashed one.
func (e *EarlyTerminate) Merge(fn *ir.LoweredFunction, loc StatementLocation, a, b Info) Info {
	ia := a.(*ReachableSideEffects)
	ib := b.(*ReachableSideEffects)
	if ia.Kind == Reachable || ib.Kind == Reachable {
		return &ReachableSideEffects{Kind: Reachable}
	}
	return &ReachableSideEffects{Kind: Unreachable, Location: fn.Block(loc.Block).End.Location}
}

// TransferEdge records a fix at the start of a match arm's target block
// whenever that target's computed state is Unreachable: control can only
// reach that block through this arm, so the whole block can be replaced by
// a trap regardless of what its own end later turns out to be.
func (e *EarlyTerminate) TransferEdge(info Info, edge Edge) Info {
	state := info.(*ReachableSideEffects)
	if edge.Kind == EdgeMatchArm && state.Kind == Unreachable {
		e.Fixes = append(e.Fixes, Fix{Block: edge.Arm.BlockId, Index: 0, Location: state.Location})
	}
	clone := *state
	return &clone
}

// TransferStmt is never invoked — TransferBlock is overridden above — but is
// required to satisfy Analyzer.
func (e *EarlyTerminate) TransferStmt(Info, StatementLocation, ir.Statement) {}

// RewriteUnsafePanic runs EarlyTerminate backward over fn and applies the
// fixes it finds: each affected block has its statements truncated and its
// end replaced by a zero-arm extern match calling panicFunc, which a later
// unreachable-code pass is expected to clean up. If the function's root
// block is itself unreachable end-to-end, the whole function collapses to a
// single trap call at its start. Returns the fixes that were applied, for a
// host to report (e.g. via internal/diagnostics); empty means no rewrite.
//
// A single block can collect more than one candidate truncation point (its
// own dead match end, plus an earlier side-effecting statement found while
// scanning for one): TransferBlock records both regardless of which is more
// conservative. Applying every one in discovery order would let a shorter
// truncation recorded later in the pass blow away statements a longer one
// already decided to keep, so fixes are deduplicated per block before being
// applied — keeping the largest index (the one that preserves the most
// code) is always safe, since every recorded index is independently a valid
// place to start the trap.
func RewriteUnsafePanic(fn *ir.LoweredFunction, panicFunc string, sideEffectFuncs ...string) []Fix {
	if len(fn.Blocks) == 0 {
		return nil
	}

	ctx := NewEarlyTerminate(sideEffectFuncs...)
	driver := NewBackwardDriver(fn, ctx)
	results := driver.Run()

	fixes := ctx.Fixes
	if root, ok := results[ir.Root].(*ReachableSideEffects); ok && root.Kind == Unreachable {
		fixes = []Fix{{Block: ir.Root, Index: 0, Location: root.Location}}
	}

	best := make(map[ir.BlockId]Fix, len(fixes))
	for _, fix := range fixes {
		if existing, ok := best[fix.Block]; !ok || fix.Index > existing.Index {
			best[fix.Block] = fix
		}
	}

	blocks := make([]ir.BlockId, 0, len(best))
	for b := range best {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })

	applied := make([]Fix, 0, len(blocks))
	for _, b := range blocks {
		fix := best[b]
		applied = append(applied, fix)

		block := fn.Block(fix.Block)
		if fix.Index < len(block.Statements) {
			block.Statements = block.Statements[:fix.Index]
		}
		block.End = ir.BlockEnd{
			Kind:     ir.EndMatch,
			Location: fix.Location,
			Match: &ir.MatchInfo{
				Location: fix.Location,
				Function: panicFunc,
			},
		}
	}

	return applied
}
