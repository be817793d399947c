package analysis

import "github.com/radik878/cairo-flow/internal/ir"

// ForwardDriver schedules a Forward analyzer over an acyclic CFG, entry
// towards exits, processing statements in program order within each block.
type ForwardDriver struct {
	fn       *ir.LoweredFunction
	analyzer Analyzer

	predecessorCounts []int
	incoming          []Info
}

// NewForwardDriver creates a driver for fn. analyzer.Direction() must be
// Forward.
func NewForwardDriver(fn *ir.LoweredFunction, analyzer Analyzer) *ForwardDriver {
	if analyzer.Direction() != Forward {
		panic(&ir.StructuralError{Message: "analysis: ForwardDriver requires an analyzer with Direction() == Forward"})
	}
	return &ForwardDriver{
		fn:                fn,
		analyzer:          analyzer,
		predecessorCounts: computePredecessorCounts(fn),
		incoming:          make([]Info, len(fn.Blocks)),
	}
}

// Run executes the analysis and returns the exit state of every reachable
// block, indexed by BlockId; unreachable blocks are nil.
func (d *ForwardDriver) Run() []Info {
	n := len(d.fn.Blocks)
	result := make([]Info, n)

	root := ir.Root
	d.incoming[root] = d.analyzer.InitialInfo(root, &d.fn.Block(root).End)
	ready := []ir.BlockId{root}

	for len(ready) > 0 {
		blockId := ready[len(ready)-1]
		ready = ready[:len(ready)-1]

		block := d.fn.Block(blockId)
		info := d.incoming[blockId]
		d.incoming[blockId] = nil

		visitBlockStart(d.analyzer, info, blockId, block)
		transferBlockForward(d.analyzer, info, blockId, block)

		d.propagateToSuccessors(blockId, block, info, &ready)

		result[blockId] = info
	}

	return result
}

func (d *ForwardDriver) propagateToSuccessors(blockId ir.BlockId, block *ir.Block, info Info, ready *[]ir.BlockId) {
	end := &block.End
	switch end.Kind {
	case ir.EndGoto:
		edgeInfo := transferEdge(d.analyzer, info, Edge{Kind: EdgeGoto, Target: end.Target, Remapping: end.Remapping})
		d.addAndMaybeReady(end.Target, edgeInfo, ready)
	case ir.EndMatch:
		for _, arm := range end.Match.Arms {
			armInfo := transferEdge(d.analyzer, info, Edge{Kind: EdgeMatchArm, Arm: arm, Match: end.Match})
			d.addAndMaybeReady(arm.BlockId, armInfo, ready)
		}
	case ir.EndReturn, ir.EndPanic:
		// terminal, no successors
	default:
		panic(&ir.StructuralError{Message: "analysis: block end not set"})
	}
}

func (d *ForwardDriver) addAndMaybeReady(target ir.BlockId, info Info, ready *[]ir.BlockId) {
	existing := d.incoming[target]
	if existing == nil {
		d.incoming[target] = info
	} else {
		d.incoming[target] = d.analyzer.Merge(d.fn, StatementLocation{Block: target, Index: 0}, existing, info)
	}
	d.predecessorCounts[target]--
	if d.predecessorCounts[target] == 0 {
		*ready = append(*ready, target)
	}
}

// computePredecessorCounts counts, for every block, how many edges enter it.
func computePredecessorCounts(fn *ir.LoweredFunction) []int {
	counts := make([]int, len(fn.Blocks))
	for i := range fn.Blocks {
		end := &fn.Blocks[i].End
		switch end.Kind {
		case ir.EndGoto:
			counts[end.Target]++
		case ir.EndMatch:
			for _, arm := range end.Match.Arms {
				counts[arm.BlockId]++
			}
		}
	}
	return counts
}
