package analysis

import "github.com/radik878/cairo-flow/internal/ir"

// backEdge is one predecessor's contribution into a block: which block it
// came from, and the control-flow edge that reached the target.
type backEdge struct {
	pred ir.BlockId
	edge Edge
}

// BackwardDriver schedules a Backward analyzer over an acyclic CFG, exits
// towards entry, processing statements in reverse program order within
// each block. It is the mirror image of ForwardDriver.
type BackwardDriver struct {
	fn       *ir.LoweredFunction
	analyzer Analyzer

	successorCounts []int
	predecessors    [][]backEdge // predecessors[b] = edges from b's predecessors into b
	incoming        []Info       // state flowing back INTO a block, from its successors
}

// NewBackwardDriver creates a driver for fn. analyzer.Direction() must be
// Backward.
func NewBackwardDriver(fn *ir.LoweredFunction, analyzer Analyzer) *BackwardDriver {
	if analyzer.Direction() != Backward {
		panic(&ir.StructuralError{Message: "analysis: BackwardDriver requires an analyzer with Direction() == Backward"})
	}
	return &BackwardDriver{
		fn:              fn,
		analyzer:        analyzer,
		successorCounts: computeSuccessorCounts(fn),
		predecessors:    computePredecessorEdges(fn),
		incoming:        make([]Info, len(fn.Blocks)),
	}
}

// Run executes the analysis and returns, for every reachable block, the
// state at its entry (the state threaded to its predecessors).
func (d *BackwardDriver) Run() []Info {
	n := len(d.fn.Blocks)
	result := make([]Info, n)

	var ready []ir.BlockId
	for i := 0; i < n; i++ {
		if d.successorCounts[i] == 0 {
			id := ir.BlockId(i)
			block := d.fn.Block(id)
			d.incoming[id] = d.analyzer.InitialInfo(id, &block.End)
			ready = append(ready, id)
		}
	}

	for len(ready) > 0 {
		blockId := ready[len(ready)-1]
		ready = ready[:len(ready)-1]

		block := d.fn.Block(blockId)
		info := d.incoming[blockId]
		d.incoming[blockId] = nil

		transferBlockBackward(d.analyzer, info, blockId, block)

		d.propagateToPredecessors(blockId, info, &ready)

		result[blockId] = info
	}

	return result
}

func (d *BackwardDriver) propagateToPredecessors(blockId ir.BlockId, info Info, ready *[]ir.BlockId) {
	for _, be := range d.predecessors[blockId] {
		edgeInfo := transferEdge(d.analyzer, info, be.edge)
		d.addAndMaybeReady(be.pred, edgeInfo, ready)
	}
}

func (d *BackwardDriver) addAndMaybeReady(pred ir.BlockId, info Info, ready *[]ir.BlockId) {
	existing := d.incoming[pred]
	if existing == nil {
		d.incoming[pred] = info
	} else {
		d.incoming[pred] = d.analyzer.Merge(d.fn, StatementLocation{Block: pred, Index: 0}, existing, info)
	}
	d.successorCounts[pred]--
	if d.successorCounts[pred] == 0 {
		*ready = append(*ready, pred)
	}
}

// computeSuccessorCounts counts, for every block, how many outgoing edges
// it has. A Match with no arms is terminal.
func computeSuccessorCounts(fn *ir.LoweredFunction) []int {
	counts := make([]int, len(fn.Blocks))
	for i := range fn.Blocks {
		end := &fn.Blocks[i].End
		switch end.Kind {
		case ir.EndGoto:
			counts[i] = 1
		case ir.EndMatch:
			counts[i] = len(end.Match.Arms)
		case ir.EndReturn, ir.EndPanic:
			counts[i] = 0
		default:
			panic(&ir.StructuralError{Message: "analysis: block end not set"})
		}
	}
	return counts
}

// computePredecessorEdges builds, for every block, the list of edges
// reaching it from its predecessors.
func computePredecessorEdges(fn *ir.LoweredFunction) [][]backEdge {
	preds := make([][]backEdge, len(fn.Blocks))
	for i := range fn.Blocks {
		pred := ir.BlockId(i)
		end := &fn.Blocks[i].End
		switch end.Kind {
		case ir.EndGoto:
			edge := Edge{Kind: EdgeGoto, Target: end.Target, Remapping: end.Remapping}
			preds[end.Target] = append(preds[end.Target], backEdge{pred: pred, edge: edge})
		case ir.EndMatch:
			for _, arm := range end.Match.Arms {
				edge := Edge{Kind: EdgeMatchArm, Arm: arm, Match: end.Match}
				preds[arm.BlockId] = append(preds[arm.BlockId], backEdge{pred: pred, edge: edge})
			}
		}
	}
	return preds
}
