package analysis

import "github.com/radik878/cairo-flow/internal/ir"

// EqualityAnalysis is a forward analyzer that tracks which variables
// are known to hold the same value, plus box/unbox and snapshot/desnap
// relationships between equivalence classes. Its Info is *EqualityState.
type EqualityAnalysis struct{}

var _ Analyzer = EqualityAnalysis{}
var _ EdgeTransferer = EqualityAnalysis{}

func (EqualityAnalysis) Direction() Direction { return Forward }

func (EqualityAnalysis) InitialInfo(ir.BlockId, *ir.BlockEnd) Info {
	return NewEqualityState()
}

func (EqualityAnalysis) TransferStmt(info Info, _ StatementLocation, stmt ir.Statement) {
	s := info.(*EqualityState)
	switch v := stmt.(type) {
	case *ir.Snapshot:
		s.Union(v.OriginalOutput, v.Input.Var)
		s.SetSnapshotRelationship(v.Input.Var, v.SnapshotOutput)
	case *ir.Desnap:
		s.SetSnapshotRelationship(v.Output, v.Input.Var)
	case *ir.IntoBox:
		s.SetBoxRelationship(v.Input.Var, v.Output)
	case *ir.Unbox:
		s.SetBoxRelationship(v.Output, v.Input.Var)
	default:
		// Const, Call, StructConstruct, StructDestructure, EnumConstruct are
		// opaque to equality tracking.
	}
}

func (EqualityAnalysis) TransferEdge(info Info, edge Edge) Info {
	s := info.(*EqualityState).Clone().(*EqualityState)
	if edge.Kind == EdgeGoto {
		for _, remap := range edge.Remapping {
			s.Union(remap.Dst, remap.Src.Var)
		}
	}
	return s
}

// Merge performs an intersection-based join: two variables are
// equal in the result iff they are equal in both inputs, and a relation
// (box/snapshot) survives iff both its source and target classes survive
// the intersection in both inputs.
func (EqualityAnalysis) Merge(_ *ir.LoweredFunction, _ StatementLocation, a, b Info) Info {
	info1 := a.(*EqualityState)
	info2 := b.(*EqualityState)
	result := NewEqualityState()

	type repPair struct{ r1, r2 ir.VariableId }
	groups := make(map[repPair][]ir.VariableId)
	var order []repPair

	for _, v := range mergeReferencedVars(info1, info2) {
		key := repPair{info1.FindImmut(v), info2.FindImmut(v)}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], v)
	}

	for _, key := range order {
		members := groups[key]
		if len(members) > 1 {
			first := members[0]
			for _, v := range members[1:] {
				result.Union(first, v)
			}
		}
	}

	// by_rep1: rep1 -> list of (rep2, intersection representative in result).
	type rep2AndResult struct {
		rep2   ir.VariableId
		result ir.VariableId
	}
	byRep1 := make(map[ir.VariableId][]rep2AndResult)
	for _, key := range order {
		members := groups[key]
		byRep1[key.r1] = append(byRep1[key.r1], rep2AndResult{rep2: key.r2, result: result.Find(members[0])})
	}

	// lookup resolves a relation target pair through byRep1: given the
	// (possibly absent) box/snapshot targets in each branch, it reports
	// whether that pair of classes also survived the intersection, and if
	// so, which result-state representative they became.
	lookup := func(target1 ir.VariableId, ok1 bool, target2 ir.VariableId, ok2 bool) (ir.VariableId, bool) {
		if !ok1 || !ok2 {
			return 0, false
		}
		r1 := info1.FindImmut(target1)
		r2 := info2.FindImmut(target2)
		for _, candidate := range byRep1[r1] {
			if candidate.rep2 == r2 {
				return result.Find(candidate.result), true
			}
		}
		return 0, false
	}

	for _, r1 := range sortedClassInfoKeys(info1.classInfo) {
		class1 := info1.classInfo[r1]
		for _, pair := range byRep1[r1] {
			class2, ok := info2.classInfo[pair.rep2]
			if !ok {
				continue
			}
			if boxedRep, ok := lookup(class1.boxed, class1.hasBoxed, class2.boxed, class2.hasBoxed); ok {
				result.SetBoxRelationship(pair.result, boxedRep)
			}
			if snapRep, ok := lookup(class1.snapshot, class1.hasSnapshot, class2.snapshot, class2.hasSnapshot); ok {
				result.SetSnapshotRelationship(pair.result, snapRep)
			}
		}
	}

	return result
}

func mergeReferencedVars(info1, info2 *EqualityState) []ir.VariableId {
	var out []ir.VariableId
	out = append(out, info1.referencedVars()...)
	out = append(out, info2.referencedVars()...)
	return out
}
