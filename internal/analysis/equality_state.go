package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/radik878/cairo-flow/internal/ir"
)

// classInfo tracks the box/unbox and snapshot/original relationships of one
// equivalence class's representative. Each field has a bool flag that
// distinguishes "unset" (zero value, flag false) from variable 0, since
// VariableId 0 is a legitimate representative.
type classInfo struct {
	boxed, unboxed, snapshot, original ir.VariableId
	hasBoxed, hasUnboxed, hasSnapshot, hasOriginal bool
}

func (c classInfo) isEmpty() bool {
	return !c.hasBoxed && !c.hasUnboxed && !c.hasSnapshot && !c.hasOriginal
}

// referencedVars returns every variable this classInfo points at.
func (c classInfo) referencedVars() []ir.VariableId {
	var out []ir.VariableId
	if c.hasBoxed {
		out = append(out, c.boxed)
	}
	if c.hasUnboxed {
		out = append(out, c.unboxed)
	}
	if c.hasSnapshot {
		out = append(out, c.snapshot)
	}
	if c.hasOriginal {
		out = append(out, c.original)
	}
	return out
}

// merge combines two classInfos for the same (now unified) class. Matching
// fields that disagree are recursively unioned via unionFn; fields set on
// only one side pass through unchanged.
func (c classInfo) merge(other classInfo, unionFn func(a, b ir.VariableId) ir.VariableId) classInfo {
	mergeField := func(hasA bool, a ir.VariableId, hasB bool, b ir.VariableId) (ir.VariableId, bool) {
		switch {
		case hasA && hasB:
			if a == b {
				return a, true
			}
			return unionFn(a, b), true
		case hasA:
			return a, true
		case hasB:
			return b, true
		default:
			return 0, false
		}
	}

	var result classInfo
	result.boxed, result.hasBoxed = mergeField(c.hasBoxed, c.boxed, other.hasBoxed, other.boxed)
	result.unboxed, result.hasUnboxed = mergeField(c.hasUnboxed, c.unboxed, other.hasUnboxed, other.unboxed)
	result.snapshot, result.hasSnapshot = mergeField(c.hasSnapshot, c.snapshot, other.hasSnapshot, other.snapshot)
	result.original, result.hasOriginal = mergeField(c.hasOriginal, c.original, other.hasOriginal, other.original)
	return result
}

// EqualityState is the Info type for the equality analysis:
// union-find over variables plus, per representative, the box/unbox and
// snapshot/original relations to other representatives.
type EqualityState struct {
	parent    map[ir.VariableId]ir.VariableId
	classInfo map[ir.VariableId]classInfo
}

// NewEqualityState returns the empty state.
func NewEqualityState() *EqualityState {
	return &EqualityState{}
}

func (s *EqualityState) getParent(v ir.VariableId) ir.VariableId {
	if s.parent == nil {
		return v
	}
	if p, ok := s.parent[v]; ok {
		return p
	}
	return v
}

func (s *EqualityState) setParent(v, p ir.VariableId) {
	if s.parent == nil {
		s.parent = make(map[ir.VariableId]ir.VariableId)
	}
	s.parent[v] = p
}

func (s *EqualityState) getClassInfo(v ir.VariableId) classInfo {
	if s.classInfo == nil {
		return classInfo{}
	}
	return s.classInfo[v]
}

func (s *EqualityState) setClassInfo(v ir.VariableId, c classInfo) {
	if c.isEmpty() {
		delete(s.classInfo, v)
		return
	}
	if s.classInfo == nil {
		s.classInfo = make(map[ir.VariableId]classInfo)
	}
	s.classInfo[v] = c
}

func (s *EqualityState) takeClassInfo(v ir.VariableId) classInfo {
	c := s.getClassInfo(v)
	delete(s.classInfo, v)
	return c
}

// Find returns the representative of v's equivalence class, path-compressing
// every visited node onto it.
func (s *EqualityState) Find(v ir.VariableId) ir.VariableId {
	parent := s.getParent(v)
	if parent == v {
		return v
	}
	root := s.Find(parent)
	s.setParent(v, root)
	return root
}

// FindImmut returns the representative of v's equivalence class without
// mutating the structure.
func (s *EqualityState) FindImmut(v ir.VariableId) ir.VariableId {
	parent := s.getParent(v)
	if parent == v {
		return v
	}
	return s.FindImmut(parent)
}

// Union merges the equivalence classes of a and b, returning the merged
// representative. The lower-numbered variable always becomes the new root,
// so representatives stay stable across reorderings downstream consumers
// may hashcons on.
func (s *EqualityState) Union(a, b ir.VariableId) ir.VariableId {
	ra, rb := s.Find(a), s.Find(b)
	if ra == rb {
		return ra
	}

	newRoot, oldRoot := ra, rb
	if oldRoot < newRoot {
		newRoot, oldRoot = oldRoot, newRoot
	}
	s.setParent(oldRoot, newRoot)

	oldInfo := s.takeClassInfo(oldRoot)
	newInfo := s.takeClassInfo(newRoot)
	merged := newInfo.merge(oldInfo, s.Union)

	finalRoot := s.Find(newRoot)
	s.setClassInfo(finalRoot, merged)

	return s.Find(newRoot)
}

type classField int

const (
	fieldBoxed classField = iota
	fieldUnboxed
	fieldSnapshot
	fieldOriginal
)

func getField(c classInfo, f classField) (ir.VariableId, bool) {
	switch f {
	case fieldBoxed:
		return c.boxed, c.hasBoxed
	case fieldUnboxed:
		return c.unboxed, c.hasUnboxed
	case fieldSnapshot:
		return c.snapshot, c.hasSnapshot
	default:
		return c.original, c.hasOriginal
	}
}

func setField(c *classInfo, f classField, v ir.VariableId) {
	switch f {
	case fieldBoxed:
		c.boxed, c.hasBoxed = v, true
	case fieldUnboxed:
		c.unboxed, c.hasUnboxed = v, true
	case fieldSnapshot:
		c.snapshot, c.hasSnapshot = v, true
	case fieldOriginal:
		c.original, c.hasOriginal = v, true
	}
}

// GetRelated follows one relational field from v's representative, returning
// the representative of the related class, if any.
func (s *EqualityState) GetRelated(v ir.VariableId, field classField) (ir.VariableId, bool) {
	rep := s.Find(v)
	c := s.getClassInfo(rep)
	related, ok := getField(c, field)
	if !ok {
		return 0, false
	}
	return s.Find(related), true
}

// SetRelationship records a bidirectional relation between a's and b's
// classes: fieldAB on a's representative points at b's, and fieldBA on b's
// representative points back at a's. If either side already has a relation
// of the matching kind, the new target is unioned with the existing one
// before the fields are (re-)written.
func (s *EqualityState) SetRelationship(a, b ir.VariableId, fieldAB, fieldBA classField) {
	if existing, ok := s.GetRelated(a, fieldAB); ok {
		s.Union(b, existing)
	}
	if existing, ok := s.GetRelated(b, fieldBA); ok {
		s.Union(a, existing)
	}

	repA := s.Find(a)
	repB := s.Find(b)

	cA := s.getClassInfo(repA)
	setField(&cA, fieldAB, repB)
	s.setClassInfo(repA, cA)

	cB := s.getClassInfo(repB)
	setField(&cB, fieldBA, repA)
	s.setClassInfo(repB, cB)
}

// SetBoxRelationship records boxedVar = Box(unboxedVar).
func (s *EqualityState) SetBoxRelationship(unboxedVar, boxedVar ir.VariableId) {
	s.SetRelationship(unboxedVar, boxedVar, fieldBoxed, fieldUnboxed)
}

// SetSnapshotRelationship records snapshotVar = @originalVar.
func (s *EqualityState) SetSnapshotRelationship(originalVar, snapshotVar ir.VariableId) {
	s.SetRelationship(originalVar, snapshotVar, fieldSnapshot, fieldOriginal)
}

// Clone returns an independent copy of the state.
func (s *EqualityState) Clone() Info {
	clone := &EqualityState{}
	if len(s.parent) > 0 {
		clone.parent = make(map[ir.VariableId]ir.VariableId, len(s.parent))
		for k, v := range s.parent {
			clone.parent[k] = v
		}
	}
	if len(s.classInfo) > 0 {
		clone.classInfo = make(map[ir.VariableId]classInfo, len(s.classInfo))
		for k, v := range s.classInfo {
			clone.classInfo[k] = v
		}
	}
	return clone
}

// referencedVars returns every variable mentioned in the state's union-find
// map or in any class_info value, in a fixed (numerically sorted) order so
// that two runs over the same states produce identical merge results —
// iterating a Go map directly would make the grouping in Merge depend on
// map iteration order.
func (s *EqualityState) referencedVars() []ir.VariableId {
	seen := make(map[ir.VariableId]bool)
	var out []ir.VariableId
	add := func(v ir.VariableId) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range sortedVariableKeys(s.parent) {
		add(v)
	}
	for _, rep := range sortedClassInfoKeys(s.classInfo) {
		for _, v := range s.classInfo[rep].referencedVars() {
			add(v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedVariableKeys(m map[ir.VariableId]ir.VariableId) []ir.VariableId {
	keys := make([]ir.VariableId, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedClassInfoKeys(m map[ir.VariableId]classInfo) []ir.VariableId {
	keys := make([]ir.VariableId, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Dump renders the canonical, sorted form used by the test harness: one
// line per "@r=s" (snapshot), "Box(r)=b", and "vA=vB" (non-representative
// union-find member). A classInfo entry's key and its related target can
// both go stale once a later union folds either side into a smaller root,
// so both are resolved through FindImmut before formatting rather than
// printed as stored.
func (s *EqualityState) Dump() string {
	var lines []string
	for rep, c := range s.classInfo {
		rep = s.FindImmut(rep)
		if c.hasSnapshot {
			lines = append(lines, fmt.Sprintf("@v%d=v%d", rep, s.FindImmut(c.snapshot)))
		}
		if c.hasBoxed {
			lines = append(lines, fmt.Sprintf("Box(v%d)=v%d", rep, s.FindImmut(c.boxed)))
		}
	}
	for v := range s.parent {
		rep := s.FindImmut(v)
		if v != rep {
			lines = append(lines, fmt.Sprintf("v%d=v%d", rep, v))
		}
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return "(empty)"
	}
	return strings.Join(lines, ", ")
}
