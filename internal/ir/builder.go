package ir

// Builder assembles a LoweredFunction incrementally. It exists so tests and
// internal/irtext can construct fixtures without hand-writing every slice
// literal, mirroring the role the host compiler's own IR builder plays for
// its SSA form.
type Builder struct {
	fn *LoweredFunction
}

// NewBuilder starts a function named name.
func NewBuilder(name string) *Builder {
	return &Builder{fn: &LoweredFunction{Name: name}}
}

// Param declares a parameter variable, in order.
func (b *Builder) Param(v VariableId) *Builder {
	b.fn.Parameters = append(b.fn.Parameters, v)
	b.fn.Variables = append(b.fn.Variables, v)
	return b
}

// Var registers a variable that is not a parameter (e.g. one defined by a
// statement), so callers that scan f.Variables see the complete set.
func (b *Builder) Var(v VariableId) *Builder {
	b.fn.Variables = append(b.fn.Variables, v)
	return b
}

// Block appends a block with the given statements and end, returning its id.
func (b *Builder) Block(stmts []Statement, end BlockEnd) BlockId {
	id := BlockId(len(b.fn.Blocks))
	b.fn.Blocks = append(b.fn.Blocks, Block{Statements: stmts, End: end})
	return id
}

// Build finalizes and validates the function.
func (b *Builder) Build() *LoweredFunction {
	Validate(b.fn)
	return b.fn
}

// Goto builds a Goto block end.
func Goto(loc SourceLocation, target BlockId, remapping ...Remapping) BlockEnd {
	return BlockEnd{Kind: EndGoto, Location: loc, Target: target, Remapping: remapping}
}

// Return builds a Return block end.
func Return(loc SourceLocation, operands ...VarUsage) BlockEnd {
	return BlockEnd{Kind: EndReturn, Location: loc, Operands: operands}
}

// Panic builds a Panic block end.
func Panic(loc SourceLocation, operand VarUsage) BlockEnd {
	return BlockEnd{Kind: EndPanic, Location: loc, Operand: operand}
}

// Match builds a Match block end.
func Match(info MatchInfo) BlockEnd {
	return BlockEnd{Kind: EndMatch, Location: info.Location, Match: &info}
}

// Validate checks the function's structural invariants: every block end refers
// to an in-range block id, and no block end is left NotSet. It fails fast
// (panics with a StructuralError) on the first violation, since these
// represent bugs in whatever produced the IR.
func Validate(f *LoweredFunction) {
	n := len(f.Blocks)
	inRange := func(id BlockId) bool { return int(id) >= 0 && int(id) < n }

	for i := range f.Blocks {
		end := &f.Blocks[i].End
		switch end.Kind {
		case EndGoto:
			if !inRange(end.Target) {
				fail("ir: block %d: goto target %d out of range", i, end.Target)
			}
		case EndMatch:
			if end.Match == nil {
				fail("ir: block %d: match end missing MatchInfo", i)
			}
			for _, arm := range end.Match.Arms {
				if !inRange(arm.BlockId) {
					fail("ir: block %d: match arm target %d out of range", i, arm.BlockId)
				}
			}
		case EndReturn, EndPanic:
			// no successors to validate
		default:
			fail("ir: block %d: block end not set", i)
		}
	}
}
