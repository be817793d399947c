package irtext

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root of the assembly notation: zero or more function
// definitions. Most fixtures hold exactly one.
type Program struct {
	Pos   lexer.Position
	Funcs []*Func `@@*`
}

// Func is `fn name(v0, v1) { block0: ... block1: ... }`.
type Func struct {
	Pos    lexer.Position
	Name   string      `"fn" @Ident "("`
	Params []string    `[ @Var { "," @Var } ] ")" "{"`
	Blocks []*BlockDef `@@+ "}"`
}

// BlockDef is one labeled block: zero or more statements, then exactly one
// end. Block labels must appear in order ("block0", "block1", ...) matching
// their position in Func.Blocks; lowerFunc rejects anything else.
type BlockDef struct {
	Pos   lexer.Position
	Label string   `@Block ":"`
	Stmts []*Stmt  `@@*`
	End   *EndStmt `@@`
}

// Stmt is one statement, in the closed set internal/ir understands.
// DestructureStmt is tried first since it is the only form starting with
// "(" rather than a variable; EnumStmt is tried last since its keyword slot
// accepts any identifier and would otherwise shadow the named keywords
// above it.
type Stmt struct {
	Pos      lexer.Position
	Destr    *DestructureStmt `(   @@`
	Const    *ConstStmt       ` | @@`
	CallOut  *CallStmt        ` | @@`
	CallBare *CallBareStmt    ` | @@`
	Snap     *SnapshotStmt    ` | @@`
	Desnap   *DesnapStmt      ` | @@`
	Box      *BoxStmt         ` | @@`
	Unbox    *UnboxStmt       ` | @@`
	Struct   *StructStmt      ` | @@`
	Enum     *EnumStmt        ` | @@ )`
}

type ConstStmt struct {
	Pos    lexer.Position
	Output string `@Var "=" "const"`
}

type CallStmt struct {
	Pos    lexer.Position
	Output string   `@Var "=" "call"`
	Callee string   `@Ident "("`
	Args   []string `[ @Var { "," @Var } ] ")"`
}

type CallBareStmt struct {
	Pos    lexer.Position
	Callee string   `"call" @Ident "("`
	Args   []string `[ @Var { "," @Var } ] ")"`
}

type SnapshotStmt struct {
	Pos            lexer.Position
	OriginalOutput string `@Var "=" "snapshot"`
	Input          string `@Var "->"`
	SnapshotOutput string `@Var`
}

type DesnapStmt struct {
	Pos    lexer.Position
	Output string `@Var "=" "desnap"`
	Input  string `@Var`
}

type BoxStmt struct {
	Pos    lexer.Position
	Output string `@Var "=" "box"`
	Input  string `@Var`
}

type UnboxStmt struct {
	Pos    lexer.Position
	Output string `@Var "=" "unbox"`
	Input  string `@Var`
}

type StructStmt struct {
	Pos    lexer.Position
	Output string   `@Var "=" "struct" "("`
	Fields []string `[ @Var { "," @Var } ] ")"`
}

// DestructureStmt is `(v1, v2) = destructure v0`.
type DestructureStmt struct {
	Pos     lexer.Position
	Outputs []string `"(" @Var { "," @Var } ")" "=" "destructure"`
	Input   string   `@Var`
}

// EnumStmt is `v1 = Some(v0)`: Variant is the enum constructor name.
type EnumStmt struct {
	Pos     lexer.Position
	Output  string `@Var "="`
	Variant string `@Ident "("`
	Input   string `@Var ")"`
}

// EndStmt is the block end: exactly one of Goto, Match, Ret, Panic.
type EndStmt struct {
	Pos   lexer.Position
	Goto  *GotoEnd   `(   @@`
	Match *MatchEnd  ` | @@`
	Ret   *ReturnEnd ` | @@`
	Panic *PanicEnd  ` | @@ )`
}

// GotoEnd is `goto block1` or `goto block1 { v5 <- v4, v7 <- v6 }`; each
// remap reads "dst <- src", the same direction the pretty-printer uses.
type GotoEnd struct {
	Pos       lexer.Position
	Target    string   `"goto" @Block`
	Remapping []*Remap `[ "{" @@ { "," @@ } "}" ]`
}

type Remap struct {
	Pos lexer.Position
	Dst string `@Var "<-"`
	Src string `@Var`
}

// ReturnEnd is `return` or `return v0, v1`.
type ReturnEnd struct {
	Pos      lexer.Position
	Operands []string `"return" [ @Var { "," @Var } ]`
}

// PanicEnd is `panic v0`.
type PanicEnd struct {
	Pos     lexer.Position
	Operand string `"panic" @Var`
}

// MatchEnd is `match callee(v0, v1) { block1(v2), block2(v3, v4) }`. Arms
// may be empty (`match unsafe_panic() {}`), the shape RewriteUnsafePanic
// produces.
type MatchEnd struct {
	Pos      lexer.Position
	Function string   `"match" @Ident "("`
	Inputs   []string `[ @Var { "," @Var } ] ")" "{"`
	Arms     []*Arm   `[ @@ { "," @@ } ] "}"`
}

type Arm struct {
	Pos      lexer.Position
	Target   string   `@Block "("`
	Bindings []string `[ @Var { "," @Var } ] ")"`
}
