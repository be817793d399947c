// Package irtext is a small textual assembly notation for internal/ir's
// LoweredFunction, parsed with participle. It exists so fixtures and the CLI
// can author lowered functions directly instead of hand-building Go struct
// literals for every block and statement; it is not, and does not attempt to
// be, a surface-language frontend.
package irtext

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// FlowLexer tokenizes the assembly notation. Var and Block are lexed whole
// (`v3`, `block1`) rather than split into a sigil plus an integer, so the
// grammar never has to reassemble an id from two tokens.
var FlowLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Var", `v[0-9]+`, nil},
		{"Block", `block[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Arrow", `->`, nil},
		{"FromArrow", `<-`, nil},
		{"Punct", `[(){},:;=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
