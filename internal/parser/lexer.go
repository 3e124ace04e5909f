package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// nrLexer tokenises .nr sources. Keywords are lexed as Ident and matched by
// value in the grammar.
var nrLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"BlockComment", `/\*([^*]|\*+[^*/])*\*+/`, nil},

		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},

		// Operators (longest first)
		{"Operator", `(==|!=|<=|>=|::|\.\.|->|[-+*/<>=!|&])`, nil},

		// Punctuation (must come after operators)
		{"Punctuation", `[{}[\]#:,;().]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
