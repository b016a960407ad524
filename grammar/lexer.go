package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ConditionLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Integer literals (hex before decimal)
		{Name: "Int", Pattern: `0[xX][0-9a-fA-F]+|[0-9]+`},

		// Identifiers (undefined macros surviving expansion)
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		// Operators (longest first)
		{Name: "Operator", Pattern: `\|\||&&|<<|>>|==|!=|<=|>=|[-+*/%&|^~!<>]`},

		// Punctuation
		{Name: "Punct", Pattern: `[()?:]`},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})
