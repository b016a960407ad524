package preprocessor

import (
	"fmt"
	"strings"

	"xshade/internal/errors"
	"xshade/token"
)

// Macro is one object-like or function-like macro definition.
type Macro struct {
	Ident        string
	FunctionLike bool
	Parameters   []string
	Variadic     bool
	Body         []token.Token
}

// Equal reports whether two definitions are interchangeable.
func (m *Macro) Equal(rhs *Macro) bool {
	if m.FunctionLike != rhs.FunctionLike || m.Variadic != rhs.Variadic ||
		len(m.Parameters) != len(rhs.Parameters) || len(m.Body) != len(rhs.Body) {
		return false
	}
	for i, p := range m.Parameters {
		if p != rhs.Parameters[i] {
			return false
		}
	}
	for i, tkn := range m.Body {
		if tkn.Spell != rhs.Body[i].Spell {
			return false
		}
	}
	return true
}

func (m *Macro) paramIndex(name string) int {
	for i, p := range m.Parameters {
		if p == name {
			return i
		}
	}
	return -1
}

type macroParams struct {
	names    []string
	variadic bool
}

// parseMacroParameters parses the parameter list of a function-like macro
// definition, returning the tokens following the closing bracket.
func parseMacroParameters(tokens []token.Token) (macroParams, []token.Token, error) {
	var params macroParams

	i := 0
	skipWS := func() {
		for i < len(tokens) && tokens[i].Kind == token.WhiteSpace {
			i++
		}
	}

	skipWS()
	if i < len(tokens) && tokens[i].Kind == token.RParen {
		return params, tokens[i+1:], nil
	}

	for {
		skipWS()
		if i >= len(tokens) {
			return params, nil, fmt.Errorf("unterminated macro parameter list")
		}
		switch tokens[i].Kind {
		case token.Ident:
			params.names = append(params.names, tokens[i].Spell)
		case token.VarArg:
			params.variadic = true
		default:
			return params, nil, fmt.Errorf("expected identifier in macro parameter list")
		}
		i++

		skipWS()
		if i >= len(tokens) {
			return params, nil, fmt.Errorf("unterminated macro parameter list")
		}
		switch tokens[i].Kind {
		case token.Comma:
			i++
		case token.RParen:
			return params, tokens[i+1:], nil
		default:
			return params, nil, fmt.Errorf("expected ',' or ')' in macro parameter list")
		}
	}
}

/* ----- Expansion ----- */

// expandMacroFromStream expands a macro whose identifier was read from the
// main token stream; function-like macro arguments are pulled from the
// stream as well. A function-like macro name without arguments stays as-is.
func (pp *Preprocessor) expandMacroFromStream(macro *Macro, ident token.Token, expanding map[string]bool) []token.Token {
	if !macro.FunctionLike {
		return pp.expandInvocation(macro, nil, ident, expanding)
	}

	// Look for the argument list; whitespace may separate it.
	var skipped []token.Token
	for {
		tkn := pp.nextToken()
		if tkn.Kind == token.WhiteSpace || tkn.Kind == token.NewLine {
			skipped = append(skipped, tkn)
			continue
		}
		if tkn.Kind != token.LParen {
			pp.pushBack(tkn)
			for i := len(skipped) - 1; i >= 0; i-- {
				pp.pushBack(skipped[i])
			}
			return []token.Token{ident}
		}
		break
	}

	args, ok := pp.collectCallArgsFromStream(ident)
	if !ok {
		return nil
	}
	return pp.expandInvocation(macro, args, ident, expanding)
}

func (pp *Preprocessor) collectCallArgsFromStream(ident token.Token) ([][]token.Token, bool) {
	var args [][]token.Token
	var current []token.Token
	depth := 1

	for {
		tkn := pp.nextToken()
		switch tkn.Kind {
		case token.EndOfStream:
			pp.submitError("unterminated argument list for macro '"+ident.Spell+"'", ident, errors.CodeDirective, true)
			return nil, false
		case token.LParen:
			depth++
			current = append(current, tkn)
		case token.RParen:
			depth--
			if depth == 0 {
				args = append(args, trimSpace(current))
				return args, true
			}
			current = append(current, tkn)
		case token.Comma:
			if depth == 1 {
				args = append(args, trimSpace(current))
				current = nil
			} else {
				current = append(current, tkn)
			}
		case token.WhiteSpace, token.NewLine, token.Comment:
			// Argument-internal whitespace is insignificant.
		default:
			current = append(current, tkn)
		}
	}
}

// expandInvocation substitutes parameters into the macro body, applies the
// '#' stringize and '##' paste operators, and rescans the result for further
// expansion.
func (pp *Preprocessor) expandInvocation(macro *Macro, args [][]token.Token, ident token.Token, expanding map[string]bool) []token.Token {
	if macro.FunctionLike && len(args) != len(macro.Parameters) && !macro.Variadic {
		// A single empty argument satisfies an empty parameter list.
		if !(len(macro.Parameters) == 0 && len(args) == 1 && len(args[0]) == 0) {
			pp.submitError(fmt.Sprintf(
				"macro '%s' expects %d arguments, but got %d",
				macro.Ident, len(macro.Parameters), len(args)), ident, errors.CodeDirective, false)
			return []token.Token{ident}
		}
	}

	argFor := func(i int) []token.Token {
		if i < len(args) {
			return args[i]
		}
		return nil
	}

	// Substitute parameters.
	var substituted []token.Token
	for _, tkn := range macro.Body {
		switch tkn.Kind {
		case token.Ident:
			if idx := macro.paramIndex(tkn.Spell); idx >= 0 {
				substituted = append(substituted, pp.expandTokenList(argFor(idx), expanding)...)
				continue
			}
			substituted = append(substituted, tkn)
		case token.Directive:
			// In a macro body the scanner spells '#param' as a directive
			// token; it stringizes the parameter.
			if idx := macro.paramIndex(tkn.Spell); idx >= 0 {
				substituted = append(substituted, stringize(argFor(idx), tkn))
				continue
			}
			substituted = append(substituted, tkn)
		default:
			substituted = append(substituted, tkn)
		}
	}

	pasted := pasteTokens(substituted)

	expanding[macro.Ident] = true
	result := pp.expandTokenList(pasted, expanding)
	delete(expanding, macro.Ident)

	return result
}

func stringize(tokens []token.Token, at token.Token) token.Token {
	var sb strings.Builder
	sb.WriteByte('"')
	for i, tkn := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tkn.Spell)
	}
	sb.WriteByte('"')
	return token.Token{Kind: token.StringLiteral, Spell: sb.String(), Pos: at.Pos}
}

// pasteTokens applies the '##' operator by concatenating the adjacent token
// spellings into one token.
func pasteTokens(tokens []token.Token) []token.Token {
	var out []token.Token
	for i := 0; i < len(tokens); i++ {
		tkn := tokens[i]
		if tkn.Kind != token.DirectiveConcat {
			out = append(out, tkn)
			continue
		}
		if len(out) == 0 || i+1 >= len(tokens) {
			continue
		}
		lhs := out[len(out)-1]
		rhs := tokens[i+1]
		i++
		out[len(out)-1] = classifyPasted(lhs.Spell+rhs.Spell, lhs)
	}
	return out
}

// classifyPasted re-classifies a pasted spelling.
func classifyPasted(spell string, at token.Token) token.Token {
	kind := token.Misc
	switch {
	case spell == "":
	case isIdentSpelling(spell):
		kind = token.LookupIdent(spell)
	case isIntSpelling(spell):
		kind = token.IntLiteral
	}
	return token.Token{Kind: kind, Spell: spell, Pos: at.Pos}
}

func isIdentSpelling(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		alpha := ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
		digit := '0' <= c && c <= '9'
		if !alpha && !(digit && i > 0) {
			return false
		}
	}
	return len(s) > 0
}

func isIntSpelling(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// expandTokenList rescans a token list, expanding every macro invocation it
// contains. The expanding set stops recursive self-expansion.
func (pp *Preprocessor) expandTokenList(tokens []token.Token, expanding map[string]bool) []token.Token {
	var out []token.Token

	for i := 0; i < len(tokens); i++ {
		tkn := tokens[i]
		if tkn.Kind == token.WhiteSpace || tkn.Kind == token.NewLine {
			continue
		}
		if tkn.Kind != token.Ident {
			out = append(out, tkn)
			continue
		}

		macro, ok := pp.macros[tkn.Spell]
		if !ok || expanding[tkn.Spell] {
			out = append(out, tkn)
			continue
		}

		if !macro.FunctionLike {
			out = append(out, pp.expandInvocation(macro, nil, tkn, expanding)...)
			continue
		}

		// Function-like: the argument list must follow in the list.
		j := i + 1
		for j < len(tokens) && tokens[j].Kind == token.WhiteSpace {
			j++
		}
		if j >= len(tokens) || tokens[j].Kind != token.LParen {
			out = append(out, tkn)
			continue
		}

		args, rest, ok := collectCallArgsFromList(tokens[j+1:])
		if !ok {
			pp.submitError("unterminated argument list for macro '"+tkn.Spell+"'", tkn, errors.CodeDirective, true)
			return out
		}
		out = append(out, pp.expandInvocation(macro, args, tkn, expanding)...)
		i = len(tokens) - len(rest) - 1
	}

	return out
}

func collectCallArgsFromList(tokens []token.Token) (args [][]token.Token, rest []token.Token, ok bool) {
	var current []token.Token
	depth := 1

	for i := 0; i < len(tokens); i++ {
		tkn := tokens[i]
		switch tkn.Kind {
		case token.LParen:
			depth++
			current = append(current, tkn)
		case token.RParen:
			depth--
			if depth == 0 {
				args = append(args, trimSpace(current))
				return args, tokens[i+1:], true
			}
			current = append(current, tkn)
		case token.Comma:
			if depth == 1 {
				args = append(args, trimSpace(current))
				current = nil
			} else {
				current = append(current, tkn)
			}
		case token.WhiteSpace, token.NewLine, token.Comment:
		default:
			current = append(current, tkn)
		}
	}

	return nil, nil, false
}
