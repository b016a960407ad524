// Package preprocessor evaluates HLSL preprocessor directives: macro
// definition and expansion, conditional compilation, includes, and #line
// markers. It wraps the scanner in preprocessor mode and produces the text a
// hand-preprocessed source would scan to, with #line markers preserved for
// the parser.
package preprocessor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"xshade/grammar"
	"xshade/internal/errors"
	"xshade/internal/parser"
	"xshade/internal/source"
	"xshade/token"
)

// IncludeHandler resolves '#include' names to readable streams. isSystem is
// true for '<...>' includes.
type IncludeHandler interface {
	Include(name string, isSystem bool) (io.Reader, error)
}

// FileIncludeHandler resolves includes against the file system, trying the
// search paths in order before the working directory.
type FileIncludeHandler struct {
	SearchPaths []string
}

func (h *FileIncludeHandler) Include(name string, isSystem bool) (io.Reader, error) {
	for _, dir := range h.SearchPaths {
		if f, err := os.Open(filepath.Join(dir, name)); err == nil {
			return f, nil
		}
	}
	return os.Open(name)
}

// condScope is one entry of the conditional-compilation stack.
type condScope struct {
	active    bool // tokens in the current branch are kept
	taken     bool // some branch of this #if chain was already taken
	hasElse   bool
	parentOff bool // an enclosing scope is disabled
}

// Preprocessor evaluates directives over a scanner token stream.
type Preprocessor struct {
	include IncludeHandler
	handler *errors.Handler

	scanner *parser.Scanner
	pending []token.Token // pushed-back tokens, consumed before the scanner

	macros     map[string]*Macro
	macroOrder []string

	condStack []condScope

	out   strings.Builder
	fatal bool
}

// New creates a preprocessor submitting reports to the given log.
func New(include IncludeHandler, log errors.Log) *Preprocessor {
	if include == nil {
		include = &FileIncludeHandler{}
	}
	return &Preprocessor{
		include: include,
		handler: errors.NewHandler(log),
		macros:  make(map[string]*Macro),
	}
}

// ListDefinedMacroIdents returns the identifiers of all macros defined
// during processing, in definition order.
func (pp *Preprocessor) ListDefinedMacroIdents() []string {
	idents := make([]string, 0, len(pp.macroOrder))
	for _, ident := range pp.macroOrder {
		if _, ok := pp.macros[ident]; ok {
			idents = append(idents, ident)
		}
	}
	return idents
}

// Process preprocesses the source and returns the resulting text. ok is
// false when a fatal condition was hit.
func (pp *Preprocessor) Process(src *source.Code) (string, bool) {
	pp.scanner = parser.NewScanner(src, pp.handler)
	pp.processTokens()

	if len(pp.condStack) > 0 {
		pp.submitError("missing #endif for open conditional", token.Token{}, errors.CodeUnbalancedIf, true)
	}

	return pp.out.String(), !pp.fatal && !pp.handler.HasErrors()
}

/* ----- Token stream ----- */

func (pp *Preprocessor) nextToken() token.Token {
	if n := len(pp.pending); n > 0 {
		tkn := pp.pending[n-1]
		pp.pending = pp.pending[:n-1]
		return tkn
	}
	return pp.scanner.NextPP()
}

func (pp *Preprocessor) pushBack(tkn token.Token) {
	pp.pending = append(pp.pending, tkn)
}

/* ----- Diagnostics ----- */

func (pp *Preprocessor) submitError(msg string, tkn token.Token, code errors.Code, fatal bool) {
	severity := errors.Error
	if fatal {
		severity = errors.Fatal
		pp.fatal = true
	}
	area := tkn.Area()
	line := ""
	if pp.scanner != nil {
		area.Pos = pp.scanner.Source().Resolve(area.Pos)
		line = pp.scanner.Source().Line(tkn.Pos.Line)
	}
	pp.handler.SubmitReport(severity, msg, area, line, code)
}

func (pp *Preprocessor) warning(msg string, tkn token.Token) {
	area := tkn.Area()
	line := ""
	if pp.scanner != nil {
		area.Pos = pp.scanner.Source().Resolve(area.Pos)
		line = pp.scanner.Source().Line(tkn.Pos.Line)
	}
	pp.handler.SubmitReport(errors.Warning, msg, area, line, "")
}

/* ----- Main loop ----- */

// active reports whether tokens are currently kept.
func (pp *Preprocessor) active() bool {
	for _, scope := range pp.condStack {
		if !scope.active || scope.parentOff {
			return false
		}
	}
	return true
}

func (pp *Preprocessor) processTokens() {
	for {
		tkn := pp.nextToken()
		if tkn.Kind == token.EndOfStream {
			return
		}
		if pp.fatal {
			return
		}

		switch tkn.Kind {
		case token.Directive:
			pp.processDirective(tkn)

		case token.NewLine:
			// Newlines always pass through so line numbers stay in sync.
			pp.out.WriteString("\n")

		case token.Ident:
			if !pp.active() {
				continue
			}
			if macro, ok := pp.macros[tkn.Spell]; ok {
				pp.writeTokens(pp.expandMacroFromStream(macro, tkn, map[string]bool{}))
			} else {
				pp.out.WriteString(tkn.Spell)
			}

		default:
			if !pp.active() {
				continue
			}
			pp.out.WriteString(tkn.Spell)
		}
	}
}

// writeTokens appends expanded tokens to the output, space separated so that
// re-scanning yields the same sequence.
func (pp *Preprocessor) writeTokens(tokens []token.Token) {
	for i, tkn := range tokens {
		if i > 0 {
			pp.out.WriteString(" ")
		}
		pp.out.WriteString(tkn.Spell)
	}
}

/* ----- Directive handling ----- */

// collectLine gathers the remaining tokens of a directive line. Escaped
// line breaks continue the line; the swallowed newlines are returned so the
// caller can keep the output line count in sync.
func (pp *Preprocessor) collectLine() (tokens []token.Token, newlines int) {
	for {
		tkn := pp.nextToken()
		switch tkn.Kind {
		case token.NewLine, token.EndOfStream:
			return tokens, newlines + 1
		case token.LineBreak:
			next := pp.nextToken()
			if next.Kind == token.NewLine {
				newlines++
			} else {
				pp.pushBack(next)
			}
		case token.Comment:
			// Comments inside directives are discarded.
		default:
			tokens = append(tokens, tkn)
		}
	}
}

func trimSpace(tokens []token.Token) []token.Token {
	out := tokens[:0:0]
	for _, tkn := range tokens {
		if tkn.Kind != token.WhiteSpace {
			out = append(out, tkn)
		}
	}
	return out
}

func (pp *Preprocessor) processDirective(directive token.Token) {
	switch directive.Spell {
	case "define":
		pp.processDefine(directive)
	case "undef":
		pp.processUndef(directive)
	case "if":
		pp.processIf(directive, false, false)
	case "ifdef":
		pp.processIf(directive, true, false)
	case "ifndef":
		pp.processIf(directive, true, true)
	case "elif":
		pp.processElif(directive)
	case "else":
		pp.processElse(directive)
	case "endif":
		pp.processEndif(directive)
	case "include":
		pp.processInclude(directive)
	case "line":
		pp.processLine(directive)
	case "pragma":
		_, newlines := pp.collectLine()
		if pp.active() {
			pp.warning("unknown pragma is ignored", directive)
		}
		pp.writeNewlines(newlines)
	case "error":
		line, newlines := pp.collectLine()
		if pp.active() {
			var sb strings.Builder
			for _, tkn := range line {
				sb.WriteString(tkn.Spell)
			}
			pp.submitError(strings.TrimSpace(sb.String()), directive, errors.CodeErrorDirective, true)
		}
		pp.writeNewlines(newlines)
	default:
		_, newlines := pp.collectLine()
		if pp.active() {
			pp.submitError("unknown preprocessor directive: '#"+directive.Spell+"'", directive, errors.CodeDirective, true)
		}
		pp.writeNewlines(newlines)
	}
}

func (pp *Preprocessor) writeNewlines(n int) {
	for i := 0; i < n; i++ {
		pp.out.WriteString("\n")
	}
}

func (pp *Preprocessor) processDefine(directive token.Token) {
	line, newlines := pp.collectLine()
	defer pp.writeNewlines(newlines)

	if !pp.active() {
		return
	}

	i := 0
	for i < len(line) && line[i].Kind == token.WhiteSpace {
		i++
	}
	if i >= len(line) || line[i].Kind != token.Ident {
		pp.submitError("expected identifier after #define", directive, errors.CodeDirective, true)
		return
	}
	identTkn := line[i]
	i++

	macro := &Macro{Ident: identTkn.Spell}

	// A '(' immediately after the identifier starts a parameter list.
	if i < len(line) && line[i].Kind == token.LParen &&
		line[i].Pos.Offset == identTkn.Pos.Offset+len(identTkn.Spell) {
		i++
		macro.FunctionLike = true
		params, rest, err := parseMacroParameters(line[i:])
		if err != nil {
			pp.submitError(err.Error(), identTkn, errors.CodeDirective, true)
			return
		}
		macro.Parameters = params.names
		macro.Variadic = params.variadic
		i = len(line) - len(rest)
	}

	macro.Body = trimSpace(line[i:])

	if existing, ok := pp.macros[macro.Ident]; ok {
		if existing.FunctionLike && macro.FunctionLike && len(existing.Parameters) != len(macro.Parameters) {
			pp.submitError(
				"redefinition of function-like macro '"+macro.Ident+"' with different number of parameters",
				identTkn, errors.CodeMacroRedefinition, true)
			return
		}
		if !existing.Equal(macro) {
			pp.warning("redefinition of macro '"+macro.Ident+"'", identTkn)
		}
	} else {
		pp.macroOrder = append(pp.macroOrder, macro.Ident)
	}

	pp.macros[macro.Ident] = macro
}

func (pp *Preprocessor) processUndef(directive token.Token) {
	line, newlines := pp.collectLine()
	defer pp.writeNewlines(newlines)

	if !pp.active() {
		return
	}

	line = trimSpace(line)
	if len(line) != 1 || line[0].Kind != token.Ident {
		pp.submitError("expected identifier after #undef", directive, errors.CodeDirective, true)
		return
	}
	delete(pp.macros, line[0].Spell)
}

func (pp *Preprocessor) processIf(directive token.Token, defCheck, negate bool) {
	line, newlines := pp.collectLine()
	defer pp.writeNewlines(newlines)

	parentActive := pp.active()

	scope := condScope{parentOff: !parentActive}
	if parentActive {
		var value bool
		if defCheck {
			tokens := trimSpace(line)
			if len(tokens) != 1 || tokens[0].Kind != token.Ident {
				pp.submitError("expected identifier after #ifdef/#ifndef", directive, errors.CodeDirective, true)
				return
			}
			_, value = pp.macros[tokens[0].Spell]
			if negate {
				value = !value
			}
		} else {
			value = pp.evaluateCondition(line, directive)
		}
		scope.active = value
		scope.taken = value
	}

	pp.condStack = append(pp.condStack, scope)
}

func (pp *Preprocessor) processElif(directive token.Token) {
	line, newlines := pp.collectLine()
	defer pp.writeNewlines(newlines)

	if len(pp.condStack) == 0 {
		pp.submitError("#elif without matching #if", directive, errors.CodeUnbalancedIf, true)
		return
	}
	scope := &pp.condStack[len(pp.condStack)-1]
	if scope.hasElse {
		pp.submitError("#elif after #else", directive, errors.CodeUnbalancedIf, true)
		return
	}
	if scope.parentOff {
		return
	}
	if scope.taken {
		scope.active = false
		return
	}
	value := pp.evaluateCondition(line, directive)
	scope.active = value
	scope.taken = value
}

func (pp *Preprocessor) processElse(directive token.Token) {
	_, newlines := pp.collectLine()
	defer pp.writeNewlines(newlines)

	if len(pp.condStack) == 0 {
		pp.submitError("#else without matching #if", directive, errors.CodeUnbalancedIf, true)
		return
	}
	scope := &pp.condStack[len(pp.condStack)-1]
	if scope.hasElse {
		pp.submitError("multiple #else for one #if", directive, errors.CodeUnbalancedIf, true)
		return
	}
	scope.hasElse = true
	if scope.parentOff {
		return
	}
	scope.active = !scope.taken
	scope.taken = true
}

func (pp *Preprocessor) processEndif(directive token.Token) {
	_, newlines := pp.collectLine()
	defer pp.writeNewlines(newlines)

	if len(pp.condStack) == 0 {
		pp.submitError("#endif without matching #if", directive, errors.CodeUnbalancedIf, true)
		return
	}
	pp.condStack = pp.condStack[:len(pp.condStack)-1]
}

// evaluateCondition folds a directive condition: 'defined' operators are
// substituted, macros expanded, and the result parsed with the condition
// grammar, which shares the constant-expression operator semantics.
func (pp *Preprocessor) evaluateCondition(line []token.Token, directive token.Token) bool {
	substituted, err := pp.substituteDefined(trimSpace(line))
	if err != nil {
		pp.submitError(err.Error(), directive, errors.CodeDirective, true)
		return false
	}

	expanded := pp.expandTokenList(substituted, map[string]bool{})

	var sb strings.Builder
	for i, tkn := range expanded {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(tkn.Spell)
	}

	cond, err := grammar.ParseCondition(pp.scanner.Source().Filename(), sb.String())
	if err != nil {
		pp.submitError("malformed condition in #if directive: "+err.Error(), directive, errors.CodeDirective, true)
		return false
	}

	value, err := cond.Evaluate()
	if err != nil {
		pp.submitError(err.Error(), directive, errors.CodeDirective, true)
		return false
	}

	return value.ToBool()
}

// substituteDefined rewrites 'defined(X)' and 'defined X' to 1 or 0 before
// macro expansion.
func (pp *Preprocessor) substituteDefined(tokens []token.Token) ([]token.Token, error) {
	var out []token.Token
	for i := 0; i < len(tokens); i++ {
		tkn := tokens[i]
		if tkn.Kind != token.Ident || tkn.Spell != "defined" {
			out = append(out, tkn)
			continue
		}

		i++
		bracketed := false
		if i < len(tokens) && tokens[i].Kind == token.LParen {
			bracketed = true
			i++
		}
		if i >= len(tokens) || tokens[i].Kind != token.Ident {
			return nil, fmt.Errorf("expected identifier after 'defined' operator")
		}
		_, defined := pp.macros[tokens[i].Spell]
		if bracketed {
			i++
			if i >= len(tokens) || tokens[i].Kind != token.RParen {
				return nil, fmt.Errorf("expected ')' after 'defined' operator")
			}
		}

		value := "0"
		if defined {
			value = "1"
		}
		out = append(out, token.Token{Kind: token.IntLiteral, Spell: value, Pos: tkn.Pos})
	}
	return out, nil
}

func (pp *Preprocessor) processInclude(directive token.Token) {
	line, newlines := pp.collectLine()

	if !pp.active() {
		pp.writeNewlines(newlines)
		return
	}

	name, isSystem, err := parseIncludeName(trimSpace(line))
	if err != nil {
		pp.submitError(err.Error(), directive, errors.CodeDirective, true)
		pp.writeNewlines(newlines)
		return
	}

	reader, err := pp.include.Include(name, isSystem)
	if err != nil {
		pp.submitError("failed to include file: \""+name+"\"", directive, errors.CodeMissingInclude, true)
		pp.writeNewlines(newlines)
		return
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}

	includedSrc, err := source.NewCode(name, reader)
	if err != nil {
		pp.submitError("failed to read include file: \""+name+"\"", directive, errors.CodeMissingInclude, true)
		pp.writeNewlines(newlines)
		return
	}

	// Nest a sub-scanner over the included source, bracketed by #line
	// markers so diagnostics keep pointing at the right file.
	outerScanner := pp.scanner
	pp.out.WriteString("#line 1 \"" + name + "\"\n")
	pp.scanner = parser.NewScanner(includedSrc, pp.handler)
	pp.processTokens()
	pp.scanner = outerScanner
	pp.out.WriteString("\n#line " + strconv.Itoa(directive.Pos.Line+1) + " \"" + outerScanner.Source().Filename() + "\"\n")

	pp.writeNewlines(newlines - 1)
}

// parseIncludeName extracts the include target from '"name"' or '<name>'.
func parseIncludeName(tokens []token.Token) (name string, isSystem bool, err error) {
	if len(tokens) == 1 && tokens[0].Kind == token.StringLiteral {
		return tokens[0].SpellContent(), false, nil
	}
	if len(tokens) >= 3 && tokens[0].Spell == "<" && tokens[len(tokens)-1].Spell == ">" {
		var sb strings.Builder
		for _, tkn := range tokens[1 : len(tokens)-1] {
			sb.WriteString(tkn.Spell)
		}
		return sb.String(), true, nil
	}
	return "", false, fmt.Errorf("expected file name after #include")
}

func (pp *Preprocessor) processLine(directive token.Token) {
	line, newlines := pp.collectLine()

	if !pp.active() {
		pp.writeNewlines(newlines)
		return
	}

	// '#line' passes through for the parser, normalized to one line.
	tokens := trimSpace(line)
	if len(tokens) == 0 || tokens[0].Kind != token.IntLiteral {
		pp.submitError("expected line number after #line", directive, errors.CodeDirective, true)
		pp.writeNewlines(newlines)
		return
	}

	pp.out.WriteString("#line " + tokens[0].Spell)
	if len(tokens) > 1 && tokens[1].Kind == token.StringLiteral {
		pp.out.WriteString(" " + tokens[1].Spell)
	}
	pp.writeNewlines(newlines)
}
