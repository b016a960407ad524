package parser

import (
	"fmt"
	"strconv"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/source"
	"xshade/token"
)

/*
The HLSL parser is not fully context free, because cast expressions are not.
In

	int X = 0;
	(X) - (1);

"(X) - (1)" is a binary expression, while after

	typedef int X;

the same spelling is a cast of the unary expression "-(1)". Cast expressions
can therefore only be parsed when the parser knows every type name valid in
the current scope, which is what the scoped type-name table is for.
*/

// ParsingState is pushed around template argument lists; with an active
// template, '<' and '>' close the argument list instead of comparing.
type ParsingState struct {
	ActiveTemplate bool
}

// Parser is the recursive-descent HLSL parser.
type Parser struct {
	scanner *Scanner
	handler *errors.Handler

	tkn     token.Token // current lookahead
	prevTkn token.Token

	typeNames    []map[string]bool // scoped type-name table
	stateStack   []ParsingState
	localScope   bool // inside a function body; semantics are not allowed
}

// abortParse unwinds the parse of one statement (or the whole unit when the
// scanner hit a fatal condition); the report was already submitted.
type abortParse struct{}

// NewParser creates a parser submitting reports to the given log.
func NewParser(log errors.Log) *Parser {
	return &Parser{handler: errors.NewHandler(log)}
}

// ParseSource parses a preprocessed translation unit into a program AST.
// The result is nil when parsing failed beyond recovery.
func (p *Parser) ParseSource(src *source.Code) *ast.Program {
	p.scanner = NewScanner(src, p.handler)
	p.tkn = p.scanner.Next()
	p.skipDirectives()

	prog := p.parseProgram()
	if p.handler.HasErrors() {
		return nil
	}
	return prog
}

// NumErrors returns the number of errors submitted while parsing.
func (p *Parser) NumErrors() int { return p.handler.NumErrors() }

/* ----- Token helpers ----- */

func (p *Parser) is(kind token.Kind) bool { return p.tkn.Kind == kind }

func (p *Parser) isSpell(kind token.Kind, spell string) bool {
	return p.tkn.Kind == kind && p.tkn.Spell == spell
}

// acceptIt consumes the current token unconditionally and post-processes
// '#line' directives left by the preprocessor.
func (p *Parser) acceptIt() token.Token {
	p.prevTkn = p.tkn
	p.tkn = p.scanner.Next()
	p.skipDirectives()
	return p.prevTkn
}

// skipDirectives consumes '#line' markers sitting at the lookahead.
func (p *Parser) skipDirectives() {
	for p.tkn.Kind == token.Directive {
		directive := p.tkn
		p.tkn = p.scanner.Next()
		p.processDirective(directive)
	}
}

// accept consumes a token of the required kind or reports and unwinds.
func (p *Parser) accept(kind token.Kind) token.Token {
	if !p.is(kind) {
		p.errorUnexpected(kind.String())
	}
	return p.acceptIt()
}

func (p *Parser) acceptSpell(kind token.Kind, spell string) token.Token {
	if !p.isSpell(kind, spell) {
		p.errorUnexpected("'" + spell + "'")
	}
	return p.acceptIt()
}

func (p *Parser) semi() { p.accept(token.Semicolon) }

// processDirective handles directives that survive preprocessing; only
// '#line' is legal here.
func (p *Parser) processDirective(directive token.Token) {
	if directive.Spell != "line" {
		p.errorAt("only '#line' directives are allowed after pre-processing", directive)
		return
	}

	lineNo := 0
	filename := ""

	if p.tkn.Kind == token.IntLiteral {
		lineNo, _ = strconv.Atoi(p.tkn.Spell)
		p.prevTkn, p.tkn = p.tkn, p.scanner.Next()
	} else {
		p.errorAt("expected integer literal in '#line' directive", p.tkn)
		return
	}

	if p.tkn.Kind == token.StringLiteral {
		filename = p.tkn.SpellContent()
		p.prevTkn, p.tkn = p.tkn, p.scanner.Next()
	}

	currentLine := directive.Pos.Line
	p.scanner.Source().ShiftOrigin(currentLine+1, lineNo-currentLine-1, filename)
}

/* ----- Diagnostics ----- */

func (p *Parser) submit(severity errors.Severity, msg string, tkn token.Token, code errors.Code) {
	area := tkn.Area()
	area.Pos = p.scanner.Source().Resolve(area.Pos)
	p.handler.SubmitReport(severity, msg, area, p.scanner.Source().Line(tkn.Pos.Line), code)
}

func (p *Parser) error(msg string) {
	p.submit(errors.Error, msg, p.tkn, errors.CodeSyntax)
	panic(abortParse{})
}

func (p *Parser) errorAt(msg string, tkn token.Token) {
	p.submit(errors.Error, msg, tkn, errors.CodeSyntax)
}

func (p *Parser) errorNoAbort(msg string, code errors.Code) {
	p.submit(errors.Error, msg, p.tkn, code)
}

func (p *Parser) errorUnexpected(expected string) {
	if expected != "" {
		p.error(fmt.Sprintf("unexpected token %s (expected %s)", p.tkn.Kind, expected))
	} else {
		p.error(fmt.Sprintf("unexpected token %s", p.tkn.Kind))
	}
}

func (p *Parser) warning(msg string) {
	p.submit(errors.Warning, msg, p.tkn, "")
}

func (p *Parser) warningAt(msg string, tkn token.Token) {
	p.submit(errors.Warning, msg, tkn, "")
}

// synchronize skips to the next statement boundary after a parse error.
func (p *Parser) synchronize() {
	depth := 0
	for !p.is(token.EndOfStream) {
		switch p.tkn.Kind {
		case token.Semicolon:
			if depth == 0 {
				p.acceptIt()
				return
			}
		case token.LBrace:
			depth++
		case token.RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.prevTkn, p.tkn = p.tkn, p.scanner.Next()
	}
}

/* ----- Type-name table ----- */

func (p *Parser) openScope() {
	p.typeNames = append(p.typeNames, make(map[string]bool))
}

func (p *Parser) closeScope() {
	p.typeNames = p.typeNames[:len(p.typeNames)-1]
}

func (p *Parser) registerTypeName(ident string) {
	p.typeNames[len(p.typeNames)-1][ident] = true
}

func (p *Parser) isRegisteredTypeName(ident string) bool {
	for i := len(p.typeNames) - 1; i >= 0; i-- {
		if p.typeNames[i][ident] {
			return true
		}
	}
	return false
}

/* ----- Parsing-state stack ----- */

func (p *Parser) pushParsingState(state ParsingState) {
	p.stateStack = append(p.stateStack, state)
}

func (p *Parser) popParsingState() {
	p.stateStack = p.stateStack[:len(p.stateStack)-1]
}

func (p *Parser) activeParsingState() ParsingState {
	if len(p.stateStack) == 0 {
		return ParsingState{}
	}
	return p.stateStack[len(p.stateStack)-1]
}

/* ----- Area helpers ----- */

func (p *Parser) area(tkn token.Token) source.Area {
	a := tkn.Area()
	a.Pos = p.scanner.Source().Resolve(a.Pos)
	return a
}

/* ----- Token classification ----- */

func (p *Parser) isDataType() bool {
	return p.isBaseDataType() ||
		p.is(token.Vector) || p.is(token.Matrix) ||
		p.is(token.Texture) || p.is(token.Sampler) || p.is(token.SamplerState)
}

func (p *Parser) isBaseDataType() bool {
	return p.is(token.ScalarType) || p.is(token.VectorType) ||
		p.is(token.MatrixType) || p.is(token.StringType)
}

func (p *Parser) isLiteral() bool {
	return p.is(token.BoolLiteral) || p.is(token.IntLiteral) ||
		p.is(token.FloatLiteral) || p.is(token.StringLiteral)
}

func (p *Parser) isArithmeticUnary() bool {
	return p.isSpell(token.BinaryOp, "-") || p.isSpell(token.BinaryOp, "+")
}

// isPrimaryExprStart reports whether the current token can begin a primary
// expression; the cast-disambiguation rule requires one after the bracket.
func (p *Parser) isPrimaryExprStart() bool {
	if p.isLiteral() || p.isDataType() || p.isArithmeticUnary() {
		return true
	}
	switch p.tkn.Kind {
	case token.Ident, token.UnaryOp, token.LParen, token.LBrace, token.Struct:
		return true
	}
	return false
}

/* ----- Program ----- */

// preDefinedTypeAliases are built-in typedefs every program starts with so
// they take part in cast disambiguation.
var preDefinedTypeAliases = []struct {
	DataType ast.DataType
	Ident    string
}{
	{ast.DataInt, "DWORD"},
	{ast.DataFloat, "FLOAT"},
	{ast.VectorDataType(ast.ScalarFloat, 4), "VECTOR"},
	{ast.MatrixDataType(ast.ScalarFloat, 4, 4), "MATRIX"},
	{ast.DataString, "STRING"},
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	prog.SetArea(p.area(p.tkn))

	p.openScope()
	defer p.closeScope()

	for _, alias := range preDefinedTypeAliases {
		prog.GlobalStmts = append(prog.GlobalStmts, p.makeBaseTypeAlias(alias.DataType, alias.Ident))
	}

	for {
		// Ignore null statements and techniques between global declarations.
		for p.is(token.Semicolon) || p.is(token.Technique) {
			if p.is(token.Technique) {
				p.parseAndIgnoreTechnique()
			} else {
				p.acceptIt()
			}
		}

		if p.is(token.EndOfStream) {
			break
		}

		if stmt := p.parseGlobalStmtSafe(); stmt != nil {
			prog.GlobalStmts = append(prog.GlobalStmts, stmt)
		}
	}

	return prog
}

// parseGlobalStmtSafe recovers at statement boundaries.
func (p *Parser) parseGlobalStmtSafe() (stmt ast.Stmt) {
	startOffset := p.tkn.Pos.Offset
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(abortParse); !ok {
				panic(r)
			}
			p.synchronize()
			// Guarantee forward progress on stray tokens at global scope.
			if p.tkn.Pos.Offset == startOffset && !p.is(token.EndOfStream) {
				p.prevTkn, p.tkn = p.tkn, p.scanner.Next()
			}
			stmt = nil
		}
	}()

	comment := p.scanner.TakeComment()
	stmt = p.parseGlobalStmt()
	if stmt != nil {
		stmt.SetComment(comment)
	}
	return stmt
}

func (p *Parser) makeBaseTypeAlias(dataType ast.DataType, ident string) *ast.AliasDeclStmt {
	stmt := &ast.AliasDeclStmt{}
	decl := &ast.AliasDecl{
		Ident:       ident,
		TypeDenoter: &ast.BaseTypeDenoter{DataType: dataType},
	}
	decl.DeclStmtRef = stmt
	stmt.AliasDecls = []*ast.AliasDecl{decl}
	p.registerTypeName(ident)
	return stmt
}

/* ----- Shared small productions ----- */

func (p *Parser) parseIdent() string {
	return p.accept(token.Ident).Spell
}

// parseAndIgnoreTechnique consumes a whole technique block by brace
// matching.
func (p *Parser) parseAndIgnoreTechnique() {
	p.accept(token.Technique)
	p.warning("techniques are ignored")

	for !p.is(token.LBrace) {
		if p.is(token.EndOfStream) {
			p.error("missing technique block")
		}
		p.acceptIt()
	}

	depth := 0
	open := p.accept(token.LBrace)
	depth++
	for depth > 0 {
		switch p.tkn.Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.EndOfStream:
			p.errorAt("missing closing brace '}' for open code block", open)
			return
		}
		p.acceptIt()
	}
}

/* ----- Constant expression helpers ----- */

func (p *Parser) parseAndEvaluateConstExpr() ast.Variant {
	tkn := p.tkn
	expr := p.parseExpr(false)

	ev := ast.NewConstExprEvaluator(nil)
	val, err := ev.EvaluateExpr(expr)
	if err != nil {
		p.errorAt(err.Error(), tkn)
		return ast.Variant{}
	}
	return val
}

func (p *Parser) parseAndEvaluateConstExprInt() int {
	tkn := p.tkn
	val := p.parseAndEvaluateConstExpr()
	if val.Type() != ast.VariantInt {
		p.errorAt("expected integral constant expression", tkn)
		return 0
	}
	return int(val.ToInt())
}

func (p *Parser) parseAndEvaluateVectorDimension() int {
	tkn := p.tkn
	dim := p.parseAndEvaluateConstExprInt()
	if dim < 1 || dim > 4 {
		p.errorAt("vector and matrix dimensions must be between 1 and 4", tkn)
		return 4
	}
	return dim
}
