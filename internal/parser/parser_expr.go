package parser

import (
	"xshade/internal/ast"
	"xshade/token"
)

// binaryPrecedence orders binary operators; higher binds tighter.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
}

func (p *Parser) parseExpr(allowComma bool) ast.Expr {
	return p.parseExprWithInit(allowComma, nil)
}

func (p *Parser) parseExprWithInit(allowComma bool, initExpr ast.Expr) ast.Expr {
	var expr ast.Expr
	if initExpr != nil {
		expr = p.parseGenericExprFrom(initExpr)
	} else {
		expr = p.parseGenericExpr()
	}

	// Optional post-unary expression, e.g. 'x++'.
	if p.isSpell(token.UnaryOp, "++") || p.isSpell(token.UnaryOp, "--") {
		post := &ast.PostUnaryExpr{Expr: expr}
		post.SetArea(expr.NodeArea())
		post.Op = ast.StringToUnaryOp(p.acceptIt().Spell)
		expr = post
	}

	// Optional list expression.
	if allowComma && p.is(token.Comma) {
		p.acceptIt()
		list := &ast.ListExpr{First: expr}
		list.SetArea(expr.NodeArea())
		list.Next = p.parseExpr(true)
		return list
	}

	return expr
}

// parseGenericExpr parses a ternary or binary expression.
func (p *Parser) parseGenericExpr() ast.Expr {
	return p.parseGenericExprFrom(p.parseBinaryExpr(0))
}

// parseGenericExprFrom continues a ternary or binary expression after its
// first primary expression was already parsed.
func (p *Parser) parseGenericExprFrom(initExpr ast.Expr) ast.Expr {
	cond := p.parseBinaryExprRest(initExpr, 0)

	if !p.is(token.TernaryOp) {
		return cond
	}

	ternary := &ast.TernaryExpr{Cond: cond}
	ternary.SetArea(cond.NodeArea())
	p.acceptIt()
	ternary.Then = p.parseGenericExpr()
	p.accept(token.Colon)
	ternary.Else = p.parseGenericExpr()

	return ternary
}

// parseBinaryExpr is a precedence climber over the binary operators. With an
// active template state, '<' and '>' close a template argument list instead.
func (p *Parser) parseBinaryExpr(minPrec int) ast.Expr {
	return p.parseBinaryExprRest(p.parsePrimaryExpr(), minPrec)
}

func (p *Parser) parseBinaryExprRest(lhs ast.Expr, minPrec int) ast.Expr {
	for {
		if !p.is(token.BinaryOp) {
			break
		}
		spell := p.tkn.Spell
		if p.activeParsingState().ActiveTemplate && (spell == "<" || spell == ">") {
			break
		}
		prec, ok := binaryPrecedence[spell]
		if !ok || prec < minPrec {
			break
		}

		p.acceptIt()
		rhs := p.parseBinaryExpr(prec + 1)

		binary := &ast.BinaryExpr{
			Lhs: lhs,
			Op:  ast.StringToBinaryOp(spell),
			Rhs: rhs,
		}
		binary.SetArea(lhs.NodeArea())
		lhs = binary
	}

	return lhs
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	switch {
	case p.isLiteral():
		return p.parseLiteralOrSuffixExpr()
	case p.isDataType() || p.is(token.Struct):
		return p.parseTypeNameOrFunctionCallExpr()
	case p.is(token.UnaryOp) || p.isArithmeticUnary():
		return p.parseUnaryExpr()
	case p.is(token.LParen):
		return p.parseBracketOrCastExpr()
	case p.is(token.LBrace):
		return p.parseInitializerExpr()
	case p.is(token.Ident):
		return p.parseVarAccessOrFunctionCallExpr()
	}
	p.errorUnexpected("primary expression")
	return nil
}

func (p *Parser) parseLiteralOrSuffixExpr() ast.Expr {
	var expr ast.Expr = p.parseLiteralExpr()

	// Optional suffix directly on the literal, e.g. the swizzle in '1.0f.xx';
	// '(1).x' parses through the bracket expression instead.
	if p.is(token.Dot) {
		expr = p.parseSuffixExpr(expr)
	}

	return expr
}

func (p *Parser) parseLiteralExpr() *ast.LiteralExpr {
	if !p.isLiteral() {
		p.errorUnexpected("literal expression")
	}

	literal := &ast.LiteralExpr{}
	literal.SetArea(p.area(p.tkn))

	switch p.tkn.Kind {
	case token.BoolLiteral:
		literal.DataType = ast.DataBool
	case token.IntLiteral:
		literal.DataType = ast.DataInt
	case token.FloatLiteral:
		literal.DataType = ast.DataFloat
	case token.StringLiteral:
		literal.DataType = ast.DataString
	}
	literal.Value = p.acceptIt().Spell

	return literal
}

func (p *Parser) parseTypeNameOrFunctionCallExpr() ast.Expr {
	if !p.isDataType() && !p.is(token.Struct) {
		p.errorUnexpected("type name or function call expression")
	}

	startTkn := p.tkn
	typeDenoter := p.parseTypeDenoter(false)

	if p.is(token.LParen) {
		return p.parseFunctionCallExpr(nil, typeDenoter)
	}

	typeName := &ast.TypeNameExpr{TypeDenoter: typeDenoter}
	typeName.SetArea(p.area(startTkn))
	return typeName
}

func (p *Parser) parseUnaryExpr() *ast.UnaryExpr {
	if !p.is(token.UnaryOp) && !p.isArithmeticUnary() {
		p.errorUnexpected("unary expression operator")
	}

	unary := &ast.UnaryExpr{}
	unary.SetArea(p.area(p.tkn))
	unary.Op = ast.StringToUnaryOp(p.acceptIt().Spell)
	unary.Expr = p.parsePrimaryExpr()

	return unary
}

// makeToTypeNameIfLhsOfCastExpr decides whether a bracketed expression is the
// left-hand side of a cast. Type name expressions always are; a bare variable
// access is one exactly when its identifier is a registered type name.
func (p *Parser) makeToTypeNameIfLhsOfCastExpr(expr ast.Expr) *ast.TypeNameExpr {
	if typeName, ok := expr.(*ast.TypeNameExpr); ok {
		return typeName
	}

	if access, ok := expr.(*ast.VarAccessExpr); ok {
		if access.VarIdent.Next == nil && len(access.VarIdent.ArrayIndices) == 0 &&
			access.AssignOp == ast.AssignNone && p.isRegisteredTypeName(access.VarIdent.Ident) {
			typeName := &ast.TypeNameExpr{
				TypeDenoter: &ast.AliasTypeDenoter{Ident: access.VarIdent.Ident},
			}
			typeName.SetArea(access.NodeArea())
			return typeName
		}
	}

	return nil
}

// parseBracketOrCastExpr parses '(' expr ')' and rewrites it into a cast
// when the inner expression names a type and a primary expression follows;
// HLSL cast expressions are not context free.
func (p *Parser) parseBracketOrCastExpr() ast.Expr {
	openTkn := p.tkn
	p.accept(token.LParen)

	var expr ast.Expr
	if p.activeParsingState().ActiveTemplate {
		// Inside brackets '<' and '>' compare again, even within a template.
		state := p.activeParsingState()
		state.ActiveTemplate = false
		p.pushParsingState(state)
		expr = p.parseExpr(true)
		p.popParsingState()
	} else {
		expr = p.parseExpr(true)
	}

	p.accept(token.RParen)

	if typeName := p.makeToTypeNameIfLhsOfCastExpr(expr); typeName != nil && p.isPrimaryExprStart() {
		cast := &ast.CastExpr{TypeExpr: typeName}
		cast.SetArea(p.area(openTkn))
		cast.Expr = p.parsePrimaryExpr()
		return cast
	}

	bracket := &ast.BracketExpr{Expr: expr}
	bracket.SetArea(p.area(openTkn))

	var result ast.Expr = bracket
	if p.is(token.LBracket) {
		result = p.parseArrayAccessExpr(result)
	}
	if p.is(token.Dot) {
		result = p.parseSuffixExpr(result)
	}

	return result
}

func (p *Parser) parseSuffixExpr(expr ast.Expr) *ast.SuffixExpr {
	suffix := &ast.SuffixExpr{Expr: expr}
	suffix.SetArea(expr.NodeArea())

	p.accept(token.Dot)
	suffix.VarIdent = p.parseVarIdent()

	return suffix
}

func (p *Parser) parseArrayAccessExpr(expr ast.Expr) *ast.ArrayAccessExpr {
	access := &ast.ArrayAccessExpr{Expr: expr}
	access.SetArea(expr.NodeArea())
	access.ArrayIndices = p.parseArrayDimensionList(false)
	return access
}

func (p *Parser) parseVarAccessOrFunctionCallExpr() ast.Expr {
	varIdent := p.parseVarIdent()
	if p.is(token.LParen) {
		return p.parseFunctionCallExpr(varIdent, nil)
	}
	return p.parseVarAccessExpr(varIdent)
}

func (p *Parser) parseVarAccessExpr(varIdent *ast.VarIdent) *ast.VarAccessExpr {
	access := &ast.VarAccessExpr{}

	if varIdent == nil {
		varIdent = p.parseVarIdent()
	}
	access.VarIdent = varIdent
	access.SetArea(varIdent.NodeArea())

	if p.is(token.AssignOp) {
		access.AssignOp = ast.StringToAssignOp(p.acceptIt().Spell)
		access.AssignExpr = p.parseExpr(false)
	}

	return access
}

func (p *Parser) parseFunctionCallExpr(varIdent *ast.VarIdent, typeDenoter ast.TypeDenoter) ast.Expr {
	callExpr := &ast.FunctionCallExpr{}

	if typeDenoter != nil {
		callExpr.Call = p.parseFunctionCallWithType(typeDenoter)
	} else {
		callExpr.Call = p.parseFunctionCall(varIdent)
	}
	callExpr.SetArea(callExpr.Call.NodeArea())

	var expr ast.Expr = callExpr
	if p.is(token.LBracket) {
		expr = p.parseArrayAccessExpr(expr)
	}
	if p.is(token.Dot) {
		expr = p.parseSuffixExpr(expr)
	}

	return expr
}

func (p *Parser) parseFunctionCall(varIdent *ast.VarIdent) *ast.FunctionCall {
	call := &ast.FunctionCall{}

	if varIdent == nil {
		if p.isDataType() {
			varIdent = &ast.VarIdent{}
			varIdent.SetArea(p.area(p.tkn))
			varIdent.Ident = p.acceptIt().Spell
		} else {
			varIdent = p.parseVarIdent()
		}
	}
	call.VarIdent = varIdent
	call.SetArea(varIdent.NodeArea())

	call.Arguments = p.parseArgumentList()

	return call
}

func (p *Parser) parseFunctionCallWithType(typeDenoter ast.TypeDenoter) *ast.FunctionCall {
	call := &ast.FunctionCall{TypeDenoter: typeDenoter}
	call.SetArea(p.area(p.tkn))
	call.Arguments = p.parseArgumentList()
	return call
}

func (p *Parser) parseArgumentList() []ast.Expr {
	p.accept(token.LParen)
	var args []ast.Expr
	if !p.is(token.RParen) {
		for {
			args = append(args, p.parseExpr(false))
			if p.is(token.Comma) {
				p.acceptIt()
			} else {
				break
			}
		}
	}
	p.accept(token.RParen)
	return args
}

func (p *Parser) parseInitializerExpr() *ast.InitializerExpr {
	initializer := &ast.InitializerExpr{}
	initializer.SetArea(p.area(p.tkn))

	p.accept(token.LBrace)
	if !p.is(token.RBrace) {
		for {
			initializer.Exprs = append(initializer.Exprs, p.parseExpr(false))
			if p.is(token.Comma) {
				p.acceptIt()
				// A trailing comma is allowed before the closing brace.
				if p.is(token.RBrace) {
					break
				}
			} else {
				break
			}
		}
	}
	p.accept(token.RBrace)

	return initializer
}

func (p *Parser) parseVarIdent() *ast.VarIdent {
	varIdent := &ast.VarIdent{}
	varIdent.SetArea(p.area(p.tkn))

	varIdent.Ident = p.parseIdent()
	varIdent.ArrayIndices = p.parseArrayDimensionList(false)

	if p.is(token.Dot) {
		p.acceptIt()
		varIdent.Next = p.parseVarIdent()
	}

	return varIdent
}
