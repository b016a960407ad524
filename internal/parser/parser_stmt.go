package parser

import (
	"xshade/internal/ast"
	"xshade/token"
)

func (p *Parser) parseStmtList() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.is(token.RBrace) && !p.is(token.EndOfStream) {
		if stmt := p.parseStmtSafe(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// parseStmtSafe recovers at statement boundaries after a parse error.
func (p *Parser) parseStmtSafe() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(abortParse); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	comment := p.scanner.TakeComment()
	stmt = p.parseStmt()
	if stmt != nil {
		stmt.SetComment(comment)
	}
	return stmt
}

func (p *Parser) parseStmt() ast.Stmt {
	// Optional attributes, e.g. '[unroll]'.
	var attribs []*ast.Attribute
	if p.is(token.LBracket) {
		attribs = p.parseAttributeList()
	}

	switch p.tkn.Kind {
	case token.Semicolon:
		return p.parseNullStmt()
	case token.LBrace:
		return p.parseCodeBlockStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.Ident:
		return p.parseVarDeclOrAssignOrFunctionCallStmt()
	case token.For:
		return p.parseForLoopStmt(attribs)
	case token.While:
		return p.parseWhileLoopStmt(attribs)
	case token.Do:
		return p.parseDoWhileLoopStmt(attribs)
	case token.If:
		return p.parseIfStmt(attribs)
	case token.Switch:
		return p.parseSwitchStmt(attribs)
	case token.CtrlTransfer:
		return p.parseCtrlTransferStmt()
	case token.Struct:
		return p.parseStructDeclOrVarDeclStmt()
	case token.Typedef:
		return p.parseAliasDeclStmt()
	case token.Sampler, token.SamplerState:
		return p.parseSamplerDeclStmt()
	case token.TypeModifier, token.StorageClass:
		return p.parseVarDeclStmt()
	}

	if p.isDataType() {
		return p.parseVarDeclStmt()
	}

	return p.parseExprStmt(nil)
}

func (p *Parser) parseNullStmt() *ast.NullStmt {
	stmt := &ast.NullStmt{}
	stmt.SetArea(p.area(p.tkn))
	p.semi()
	return stmt
}

func (p *Parser) parseCodeBlockStmt() *ast.CodeBlockStmt {
	stmt := &ast.CodeBlockStmt{}
	stmt.SetArea(p.area(p.tkn))
	stmt.CodeBlock = p.parseCodeBlock()
	return stmt
}

func (p *Parser) parseForLoopStmt(attribs []*ast.Attribute) *ast.ForLoopStmt {
	stmt := &ast.ForLoopStmt{Attribs: attribs}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.For)
	p.accept(token.LParen)

	stmt.InitStmt = p.parseStmt()

	if !p.is(token.Semicolon) {
		stmt.Condition = p.parseExpr(true)
	}
	p.semi()

	if !p.is(token.RParen) {
		stmt.Iteration = p.parseExpr(true)
	}
	p.accept(token.RParen)

	stmt.Body = p.parseStmt()

	return stmt
}

func (p *Parser) parseWhileLoopStmt(attribs []*ast.Attribute) *ast.WhileLoopStmt {
	stmt := &ast.WhileLoopStmt{Attribs: attribs}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.While)
	p.accept(token.LParen)
	stmt.Condition = p.parseExpr(true)
	p.accept(token.RParen)

	stmt.Body = p.parseStmt()

	return stmt
}

func (p *Parser) parseDoWhileLoopStmt(attribs []*ast.Attribute) *ast.DoWhileLoopStmt {
	stmt := &ast.DoWhileLoopStmt{Attribs: attribs}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.Do)
	stmt.Body = p.parseStmt()

	p.accept(token.While)
	p.accept(token.LParen)
	stmt.Condition = p.parseExpr(true)
	p.accept(token.RParen)
	p.semi()

	return stmt
}

func (p *Parser) parseIfStmt(attribs []*ast.Attribute) *ast.IfStmt {
	stmt := &ast.IfStmt{Attribs: attribs}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.If)
	p.accept(token.LParen)
	stmt.Condition = p.parseExpr(true)
	p.accept(token.RParen)

	stmt.Body = p.parseStmt()

	if p.is(token.Else) {
		stmt.ElseStmt = p.parseElseStmt()
	}

	return stmt
}

func (p *Parser) parseElseStmt() *ast.ElseStmt {
	stmt := &ast.ElseStmt{}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.Else)
	stmt.Body = p.parseStmt()

	return stmt
}

func (p *Parser) parseSwitchStmt(attribs []*ast.Attribute) *ast.SwitchStmt {
	stmt := &ast.SwitchStmt{Attribs: attribs}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.Switch)
	p.accept(token.LParen)
	stmt.Selector = p.parseExpr(true)
	p.accept(token.RParen)

	p.accept(token.LBrace)
	for p.is(token.Case) || p.is(token.Default) {
		stmt.Cases = append(stmt.Cases, p.parseSwitchCase())
	}
	p.accept(token.RBrace)

	return stmt
}

func (p *Parser) parseSwitchCase() *ast.SwitchCase {
	switchCase := &ast.SwitchCase{}
	switchCase.SetArea(p.area(p.tkn))

	if p.is(token.Case) {
		p.acceptIt()
		switchCase.Expr = p.parseExpr(false)
	} else {
		p.accept(token.Default)
	}
	p.accept(token.Colon)

	for !p.is(token.Case) && !p.is(token.Default) && !p.is(token.RBrace) {
		if stmt := p.parseStmtSafe(); stmt != nil {
			switchCase.Stmts = append(switchCase.Stmts, stmt)
		}
	}

	return switchCase
}

func (p *Parser) parseCtrlTransferStmt() *ast.CtrlTransferStmt {
	stmt := &ast.CtrlTransferStmt{}
	stmt.SetArea(p.area(p.tkn))

	stmt.Transfer = ast.StringToCtrlTransfer(p.accept(token.CtrlTransfer).Spell)
	p.semi()

	return stmt
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	stmt := &ast.ReturnStmt{}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.Return)
	if !p.is(token.Semicolon) {
		stmt.Expr = p.parseExpr(true)
	}
	p.semi()

	return stmt
}

func (p *Parser) parseExprStmt(initExpr ast.Expr) *ast.ExprStmt {
	stmt := &ast.ExprStmt{}
	stmt.SetArea(p.area(p.tkn))

	stmt.Expr = p.parseExprWithInit(true, initExpr)
	p.semi()

	return stmt
}

// parseStructDeclOrVarDeclStmt distinguishes 'struct S {...};' from
// 'struct S {...} s;'.
func (p *Parser) parseStructDeclOrVarDeclStmt() ast.Stmt {
	structStmt := &ast.StructDeclStmt{}
	structStmt.SetArea(p.area(p.tkn))

	structStmt.StructDecl = p.parseStructDecl(true, token.Token{})

	if !p.is(token.Semicolon) {
		varDeclStmt := &ast.VarDeclStmt{}
		varDeclStmt.SetArea(structStmt.NodeArea())
		varDeclStmt.VarType = p.makeVarType(structStmt.StructDecl)
		varDeclStmt.VarDecls = p.parseVarDeclList(varDeclStmt, token.Token{})
		p.semi()
		return varDeclStmt
	}

	p.semi()
	return structStmt
}

// parseVarDeclOrAssignOrFunctionCallStmt routes a statement that starts with
// an identifier: a declaration with an aliased type, an assignment, or a
// call.
func (p *Parser) parseVarDeclOrAssignOrFunctionCallStmt() ast.Stmt {
	varIdent := p.parseVarIdent()

	if p.is(token.LParen) {
		// Function call as expression statement.
		stmt := &ast.ExprStmt{}
		stmt.SetArea(varIdent.NodeArea())
		stmt.Expr = p.parseExprWithInit(true, p.parseFunctionCallExpr(varIdent, nil))
		p.semi()
		return stmt
	}

	if p.is(token.AssignOp) {
		stmt := &ast.ExprStmt{}
		stmt.SetArea(varIdent.NodeArea())

		access := &ast.VarAccessExpr{VarIdent: varIdent}
		access.SetArea(varIdent.NodeArea())
		access.AssignOp = ast.StringToAssignOp(p.acceptIt().Spell)
		access.AssignExpr = p.parseExpr(true)
		p.semi()

		stmt.Expr = access
		return stmt
	}

	if p.isSpell(token.UnaryOp, "++") || p.isSpell(token.UnaryOp, "--") {
		access := &ast.VarAccessExpr{VarIdent: varIdent}
		access.SetArea(varIdent.NodeArea())
		return p.parseExprStmt(access)
	}

	if varIdent.Next == nil && p.is(token.Ident) {
		// The identifier is an aliased type: a variable declaration.
		stmt := &ast.VarDeclStmt{}
		stmt.SetArea(varIdent.NodeArea())

		stmt.VarType = &ast.VarType{}
		stmt.VarType.SetArea(varIdent.NodeArea())
		var typeDenoter ast.TypeDenoter = &ast.AliasTypeDenoter{Ident: varIdent.Ident}
		if len(varIdent.ArrayIndices) > 0 {
			typeDenoter = &ast.ArrayTypeDenoter{Base: typeDenoter, Dims: varIdent.ArrayIndices}
		}
		stmt.VarType.TypeDenoter = typeDenoter

		stmt.VarDecls = p.parseVarDeclList(stmt, token.Token{})
		p.semi()
		return stmt
	}

	// Anything else is an expression statement beginning with a variable
	// access, e.g. 'q + 1;'.
	access := &ast.VarAccessExpr{VarIdent: varIdent}
	access.SetArea(varIdent.NodeArea())
	var expr ast.Expr = access
	if p.is(token.Dot) {
		expr = p.parseSuffixExpr(expr)
	}
	return p.parseExprStmt(expr)
}
