package parser

import (
	"strconv"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/token"
)

/* ----- Global declarations ----- */

func (p *Parser) parseGlobalStmt() ast.Stmt {
	switch p.tkn.Kind {
	case token.Sampler, token.SamplerState:
		return p.parseSamplerDeclStmt()
	case token.Texture, token.StorageBuffer:
		return p.parseTextureDeclStmt()
	case token.UniformBuffer:
		return p.parseBufferDeclStmt()
	case token.Typedef:
		return p.parseAliasDeclStmt()
	case token.TypeModifier, token.StorageClass:
		return p.parseVarDeclStmt()
	case token.LBracket, token.Void, token.Inline:
		return p.parseFunctionDecl(nil, token.Token{})
	default:
		return p.parseStructDeclOrVarDeclOrFunctionDeclStmt()
	}
}

func (p *Parser) parseStructDeclOrVarDeclOrFunctionDeclStmt() ast.Stmt {
	varType := p.parseVarType(false)

	if varType.StructDecl != nil && p.is(token.Semicolon) {
		stmt := &ast.StructDeclStmt{StructDecl: varType.StructDecl}
		stmt.SetArea(varType.NodeArea())
		p.semi()
		return stmt
	}

	identTkn := p.accept(token.Ident)

	if p.is(token.LParen) {
		return p.parseFunctionDecl(varType, identTkn)
	}

	stmt := &ast.VarDeclStmt{VarType: varType}
	stmt.SetArea(varType.NodeArea())
	stmt.VarDecls = p.parseVarDeclList(stmt, identTkn)
	p.semi()
	return stmt
}

/* ----- Functions ----- */

func (p *Parser) parseFunctionDecl(returnType *ast.VarType, identTkn token.Token) *ast.FunctionDecl {
	decl := &ast.FunctionDecl{}
	decl.SetArea(p.area(p.tkn))

	if returnType != nil {
		decl.ReturnType = returnType
	} else {
		if p.is(token.Inline) {
			p.acceptIt()
		}
		decl.Attribs = p.parseAttributeList()
		decl.ReturnType = p.parseVarType(true)
	}

	if identTkn.Kind == token.Ident {
		decl.SetArea(p.area(identTkn))
		decl.Ident = identTkn.Spell
	} else {
		decl.SetArea(p.area(p.tkn))
		decl.Ident = p.parseIdent()
	}

	decl.Parameters = p.parseParameterList()

	p.parseFunctionDeclSemantic(decl)

	decl.Annotations = p.parseAnnotationList()

	if p.is(token.Semicolon) {
		p.acceptIt()
	} else {
		p.handler.PushContext(decl.Signature())
		p.localScope = true
		decl.CodeBlock = p.parseCodeBlock()
		p.localScope = false
		p.handler.PopContext()
	}

	return decl
}

func (p *Parser) parseParameterList() []*ast.VarDeclStmt {
	var parameters []*ast.VarDeclStmt

	p.accept(token.LParen)
	if !p.is(token.RParen) {
		for {
			parameters = append(parameters, p.parseParameter())
			if p.is(token.Comma) {
				p.acceptIt()
			} else {
				break
			}
		}
	}
	p.accept(token.RParen)

	return parameters
}

func (p *Parser) parseParameter() *ast.VarDeclStmt {
	stmt := &ast.VarDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	for p.is(token.InputModifier) || p.is(token.TypeModifier) || p.is(token.StorageClass) {
		switch p.tkn.Kind {
		case token.InputModifier:
			stmt.InputModifier = p.acceptIt().Spell
		case token.TypeModifier:
			stmt.TypeModifiers = append(stmt.TypeModifiers, p.acceptIt().Spell)
		case token.StorageClass:
			stmt.StorageClasses = append(stmt.StorageClasses, p.parseStorageClass())
		}
	}

	stmt.VarType = p.parseVarType(false)
	stmt.VarDecls = append(stmt.VarDecls, p.parseVarDecl(stmt, token.Token{}))

	return stmt
}

/* ----- Code blocks ----- */

func (p *Parser) parseCodeBlock() *ast.CodeBlock {
	block := &ast.CodeBlock{}
	block.SetArea(p.area(p.tkn))

	p.accept(token.LBrace)
	p.openScope()
	block.Stmts = p.parseStmtList()
	p.closeScope()
	p.accept(token.RBrace)

	return block
}

/* ----- Variable declarations ----- */

func (p *Parser) parseVarDeclStmt() *ast.VarDeclStmt {
	stmt := &ast.VarDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	for {
		if p.is(token.StorageClass) {
			stmt.StorageClasses = append(stmt.StorageClasses, p.parseStorageClass())
		} else if p.is(token.TypeModifier) {
			stmt.TypeModifiers = append(stmt.TypeModifiers, p.acceptIt().Spell)
		} else if p.is(token.Ident) || p.isDataType() {
			stmt.VarType = &ast.VarType{}
			stmt.VarType.SetArea(p.area(p.tkn))
			stmt.VarType.TypeDenoter = p.parseTypeDenoter(false)
			break
		} else if p.is(token.Struct) {
			stmt.VarType = p.makeVarType(p.parseStructDecl(true, token.Token{}))
			break
		} else {
			p.errorUnexpected("variable declaration")
		}
	}

	stmt.VarDecls = p.parseVarDeclList(stmt, token.Token{})
	p.semi()

	return stmt
}

func (p *Parser) parseVarDeclList(declStmt *ast.VarDeclStmt, firstIdentTkn token.Token) []*ast.VarDecl {
	var decls []*ast.VarDecl
	for {
		decls = append(decls, p.parseVarDecl(declStmt, firstIdentTkn))
		firstIdentTkn = token.Token{}
		if p.is(token.Comma) {
			p.acceptIt()
		} else {
			break
		}
	}
	return decls
}

func (p *Parser) parseVarDecl(declStmt *ast.VarDeclStmt, identTkn token.Token) *ast.VarDecl {
	decl := &ast.VarDecl{DeclStmtRef: declStmt}

	if identTkn.Kind == token.Ident {
		decl.Ident = identTkn.Spell
		decl.SetArea(p.area(identTkn))
	} else {
		decl.SetArea(p.area(p.tkn))
		decl.Ident = p.parseIdent()
	}

	decl.ArrayDims = p.parseArrayDimensionList(true)

	p.parseVarDeclSemantic(decl, false)

	decl.Annotations = p.parseAnnotationList()

	if p.isSpell(token.AssignOp, "=") {
		decl.Initializer = p.parseInitializer()
	}

	return decl
}

// parseVarDeclSemantic parses the trailing ': ...' chain of a declarator:
// semantics, packoffset, and ignored register bindings.
func (p *Parser) parseVarDeclSemantic(decl *ast.VarDecl, allowPackOffset bool) {
	for p.is(token.Colon) {
		p.acceptIt()

		switch p.tkn.Kind {
		case token.Register:
			p.warning("register is ignored for variable declarations")
			p.parseRegister(false)
		case token.PackOffset:
			decl.PackOffset = p.parsePackOffset(false)
			if !allowPackOffset {
				p.errorNoAbort("packoffset is only allowed in a constant buffer", errors.CodePackOffsetScope)
			}
		default:
			decl.Semantic = p.parseSemantic(false)
		}
	}
}

func (p *Parser) parseFunctionDeclSemantic(decl *ast.FunctionDecl) {
	for p.is(token.Colon) {
		p.acceptIt()

		switch p.tkn.Kind {
		case token.Register:
			p.warning("register is ignored for function declarations")
			p.parseRegister(false)
		case token.PackOffset:
			p.errorNoAbort("packoffset is only allowed in a constant buffer", errors.CodePackOffsetScope)
			p.parsePackOffset(false)
		default:
			decl.Semantic = p.parseSemantic(false)
		}
	}
}

func (p *Parser) parseSemantic(parseColon bool) ast.IndexedSemantic {
	if parseColon {
		p.accept(token.Colon)
	}
	if p.localScope {
		p.errorNoAbort("semantics are not allowed in local scope", errors.CodeMissingSemantic)
	}
	return ast.ParseSemantic(p.parseIdent())
}

func (p *Parser) parseStorageClass() ast.StorageClass {
	return ast.StringToStorageClass(p.accept(token.StorageClass).Spell)
}

func (p *Parser) parseInitializer() ast.Expr {
	p.acceptSpell(token.AssignOp, "=")
	return p.parseExpr(false)
}

/* ----- Buffers, textures, samplers ----- */

func (p *Parser) parseBufferDeclStmt() *ast.BufferDeclStmt {
	stmt := &ast.BufferDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	stmt.BufferType = ast.StringToUniformBufferType(p.accept(token.UniformBuffer).Spell)
	stmt.Ident = p.parseIdent()
	stmt.SlotRegisters = p.parseRegisterList(true)

	p.handler.PushContext("cbuffer '" + stmt.Ident + "'")
	stmt.Members = p.parseBufferMemberList()
	// The trailing semicolon is optional for cbuffer and tbuffer.
	if p.is(token.Semicolon) {
		p.semi()
	}
	p.handler.PopContext()

	// Decorate members with a reference to this buffer declaration.
	for _, member := range stmt.Members {
		for _, varDecl := range member.VarDecls {
			varDecl.BufferDeclRef = stmt
		}
	}

	return stmt
}

// parseBufferMemberList parses '{' var-decl-stmt* '}' with packoffset
// allowed on the declarators.
func (p *Parser) parseBufferMemberList() []*ast.VarDeclStmt {
	var members []*ast.VarDeclStmt

	p.accept(token.LBrace)
	for !p.is(token.RBrace) {
		member := p.parseVarDeclStmtInBuffer()
		members = append(members, member)
	}
	p.acceptIt()

	return members
}

// parseVarDeclStmtInBuffer is parseVarDeclStmt with packoffset permitted.
func (p *Parser) parseVarDeclStmtInBuffer() *ast.VarDeclStmt {
	stmt := &ast.VarDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	for {
		if p.is(token.StorageClass) {
			stmt.StorageClasses = append(stmt.StorageClasses, p.parseStorageClass())
		} else if p.is(token.TypeModifier) {
			stmt.TypeModifiers = append(stmt.TypeModifiers, p.acceptIt().Spell)
		} else if p.is(token.Ident) || p.isDataType() {
			stmt.VarType = &ast.VarType{}
			stmt.VarType.SetArea(p.area(p.tkn))
			stmt.VarType.TypeDenoter = p.parseTypeDenoter(false)
			break
		} else {
			p.errorUnexpected("constant buffer member declaration")
		}
	}

	for {
		decl := &ast.VarDecl{DeclStmtRef: stmt}
		decl.SetArea(p.area(p.tkn))
		decl.Ident = p.parseIdent()
		decl.ArrayDims = p.parseArrayDimensionList(true)
		p.parseVarDeclSemantic(decl, true)
		if p.isSpell(token.AssignOp, "=") {
			decl.Initializer = p.parseInitializer()
		}
		stmt.VarDecls = append(stmt.VarDecls, decl)
		if p.is(token.Comma) {
			p.acceptIt()
		} else {
			break
		}
	}
	p.semi()

	return stmt
}

func (p *Parser) parseTextureDeclStmt() *ast.TextureDeclStmt {
	stmt := &ast.TextureDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	textureTypeTkn := p.tkn
	if p.is(token.StorageBuffer) {
		// Structured buffers share the texture declaration form.
		stmt.TextureType = ast.TextureKindFromKeyword(p.acceptIt().Spell)
	} else {
		stmt.TextureType = ast.TextureKindFromKeyword(p.accept(token.Texture).Spell)
	}

	// Optional template arguments '<' type (',' samples)? '>'
	if p.isSpell(token.BinaryOp, "<") {
		p.pushParsingState(ParsingState{ActiveTemplate: true})

		p.acceptIt()

		if p.is(token.ScalarType) || p.is(token.VectorType) {
			stmt.ColorType = p.parseDataType(p.acceptIt().Spell)
		} else if p.is(token.Ident) {
			// Structured buffers take a struct type argument; keep the
			// element type opaque.
			p.acceptIt()
		} else {
			p.errorUnexpected("scalar or vector type denoter")
		}

		if p.is(token.Comma) {
			p.acceptIt()
			stmt.NumSamples = p.parseAndEvaluateConstExprInt()
			if stmt.NumSamples < 1 || stmt.NumSamples >= 128 {
				p.warningAt("number of samples in texture must be in the range [1, 128), but got "+
					strconv.Itoa(stmt.NumSamples), textureTypeTkn)
			}
		}

		p.acceptSpell(token.BinaryOp, ">")
		p.popParsingState()
	}

	for {
		stmt.TextureDecls = append(stmt.TextureDecls, p.parseTextureDecl(stmt))
		if p.is(token.Comma) {
			p.acceptIt()
		} else {
			break
		}
	}

	p.semi()
	return stmt
}

func (p *Parser) parseTextureDecl(declStmt *ast.TextureDeclStmt) *ast.TextureDecl {
	decl := &ast.TextureDecl{DeclStmtRef: declStmt}
	decl.SetArea(p.area(p.tkn))

	decl.Ident = p.parseIdent()
	decl.ArrayDims = p.parseArrayDimensionList(false)
	decl.SlotRegisters = p.parseRegisterList(false)

	return decl
}

func (p *Parser) parseSamplerDeclStmt() *ast.SamplerDeclStmt {
	stmt := &ast.SamplerDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	if p.is(token.Sampler) || p.is(token.SamplerState) {
		stmt.SamplerType = p.acceptIt().Spell
	} else {
		p.errorUnexpected("sampler type denoter or sampler state")
	}

	for {
		stmt.SamplerDecls = append(stmt.SamplerDecls, p.parseSamplerDecl(stmt))
		if p.is(token.Comma) {
			p.acceptIt()
		} else {
			break
		}
	}

	p.semi()
	return stmt
}

func (p *Parser) parseSamplerDecl(declStmt *ast.SamplerDeclStmt) *ast.SamplerDecl {
	decl := &ast.SamplerDecl{DeclStmtRef: declStmt}
	decl.SetArea(p.area(p.tkn))

	decl.Ident = p.parseIdent()
	decl.ArrayDims = p.parseArrayDimensionList(false)
	decl.SlotRegisters = p.parseRegisterList(false)

	// Optional static sampler state, D3D9 or D3D10+ flavor.
	if p.isSpell(token.AssignOp, "=") {
		p.acceptIt()
		p.acceptSpell(token.SamplerState, "sampler_state")
		p.accept(token.LBrace)
		decl.TextureIdent = p.parseSamplerStateTextureIdent()
		decl.SamplerValues = p.parseSamplerValueList()
		p.accept(token.RBrace)
	} else if p.is(token.LBrace) {
		p.acceptIt()
		decl.SamplerValues = p.parseSamplerValueList()
		p.accept(token.RBrace)
	}

	return decl
}

func (p *Parser) parseSamplerValueList() []*ast.SamplerValue {
	var values []*ast.SamplerValue
	for !p.is(token.RBrace) {
		values = append(values, p.parseSamplerValue())
	}
	return values
}

func (p *Parser) parseSamplerValue() *ast.SamplerValue {
	value := &ast.SamplerValue{}
	value.SetArea(p.area(p.tkn))

	value.Name = p.parseIdent()
	p.acceptSpell(token.AssignOp, "=")
	value.Value = p.parseExpr(false)
	p.semi()

	return value
}

// parseSamplerStateTextureIdent parses the D3D9 'texture = <t>;' binding, or
// returns "" when the block starts with a regular state value.
func (p *Parser) parseSamplerStateTextureIdent() string {
	if !p.isSpell(token.Texture, "texture") {
		return ""
	}
	p.acceptIt()
	p.acceptSpell(token.AssignOp, "=")

	var ident string
	if p.is(token.LParen) {
		p.acceptIt()
		ident = p.parseIdent()
		p.accept(token.RParen)
	} else if p.isSpell(token.BinaryOp, "<") {
		p.acceptIt()
		ident = p.parseIdent()
		p.acceptSpell(token.BinaryOp, ">")
	} else {
		p.errorUnexpected("'<' or '('")
	}

	p.semi()
	return ident
}

/* ----- Structures ----- */

func (p *Parser) parseStructDecl(parseStructTkn bool, identTkn token.Token) *ast.StructDecl {
	decl := &ast.StructDecl{}
	decl.SetArea(p.area(p.tkn))

	if parseStructTkn {
		p.accept(token.Struct)
	}

	if p.is(token.Ident) || identTkn.Kind == token.Ident {
		if identTkn.Kind == token.Ident {
			decl.Ident = identTkn.Spell
			decl.SetArea(p.area(identTkn))
		} else {
			decl.SetArea(p.area(p.tkn))
			decl.Ident = p.parseIdent()
		}

		p.registerTypeName(decl.Ident)

		// Optional single inheritance; multiple inheritance is not allowed.
		if p.is(token.Colon) {
			p.acceptIt()
			decl.BaseStructName = p.parseIdent()
			if decl.BaseStructName == decl.Ident {
				p.error("recursive inheritance is not allowed")
			}
			if p.is(token.Comma) {
				p.errorNoAbort("multiple inheritance is not allowed", errors.CodeSyntax)
			}
		}
	}

	p.handler.PushContext(decl.Signature())
	decl.Members = p.parseStructMemberList()
	p.handler.PopContext()

	return decl
}

func (p *Parser) parseStructMemberList() []*ast.VarDeclStmt {
	var members []*ast.VarDeclStmt

	p.accept(token.LBrace)
	for !p.is(token.RBrace) {
		members = append(members, p.parseVarDeclStmt())
	}
	p.acceptIt()

	return members
}

func (p *Parser) makeVarType(structDecl *ast.StructDecl) *ast.VarType {
	varType := &ast.VarType{
		StructDecl:  structDecl,
		TypeDenoter: ast.NewStructTypeDenoter(structDecl),
	}
	varType.SetArea(structDecl.NodeArea())
	return varType
}

/* ----- Typedef ----- */

// parseAliasDeclStmt parses 'typedef' type_denoter IDENT (',' IDENT)* ';'.
func (p *Parser) parseAliasDeclStmt() *ast.AliasDeclStmt {
	stmt := &ast.AliasDeclStmt{}
	stmt.SetArea(p.area(p.tkn))

	p.accept(token.Typedef)

	var structDecl *ast.StructDecl
	typeDenoter := p.parseTypeDenoterWithStructDeclOpt(&structDecl, false)
	stmt.StructDecl = structDecl

	for {
		stmt.AliasDecls = append(stmt.AliasDecls, p.parseAliasDecl(typeDenoter))
		if p.is(token.Comma) {
			p.acceptIt()
		} else {
			break
		}
	}

	p.semi()

	for _, decl := range stmt.AliasDecls {
		decl.DeclStmtRef = stmt
	}

	return stmt
}

func (p *Parser) parseAliasDecl(typeDenoter ast.TypeDenoter) *ast.AliasDecl {
	decl := &ast.AliasDecl{}
	decl.SetArea(p.area(p.tkn))

	decl.Ident = p.parseIdent()
	p.registerTypeName(decl.Ident)

	if p.is(token.LBracket) {
		typeDenoter = &ast.ArrayTypeDenoter{
			Base: typeDenoter,
			Dims: p.parseArrayDimensionList(false),
		}
	}

	decl.TypeDenoter = typeDenoter
	return decl
}

/* ----- Registers and packoffset ----- */

func (p *Parser) parseRegisterList(parseFirstColon bool) []*ast.RegisterSlot {
	var registers []*ast.RegisterSlot

	if parseFirstColon && p.is(token.Register) {
		registers = append(registers, p.parseRegister(false))
	}
	for p.is(token.Colon) {
		registers = append(registers, p.parseRegister(true))
	}

	return registers
}

// parseRegister parses ':' 'register' '(' (PROFILE ',')? IDENT ('[' INT ']')? ')'.
func (p *Parser) parseRegister(parseColon bool) *ast.RegisterSlot {
	if parseColon {
		p.accept(token.Colon)
	}

	reg := &ast.RegisterSlot{}
	reg.SetArea(p.area(p.tkn))

	p.accept(token.Register)
	p.accept(token.LParen)

	typeIdent := p.parseIdent()

	// Optional shader profile prefix, e.g. 'register(vs_5_0, s0)'.
	if p.is(token.Comma) {
		reg.ShaderProfile = typeIdent
		p.acceptIt()
		typeIdent = p.parseIdent()
	}

	reg.RegisterType = ast.CharToRegisterType(typeIdent[0])
	if slot, err := strconv.Atoi(typeIdent[1:]); err == nil {
		reg.Slot = slot
	}

	if reg.RegisterType == ast.RegisterUndefined {
		p.warning("unknown slot register: '" + typeIdent[:1] + "'")
	}

	// Optional sub component, added to the slot index.
	if p.is(token.LBracket) {
		p.acceptIt()
		sub := p.accept(token.IntLiteral).Spell
		if n, err := strconv.Atoi(sub); err == nil {
			reg.Slot += n
		}
		p.accept(token.RBracket)
	}

	p.accept(token.RParen)

	return reg
}

// parsePackOffset parses ':' 'packoffset' '(' IDENT ('.' COMPONENT)? ')'.
func (p *Parser) parsePackOffset(parseColon bool) *ast.PackOffset {
	if parseColon {
		p.accept(token.Colon)
	}

	po := &ast.PackOffset{}
	po.SetArea(p.area(p.tkn))

	p.accept(token.PackOffset)
	p.accept(token.LParen)

	po.RegisterName = p.parseIdent()
	if p.is(token.Dot) {
		p.acceptIt()
		po.VectorComponent = p.parseIdent()
	}

	p.accept(token.RParen)

	return po
}

/* ----- Attributes and annotations ----- */

func (p *Parser) parseAttributeList() []*ast.Attribute {
	var attribs []*ast.Attribute
	for p.is(token.LBracket) {
		attribs = append(attribs, p.parseAttribute())
	}
	return attribs
}

// parseAttribute parses '[' IDENT ('(' args ')')? ']'.
func (p *Parser) parseAttribute() *ast.Attribute {
	attr := &ast.Attribute{}
	attr.SetArea(p.area(p.tkn))

	p.accept(token.LBracket)
	attr.Ident = p.parseIdent()

	if p.is(token.LParen) {
		p.acceptIt()
		if !p.is(token.RParen) {
			for {
				attr.Arguments = append(attr.Arguments, p.parseExpr(false))
				if p.is(token.Comma) {
					p.acceptIt()
				} else {
					break
				}
			}
		}
		p.accept(token.RParen)
	}

	p.accept(token.RBracket)

	return attr
}

// parseAnnotationList parses and discards a '<...>' annotation block.
func (p *Parser) parseAnnotationList() []*ast.VarDeclStmt {
	var annotations []*ast.VarDeclStmt

	if p.isSpell(token.BinaryOp, "<") {
		p.acceptIt()
		for !p.isSpell(token.BinaryOp, ">") {
			annotations = append(annotations, p.parseVarDeclStmt())
		}
		p.acceptIt()
	}

	return annotations
}

/* ----- Array dimensions ----- */

func (p *Parser) parseArrayDimensionList(allowDynamicDimension bool) []ast.Expr {
	var dims []ast.Expr
	for p.is(token.LBracket) {
		dims = append(dims, p.parseArrayDimension(allowDynamicDimension))
	}
	return dims
}

func (p *Parser) parseArrayDimension(allowDynamicDimension bool) ast.Expr {
	p.accept(token.LBracket)

	var dim ast.Expr
	if p.is(token.RBracket) {
		if !allowDynamicDimension {
			p.errorNoAbort("explicit array dimension expected", errors.CodeArrayDimension)
		}
		null := &ast.NullExpr{}
		null.SetArea(p.area(p.tkn))
		dim = null
	} else {
		dim = p.parseExpr(false)
	}

	p.accept(token.RBracket)
	return dim
}

/* ----- Type denoters ----- */

func (p *Parser) parseVarType(parseVoidType bool) *ast.VarType {
	varType := &ast.VarType{}
	varType.SetArea(p.area(p.tkn))

	var structDecl *ast.StructDecl
	varType.TypeDenoter = p.parseTypeDenoterWithStructDeclOpt(&structDecl, parseVoidType)
	varType.StructDecl = structDecl

	return varType
}

func (p *Parser) parseTypeDenoter(allowVoidType bool) ast.TypeDenoter {
	if p.is(token.Void) {
		if !allowVoidType {
			p.error("'void' type not allowed in this context")
		}
		p.acceptIt()
		return &ast.VoidTypeDenoter{}
	}

	typeDenoter := p.parseTypeDenoterPrimary()

	if p.is(token.LBracket) {
		typeDenoter = &ast.ArrayTypeDenoter{
			Base: typeDenoter,
			Dims: p.parseArrayDimensionList(false),
		}
	}

	return typeDenoter
}

func (p *Parser) parseTypeDenoterPrimary() ast.TypeDenoter {
	switch {
	case p.isBaseDataType():
		return p.parseBaseTypeDenoter()
	case p.is(token.Vector):
		return p.parseBaseVectorTypeDenoter()
	case p.is(token.Matrix):
		return p.parseBaseMatrixTypeDenoter()
	case p.is(token.Ident):
		return p.parseAliasTypeDenoter("")
	case p.is(token.Struct):
		return p.parseStructTypeDenoter()
	case p.is(token.Texture):
		return &ast.TextureTypeDenoter{Kind: ast.TextureKindFromKeyword(p.acceptIt().Spell)}
	case p.is(token.Sampler) || p.is(token.SamplerState):
		p.acceptIt()
		return &ast.SamplerTypeDenoter{}
	}
	p.errorUnexpected("type denoter")
	return nil
}

func (p *Parser) parseTypeDenoterWithStructDeclOpt(structDecl **ast.StructDecl, allowVoidType bool) ast.TypeDenoter {
	if !p.is(token.Struct) {
		return p.parseTypeDenoter(allowVoidType)
	}

	p.acceptIt()

	if p.is(token.LBrace) {
		*structDecl = p.parseStructDecl(false, token.Token{})
		return ast.NewStructTypeDenoter(*structDecl)
	}

	structIdentTkn := p.accept(token.Ident)
	if p.is(token.LBrace) || p.is(token.Colon) {
		*structDecl = p.parseStructDecl(false, structIdentTkn)
		return ast.NewStructTypeDenoter(*structDecl)
	}
	return &ast.StructTypeDenoter{Ident: structIdentTkn.Spell}
}

func (p *Parser) parseBaseTypeDenoter() ast.TypeDenoter {
	if !p.isBaseDataType() {
		p.errorUnexpected("base type denoter")
	}
	keyword := p.acceptIt().Spell
	return &ast.BaseTypeDenoter{DataType: p.parseDataType(keyword)}
}

// parseBaseVectorTypeDenoter parses vector '<' ScalarType ',' DIM '>'.
func (p *Parser) parseBaseVectorTypeDenoter() ast.TypeDenoter {
	p.accept(token.Vector)

	vectorType := "float4"
	if p.isSpell(token.BinaryOp, "<") {
		p.acceptIt()
		p.pushParsingState(ParsingState{ActiveTemplate: true})

		scalar := p.accept(token.ScalarType).Spell
		p.accept(token.Comma)
		dim := p.parseAndEvaluateVectorDimension()
		vectorType = scalar + strconv.Itoa(dim)

		p.popParsingState()
		p.acceptSpell(token.BinaryOp, ">")
	}

	return &ast.BaseTypeDenoter{DataType: p.parseDataType(vectorType)}
}

// parseBaseMatrixTypeDenoter parses matrix '<' ScalarType ',' M ',' N '>'.
func (p *Parser) parseBaseMatrixTypeDenoter() ast.TypeDenoter {
	p.accept(token.Matrix)

	matrixType := "float4x4"
	if p.isSpell(token.BinaryOp, "<") {
		p.acceptIt()
		p.pushParsingState(ParsingState{ActiveTemplate: true})

		scalar := p.accept(token.ScalarType).Spell
		p.accept(token.Comma)
		dimM := p.parseAndEvaluateVectorDimension()
		p.accept(token.Comma)
		dimN := p.parseAndEvaluateVectorDimension()
		matrixType = scalar + strconv.Itoa(dimM) + "x" + strconv.Itoa(dimN)

		p.popParsingState()
		p.acceptSpell(token.BinaryOp, ">")
	}

	return &ast.BaseTypeDenoter{DataType: p.parseDataType(matrixType)}
}

func (p *Parser) parseStructTypeDenoter() ast.TypeDenoter {
	if p.is(token.Struct) {
		p.acceptIt()
	}
	return &ast.StructTypeDenoter{Ident: p.parseIdent()}
}

func (p *Parser) parseAliasTypeDenoter(ident string) ast.TypeDenoter {
	if ident == "" {
		ident = p.parseIdent()
	}
	return &ast.AliasTypeDenoter{Ident: ident}
}

func (p *Parser) parseDataType(keyword string) ast.DataType {
	dataType, err := ast.DataTypeFromKeyword(keyword)
	if err != nil {
		p.error(err.Error())
	}
	return dataType
}
