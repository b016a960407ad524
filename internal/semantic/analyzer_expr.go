package semantic

import (
	"strings"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/shader"
)

/* ----- Expression visits ----- */

func (a *Analyzer) visitExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.NullExpr:
	case *ast.ListExpr:
		a.visitExpr(e.First)
		a.visitExpr(e.Next)
	case *ast.LiteralExpr:
	case *ast.TypeNameExpr:
		a.analyzeTypeDenoter(&e.TypeDenoter, e)
	case *ast.TernaryExpr:
		a.visitExpr(e.Cond)
		a.visitExpr(e.Then)
		a.visitExpr(e.Else)
	case *ast.BinaryExpr:
		a.visitExpr(e.Lhs)
		a.visitExpr(e.Rhs)
		a.validateBinaryExpr(e)
	case *ast.UnaryExpr:
		a.visitExpr(e.Expr)
	case *ast.PostUnaryExpr:
		a.visitExpr(e.Expr)
	case *ast.FunctionCallExpr:
		a.visitFunctionCall(e.Call)
	case *ast.BracketExpr:
		a.visitExpr(e.Expr)
	case *ast.SuffixExpr:
		a.visitSuffixExpr(e)
	case *ast.ArrayAccessExpr:
		a.visitExpr(e.Expr)
		for _, index := range e.ArrayIndices {
			a.visitExpr(index)
		}
	case *ast.CastExpr:
		a.analyzeTypeDenoter(&e.TypeExpr.TypeDenoter, e.TypeExpr)
		a.visitExpr(e.Expr)
	case *ast.VarAccessExpr:
		a.analyzeVarIdent(e.VarIdent)
		if e.AssignExpr != nil {
			a.visitExpr(e.AssignExpr)
			if target := a.typeDenoterOfVarIdent(e.VarIdent); target != nil {
				a.validateTypeCastFromExpr(e.AssignExpr, target, e)
			}
		}
	case *ast.InitializerExpr:
		for _, sub := range e.Exprs {
			a.visitExpr(sub)
		}
	case nil:
	}
}

func (a *Analyzer) visitSuffixExpr(expr *ast.SuffixExpr) {
	a.visitExpr(expr.Expr)

	// The left-hand side must be a structure (member access) or a base
	// type (vector subscript).
	typeDen := a.typeDenoterOf(expr.Expr)
	if typeDen == nil {
		return
	}
	if structDen, ok := typeDen.Get().(*ast.StructTypeDenoter); ok && structDen.StructRef != nil {
		if member := a.fetchFromStructDecl(structDen.StructRef, expr.VarIdent.Ident, expr.VarIdent); member != nil {
			a.analyzeVarIdentWithSymbol(expr.VarIdent, member)
		}
	}
}

/* ----- Variable identifiers ----- */

func (a *Analyzer) analyzeVarIdent(varIdent *ast.VarIdent) {
	if varIdent == nil {
		return
	}
	if symbol := a.symbols.Fetch(varIdent.Ident); symbol != nil {
		a.analyzeVarIdentWithSymbol(varIdent, symbol)
	} else {
		a.errorUndeclaredIdent(varIdent.Ident, varIdent)
	}

	for _, index := range varIdent.ArrayIndices {
		a.visitExpr(index)
	}
}

func (a *Analyzer) analyzeVarIdentWithSymbol(varIdent *ast.VarIdent, symbol ast.Node) {
	varIdent.SymbolRef = symbol

	switch decl := symbol.(type) {
	case *ast.VarDecl:
		a.analyzeVarIdentWithVarDecl(varIdent, decl)
	case *ast.TextureDecl, *ast.SamplerDecl:
		// Texture and sampler objects carry no member declarations; method
		// identifiers pass through undecorated for the back-end.
	case *ast.StructDecl, *ast.AliasDecl, *ast.FunctionDecl:
	default:
		a.error("invalid symbol reference to variable identifier '"+varIdent.String()+"'", varIdent)
	}
}

func (a *Analyzer) analyzeVarIdentWithVarDecl(varIdent *ast.VarIdent, varDecl *ast.VarDecl) {
	if varIdent.Next != nil {
		typeDen := varDecl.TypeDenoter()
		if typeDen != nil {
			peeled, err := ast.GetFromArray(typeDen, len(varIdent.ArrayIndices))
			if err != nil {
				a.errorCode(err.Error(), varIdent, errors.CodeInvalidSubscript)
				return
			}
			if structDen, ok := peeled.Get().(*ast.StructTypeDenoter); ok && structDen.StructRef != nil {
				if member := a.fetchFromStructDecl(structDen.StructRef, varIdent.Next.Ident, varIdent.Next); member != nil {
					a.analyzeVarIdentWithSymbol(varIdent.Next, member)
				}
				return
			}
			// Base types take swizzle subscripts; nothing to resolve.
		}
	}

	// A fragment-stage reference to the position semantic pins the
	// fragment coordinate.
	if varDecl.Semantic.Semantic == ast.SemanticPosition && a.opts.Target == shader.FragmentShader {
		a.program.FragCoordUsed = true
	}
}

func (a *Analyzer) fetchFromStructDecl(structDecl *ast.StructDecl, ident string, node ast.Node) *ast.VarDecl {
	if member := structDecl.FetchMember(ident); member != nil {
		return member
	}
	a.errorCode("'"+ident+"' is not a member of '"+structDecl.Signature()+"'", node, errors.CodeInvalidSubscript)
	return nil
}

/* ----- Function calls ----- */

func (a *Analyzer) visitFunctionCall(call *ast.FunctionCall) {
	a.pushFunctionCall(call)
	defer a.popFunctionCall()

	// Arguments first, so argument analysis can cross-check against the
	// active call.
	for _, arg := range call.Arguments {
		a.visitExpr(arg)
	}

	if call.TypeDenoter != nil {
		// Constructor-style call such as 'float4(...)'.
		a.analyzeTypeDenoter(&call.TypeDenoter, call)
		return
	}
	if call.VarIdent == nil {
		return
	}

	if call.VarIdent.Next != nil {
		// Object method call such as 'tex.Sample(...)'.
		a.analyzeVarIdent(call.VarIdent)

		methodIdent := call.VarIdent.Last().Ident
		if entry, ok := hlslIntrinsics[methodIdent]; ok {
			if _, isTexture := call.VarIdent.SymbolRef.(*ast.TextureDecl); isTexture {
				if !entry.intrinsic.IsTextureIntrinsic() {
					a.error("invalid intrinsic '"+methodIdent+"' for a texture object", call)
					return
				}
			}
			a.analyzeFunctionCallIntrinsic(call, entry)
			return
		}

		// Unresolved member functions pass through to the back-end.
		return
	}

	if entry, ok := hlslIntrinsics[call.VarIdent.Ident]; ok {
		if entry.intrinsic.IsTextureIntrinsic() {
			a.error("intrinsic '"+call.VarIdent.Ident+"' can only be called on a texture object", call)
			return
		}
		a.analyzeFunctionCallIntrinsic(call, entry)
		return
	}

	call.FuncDeclRef = a.fetchFunctionDecl(call.VarIdent.Ident, call.Arguments, call)
}

func (a *Analyzer) analyzeFunctionCallIntrinsic(call *ast.FunctionCall, entry intrinsicEntry) {
	if a.model.Less(entry.minShaderModel) {
		a.warningAt(
			"intrinsic '"+call.Name()+"' requires shader model "+entry.minShaderModel.String()+
				", but only "+a.model.String()+" is specified", call)
	}

	call.Intrinsic = refineIntrinsic(entry.intrinsic, len(call.Arguments))
}

// analyzeIntrinsicWrapperInlining marks intrinsic calls whose wrapper
// function can be inlined by the back-end.
func (a *Analyzer) analyzeIntrinsicWrapperInlining(call *ast.FunctionCall) {
	if call.Intrinsic == ast.IntrinsicClip {
		call.CanInlineIntrinsicWrapper = true
	}
}

// fetchFunctionDecl resolves an overloaded user-function call: exact
// argument-type matches win; a single arity match is accepted with implicit
// casts; anything else is reported.
func (a *Analyzer) fetchFunctionDecl(ident string, args []ast.Expr, node ast.Node) *ast.FunctionDecl {
	group := a.symbols.FetchAll(ident)
	if len(group) == 0 {
		a.errorUndeclaredIdent(ident, node)
		return nil
	}

	var candidates []*ast.FunctionDecl
	for _, sym := range group {
		if decl, ok := sym.(*ast.FunctionDecl); ok {
			candidates = append(candidates, decl)
		}
	}
	if len(candidates) == 0 {
		a.error("identifier '"+ident+"' does not name a function", node)
		return nil
	}

	var arityMatches []*ast.FunctionDecl
	for _, decl := range candidates {
		if callArityMatches(decl, len(args)) {
			arityMatches = append(arityMatches, decl)
		}
	}
	if len(arityMatches) == 0 {
		a.errorCode("no overload of function '"+ident+"' takes "+itoa(len(args))+" arguments",
			node, errors.CodeNoMatchingOverload)
		return nil
	}
	if len(arityMatches) == 1 {
		return arityMatches[0]
	}

	// Several overloads share the arity: require an exact type match.
	argTypes := make([]ast.TypeDenoter, len(args))
	for i, arg := range args {
		argTypes[i] = a.typeDenoterOf(arg)
	}

	var exact []*ast.FunctionDecl
	for _, decl := range arityMatches {
		if overloadMatchesExact(decl, argTypes) {
			exact = append(exact, decl)
		}
	}
	if len(exact) == 1 {
		return exact[0]
	}
	if len(exact) > 1 {
		a.errorCode("ambiguous call to overloaded function '"+ident+"'", node, errors.CodeAmbiguousCall)
		return nil
	}

	a.errorCode("no matching overload for call to function '"+ident+"'", node, errors.CodeNoMatchingOverload)
	return nil
}

func callArityMatches(decl *ast.FunctionDecl, numArgs int) bool {
	maxArgs := len(decl.Parameters)
	minArgs := 0
	for _, param := range decl.Parameters {
		if len(param.VarDecls) == 1 && param.VarDecls[0].Initializer == nil {
			minArgs++
		}
	}
	return numArgs >= minArgs && numArgs <= maxArgs
}

func overloadMatchesExact(decl *ast.FunctionDecl, argTypes []ast.TypeDenoter) bool {
	for i, argType := range argTypes {
		if i >= len(decl.Parameters) {
			return false
		}
		param := decl.Parameters[i]
		if param.VarType == nil || param.VarType.TypeDenoter == nil || argType == nil {
			return false
		}
		paramType := param.VarType.TypeDenoter
		if len(param.VarDecls) == 1 && len(param.VarDecls[0].ArrayDims) > 0 {
			paramType = &ast.ArrayTypeDenoter{Base: paramType, Dims: param.VarDecls[0].ArrayDims}
		}
		if !ast.TypeDenotersEqual(argType, paramType) {
			return false
		}
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

/* ----- Type computation ----- */

// typeDenoterOf computes the type of an expression; nil means the type was
// already reported as erroneous, suppressing cascades.
func (a *Analyzer) typeDenoterOf(expr ast.Expr) ast.TypeDenoter {
	switch e := expr.(type) {
	case nil, *ast.NullExpr:
		return nil
	case *ast.ListExpr:
		return a.typeDenoterOf(e.First)
	case *ast.LiteralExpr:
		return &ast.BaseTypeDenoter{DataType: e.DataType}
	case *ast.TypeNameExpr:
		return e.TypeDenoter
	case *ast.TernaryExpr:
		return a.typeDenoterOf(e.Then)
	case *ast.BinaryExpr:
		return a.typeDenoterOfBinary(e)
	case *ast.UnaryExpr:
		return a.typeDenoterOf(e.Expr)
	case *ast.PostUnaryExpr:
		return a.typeDenoterOf(e.Expr)
	case *ast.FunctionCallExpr:
		return a.typeDenoterOfCall(e.Call)
	case *ast.BracketExpr:
		return a.typeDenoterOf(e.Expr)
	case *ast.SuffixExpr:
		return a.typeDenoterOfSuffix(e)
	case *ast.ArrayAccessExpr:
		base := a.typeDenoterOf(e.Expr)
		if base == nil {
			return nil
		}
		peeled, err := ast.GetFromArray(base, len(e.ArrayIndices))
		if err != nil {
			a.errorCode(err.Error(), e, errors.CodeInvalidSubscript)
			return nil
		}
		return peeled
	case *ast.CastExpr:
		return e.TypeExpr.TypeDenoter
	case *ast.VarAccessExpr:
		return a.typeDenoterOfVarIdent(e.VarIdent)
	case *ast.InitializerExpr:
		if len(e.Exprs) > 0 {
			return a.typeDenoterOf(e.Exprs[0])
		}
		return nil
	}
	return nil
}

func (a *Analyzer) typeDenoterOfBinary(e *ast.BinaryExpr) ast.TypeDenoter {
	lhs := a.typeDenoterOf(e.Lhs)
	rhs := a.typeDenoterOf(e.Rhs)
	if lhs == nil || rhs == nil {
		return nil
	}

	if e.Op.IsBooleanOp() {
		return &ast.BaseTypeDenoter{DataType: ast.DataBool}
	}

	lhsBase, lhsOK := lhs.Get().(*ast.BaseTypeDenoter)
	rhsBase, rhsOK := rhs.Get().(*ast.BaseTypeDenoter)
	if !lhsOK || !rhsOK {
		return lhs
	}
	return &ast.BaseTypeDenoter{DataType: commonDataType(lhsBase.DataType, rhsBase.DataType)}
}

// commonDataType applies the usual arithmetic conversions: the wider scalar
// kind wins, and a scalar operand adopts the other operand's shape.
func commonDataType(lhs, rhs ast.DataType) ast.DataType {
	scalar := lhs.Scalar
	if rhs.Scalar > scalar {
		scalar = rhs.Scalar
	}
	rows, cols := lhs.Rows, lhs.Cols
	if lhs.IsScalar() && !rhs.IsScalar() {
		rows, cols = rhs.Rows, rhs.Cols
	}
	return ast.DataType{Scalar: scalar, Rows: rows, Cols: cols}
}

func (a *Analyzer) typeDenoterOfCall(call *ast.FunctionCall) ast.TypeDenoter {
	if call == nil {
		return nil
	}
	if call.TypeDenoter != nil {
		return call.TypeDenoter
	}
	if call.FuncDeclRef != nil && call.FuncDeclRef.ReturnType != nil {
		return call.FuncDeclRef.ReturnType.TypeDenoter
	}
	if call.Intrinsic != ast.IntrinsicUndefined {
		return a.typeDenoterOfIntrinsicCall(call)
	}
	return nil
}

// typeDenoterOfIntrinsicCall derives the result type of an intrinsic call
// from its classification and argument types.
func (a *Analyzer) typeDenoterOfIntrinsicCall(call *ast.FunctionCall) ast.TypeDenoter {
	firstArg := func() ast.DataType {
		if len(call.Arguments) > 0 {
			if base, ok := a.typeDenoterOfAsBase(call.Arguments[0]); ok {
				return base
			}
		}
		return ast.DataFloat
	}

	switch call.Intrinsic {
	case ast.IntrinsicDot, ast.IntrinsicLength, ast.IntrinsicDistance, ast.IntrinsicDeterminant:
		return &ast.BaseTypeDenoter{DataType: ast.DataType{Scalar: firstArg().Scalar, Rows: 1, Cols: 1}}
	case ast.IntrinsicAny, ast.IntrinsicAll, ast.IntrinsicIsInf, ast.IntrinsicIsNaN:
		return &ast.BaseTypeDenoter{DataType: ast.DataBool}
	case ast.IntrinsicAsInt:
		arg := firstArg()
		return &ast.BaseTypeDenoter{DataType: ast.DataType{Scalar: ast.ScalarInt, Rows: arg.Rows, Cols: arg.Cols}}
	case ast.IntrinsicAsUInt1, ast.IntrinsicAsUInt3:
		arg := firstArg()
		return &ast.BaseTypeDenoter{DataType: ast.DataType{Scalar: ast.ScalarUInt, Rows: arg.Rows, Cols: arg.Cols}}
	case ast.IntrinsicAsFloat:
		arg := firstArg()
		return &ast.BaseTypeDenoter{DataType: ast.DataType{Scalar: ast.ScalarFloat, Rows: arg.Rows, Cols: arg.Cols}}
	case ast.IntrinsicTranspose:
		arg := firstArg()
		return &ast.BaseTypeDenoter{DataType: ast.DataType{Scalar: arg.Scalar, Rows: arg.Cols, Cols: arg.Rows}}
	case ast.IntrinsicMul:
		if len(call.Arguments) == 2 {
			lhs, lhsOK := a.typeDenoterOfAsBase(call.Arguments[0])
			rhs, rhsOK := a.typeDenoterOfAsBase(call.Arguments[1])
			if lhsOK && rhsOK {
				return &ast.BaseTypeDenoter{DataType: mulResultType(lhs, rhs)}
			}
		}
		return &ast.BaseTypeDenoter{DataType: firstArg()}
	}

	if call.Intrinsic.IsTextureIntrinsic() ||
		(call.Intrinsic >= ast.IntrinsicTex1D2 && call.Intrinsic <= ast.IntrinsicTexCube4) {
		return &ast.BaseTypeDenoter{DataType: ast.VectorDataType(ast.ScalarFloat, 4)}
	}

	return &ast.BaseTypeDenoter{DataType: firstArg()}
}

func mulResultType(lhs, rhs ast.DataType) ast.DataType {
	switch {
	case lhs.IsMatrix() && rhs.IsVector():
		return ast.VectorDataType(rhs.Scalar, lhs.Rows)
	case lhs.IsVector() && rhs.IsMatrix():
		return ast.VectorDataType(lhs.Scalar, rhs.Cols)
	case lhs.IsMatrix() && rhs.IsMatrix():
		return ast.MatrixDataType(lhs.Scalar, lhs.Rows, rhs.Cols)
	}
	return commonDataType(lhs, rhs)
}

func (a *Analyzer) typeDenoterOfAsBase(expr ast.Expr) (ast.DataType, bool) {
	typeDen := a.typeDenoterOf(expr)
	if typeDen == nil {
		return ast.DataType{}, false
	}
	if base, ok := typeDen.Get().(*ast.BaseTypeDenoter); ok {
		return base.DataType, true
	}
	return ast.DataType{}, false
}

func (a *Analyzer) typeDenoterOfSuffix(e *ast.SuffixExpr) ast.TypeDenoter {
	base := a.typeDenoterOf(e.Expr)
	if base == nil || e.VarIdent == nil {
		return nil
	}
	return a.memberTypeDenoter(base, e.VarIdent, e)
}

func (a *Analyzer) typeDenoterOfVarIdent(varIdent *ast.VarIdent) ast.TypeDenoter {
	if varIdent == nil {
		return nil
	}

	var typeDen ast.TypeDenoter
	switch decl := varIdent.SymbolRef.(type) {
	case *ast.VarDecl:
		typeDen = decl.TypeDenoter()
	case *ast.TextureDecl:
		if decl.DeclStmtRef != nil {
			typeDen = &ast.TextureTypeDenoter{Kind: decl.DeclStmtRef.TextureType}
		}
	case *ast.SamplerDecl:
		typeDen = &ast.SamplerTypeDenoter{}
	case *ast.StructDecl:
		typeDen = ast.NewStructTypeDenoter(decl)
	case *ast.AliasDecl:
		typeDen = decl.TypeDenoter
	default:
		return nil
	}
	if typeDen == nil {
		return nil
	}

	peeled, err := ast.GetFromArray(typeDen, len(varIdent.ArrayIndices))
	if err != nil {
		a.errorCode(err.Error(), varIdent, errors.CodeInvalidSubscript)
		return nil
	}

	if varIdent.Next == nil {
		return peeled
	}
	return a.memberTypeDenoter(peeled, varIdent.Next, varIdent)
}

// memberTypeDenoter resolves '.member' against a structure, or a swizzle
// against a base type.
func (a *Analyzer) memberTypeDenoter(base ast.TypeDenoter, member *ast.VarIdent, node ast.Node) ast.TypeDenoter {
	switch t := base.Get().(type) {
	case *ast.StructTypeDenoter:
		if t.StructRef == nil {
			return nil
		}
		memberDecl := t.StructRef.FetchMember(member.Ident)
		if memberDecl == nil {
			return nil
		}
		memberType := memberDecl.TypeDenoter()
		if memberType == nil {
			return nil
		}
		peeled, err := ast.GetFromArray(memberType, len(member.ArrayIndices))
		if err != nil {
			a.errorCode(err.Error(), member, errors.CodeInvalidSubscript)
			return nil
		}
		if member.Next == nil {
			return peeled
		}
		return a.memberTypeDenoter(peeled, member.Next, node)
	case *ast.BaseTypeDenoter:
		return a.swizzleTypeDenoter(t.DataType, member, node)
	}
	return nil
}

// swizzleTypeDenoter computes the type of a vector subscript such as
// '.xyz'; the result dimension is the subscript length.
func (a *Analyzer) swizzleTypeDenoter(dataType ast.DataType, member *ast.VarIdent, node ast.Node) ast.TypeDenoter {
	swizzle := member.Ident
	if len(swizzle) < 1 || len(swizzle) > 4 {
		a.errorCode("invalid subscript '"+swizzle+"'", node, errors.CodeInvalidSubscript)
		return nil
	}
	for _, c := range swizzle {
		if !strings.ContainsRune("xyzwrgba", c) {
			a.errorCode("invalid subscript '"+swizzle+"'", node, errors.CodeInvalidSubscript)
			return nil
		}
	}
	result := ast.DataType{Scalar: dataType.Scalar, Rows: len(swizzle), Cols: 1}
	return &ast.BaseTypeDenoter{DataType: result}
}

/* ----- Binary and cast validation ----- */

func (a *Analyzer) validateBinaryExpr(e *ast.BinaryExpr) {
	lhs := a.typeDenoterOf(e.Lhs)
	rhs := a.typeDenoterOf(e.Rhs)
	if lhs == nil || rhs == nil {
		return
	}

	_, lhsBase := lhs.Get().(*ast.BaseTypeDenoter)
	_, rhsBase := rhs.Get().(*ast.BaseTypeDenoter)
	if !lhsBase || !rhsBase {
		a.errorCode(
			"invalid operands to binary operator '"+e.Op.String()+"' ("+lhs.String()+" and "+rhs.String()+")",
			e, errors.CodeScalarVectorMatrix)
	}
}

// validateTypeCastFromExpr checks the implicit conversion of an expression
// value into a destination type.
func (a *Analyzer) validateTypeCastFromExpr(expr ast.Expr, dst ast.TypeDenoter, node ast.Node) {
	if dst == nil {
		return
	}
	if _, ok := expr.(*ast.InitializerExpr); ok {
		// Initializer lists convert element-wise; detailed validation is
		// left to the back-end.
		return
	}
	src := a.typeDenoterOf(expr)
	if src == nil {
		return
	}
	a.validateTypeCast(src, dst, node)
}

// validateTypeCast accepts identity, struct-to-struct by exact match, and any
// conversion between two non-string base types: truncation of vector or
// matrix components warns, while narrowing scalar conversions (e.g. float to
// int) and component expansion pass without a diagnostic.
func (a *Analyzer) validateTypeCast(src, dst ast.TypeDenoter, node ast.Node) {
	srcGet := src.Get()
	dstGet := dst.Get()

	if ast.TypeDenotersEqual(srcGet, dstGet) {
		return
	}

	srcBase, srcOK := srcGet.(*ast.BaseTypeDenoter)
	dstBase, dstOK := dstGet.(*ast.BaseTypeDenoter)
	if srcOK && dstOK {
		if srcBase.DataType.Scalar == ast.ScalarString || dstBase.DataType.Scalar == ast.ScalarString {
			a.errorCode("cannot implicitly convert from '"+src.String()+"' to '"+dst.String()+"'",
				node, errors.CodeTypeMismatch)
			return
		}
		if srcBase.DataType.Components() > dstBase.DataType.Components() {
			a.warningAt("implicit truncation of '"+src.String()+"' to '"+dst.String()+"'", node)
		}
		return
	}

	if _, isVoid := srcGet.(*ast.VoidTypeDenoter); isVoid {
		a.errorCode("cannot use a value of type 'void'", node, errors.CodeTypeMismatch)
		return
	}

	a.errorCode("cannot implicitly convert from '"+src.String()+"' to '"+dst.String()+"'",
		node, errors.CodeTypeMismatch)
}
