package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Program, *errors.CollectLog) {
	t.Helper()
	log := &errors.CollectLog{}
	p := NewParser(log)
	prog := p.ParseSource(source.NewCodeFromString("test.hlsl", input))
	return prog, log
}

// userStmts strips the pre-defined type aliases from the global statements.
func userStmts(prog *ast.Program) []ast.Stmt {
	var out []ast.Stmt
	for _, stmt := range prog.GlobalStmts {
		if alias, ok := stmt.(*ast.AliasDeclStmt); ok && alias.NodeArea().Pos.Line == 0 {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

func funcDecl(t *testing.T, prog *ast.Program, ident string) *ast.FunctionDecl {
	t.Helper()
	for _, stmt := range prog.GlobalStmts {
		if decl, ok := stmt.(*ast.FunctionDecl); ok && decl.Ident == ident {
			return decl
		}
	}
	t.Fatalf("function %q not found", ident)
	return nil
}

func TestCastVsBracketWithTypedef(t *testing.T) {
	prog, log := parseSource(t, "typedef int X; void f(){ (X)-1; }")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	body := funcDecl(t, prog, "f").CodeBlock.Stmts
	require.Len(t, body, 1)

	exprStmt, ok := body[0].(*ast.ExprStmt)
	require.True(t, ok)

	cast, ok := exprStmt.Expr.(*ast.CastExpr)
	require.True(t, ok, "expected cast expression, got %T", exprStmt.Expr)

	alias, ok := cast.TypeExpr.TypeDenoter.(*ast.AliasTypeDenoter)
	require.True(t, ok)
	assert.Equal(t, "X", alias.Ident)

	unary, ok := cast.Expr.(*ast.UnaryExpr)
	require.True(t, ok, "expected unary expression, got %T", cast.Expr)
	assert.Equal(t, ast.OpNegate, unary.Op)

	literal, ok := unary.Expr.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "1", literal.Value)
}

func TestCastVsBracketWithVariable(t *testing.T) {
	prog, log := parseSource(t, "int X=0; void f(){ (X)-1; }")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	body := funcDecl(t, prog, "f").CodeBlock.Stmts
	require.Len(t, body, 1)

	exprStmt, ok := body[0].(*ast.ExprStmt)
	require.True(t, ok)

	binary, ok := exprStmt.Expr.(*ast.BinaryExpr)
	require.True(t, ok, "expected binary expression, got %T", exprStmt.Expr)
	assert.Equal(t, ast.OpSub, binary.Op)

	bracket, ok := binary.Lhs.(*ast.BracketExpr)
	require.True(t, ok, "expected bracket expression, got %T", binary.Lhs)

	access, ok := bracket.Expr.(*ast.VarAccessExpr)
	require.True(t, ok)
	assert.Equal(t, "X", access.VarIdent.Ident)

	literal, ok := binary.Rhs.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "1", literal.Value)
}

func TestTypeNameVisibilityIsScoped(t *testing.T) {
	// Inside the scope of the typedef the name is a cast target; in a
	// sibling scope it is not.
	prog, log := parseSource(t, "void f(){ typedef int X; (X)-1; } void g(){ int X = 2; (X)-1; }")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	bodyF := funcDecl(t, prog, "f").CodeBlock.Stmts
	require.Len(t, bodyF, 2)
	exprStmt := bodyF[1].(*ast.ExprStmt)
	_, isCast := exprStmt.Expr.(*ast.CastExpr)
	assert.True(t, isCast, "expected cast inside typedef scope, got %T", exprStmt.Expr)

	bodyG := funcDecl(t, prog, "g").CodeBlock.Stmts
	require.Len(t, bodyG, 2)
	exprStmt = bodyG[1].(*ast.ExprStmt)
	_, isBinary := exprStmt.Expr.(*ast.BinaryExpr)
	assert.True(t, isBinary, "expected binary expression outside typedef scope, got %T", exprStmt.Expr)
}

func TestStructDeclWithInheritance(t *testing.T) {
	prog, log := parseSource(t, "struct A { float x; }; struct B : A { float y; };")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	stmts := userStmts(prog)
	require.Len(t, stmts, 2)

	declB := stmts[1].(*ast.StructDeclStmt).StructDecl
	assert.Equal(t, "B", declB.Ident)
	assert.Equal(t, "A", declB.BaseStructName)
	assert.Equal(t, 1, declB.NumMembers())
}

func TestMultipleInheritanceIsRejected(t *testing.T) {
	prog, _ := parseSource(t, "struct A { float x; }; struct C { float z; }; struct B : A, C { float y; };")
	assert.Nil(t, prog)
}

func TestStructVariableDeclStmt(t *testing.T) {
	prog, log := parseSource(t, "struct S { float x; } s1, s2;")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	stmts := userStmts(prog)
	require.Len(t, stmts, 1)

	varDeclStmt, ok := stmts[0].(*ast.VarDeclStmt)
	require.True(t, ok)
	require.Len(t, varDeclStmt.VarDecls, 2)
	assert.Equal(t, "s1", varDeclStmt.VarDecls[0].Ident)
	assert.Equal(t, "s2", varDeclStmt.VarDecls[1].Ident)
	assert.NotNil(t, varDeclStmt.VarType.StructDecl)
}

func TestCBufferWithRegisterAndPackOffset(t *testing.T) {
	prog, log := parseSource(t, `
cbuffer Scene : register(b0)
{
    float4x4 wvp : packoffset(c0);
    float4 tint;
};
int dummy;`)
	require.NotNil(t, prog, "reports: %v", log.Reports)

	stmts := userStmts(prog)
	buffer, ok := stmts[0].(*ast.BufferDeclStmt)
	require.True(t, ok)
	assert.Equal(t, ast.ConstantBuffer, buffer.BufferType)
	assert.Equal(t, "Scene", buffer.Ident)

	require.Len(t, buffer.SlotRegisters, 1)
	assert.Equal(t, ast.RegisterB, buffer.SlotRegisters[0].RegisterType)
	assert.Equal(t, 0, buffer.SlotRegisters[0].Slot)

	require.Len(t, buffer.Members, 2)
	wvp := buffer.Members[0].VarDecls[0]
	require.NotNil(t, wvp.PackOffset)
	assert.Equal(t, "c0", wvp.PackOffset.RegisterName)
	assert.Same(t, buffer, wvp.BufferDeclRef)
}

func TestPackOffsetOutsideCBufferIsRejected(t *testing.T) {
	prog, log := parseSource(t, "float4 v : packoffset(c0);")
	assert.Nil(t, prog)
	require.NotEmpty(t, log.Errors())
	assert.Contains(t, log.Errors()[0].Message, "packoffset is only allowed in a constant buffer")
}

func TestRegisterOnVariableIsIgnoredWithWarning(t *testing.T) {
	prog, log := parseSource(t, "float4 v : register(c3);")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	found := false
	for _, report := range log.Reports {
		if report.Severity == errors.Warning && report.Message == "register is ignored for variable declarations" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRegisterWithShaderProfile(t *testing.T) {
	prog, log := parseSource(t, "Texture2D tex : register(ps_5_0, t1);")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	texStmt := userStmts(prog)[0].(*ast.TextureDeclStmt)
	reg := texStmt.TextureDecls[0].SlotRegisters[0]
	assert.Equal(t, "ps_5_0", reg.ShaderProfile)
	assert.Equal(t, ast.RegisterT, reg.RegisterType)
	assert.Equal(t, 1, reg.Slot)
}

func TestTechniquesAreIgnored(t *testing.T) {
	prog, log := parseSource(t, `
int before;
technique T0 { pass P0 { } pass P1 { } }
int after;`)
	require.NotNil(t, prog, "reports: %v", log.Reports)

	stmts := userStmts(prog)
	require.Len(t, stmts, 2)

	found := false
	for _, report := range log.Reports {
		if report.Severity == errors.Warning && report.Message == "techniques are ignored" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTextureTemplateArguments(t *testing.T) {
	prog, log := parseSource(t, "Texture2DMS<float4, 4> tex;")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	texStmt := userStmts(prog)[0].(*ast.TextureDeclStmt)
	assert.Equal(t, ast.Texture2DMS, texStmt.TextureType)
	assert.Equal(t, ast.VectorDataType(ast.ScalarFloat, 4), texStmt.ColorType)
	assert.Equal(t, 4, texStmt.NumSamples)
}

func TestVectorAndMatrixTemplates(t *testing.T) {
	prog, log := parseSource(t, "vector<float, 3> v; matrix<float, 4, 4> m;")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	stmts := userStmts(prog)
	require.Len(t, stmts, 2)

	vType := stmts[0].(*ast.VarDeclStmt).VarType.TypeDenoter.(*ast.BaseTypeDenoter)
	assert.Equal(t, ast.VectorDataType(ast.ScalarFloat, 3), vType.DataType)

	mType := stmts[1].(*ast.VarDeclStmt).VarType.TypeDenoter.(*ast.BaseTypeDenoter)
	assert.Equal(t, ast.MatrixDataType(ast.ScalarFloat, 4, 4), mType.DataType)
}

func TestSamplerStateBlock(t *testing.T) {
	prog, log := parseSource(t, `sampler S = sampler_state{ Filter = MIN_MAG_MIP_LINEAR; AddressU = WRAP; };`)
	require.NotNil(t, prog, "reports: %v", log.Reports)

	samplerStmt := userStmts(prog)[0].(*ast.SamplerDeclStmt)
	require.Len(t, samplerStmt.SamplerDecls, 1)
	decl := samplerStmt.SamplerDecls[0]
	assert.Equal(t, "S", decl.Ident)
	require.Len(t, decl.SamplerValues, 2)
	assert.Equal(t, "Filter", decl.SamplerValues[0].Name)
	assert.Equal(t, "AddressU", decl.SamplerValues[1].Name)
}

func TestControlFlowStatements(t *testing.T) {
	prog, log := parseSource(t, `
void f()
{
    for (int i = 0; i < 4; i++) { }
    while (true) { break; }
    do { } while (false);
    if (1) ; else ;
    switch (2) { case 1: break; default: break; }
    discard;
}`)
	require.NotNil(t, prog, "reports: %v", log.Reports)

	body := funcDecl(t, prog, "f").CodeBlock.Stmts
	require.Len(t, body, 6)
	assert.IsType(t, &ast.ForLoopStmt{}, body[0])
	assert.IsType(t, &ast.WhileLoopStmt{}, body[1])
	assert.IsType(t, &ast.DoWhileLoopStmt{}, body[2])
	assert.IsType(t, &ast.IfStmt{}, body[3])
	assert.IsType(t, &ast.SwitchStmt{}, body[4])
	assert.IsType(t, &ast.CtrlTransferStmt{}, body[5])
}

func TestErrorRecoveryAtStatementBoundary(t *testing.T) {
	prog, log := parseSource(t, `
void f()
{
    int x = ;
    int y = 2;
}`)
	assert.Nil(t, prog, "parse must fail overall")
	require.NotEmpty(t, log.Errors())
	// Recovery keeps parsing past the bad statement, so exactly one syntax
	// error is reported.
	assert.Len(t, log.Errors(), 1)
}

func TestUndeclaredIdentifierStillParses(t *testing.T) {
	prog, log := parseSource(t, "void f(){ q + 1; }")
	require.NotNil(t, prog, "reports: %v", log.Reports)
	assert.Empty(t, log.Errors())

	body := funcDecl(t, prog, "f").CodeBlock.Stmts
	require.Len(t, body, 1)
	exprStmt := body[0].(*ast.ExprStmt)
	assert.IsType(t, &ast.BinaryExpr{}, exprStmt.Expr)
}

func TestLineDirectiveShiftsDiagnostics(t *testing.T) {
	prog, log := parseSource(t, "#line 100 \"other.hlsl\"\nfloat4 v : packoffset(c0);")
	assert.Nil(t, prog)
	require.NotEmpty(t, log.Errors())
	report := log.Errors()[0]
	assert.Equal(t, "other.hlsl", report.Area.Pos.Filename)
	assert.Equal(t, 100, report.Area.Pos.Line)
}

func TestFunctionPrototypeAndDefinition(t *testing.T) {
	prog, log := parseSource(t, "float add(float a, float b); float add(float a, float b) { return a + b; }")
	require.NotNil(t, prog, "reports: %v", log.Reports)

	stmts := userStmts(prog)
	require.Len(t, stmts, 2)
	proto := stmts[0].(*ast.FunctionDecl)
	def := stmts[1].(*ast.FunctionDecl)
	assert.False(t, proto.HasBody())
	assert.True(t, def.HasBody())
	require.Len(t, def.Parameters, 2)
}
