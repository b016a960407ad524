package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/parser"
	"xshade/internal/shader"
	"xshade/internal/source"
)

func analyzeSource(t *testing.T, input string, opts Options) (*ast.Program, *errors.CollectLog, bool) {
	t.Helper()

	parseLog := &errors.CollectLog{}
	p := parser.NewParser(parseLog)
	prog := p.ParseSource(source.NewCodeFromString("test.hlsl", input))
	require.NotNil(t, prog, "parse reports: %v", parseLog.Reports)

	log := &errors.CollectLog{}
	analyzer := NewAnalyzer(log)
	ok := analyzer.DecorateAST(prog, source.NewCodeFromString("test.hlsl", input), opts)
	return prog, log, ok
}

func vertexOpts(entry string) Options {
	return Options{EntryPoint: entry, Target: shader.VertexShader, Version: shader.HLSL5}
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

func structDecl(t *testing.T, prog *ast.Program, ident string) *ast.StructDecl {
	t.Helper()
	for _, stmt := range prog.GlobalStmts {
		if declStmt, ok := stmt.(*ast.StructDeclStmt); ok && declStmt.StructDecl.Ident == ident {
			return declStmt.StructDecl
		}
	}
	t.Fatalf("struct %q not found", ident)
	return nil
}

const entryPointSource = `struct VS_IN{ float4 p:POSITION; }; float4 main(VS_IN i):SV_Position{ return i.p; }`

func TestEntryPointSemanticsHarvesting(t *testing.T) {
	prog, log, ok := analyzeSource(t, entryPointSource, vertexOpts("main"))
	require.True(t, ok, "reports: %v", log.Reports)

	vsIn := structDecl(t, prog, "VS_IN")
	assert.True(t, vsIn.IsShaderInput)
	assert.False(t, vsIn.IsShaderOutput)

	require.Contains(t, vsIn.SystemValues, "p")
	member := vsIn.SystemValues["p"]
	assert.Equal(t, "POSITION", member.Semantic.Name)
	assert.Equal(t, ast.SemanticVertexPosition, member.Semantic.Semantic)
	assert.True(t, member.IsShaderInput)

	main := funcDecl(t, prog, "main")
	assert.True(t, main.IsEntryPoint)
	assert.Same(t, main, prog.EntryPointRef)
	require.Len(t, main.InputSemantics, 1)
	assert.Equal(t, "p", main.InputSemantics[0].Ident)

	// The return semantic is rewritten from the position semantic to the
	// internal vertex position for the vertex stage.
	assert.Equal(t, ast.SemanticVertexPosition, main.Semantic.Semantic)
}

func TestEntryPointMarkingIsIdempotent(t *testing.T) {
	prog, log, ok := analyzeSource(t, entryPointSource, vertexOpts("main"))
	require.True(t, ok, "reports: %v", log.Reports)

	main := funcDecl(t, prog, "main")
	firstInputs := append([]*ast.VarDecl(nil), main.InputSemantics...)
	firstSemantic := main.Semantic

	log2 := &errors.CollectLog{}
	analyzer := NewAnalyzer(log2)
	ok = analyzer.DecorateAST(prog, nil, vertexOpts("main"))
	require.True(t, ok, "reports: %v", log2.Reports)

	assert.Equal(t, firstInputs, main.InputSemantics)
	assert.Equal(t, firstSemantic, main.Semantic)
	assert.Same(t, main, prog.EntryPointRef)
}

func TestMissingSemanticOnEntryPointParameter(t *testing.T) {
	_, log, ok := analyzeSource(t, "float4 main(float4 p) : SV_Position { return p; }", vertexOpts("main"))
	assert.False(t, ok)
	require.NotEmpty(t, log.Errors())
	assert.Contains(t, log.Errors()[0].Message, "missing semantic in parameter 'p' of entry point")
}

func TestIntrinsicResolution(t *testing.T) {
	prog, log, ok := analyzeSource(t, "float4 c; float s = dot(c, c);", vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	var call *ast.FunctionCall
	for _, stmt := range prog.GlobalStmts {
		if varStmt, isVar := stmt.(*ast.VarDeclStmt); isVar {
			for _, decl := range varStmt.VarDecls {
				if callExpr, isCall := decl.Initializer.(*ast.FunctionCallExpr); isCall {
					call = callExpr.Call
				}
			}
		}
	}
	require.NotNil(t, call)
	assert.Equal(t, ast.IntrinsicDot, call.Intrinsic)
}

func TestIntrinsicOverloadRefinement(t *testing.T) {
	prog, log, ok := analyzeSource(t,
		"void f(){ uint3 u = asuint(1.0, 2.0, 3.0); uint v = asuint(1.0); }", vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	body := funcDecl(t, prog, "f").CodeBlock.Stmts
	require.Len(t, body, 2)

	callOf := func(stmt ast.Stmt) *ast.FunctionCall {
		varStmt := stmt.(*ast.VarDeclStmt)
		return varStmt.VarDecls[0].Initializer.(*ast.FunctionCallExpr).Call
	}
	assert.Equal(t, ast.IntrinsicAsUInt3, callOf(body[0]).Intrinsic)
	assert.Equal(t, ast.IntrinsicAsUInt1, callOf(body[1]).Intrinsic)
}

func TestIntrinsicShaderModelWarning(t *testing.T) {
	_, log, ok := analyzeSource(t, "void f(){ float r = rcp(2.0); }",
		Options{EntryPoint: "", Target: shader.VertexShader, Version: shader.HLSL3})
	require.True(t, ok, "reports: %v", log.Reports)

	found := false
	for _, report := range log.Reports {
		if report.Severity == errors.Warning && strings.Contains(report.Message, "requires shader model") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTextureMethodValidation(t *testing.T) {
	source := `
Texture2D tex;
SamplerState smp;
float4 f() { return tex.Sample(smp, float2(0.5, 0.5)); }`
	prog, log, ok := analyzeSource(t, source, vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	ret := funcDecl(t, prog, "f").CodeBlock.Stmts[0].(*ast.ReturnStmt)
	call := ret.Expr.(*ast.FunctionCallExpr).Call
	assert.Equal(t, ast.IntrinsicTextureSample2, call.Intrinsic)
}

func TestInvalidIntrinsicOnTextureObject(t *testing.T) {
	source := `
Texture2D tex;
void f() { tex.dot(1, 2); }`
	_, log, ok := analyzeSource(t, source, vertexOpts(""))
	assert.False(t, ok)
	require.NotEmpty(t, log.Errors())
	assert.Contains(t, log.Errors()[0].Message, "invalid intrinsic 'dot' for a texture object")
}

func TestUndeclaredIdentifier(t *testing.T) {
	_, log, ok := analyzeSource(t, "void f(){ q + 1; }", vertexOpts(""))
	assert.False(t, ok)

	errs := log.Errors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "undeclared identifier 'q'")
	assert.Equal(t, errors.CodeUndeclaredIdent, errs[0].Code)
}

func TestUndeclaredIdentifierSuggestion(t *testing.T) {
	_, log, ok := analyzeSource(t, "void f(){ float value = 1.0; valu + 1; }", vertexOpts(""))
	assert.False(t, ok)
	require.NotEmpty(t, log.Errors())
	assert.Contains(t, log.Errors()[0].Message, "did you mean 'value'?")
}

func TestSamplerStateHarvesting(t *testing.T) {
	statistics := &shader.Statistics{}
	opts := vertexOpts("")
	opts.Statistics = statistics

	_, log, ok := analyzeSource(t,
		`sampler S = sampler_state{ Filter = MIN_MAG_MIP_LINEAR; AddressU = WRAP; BorderColor = float4(1,0,0,1); };`,
		opts)
	require.True(t, ok, "reports: %v", log.Reports)

	require.Contains(t, statistics.SamplerStates, "S")
	state := statistics.SamplerStates["S"]
	assert.Equal(t, shader.FilterMinMagMipLinear, state.Filter)
	assert.Equal(t, shader.AddressWrap, state.AddressU)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, state.BorderColor)
}

func TestOverloadResolution(t *testing.T) {
	source := `
float pick(int x) { return 1.0; }
float pick(float x) { return 2.0; }
void f() { float r = pick(1); }`
	prog, log, ok := analyzeSource(t, source, vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	body := funcDecl(t, prog, "f").CodeBlock.Stmts
	call := body[0].(*ast.VarDeclStmt).VarDecls[0].Initializer.(*ast.FunctionCallExpr).Call
	require.NotNil(t, call.FuncDeclRef)

	intOverload := funcDecl(t, prog, "pick")
	assert.Same(t, intOverload, call.FuncDeclRef)
}

// Resolving the same call against the same symbol table must pick the same
// declaration every time.
func TestOverloadDeterminism(t *testing.T) {
	source := `
float pick(int x) { return 1.0; }
float pick(float x) { return 2.0; }
void f() { float r = pick(1); }`

	prog, log, ok := analyzeSource(t, source, vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	call := funcDecl(t, prog, "f").CodeBlock.Stmts[0].(*ast.VarDeclStmt).VarDecls[0].
		Initializer.(*ast.FunctionCallExpr).Call
	first := call.FuncDeclRef

	for i := 0; i < 3; i++ {
		log := &errors.CollectLog{}
		ok := NewAnalyzer(log).DecorateAST(prog, nil, vertexOpts(""))
		require.True(t, ok, "reports: %v", log.Reports)
		assert.Same(t, first, call.FuncDeclRef)
	}
}

func TestRedeclarationIsRejected(t *testing.T) {
	_, log, ok := analyzeSource(t, "void f(){ int x; float x; }", vertexOpts(""))
	assert.False(t, ok)
	require.NotEmpty(t, log.Errors())
	assert.Equal(t, errors.CodeRedefinition, log.Errors()[0].Code)
}

func TestFunctionOverloadGrouping(t *testing.T) {
	_, log, ok := analyzeSource(t, "void f(int x) {} void f(float x) {}", vertexOpts(""))
	assert.True(t, ok, "reports: %v", log.Reports)
}

func TestImplicitTruncationWarning(t *testing.T) {
	_, log, ok := analyzeSource(t, "void f(){ float4 v = float4(1,2,3,4); float2 w; w = v; }", vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	found := false
	for _, report := range log.Reports {
		if report.Severity == errors.Warning && strings.Contains(report.Message, "implicit truncation") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIncompatibleCastIsRejected(t *testing.T) {
	source := `
struct A { float x; };
void f() { A a; float b = 0; a = b; }`
	_, log, ok := analyzeSource(t, source, vertexOpts(""))
	assert.False(t, ok)
	require.NotEmpty(t, log.Errors())
	assert.Equal(t, errors.CodeTypeMismatch, log.Errors()[0].Code)
}

func TestEmptyStructWarning(t *testing.T) {
	_, log, ok := analyzeSource(t, "struct Empty { };", vertexOpts(""))
	require.True(t, ok, "reports: %v", log.Reports)

	found := false
	for _, report := range log.Reports {
		if report.Severity == errors.Warning && strings.Contains(report.Message, "completely empty") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBufferSlotValidation(t *testing.T) {
	_, log, ok := analyzeSource(t, "cbuffer B : register(b0) : register(b1) { float x; };", vertexOpts(""))
	assert.False(t, ok)
	require.NotEmpty(t, log.Errors())
	assert.Equal(t, errors.CodeBindInvalid, log.Errors()[0].Code)
}

func TestPreSM4FragmentScreenSpaceFlag(t *testing.T) {
	prog, log, ok := analyzeSource(t, "float4 main(float4 c : COLOR0) : COLOR { return c; }",
		Options{EntryPoint: "main", Target: shader.FragmentShader, Version: shader.HLSL3})
	require.True(t, ok, "reports: %v", log.Reports)
	assert.True(t, prog.HasSM3ScreenSpace)
}

func TestScopeBalance(t *testing.T) {
	source := `
struct S { float x; };
float helper(float v) { { float inner = v; } return v; }
void f() { for (int i = 0; i < 4; i++) { if (i > 1) { int nested; } } }`
	log := &errors.CollectLog{}
	p := parser.NewParser(log)
	prog := p.ParseSource(source2(source))
	require.NotNil(t, prog)

	analyzer := NewAnalyzer(log)
	analyzer.DecorateAST(prog, nil, vertexOpts(""))
	// All opened scopes were closed again.
	assert.Equal(t, 0, analyzer.symbols.NumScopes())
}

func source2(text string) *source.Code {
	return source.NewCodeFromString("test.hlsl", text)
}
