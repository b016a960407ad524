// Package semantic implements the context analyzer: it walks the AST,
// resolves identifiers against the scoped symbol table, computes expression
// types, classifies semantics, tags the entry point, and recognizes
// intrinsics.
package semantic

import (
	"fmt"
	"sort"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/shader"
	"xshade/internal/source"
)

// Options configures one analysis run.
type Options struct {
	EntryPoint     string
	Target         shader.Target
	Version        shader.InputVersion
	PreferWrappers bool
	Statistics     *shader.Statistics
}

// Analyzer decorates a program AST in place.
type Analyzer struct {
	handler *errors.Handler
	src     *source.Code
	symbols *SymbolTable
	program *ast.Program
	opts    Options
	model   shader.Model

	structStack     []*ast.StructDecl
	callStack       []*ast.FunctionCall
	funcDeclLevel   int
	entryPointLevel int
}

// NewAnalyzer creates an analyzer submitting reports to the given log.
func NewAnalyzer(log errors.Log) *Analyzer {
	return &Analyzer{
		handler: errors.NewHandler(log),
		symbols: NewSymbolTable(),
	}
}

// DecorateAST analyzes the program; it returns false when any error was
// reported. The source buffer is used for diagnostics snippets only.
func (a *Analyzer) DecorateAST(prog *ast.Program, src *source.Code, opts Options) bool {
	a.src = src
	a.program = prog
	a.opts = opts
	a.model = shader.ModelFromVersion(opts.Version)
	a.symbols = NewSymbolTable()
	a.symbols.OnOverride = func(ident string, prev ast.Node) {
		a.warningAt("declaration of '"+ident+"' shadows a previous declaration", prev)
	}
	a.structStack = nil
	a.callStack = nil
	a.funcDeclLevel = 0
	a.entryPointLevel = -1

	a.openScope()
	for _, stmt := range prog.GlobalStmts {
		a.visitStmt(stmt)
	}
	a.closeScope()

	return !a.handler.HasErrors()
}

// NumErrors returns the number of errors submitted so far.
func (a *Analyzer) NumErrors() int { return a.handler.NumErrors() }

/* ----- Diagnostics ----- */

func (a *Analyzer) submit(severity errors.Severity, msg string, node ast.Node, code errors.Code) {
	var area source.Area
	var line string
	if node != nil {
		area = node.NodeArea()
		if a.src != nil {
			line = a.src.Line(area.Pos.Line)
		}
	}
	a.handler.SubmitReport(severity, msg, area, line, code)
}

func (a *Analyzer) error(msg string, node ast.Node) {
	a.submit(errors.Error, msg, node, "")
}

func (a *Analyzer) errorCode(msg string, node ast.Node, code errors.Code) {
	a.submit(errors.Error, msg, node, code)
}

func (a *Analyzer) warningAt(msg string, node ast.Node) {
	a.submit(errors.Warning, msg, node, "")
}

// errorUndeclaredIdent reports an unresolved identifier, adding the active
// call for context and a suggestion when a near-miss exists.
func (a *Analyzer) errorUndeclaredIdent(ident string, node ast.Node) {
	msg := fmt.Sprintf("undeclared identifier '%s'", ident)
	if call := a.activeFunctionCall(); call != nil && call.Name() != ident {
		msg += fmt.Sprintf(" in call to '%s'", call.Name())
	}
	if similar := a.findSimilarIdents(ident); len(similar) > 0 {
		msg += fmt.Sprintf("; did you mean '%s'?", similar[0])
	}
	a.errorCode(msg, node, errors.CodeUndeclaredIdent)
}

// findSimilarIdents returns visible identifiers within a small edit
// distance, closest first.
func (a *Analyzer) findSimilarIdents(ident string) []string {
	type scored struct {
		name string
		dist int
	}
	var matches []scored
	for _, name := range a.symbols.Idents() {
		if len(name) <= 1 {
			continue
		}
		if d := levenshteinDistance(ident, name); d <= 2 {
			matches = append(matches, scored{name, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for i := 0; i < len(b); i++ {
		current := make([]int, len(a)+1)
		current[0] = i + 1
		for j := 0; j < len(a); j++ {
			cost := 0
			if a[j] != b[i] {
				cost = 1
			}
			current[j+1] = min3(current[j]+1, previous[j+1]+1, previous[j]+cost)
		}
		previous = current
	}

	return previous[len(a)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

/* ----- Scopes and trackers ----- */

func (a *Analyzer) openScope()  { a.symbols.OpenScope() }
func (a *Analyzer) closeScope() { a.symbols.CloseScope() }

func (a *Analyzer) register(ident string, node ast.Node) {
	if err := a.symbols.Register(ident, node); err != nil {
		a.errorCode(err.Error(), node, errors.CodeRedefinition)
	}
}

func (a *Analyzer) pushStructDecl(decl *ast.StructDecl) {
	a.structStack = append(a.structStack, decl)
}

func (a *Analyzer) popStructDecl() {
	a.structStack = a.structStack[:len(a.structStack)-1]
}

func (a *Analyzer) pushFunctionCall(call *ast.FunctionCall) {
	a.callStack = append(a.callStack, call)
}

func (a *Analyzer) popFunctionCall() {
	a.callStack = a.callStack[:len(a.callStack)-1]
}

func (a *Analyzer) activeFunctionCall() *ast.FunctionCall {
	if len(a.callStack) == 0 {
		return nil
	}
	return a.callStack[len(a.callStack)-1]
}

func (a *Analyzer) pushFunctionDeclLevel(isEntryPoint bool) {
	a.funcDeclLevel++
	if isEntryPoint {
		a.entryPointLevel = a.funcDeclLevel
	}
}

func (a *Analyzer) popFunctionDeclLevel() {
	if a.entryPointLevel == a.funcDeclLevel {
		a.entryPointLevel = -1
	}
	a.funcDeclLevel--
}

func (a *Analyzer) insideEntryPoint() bool {
	return a.entryPointLevel >= 0 && a.funcDeclLevel >= a.entryPointLevel
}

/* ----- Statements ----- */

func (a *Analyzer) visitStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.NullStmt:
	case *ast.CodeBlockStmt:
		a.visitCodeBlock(s.CodeBlock)
	case *ast.VarDeclStmt:
		a.visitVarDeclStmt(s)
	case *ast.BufferDeclStmt:
		a.visitBufferDeclStmt(s)
	case *ast.TextureDeclStmt:
		for _, decl := range s.TextureDecls {
			a.register(decl.Ident, decl)
		}
	case *ast.SamplerDeclStmt:
		for _, decl := range s.SamplerDecls {
			a.visitSamplerDecl(decl)
		}
	case *ast.StructDeclStmt:
		a.visitStructDecl(s.StructDecl)
	case *ast.AliasDeclStmt:
		if s.StructDecl != nil {
			a.visitStructDecl(s.StructDecl)
		}
		for _, decl := range s.AliasDecls {
			a.visitAliasDecl(decl)
		}
	case *ast.FunctionDecl:
		a.visitFunctionDecl(s)
	case *ast.ForLoopStmt:
		a.warnOnNullBody(s.Body, "for loop")
		a.visitAttribs(s.Attribs)
		a.openScope()
		a.visitStmt(s.InitStmt)
		a.visitExpr(s.Condition)
		a.visitExpr(s.Iteration)
		a.openScope()
		a.visitStmt(s.Body)
		a.closeScope()
		a.closeScope()
	case *ast.WhileLoopStmt:
		a.warnOnNullBody(s.Body, "while loop")
		a.visitAttribs(s.Attribs)
		a.openScope()
		a.visitExpr(s.Condition)
		a.visitStmt(s.Body)
		a.closeScope()
	case *ast.DoWhileLoopStmt:
		a.warnOnNullBody(s.Body, "do-while loop")
		a.visitAttribs(s.Attribs)
		a.openScope()
		a.visitStmt(s.Body)
		a.visitExpr(s.Condition)
		a.closeScope()
	case *ast.IfStmt:
		a.warnOnNullBody(s.Body, "if")
		a.visitAttribs(s.Attribs)
		a.openScope()
		a.visitExpr(s.Condition)
		a.visitStmt(s.Body)
		a.closeScope()
		if s.ElseStmt != nil {
			a.warnOnNullBody(s.ElseStmt.Body, "else")
			a.openScope()
			a.visitStmt(s.ElseStmt.Body)
			a.closeScope()
		}
	case *ast.SwitchStmt:
		a.visitAttribs(s.Attribs)
		a.openScope()
		a.visitExpr(s.Selector)
		for _, switchCase := range s.Cases {
			if switchCase.Expr != nil {
				a.visitExpr(switchCase.Expr)
				a.requireConstExpr(switchCase.Expr)
			}
			for _, caseStmt := range switchCase.Stmts {
				a.visitStmt(caseStmt)
			}
		}
		a.closeScope()
	case *ast.ExprStmt:
		a.visitExpr(s.Expr)
		a.typeDenoterOf(s.Expr)
		if !a.opts.PreferWrappers {
			if callExpr, ok := s.Expr.(*ast.FunctionCallExpr); ok {
				a.analyzeIntrinsicWrapperInlining(callExpr.Call)
			}
		}
	case *ast.ReturnStmt:
		a.visitReturnStmt(s)
	case *ast.CtrlTransferStmt:
	case nil:
	default:
	}
}

func (a *Analyzer) warnOnNullBody(body ast.Stmt, stmtName string) {
	if _, ok := body.(*ast.NullStmt); ok {
		a.warningAt("<"+stmtName+"> statement with empty body", body)
	}
}

func (a *Analyzer) visitAttribs(attribs []*ast.Attribute) {
	for _, attr := range attribs {
		for _, arg := range attr.Arguments {
			a.visitExpr(arg)
		}
	}
}

func (a *Analyzer) visitCodeBlock(block *ast.CodeBlock) {
	a.openScope()
	for _, stmt := range block.Stmts {
		a.visitStmt(stmt)
	}
	a.closeScope()
}

func (a *Analyzer) visitVarDeclStmt(stmt *ast.VarDeclStmt) {
	a.visitVarType(stmt.VarType)
	for _, decl := range stmt.VarDecls {
		a.visitVarDecl(decl)
	}
}

func (a *Analyzer) visitVarType(varType *ast.VarType) {
	if varType == nil {
		return
	}
	if varType.StructDecl != nil {
		a.visitStructDecl(varType.StructDecl)
	}
	if varType.TypeDenoter == nil {
		a.error("missing variable type", varType)
		return
	}
	a.analyzeTypeDenoter(&varType.TypeDenoter, varType)

	// Decorate the variable type with the named type's declaration.
	switch t := varType.TypeDenoter.(type) {
	case *ast.StructTypeDenoter:
		if t.StructRef != nil {
			varType.SymbolRef = t.StructRef
		}
	case *ast.AliasTypeDenoter:
		if t.AliasRef != nil {
			varType.SymbolRef = t.AliasRef
		}
	}
}

func (a *Analyzer) visitVarDecl(decl *ast.VarDecl) {
	a.register(decl.Ident, decl)

	for _, dim := range decl.ArrayDims {
		a.visitExpr(dim)
		a.requireConstExpr(dim)
	}

	a.analyzeSemantic(&decl.Semantic)

	// Record members with system-value semantics in every enclosing
	// structure's system-value map.
	if decl.Semantic.IsSystemValue() {
		for _, structDecl := range a.structStack {
			if structDecl.SystemValues == nil {
				structDecl.SystemValues = make(map[string]*ast.VarDecl)
			}
			structDecl.SystemValues[decl.Ident] = decl
		}
	}

	if decl.Initializer != nil {
		a.visitExpr(decl.Initializer)
		a.validateTypeCastFromExpr(decl.Initializer, decl.TypeDenoter(), decl)
	}
}

// requireConstExpr reports non-constant expressions where a constant is
// required (array sizes, switch-case labels).
func (a *Analyzer) requireConstExpr(expr ast.Expr) {
	if _, ok := expr.(*ast.NullExpr); ok {
		return
	}
	ev := ast.NewConstExprEvaluator(nil)
	if _, err := ev.EvaluateExpr(expr); err != nil {
		a.error("expected constant expression", expr)
	}
}

func (a *Analyzer) visitBufferDeclStmt(stmt *ast.BufferDeclStmt) {
	// Buffers can only be bound to one slot, and their slots can not be
	// target specific.
	if len(stmt.SlotRegisters) > 1 {
		a.errorCode("buffers can only be bound to one slot", stmt.SlotRegisters[1], errors.CodeBindInvalid)
	}
	for _, slot := range stmt.SlotRegisters {
		if slot.ShaderProfile != "" {
			a.errorCode("user-defined constant buffer slots can not be target specific", slot, errors.CodeTargetInvalid)
		}
	}

	a.validateRegisterSlots(stmt.SlotRegisters, stmt)

	for _, member := range stmt.Members {
		a.visitVarDeclStmt(member)
	}
}

// validateRegisterSlots reports duplicate register bindings on one
// declaration.
func (a *Analyzer) validateRegisterSlots(slots []*ast.RegisterSlot, node ast.Node) {
	seen := make(map[ast.RegisterType]map[int]bool)
	for _, slot := range slots {
		if seen[slot.RegisterType] == nil {
			seen[slot.RegisterType] = make(map[int]bool)
		}
		if seen[slot.RegisterType][slot.Slot] {
			a.errorCode("duplicate register binding", slot, errors.CodeBindInvalid)
		}
		seen[slot.RegisterType][slot.Slot] = true
	}
}

func (a *Analyzer) visitStructDecl(decl *ast.StructDecl) {
	if decl.BaseStructName != "" {
		decl.BaseStructRef = a.fetchStructDeclFromIdent(decl.BaseStructName, decl)
		if decl.BaseStructRef == decl {
			a.error("recursive struct inheritance is not allowed", decl)
			decl.BaseStructRef = nil
		}
	}

	a.register(decl.Ident, decl)

	a.pushStructDecl(decl)
	if len(a.structStack) > 1 {
		decl.IsNestedStruct = true
		if !decl.IsAnonymous() {
			a.error("nested structures must be anonymous", decl)
		}
	}
	a.openScope()
	for _, member := range decl.Members {
		a.visitVarDeclStmt(member)
	}
	a.closeScope()
	a.popStructDecl()

	if decl.NumMembers() == 0 {
		a.warningAt("'"+decl.Signature()+"' is completely empty", decl)
	}
}

func (a *Analyzer) visitAliasDecl(decl *ast.AliasDecl) {
	a.analyzeTypeDenoter(&decl.TypeDenoter, decl)
	a.register(decl.Ident, decl)
}

func (a *Analyzer) visitSamplerDecl(decl *ast.SamplerDecl) {
	a.register(decl.Ident, decl)

	// Harvest inline sampler states into the statistics sink.
	if a.opts.Statistics != nil && len(decl.SamplerValues) > 0 {
		samplerState := shader.NewSamplerState()
		for _, value := range decl.SamplerValues {
			a.analyzeSamplerValue(value, &samplerState)
		}
		if a.opts.Statistics.SamplerStates == nil {
			a.opts.Statistics.SamplerStates = make(map[string]shader.SamplerState)
		}
		a.opts.Statistics.SamplerStates[decl.Ident] = samplerState
	}
}

func (a *Analyzer) visitFunctionDecl(decl *ast.FunctionDecl) {
	a.handler.PushContext("function " + decl.Signature())
	defer a.handler.PopContext()

	isEntryPoint := decl.Ident == a.opts.EntryPoint

	a.analyzeSemantic(&decl.Semantic)

	a.register(decl.Ident, decl)

	a.visitAttribs(decl.Attribs)
	a.visitVarType(decl.ReturnType)

	a.openScope()

	for _, param := range decl.Parameters {
		a.visitVarDeclStmt(param)
	}

	if isEntryPoint {
		a.analyzeEntryPoint(decl)
	}

	a.pushFunctionDeclLevel(isEntryPoint)
	if decl.CodeBlock != nil {
		a.visitCodeBlock(decl.CodeBlock)
	}
	a.popFunctionDeclLevel()

	a.markEndOfScopes(decl)

	a.closeScope()
}

func (a *Analyzer) visitReturnStmt(stmt *ast.ReturnStmt) {
	a.visitExpr(stmt.Expr)
	a.typeDenoterOf(stmt.Expr)

	if !a.insideEntryPoint() || stmt.Expr == nil {
		return
	}

	// When the entry point returns a structure variable as a whole (a local,
	// a parameter or a global), remember its name as the interface-block
	// alias and drop its declaration from code generation.
	varAccess, ok := stmt.Expr.(*ast.VarAccessExpr)
	if !ok || varAccess.VarIdent.SymbolRef == nil || varAccess.VarIdent.Next != nil {
		return
	}
	varDecl, ok := varAccess.VarIdent.SymbolRef.(*ast.VarDecl)
	if !ok || varDecl.DeclStmtRef == nil || varDecl.DeclStmtRef.VarType == nil {
		return
	}
	if structDecl, ok := varDecl.DeclStmtRef.VarType.SymbolRef.(*ast.StructDecl); ok {
		structDecl.AliasName = varAccess.VarIdent.Ident
		varDecl.DisableCodeGen = true
	}
}

/* ----- Type denoters ----- */

// analyzeTypeDenoter resolves named types inside a denoter; alias denoters
// naming a structure are replaced by struct denoters.
func (a *Analyzer) analyzeTypeDenoter(td *ast.TypeDenoter, node ast.Node) {
	switch t := (*td).(type) {
	case *ast.AliasTypeDenoter:
		switch sym := a.symbols.Fetch(t.Ident).(type) {
		case *ast.AliasDecl:
			t.AliasRef = sym
		case *ast.StructDecl:
			*td = ast.NewStructTypeDenoter(sym)
		case nil:
			a.errorUndeclaredIdent(t.Ident, node)
		default:
			a.error("identifier '"+t.Ident+"' does not name a type", node)
		}
	case *ast.StructTypeDenoter:
		if t.StructRef == nil {
			t.StructRef = a.fetchStructDeclFromIdent(t.Ident, node)
		}
	case *ast.ArrayTypeDenoter:
		a.analyzeTypeDenoter(&t.Base, node)
		t.DimSizes = t.DimSizes[:0]
		for _, dim := range t.Dims {
			if _, ok := dim.(*ast.NullExpr); ok {
				t.DimSizes = append(t.DimSizes, -1)
				continue
			}
			ev := ast.NewConstExprEvaluator(nil)
			value, err := ev.EvaluateExpr(dim)
			if err != nil {
				a.error("array dimension must be a constant expression", dim)
				t.DimSizes = append(t.DimSizes, -1)
				continue
			}
			t.DimSizes = append(t.DimSizes, int(value.ToInt()))
		}
	}
}

func (a *Analyzer) fetchStructDeclFromIdent(ident string, node ast.Node) *ast.StructDecl {
	if decl := a.symbols.FetchStructDecl(ident); decl != nil {
		return decl
	}
	a.errorUndeclaredIdent(ident, node)
	return nil
}

/* ----- Semantics ----- */

// analyzeSemantic rewrites the vertex-stage position semantic to the
// internal VertexPosition so the back-end picks gl_Position.
func (a *Analyzer) analyzeSemantic(semantic *ast.IndexedSemantic) {
	if semantic.Semantic == ast.SemanticPosition && a.opts.Target == shader.VertexShader {
		semantic.Semantic = ast.SemanticVertexPosition
	}
}

/* ----- Entry point ----- */

func (a *Analyzer) analyzeEntryPoint(decl *ast.FunctionDecl) {
	a.program.EntryPointRef = decl
	decl.IsEntryPoint = true

	// Rebuilt on every run so repeated analysis stays idempotent.
	decl.InputSemantics = nil
	decl.OutputSemantics = nil

	for _, param := range decl.Parameters {
		if len(param.VarDecls) == 1 {
			a.analyzeEntryPointParameter(decl, param)
		} else {
			a.error("invalid number of variable declarations in function parameter", param)
		}
	}

	// A structure return type marks the whole structure as shader output.
	if decl.ReturnType != nil && decl.ReturnType.TypeDenoter != nil {
		if structDen, ok := decl.ReturnType.TypeDenoter.Get().(*ast.StructTypeDenoter); ok && structDen.StructRef != nil {
			a.analyzeEntryPointStructInOut(decl, structDen.StructRef, "", false)
		}
	}

	// Pre-SM4 fragment shaders use a slightly different screen space (VPOS
	// vs. SV_Position).
	if a.opts.Target == shader.FragmentShader && a.opts.Version <= shader.HLSL3 {
		a.program.HasSM3ScreenSpace = true
	}
}

func (a *Analyzer) analyzeEntryPointParameter(decl *ast.FunctionDecl, param *ast.VarDeclStmt) {
	varDecl := param.VarDecls[0]
	if param.IsInput() {
		a.analyzeEntryPointParameterInOut(decl, varDecl, true)
	}
	if param.IsOutput() {
		a.analyzeEntryPointParameterInOut(decl, varDecl, false)
	}
}

func (a *Analyzer) analyzeEntryPointParameterInOut(decl *ast.FunctionDecl, varDecl *ast.VarDecl, input bool) {
	typeDen := varDecl.TypeDenoter()
	if typeDen == nil {
		return
	}

	if structDen, ok := typeDen.Get().(*ast.StructTypeDenoter); ok && structDen.StructRef != nil {
		a.analyzeEntryPointStructInOut(decl, structDen.StructRef, varDecl.Ident, input)
		return
	}

	if varDecl.Semantic.IsValid() {
		if varDecl.Semantic.IsSystemValue() {
			varDecl.IsSystemValue = true
		}
	} else {
		a.errorCode("missing semantic in parameter '"+varDecl.Ident+"' of entry point", varDecl, errors.CodeMissingSemantic)
	}

	if input {
		decl.InputSemantics = append(decl.InputSemantics, varDecl)
		varDecl.IsShaderInput = true
	} else {
		decl.OutputSemantics = append(decl.OutputSemantics, varDecl)
		varDecl.IsShaderOutput = true
	}
}

func (a *Analyzer) analyzeEntryPointStructInOut(decl *ast.FunctionDecl, structDecl *ast.StructDecl, structAliasName string, input bool) {
	structDecl.AliasName = structAliasName

	for _, member := range structDecl.Members {
		for _, memberVar := range member.VarDecls {
			a.analyzeEntryPointParameterInOut(decl, memberVar, input)
		}
	}

	if input {
		structDecl.IsShaderInput = true
	} else {
		structDecl.IsShaderOutput = true
	}
}

/* ----- End-of-scope analysis ----- */

// markEndOfScopes flags the terminal statement of the function body so the
// back-end can elide a trailing 'return;' on void returns.
func (a *Analyzer) markEndOfScopes(decl *ast.FunctionDecl) {
	if decl.CodeBlock != nil {
		markEndOfScopeStmts(decl.CodeBlock.Stmts)
	}
}

func markEndOfScopeStmts(stmts []ast.Stmt) {
	if len(stmts) == 0 {
		return
	}
	markEndOfScopeStmt(stmts[len(stmts)-1])
}

func markEndOfScopeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.CodeBlockStmt:
		s.MarkEndOfFunction()
		markEndOfScopeStmts(s.CodeBlock.Stmts)
	case *ast.IfStmt:
		s.MarkEndOfFunction()
		markEndOfScopeStmt(s.Body)
		if s.ElseStmt != nil {
			markEndOfScopeStmt(s.ElseStmt.Body)
		}
	case *ast.ReturnStmt:
		s.MarkEndOfFunction()
	case *ast.ExprStmt:
		s.MarkEndOfFunction()
	case *ast.NullStmt:
		s.MarkEndOfFunction()
	case *ast.CtrlTransferStmt:
		s.MarkEndOfFunction()
	}
}
