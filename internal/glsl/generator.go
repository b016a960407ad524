package glsl

import (
	"fmt"
	"io"
	"strings"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/shader"
)

// Options configures code generation.
type Options struct {
	Target     shader.Target
	Version    shader.OutputVersion
	Statistics *shader.Statistics
}

// Generator walks the decorated AST and pretty-prints GLSL.
type Generator struct {
	writer  *CodeWriter
	handler *errors.Handler
	opts    Options

	program *ast.Program
}

// NewGenerator creates a generator submitting reports to the given log.
func NewGenerator(log errors.Log) *Generator {
	return &Generator{handler: errors.NewHandler(log)}
}

// GenerateCode emits the whole program; it returns false when writing to the
// output fails.
func (g *Generator) GenerateCode(prog *ast.Program, out io.Writer, opts Options) bool {
	g.writer = NewCodeWriter(out)
	g.opts = opts
	g.program = prog

	version := opts.Version
	if version == shader.GLSL {
		version = shader.GLSL330
	}
	g.writer.WriteLine(fmt.Sprintf("#version %d", int(version)))
	g.writer.WriteLine("")

	for _, stmt := range prog.GlobalStmts {
		g.writeGlobalStmt(stmt)
	}

	return g.writer.Err() == nil && !g.handler.HasErrors()
}

/* ----- Globals ----- */

func (g *Generator) writeGlobalStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BufferDeclStmt:
		g.writeBufferDecl(s)
	case *ast.TextureDeclStmt:
		g.writeTextureDecl(s)
	case *ast.SamplerDeclStmt:
		// Separate sampler states have no GLSL counterpart; sampling state
		// belongs to the texture object.
	case *ast.StructDeclStmt:
		g.writeStructDecl(s.StructDecl)
	case *ast.AliasDeclStmt:
		// Typedefs are resolved through their canonical denoters.
	case *ast.VarDeclStmt:
		g.writeGlobalVarDecl(s)
	case *ast.FunctionDecl:
		g.writeFunctionDecl(s)
	}
}

func (g *Generator) writeBufferDecl(stmt *ast.BufferDeclStmt) {
	if g.opts.Statistics != nil {
		slot := 0
		if len(stmt.SlotRegisters) > 0 {
			slot = stmt.SlotRegisters[0].Slot
		}
		g.opts.Statistics.ConstantBuffers = append(g.opts.Statistics.ConstantBuffers,
			shader.Binding{Name: stmt.Ident, Slot: slot})
	}

	// Constant buffer members become plain uniforms so the output also
	// works below GLSL 1.40.
	for _, member := range stmt.Members {
		for _, decl := range member.VarDecls {
			g.writer.WriteLine("uniform " + g.typeString(member.VarType.TypeDenoter) + " " + decl.Ident + g.arrayDimsString(decl.ArrayDims) + ";")
		}
	}
	g.writer.WriteLine("")
}

func (g *Generator) writeTextureDecl(stmt *ast.TextureDeclStmt) {
	for _, decl := range stmt.TextureDecls {
		if g.opts.Statistics != nil {
			slot := 0
			for _, reg := range decl.SlotRegisters {
				if reg.RegisterType == ast.RegisterT {
					slot = reg.Slot
					break
				}
			}
			g.opts.Statistics.Textures = append(g.opts.Statistics.Textures,
				shader.Binding{Name: decl.Ident, Slot: slot})
		}
		g.writer.WriteLine("uniform " + TextureKindToKeyword(stmt.TextureType) + " " + decl.Ident + g.arrayDimsString(decl.ArrayDims) + ";")
	}
}

func (g *Generator) writeStructDecl(decl *ast.StructDecl) {
	// Structures flattened into the shader interface are not emitted as
	// struct types; their members become in/out globals at the entry point.
	if decl.IsShaderInput || decl.IsShaderOutput {
		return
	}
	g.writer.WriteLine("struct " + decl.Ident)
	g.writer.WriteLine("{")
	g.writer.PushIndent()
	for _, member := range decl.Members {
		for _, varDecl := range member.VarDecls {
			g.writer.WriteLine(g.typeString(member.VarType.TypeDenoter) + " " + varDecl.Ident + g.arrayDimsString(varDecl.ArrayDims) + ";")
		}
	}
	g.writer.PopIndent()
	g.writer.WriteLine("};")
	g.writer.WriteLine("")
}

func (g *Generator) writeGlobalVarDecl(stmt *ast.VarDeclStmt) {
	for _, decl := range stmt.VarDecls {
		if decl.DisableCodeGen {
			continue
		}
		prefix := ""
		if stmt.InputModifier == "uniform" {
			prefix = "uniform "
		} else if stmt.HasTypeModifier("const") {
			prefix = "const "
		}
		line := prefix + g.typeString(stmt.VarType.TypeDenoter) + " " + decl.Ident + g.arrayDimsString(decl.ArrayDims)
		if decl.Initializer != nil {
			line += " = " + g.exprString(decl.Initializer)
		}
		g.writer.WriteLine(line + ";")
	}
}

/* ----- Functions ----- */

func (g *Generator) writeFunctionDecl(decl *ast.FunctionDecl) {
	if decl.CodeBlock == nil {
		return
	}
	if decl.IsEntryPoint {
		g.writeEntryPoint(decl)
		return
	}

	var params []string
	for _, param := range decl.Parameters {
		for _, varDecl := range param.VarDecls {
			paramStr := ""
			switch param.InputModifier {
			case "out":
				paramStr = "out "
			case "inout":
				paramStr = "inout "
			}
			params = append(params, paramStr+g.typeString(param.VarType.TypeDenoter)+" "+varDecl.Ident)
		}
	}

	g.writer.WriteLine("")
	g.writer.WriteLine(g.typeString(decl.ReturnType.TypeDenoter) + " " + decl.Ident + "(" + strings.Join(params, ", ") + ")")
	g.writeCodeBlock(decl.CodeBlock, false)
}

// writeEntryPoint flattens the entry point into 'void main()': harvested
// input/output semantics become in/out globals, and structure member
// accesses on entry parameters collapse to those globals.
func (g *Generator) writeEntryPoint(decl *ast.FunctionDecl) {
	g.writer.WriteLine("")

	fragmentTarget := 0
	for _, varDecl := range decl.InputSemantics {
		g.writeInterfaceVar(varDecl, true)
	}
	for _, varDecl := range decl.OutputSemantics {
		g.writeInterfaceVar(varDecl, false)
	}

	// The function-return semantic produces one more output.
	returnOutput := ""
	if decl.ReturnType != nil {
		if _, isVoid := decl.ReturnType.TypeDenoter.Get().(*ast.VoidTypeDenoter); !isVoid {
			if name, ok := SemanticToKeyword(decl.Semantic, g.opts.Target, false); ok {
				returnOutput = name
			} else {
				returnOutput = outputVarName(decl.Semantic)
				g.writer.WriteLine("out " + g.typeString(decl.ReturnType.TypeDenoter) + " " + returnOutput + ";")
				if g.opts.Target == shader.FragmentShader && g.opts.Statistics != nil {
					g.opts.Statistics.FragmentTargets = append(g.opts.Statistics.FragmentTargets,
						shader.Binding{Name: returnOutput, Slot: decl.Semantic.Index + fragmentTarget})
				}
			}
		}
	}

	g.writer.WriteLine("")
	g.writer.WriteLine("void main()")
	g.writer.WriteLine("{")
	g.writer.PushIndent()
	for _, stmt := range decl.CodeBlock.Stmts {
		g.writeEntryStmt(stmt, returnOutput)
	}
	g.writer.PopIndent()
	g.writer.WriteLine("}")
}

func (g *Generator) writeInterfaceVar(varDecl *ast.VarDecl, input bool) {
	if _, ok := SemanticToKeyword(varDecl.Semantic, g.opts.Target, input); ok {
		// Built-in pipeline variables need no declaration; accesses rewrite
		// to them when identifiers are rendered.
		return
	}

	direction := "in"
	if !input {
		direction = "out"
		if g.opts.Target == shader.FragmentShader && g.opts.Statistics != nil {
			g.opts.Statistics.FragmentTargets = append(g.opts.Statistics.FragmentTargets,
				shader.Binding{Name: varDecl.Ident, Slot: varDecl.Semantic.Index})
		}
	}

	typeDen := varDecl.TypeDenoter()
	if typeDen == nil {
		return
	}
	g.writer.WriteLine(direction + " " + g.typeString(typeDen) + " " + varDecl.Ident + ";")
}

// writeEntryStmt writes one entry-point body statement, rewriting returns
// into output assignments.
func (g *Generator) writeEntryStmt(stmt ast.Stmt, returnOutput string) {
	if ret, ok := stmt.(*ast.ReturnStmt); ok {
		if ret.Expr != nil && returnOutput != "" {
			g.writer.WriteLine(returnOutput + " = " + g.exprString(ret.Expr) + ";")
		}
		// A trailing 'return;' at the end of the function body is elided.
		if !ret.IsEndOfFunction {
			g.writer.WriteLine("return;")
		}
		return
	}
	g.writeStmt(stmt)
}

/* ----- Statements ----- */

func (g *Generator) writeCodeBlock(block *ast.CodeBlock, inner bool) {
	g.writer.WriteLine("{")
	g.writer.PushIndent()
	for _, stmt := range block.Stmts {
		g.writeStmt(stmt)
	}
	g.writer.PopIndent()
	g.writer.WriteLine("}")
}

func (g *Generator) writeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.NullStmt:
		g.writer.WriteLine(";")
	case *ast.CodeBlockStmt:
		g.writeCodeBlock(s.CodeBlock, true)
	case *ast.VarDeclStmt:
		for _, decl := range s.VarDecls {
			if decl.DisableCodeGen {
				continue
			}
			line := g.typeString(s.VarType.TypeDenoter) + " " + decl.Ident + g.arrayDimsString(decl.ArrayDims)
			if decl.Initializer != nil {
				line += " = " + g.exprString(decl.Initializer)
			}
			g.writer.WriteLine(line + ";")
		}
	case *ast.StructDeclStmt:
		g.writeStructDecl(s.StructDecl)
	case *ast.ForLoopStmt:
		g.writer.BeginLine()
		g.writer.Write("for (")
		g.writeForInit(s.InitStmt)
		g.writer.Write(" ")
		if s.Condition != nil {
			g.writer.Write(g.exprString(s.Condition))
		}
		g.writer.Write("; ")
		if s.Iteration != nil {
			g.writer.Write(g.exprString(s.Iteration))
		}
		g.writer.Write(")")
		g.writer.EndLine()
		g.writeBody(s.Body)
	case *ast.WhileLoopStmt:
		g.writer.WriteLine("while (" + g.exprString(s.Condition) + ")")
		g.writeBody(s.Body)
	case *ast.DoWhileLoopStmt:
		g.writer.WriteLine("do")
		g.writeBody(s.Body)
		g.writer.WriteLine("while (" + g.exprString(s.Condition) + ");")
	case *ast.IfStmt:
		g.writer.WriteLine("if (" + g.exprString(s.Condition) + ")")
		g.writeBody(s.Body)
		if s.ElseStmt != nil {
			g.writer.WriteLine("else")
			g.writeBody(s.ElseStmt.Body)
		}
	case *ast.SwitchStmt:
		g.writer.WriteLine("switch (" + g.exprString(s.Selector) + ")")
		g.writer.WriteLine("{")
		g.writer.PushIndent()
		for _, switchCase := range s.Cases {
			if switchCase.Expr != nil {
				g.writer.WriteLine("case " + g.exprString(switchCase.Expr) + ":")
			} else {
				g.writer.WriteLine("default:")
			}
			g.writer.PushIndent()
			for _, caseStmt := range switchCase.Stmts {
				g.writeStmt(caseStmt)
			}
			g.writer.PopIndent()
		}
		g.writer.PopIndent()
		g.writer.WriteLine("}")
	case *ast.ExprStmt:
		g.writer.WriteLine(g.exprString(s.Expr) + ";")
	case *ast.ReturnStmt:
		if s.Expr != nil {
			g.writer.WriteLine("return " + g.exprString(s.Expr) + ";")
		} else if !s.IsEndOfFunction {
			g.writer.WriteLine("return;")
		}
	case *ast.CtrlTransferStmt:
		g.writer.WriteLine(s.Transfer.String() + ";")
	}
}

func (g *Generator) writeForInit(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		var parts []string
		for _, decl := range s.VarDecls {
			part := decl.Ident
			if decl.Initializer != nil {
				part += " = " + g.exprString(decl.Initializer)
			}
			parts = append(parts, part)
		}
		g.writer.Write(g.typeString(s.VarType.TypeDenoter) + " " + strings.Join(parts, ", ") + ";")
	case *ast.ExprStmt:
		g.writer.Write(g.exprString(s.Expr) + ";")
	default:
		g.writer.Write(";")
	}
}

func (g *Generator) writeBody(stmt ast.Stmt) {
	if block, ok := stmt.(*ast.CodeBlockStmt); ok {
		g.writeCodeBlock(block.CodeBlock, true)
		return
	}
	g.writer.PushIndent()
	g.writeStmt(stmt)
	g.writer.PopIndent()
}

/* ----- Expressions ----- */

func (g *Generator) exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case nil, *ast.NullExpr:
		return ""
	case *ast.ListExpr:
		return g.exprString(e.First) + ", " + g.exprString(e.Next)
	case *ast.LiteralExpr:
		return literalString(e)
	case *ast.TypeNameExpr:
		return g.typeString(e.TypeDenoter)
	case *ast.TernaryExpr:
		return g.exprString(e.Cond) + " ? " + g.exprString(e.Then) + " : " + g.exprString(e.Else)
	case *ast.BinaryExpr:
		return g.exprString(e.Lhs) + " " + e.Op.String() + " " + g.exprString(e.Rhs)
	case *ast.UnaryExpr:
		return e.Op.String() + g.exprString(e.Expr)
	case *ast.PostUnaryExpr:
		return g.exprString(e.Expr) + e.Op.String()
	case *ast.FunctionCallExpr:
		return g.callString(e.Call)
	case *ast.BracketExpr:
		return "(" + g.exprString(e.Expr) + ")"
	case *ast.SuffixExpr:
		return g.exprString(e.Expr) + "." + g.varIdentString(e.VarIdent, false)
	case *ast.ArrayAccessExpr:
		return g.exprString(e.Expr) + g.arrayIndicesString(e.ArrayIndices)
	case *ast.CastExpr:
		return g.typeString(e.TypeExpr.TypeDenoter) + "(" + g.exprString(e.Expr) + ")"
	case *ast.VarAccessExpr:
		result := g.varIdentString(e.VarIdent, true)
		if e.AssignOp != ast.AssignNone {
			result += " " + e.AssignOp.String() + " " + g.exprString(e.AssignExpr)
		}
		return result
	case *ast.InitializerExpr:
		var parts []string
		for _, sub := range e.Exprs {
			parts = append(parts, g.exprString(sub))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return ""
}

func literalString(e *ast.LiteralExpr) string {
	if e.DataType.Scalar == ast.ScalarFloat || e.DataType.Scalar == ast.ScalarHalf {
		// GLSL has no 'f'/'h' literal suffixes below 4.00.
		return strings.TrimRight(e.Value, "fFhH")
	}
	return e.Value
}

// varIdentString renders a variable identifier chain, collapsing flattened
// entry-point structure accesses and substituting GLSL built-ins.
func (g *Generator) varIdentString(varIdent *ast.VarIdent, allowRename bool) string {
	if allowRename && varIdent.Next != nil && len(varIdent.ArrayIndices) == 0 {
		// 'param.member' on a flattened entry-point structure becomes the
		// member's global interface variable.
		if varDecl, ok := varIdent.SymbolRef.(*ast.VarDecl); ok && varDecl.DeclStmtRef != nil {
			if structDen, ok := declStructDenoter(varDecl); ok && (structDen.IsShaderInput || structDen.IsShaderOutput) {
				member := varIdent.Next
				if memberDecl, ok := member.SymbolRef.(*ast.VarDecl); ok {
					if name, isBuiltin := SemanticToKeyword(memberDecl.Semantic, g.opts.Target, structDen.IsShaderInput); isBuiltin {
						return name + g.restIdentString(member)
					}
				}
				return member.Ident + g.restIdentString(member)
			}
		}
	}

	var sb strings.Builder
	for v := varIdent; v != nil; v = v.Next {
		sb.WriteString(v.Ident)
		sb.WriteString(g.arrayIndicesString(v.ArrayIndices))
		if v.Next != nil {
			sb.WriteString(".")
		}
	}
	return sb.String()
}

func declStructDenoter(varDecl *ast.VarDecl) (*ast.StructDecl, bool) {
	typeDen := varDecl.TypeDenoter()
	if typeDen == nil {
		return nil, false
	}
	if structDen, ok := typeDen.Get().(*ast.StructTypeDenoter); ok && structDen.StructRef != nil {
		return structDen.StructRef, true
	}
	return nil, false
}

func (g *Generator) restIdentString(member *ast.VarIdent) string {
	result := g.arrayIndicesString(member.ArrayIndices)
	if member.Next != nil {
		result += "." + g.varIdentString(member.Next, false)
	}
	return result
}

func (g *Generator) arrayIndicesString(indices []ast.Expr) string {
	var sb strings.Builder
	for _, index := range indices {
		sb.WriteString("[")
		sb.WriteString(g.exprString(index))
		sb.WriteString("]")
	}
	return sb.String()
}

func (g *Generator) arrayDimsString(dims []ast.Expr) string {
	return g.arrayIndicesString(dims)
}

// callString renders a function call: constructors, intrinsics with their
// GLSL spellings, texture-object methods folded into combined-sampler
// calls, and user functions untouched.
func (g *Generator) callString(call *ast.FunctionCall) string {
	var args []string
	for _, arg := range call.Arguments {
		args = append(args, g.exprString(arg))
	}

	if call.TypeDenoter != nil {
		return g.typeString(call.TypeDenoter) + "(" + strings.Join(args, ", ") + ")"
	}

	if call.Intrinsic != ast.IntrinsicUndefined && call.VarIdent != nil && call.VarIdent.Next != nil {
		// Texture-object method: the object becomes the first argument and
		// the separate sampler argument disappears.
		if name, ok := intrinsicNames[call.Intrinsic]; ok {
			object := call.VarIdent.Ident
			if len(args) > 0 && call.Intrinsic.IsTextureIntrinsic() && call.Intrinsic != ast.IntrinsicTextureGetDimensions {
				args = args[1:]
			}
			return name + "(" + strings.Join(append([]string{object}, args...), ", ") + ")"
		}
		return g.varIdentString(call.VarIdent, true) + "(" + strings.Join(args, ", ") + ")"
	}

	// The mul intrinsic is plain matrix multiplication in GLSL.
	if call.Intrinsic == ast.IntrinsicMul && len(args) == 2 {
		return "(" + args[0] + ") * (" + args[1] + ")"
	}

	name := call.Name()
	if call.Intrinsic != ast.IntrinsicUndefined {
		if glslName, ok := intrinsicNames[call.Intrinsic]; ok {
			name = glslName
		}
	}

	return name + "(" + strings.Join(args, ", ") + ")"
}

/* ----- Types ----- */

func (g *Generator) typeString(td ast.TypeDenoter) string {
	switch t := td.Get().(type) {
	case *ast.VoidTypeDenoter:
		return "void"
	case *ast.BaseTypeDenoter:
		return DataTypeToKeyword(t.DataType)
	case *ast.StructTypeDenoter:
		return t.Ident
	case *ast.TextureTypeDenoter:
		return TextureKindToKeyword(t.Kind)
	case *ast.SamplerTypeDenoter:
		return "sampler2D"
	case *ast.ArrayTypeDenoter:
		return g.typeString(t.Base)
	case *ast.AliasTypeDenoter:
		return t.Ident
	}
	return ""
}
