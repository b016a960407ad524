package ast

import (
	"fmt"
	"strings"
)

// Printer dumps a decorated AST in an indented one-node-per-line form.
type Printer struct {
	sb     strings.Builder
	indent int
}

// PrintAST renders the whole program.
func (p *Printer) PrintAST(prog *Program) string {
	p.sb.Reset()
	p.line("Program")
	p.push()
	for _, s := range prog.GlobalStmts {
		p.printStmt(s)
	}
	p.pop()
	return p.sb.String()
}

func (p *Printer) push() { p.indent++ }
func (p *Printer) pop()  { p.indent-- }

func (p *Printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *Printer) printStmt(s Stmt) {
	switch ast := s.(type) {
	case *NullStmt:
		p.line("NullStmt")
	case *CodeBlockStmt:
		p.line("CodeBlockStmt")
		p.push()
		for _, sub := range ast.CodeBlock.Stmts {
			p.printStmt(sub)
		}
		p.pop()
	case *VarDeclStmt:
		typeName := ""
		if ast.VarType != nil {
			typeName = ast.VarType.String()
		}
		p.line("VarDeclStmt %q", typeName)
		p.push()
		for _, v := range ast.VarDecls {
			sem := ""
			if v.Semantic.IsValid() {
				sem = " : " + v.Semantic.Name
			}
			p.line("VarDecl %q%s", v.Ident, sem)
			if v.Initializer != nil {
				p.push()
				p.printExpr(v.Initializer)
				p.pop()
			}
		}
		p.pop()
	case *BufferDeclStmt:
		p.line("BufferDeclStmt %q", ast.Ident)
		p.push()
		for _, m := range ast.Members {
			p.printStmt(m)
		}
		p.pop()
	case *TextureDeclStmt:
		p.line("TextureDeclStmt %s", ast.TextureType)
		p.push()
		for _, t := range ast.TextureDecls {
			p.line("TextureDecl %q", t.Ident)
		}
		p.pop()
	case *SamplerDeclStmt:
		p.line("SamplerDeclStmt %q", ast.SamplerType)
		p.push()
		for _, sd := range ast.SamplerDecls {
			p.line("SamplerDecl %q", sd.Ident)
		}
		p.pop()
	case *StructDeclStmt:
		p.printStructDecl(ast.StructDecl)
	case *AliasDeclStmt:
		p.line("AliasDeclStmt")
		p.push()
		for _, a := range ast.AliasDecls {
			p.line("AliasDecl %q -> %s", a.Ident, a.TypeDenoter.String())
		}
		p.pop()
	case *FunctionDecl:
		p.printFunctionDecl(ast)
	case *ForLoopStmt:
		p.line("ForLoopStmt")
		p.push()
		p.printStmt(ast.InitStmt)
		if ast.Condition != nil {
			p.printExpr(ast.Condition)
		}
		if ast.Iteration != nil {
			p.printExpr(ast.Iteration)
		}
		p.printStmt(ast.Body)
		p.pop()
	case *WhileLoopStmt:
		p.line("WhileLoopStmt")
		p.push()
		p.printExpr(ast.Condition)
		p.printStmt(ast.Body)
		p.pop()
	case *DoWhileLoopStmt:
		p.line("DoWhileLoopStmt")
		p.push()
		p.printStmt(ast.Body)
		p.printExpr(ast.Condition)
		p.pop()
	case *IfStmt:
		p.line("IfStmt")
		p.push()
		p.printExpr(ast.Condition)
		p.printStmt(ast.Body)
		p.pop()
		if ast.ElseStmt != nil {
			p.line("ElseStmt")
			p.push()
			p.printStmt(ast.ElseStmt.Body)
			p.pop()
		}
	case *SwitchStmt:
		p.line("SwitchStmt")
		p.push()
		p.printExpr(ast.Selector)
		for _, c := range ast.Cases {
			if c.Expr != nil {
				p.line("SwitchCase")
				p.push()
				p.printExpr(c.Expr)
				p.pop()
			} else {
				p.line("SwitchCase (default)")
			}
			p.push()
			for _, sub := range c.Stmts {
				p.printStmt(sub)
			}
			p.pop()
		}
		p.pop()
	case *ExprStmt:
		p.line("ExprStmt")
		p.push()
		p.printExpr(ast.Expr)
		p.pop()
	case *ReturnStmt:
		p.line("ReturnStmt")
		if ast.Expr != nil {
			p.push()
			p.printExpr(ast.Expr)
			p.pop()
		}
	case *CtrlTransferStmt:
		p.line("CtrlTransferStmt %q", ast.Transfer.String())
	default:
		p.line("%T", s)
	}
}

func (p *Printer) printStructDecl(d *StructDecl) {
	p.line("StructDecl %q", d.Ident)
	p.push()
	for _, m := range d.Members {
		p.printStmt(m)
	}
	p.pop()
}

func (p *Printer) printFunctionDecl(d *FunctionDecl) {
	entry := ""
	if d.IsEntryPoint {
		entry = " (entry point)"
	}
	p.line("FunctionDecl %q%s", d.Signature(), entry)
	if d.CodeBlock != nil {
		p.push()
		for _, s := range d.CodeBlock.Stmts {
			p.printStmt(s)
		}
		p.pop()
	}
}

func (p *Printer) printExpr(e Expr) {
	switch ast := e.(type) {
	case *NullExpr:
		p.line("NullExpr")
	case *ListExpr:
		p.line("ListExpr")
		p.push()
		p.printExpr(ast.First)
		p.printExpr(ast.Next)
		p.pop()
	case *LiteralExpr:
		p.line("LiteralExpr %q (%s)", ast.Value, ast.DataType.String())
	case *TypeNameExpr:
		p.line("TypeNameExpr %s", ast.TypeDenoter.String())
	case *TernaryExpr:
		p.line("TernaryExpr")
		p.push()
		p.printExpr(ast.Cond)
		p.printExpr(ast.Then)
		p.printExpr(ast.Else)
		p.pop()
	case *BinaryExpr:
		p.line("BinaryExpr %q", ast.Op.String())
		p.push()
		p.printExpr(ast.Lhs)
		p.printExpr(ast.Rhs)
		p.pop()
	case *UnaryExpr:
		p.line("UnaryExpr %q", ast.Op.String())
		p.push()
		p.printExpr(ast.Expr)
		p.pop()
	case *PostUnaryExpr:
		p.line("PostUnaryExpr %q", ast.Op.String())
		p.push()
		p.printExpr(ast.Expr)
		p.pop()
	case *FunctionCallExpr:
		p.line("FunctionCallExpr %q", ast.Call.Name())
		p.push()
		for _, arg := range ast.Call.Arguments {
			p.printExpr(arg)
		}
		p.pop()
	case *BracketExpr:
		p.line("BracketExpr")
		p.push()
		p.printExpr(ast.Expr)
		p.pop()
	case *SuffixExpr:
		p.line("SuffixExpr .%s", ast.VarIdent.String())
		p.push()
		p.printExpr(ast.Expr)
		p.pop()
	case *ArrayAccessExpr:
		p.line("ArrayAccessExpr")
		p.push()
		p.printExpr(ast.Expr)
		for _, idx := range ast.ArrayIndices {
			p.printExpr(idx)
		}
		p.pop()
	case *CastExpr:
		p.line("CastExpr -> %s", ast.TypeExpr.TypeDenoter.String())
		p.push()
		p.printExpr(ast.Expr)
		p.pop()
	case *VarAccessExpr:
		if ast.AssignOp != AssignNone {
			p.line("VarAccessExpr %s %s", ast.VarIdent.String(), ast.AssignOp.String())
			p.push()
			p.printExpr(ast.AssignExpr)
			p.pop()
		} else {
			p.line("VarAccessExpr %s", ast.VarIdent.String())
		}
	case *InitializerExpr:
		p.line("InitializerExpr")
		p.push()
		for _, sub := range ast.Exprs {
			p.printExpr(sub)
		}
		p.pop()
	default:
		p.line("%T", e)
	}
}
