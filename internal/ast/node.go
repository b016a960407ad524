// Package ast defines the abstract syntax tree for HLSL translation units:
// declarations, statements, expressions, and type denoters, together with the
// decoration slots filled in by the semantic analyzer.
package ast

import (
	"strings"

	"xshade/internal/source"
)

// Node is implemented by every AST entity.
type Node interface {
	NodeArea() source.Area
}

// node carries the source span shared by all AST entities.
type node struct {
	Area source.Area
}

func (n *node) NodeArea() source.Area { return n.Area }

// SetArea assigns the node's source span; the parser calls this once per node.
func (n *node) SetArea(a source.Area) { n.Area = a }

// Program is the root node of a translation unit.
type Program struct {
	node

	GlobalStmts []Stmt

	// Decorations.
	EntryPointRef    *FunctionDecl
	FragCoordUsed    bool // fragment coordinate semantic referenced anywhere
	HasSM3ScreenSpace bool // pre-SM4 fragment shader, VPOS vs. SV_Position Y-flip
}

// CodeBlock is a braced statement list.
type CodeBlock struct {
	node

	Stmts []Stmt
}

// Attribute is a '[name(args...)]' statement or function attribute.
type Attribute struct {
	node

	Ident     string
	Arguments []Expr
}

// SwitchCase is one 'case expr:' or 'default:' block; Expr is nil for default.
type SwitchCase struct {
	node

	Expr  Expr
	Stmts []Stmt
}

// VarIdent is a (possibly dotted) variable identifier with array indices,
// e.g. "a[0].b.xy".
type VarIdent struct {
	node

	Ident        string
	ArrayIndices []Expr
	Next         *VarIdent

	// Decorations.
	SymbolRef Node // resolved declaration
}

// Last returns the final identifier of the dotted chain.
func (v *VarIdent) Last() *VarIdent {
	for v.Next != nil {
		v = v.Next
	}
	return v
}

func (v *VarIdent) String() string {
	var sb strings.Builder
	for ; v != nil; v = v.Next {
		sb.WriteString(v.Ident)
		if v.Next != nil {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// VarType is a variable type: either a type denoter or an inline structure
// declaration (which also provides the denoter).
type VarType struct {
	node

	TypeDenoter TypeDenoter
	StructDecl  *StructDecl

	// Decorations.
	SymbolRef Node // declaration of a named type
}

func (v *VarType) String() string {
	if v.TypeDenoter != nil {
		return v.TypeDenoter.String()
	}
	return ""
}

// RegisterSlot is a ': register(type[slot])' binding, with an optional shader
// profile prefix such as 'vs_5_0'.
type RegisterSlot struct {
	node

	RegisterType RegisterType
	Slot         int
	ShaderProfile string // raw profile identifier, empty when absent
}

// RegisterType classifies the single-letter register space.
type RegisterType int

const (
	RegisterUndefined RegisterType = iota
	RegisterB                      // constant buffer
	RegisterT                      // texture / shader resource
	RegisterC                      // D3D9 constant register
	RegisterS                      // sampler
	RegisterU                      // unordered access view
)

// CharToRegisterType maps the leading character of a register identifier.
func CharToRegisterType(c byte) RegisterType {
	switch c {
	case 'b':
		return RegisterB
	case 't':
		return RegisterT
	case 'c':
		return RegisterC
	case 's':
		return RegisterS
	case 'u':
		return RegisterU
	}
	return RegisterUndefined
}

// PackOffset is a ': packoffset(cN.x)' cbuffer packing hint.
type PackOffset struct {
	node

	RegisterName    string
	VectorComponent string
}

// SamplerValue is one 'Name = expr;' entry of a sampler_state block.
type SamplerValue struct {
	node

	Name  string
	Value Expr
}
