package ast

import "strings"

// VarDecl is a single variable declarator inside a VarDeclStmt.
type VarDecl struct {
	node

	Ident       string
	ArrayDims   []Expr
	Semantic    IndexedSemantic
	PackOffset  *PackOffset
	Annotations []*VarDeclStmt
	Initializer Expr

	// Weak back-references.
	DeclStmtRef   *VarDeclStmt
	BufferDeclRef *BufferDeclStmt // set for cbuffer/tbuffer members

	// Decorations.
	IsSystemValue  bool
	IsShaderInput  bool
	IsShaderOutput bool
	DisableCodeGen bool // variable replaced by an interface block alias
}

// TypeDenoter returns the declared type with this declarator's array
// dimensions applied on top of the statement's base type.
func (d *VarDecl) TypeDenoter() TypeDenoter {
	if d.DeclStmtRef == nil || d.DeclStmtRef.VarType == nil {
		return nil
	}
	base := d.DeclStmtRef.VarType.TypeDenoter
	if len(d.ArrayDims) > 0 {
		return &ArrayTypeDenoter{Base: base, Dims: d.ArrayDims}
	}
	return base
}

// TextureDecl is a single texture declarator inside a TextureDeclStmt.
type TextureDecl struct {
	node

	Ident         string
	ArrayDims     []Expr
	SlotRegisters []*RegisterSlot

	DeclStmtRef *TextureDeclStmt
}

// SamplerDecl is a single sampler declarator, optionally with an inline
// sampler_state block.
type SamplerDecl struct {
	node

	Ident         string
	ArrayDims     []Expr
	SlotRegisters []*RegisterSlot
	TextureIdent  string // D3D9 'texture = <t>;' binding inside sampler_state
	SamplerValues []*SamplerValue

	DeclStmtRef *SamplerDeclStmt
}

// StructDecl is a structure declaration with optional single inheritance.
type StructDecl struct {
	node

	Ident          string
	BaseStructName string
	Members        []*VarDeclStmt

	// Decorations.
	BaseStructRef  *StructDecl
	SystemValues   map[string]*VarDecl // member name -> declarator with SV_ semantic
	AliasName      string              // interface-block alias chosen by the analyzer
	IsNestedStruct bool
	IsShaderInput  bool
	IsShaderOutput bool
}

// IsAnonymous reports whether the structure has no name.
func (d *StructDecl) IsAnonymous() bool { return d.Ident == "" }

// NumMembers counts the individual member declarators.
func (d *StructDecl) NumMembers() int {
	n := 0
	for _, m := range d.Members {
		n += len(m.VarDecls)
	}
	return n
}

// FetchMember finds a member declarator by name, searching base structures.
func (d *StructDecl) FetchMember(ident string) *VarDecl {
	for _, m := range d.Members {
		for _, v := range m.VarDecls {
			if v.Ident == ident {
				return v
			}
		}
	}
	if d.BaseStructRef != nil && d.BaseStructRef != d {
		return d.BaseStructRef.FetchMember(ident)
	}
	return nil
}

// Signature returns a short descriptor for diagnostics context.
func (d *StructDecl) Signature() string {
	if d.IsAnonymous() {
		return "struct <anonymous>"
	}
	return "struct '" + d.Ident + "'"
}

// AliasDecl is one declarator of a typedef statement.
type AliasDecl struct {
	node

	Ident       string
	TypeDenoter TypeDenoter

	DeclStmtRef *AliasDeclStmt
}

// FunctionDecl is a function declaration with optional body. It doubles as a
// global declaration statement.
type FunctionDecl struct {
	stmt

	Attribs    []*Attribute
	ReturnType *VarType
	Ident      string
	Parameters []*VarDeclStmt
	Semantic   IndexedSemantic
	Annotations []*VarDeclStmt
	CodeBlock  *CodeBlock // nil for a prototype

	// Decorations.
	IsEntryPoint    bool
	InputSemantics  []*VarDecl
	OutputSemantics []*VarDecl
}

// HasBody reports whether this is a definition rather than a prototype.
func (d *FunctionDecl) HasBody() bool { return d.CodeBlock != nil }

// Signature returns a printable signature for diagnostics context.
func (d *FunctionDecl) Signature() string {
	var sb strings.Builder
	if d.ReturnType != nil {
		sb.WriteString(d.ReturnType.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(d.Ident)
	sb.WriteByte('(')
	for i, p := range d.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.VarType != nil {
			sb.WriteString(p.VarType.String())
		}
	}
	sb.WriteByte(')')
	return sb.String()
}
