package ast

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()

	// StmtComment returns the commentary attached to the statement, if any.
	StmtComment() string
	SetComment(string)
}

// stmt carries the fields shared by all statements.
type stmt struct {
	node

	Comment string

	// Decorations.
	IsEndOfFunction bool // terminal statement of a function body
}

func (s *stmt) stmtNode()            {}
func (s *stmt) StmtComment() string  { return s.Comment }
func (s *stmt) SetComment(c string)  { s.Comment = c }

// MarkEndOfFunction flags the statement as the last one of a function body.
func (s *stmt) MarkEndOfFunction() { s.IsEndOfFunction = true }

// EndOfFunction is implemented by statements that can be flagged as the
// terminal statement of a function body.
type EndOfFunction interface {
	MarkEndOfFunction()
}

// NullStmt is a lone ';'.
type NullStmt struct {
	stmt
}

// CodeBlockStmt wraps a nested code block.
type CodeBlockStmt struct {
	stmt

	CodeBlock *CodeBlock
}

// VarDeclStmt declares one or more variables of a common type.
type VarDeclStmt struct {
	stmt

	InputModifier  string // in, out, inout, uniform
	StorageClasses []StorageClass
	TypeModifiers  []string
	VarType        *VarType
	VarDecls       []*VarDecl
}

// IsInput reports whether a parameter declared by this statement is a shader
// input (default when no output modifier is present).
func (s *VarDeclStmt) IsInput() bool {
	return s.InputModifier != "out"
}

// IsOutput reports whether a parameter declared by this statement is a shader
// output.
func (s *VarDeclStmt) IsOutput() bool {
	return s.InputModifier == "out" || s.InputModifier == "inout"
}

// HasTypeModifier reports whether the given modifier was spelled out.
func (s *VarDeclStmt) HasTypeModifier(name string) bool {
	for _, m := range s.TypeModifiers {
		if m == name {
			return true
		}
	}
	return false
}

// StorageClass classifies storage-class keywords.
type StorageClass int

const (
	StorageUndefined StorageClass = iota
	StorageExtern
	StorageNoInterpolation
	StoragePrecise
	StorageShared
	StorageGroupShared
	StorageStatic
	StorageVolatile
	StorageLinear
	StorageCentroid
	StorageNoPerspective
	StorageSample
)

var storageClasses = map[string]StorageClass{
	"extern":          StorageExtern,
	"nointerpolation": StorageNoInterpolation,
	"precise":         StoragePrecise,
	"shared":          StorageShared,
	"groupshared":     StorageGroupShared,
	"static":          StorageStatic,
	"volatile":        StorageVolatile,
	"linear":          StorageLinear,
	"centroid":        StorageCentroid,
	"noperspective":   StorageNoPerspective,
	"sample":          StorageSample,
}

// StringToStorageClass maps a storage-class keyword spelling.
func StringToStorageClass(s string) StorageClass {
	return storageClasses[s]
}

// BufferDeclStmt is a cbuffer/tbuffer declaration.
type BufferDeclStmt struct {
	stmt

	BufferType    UniformBufferType
	Ident         string
	SlotRegisters []*RegisterSlot
	Members       []*VarDeclStmt
}

// UniformBufferType distinguishes cbuffer from tbuffer.
type UniformBufferType int

const (
	UniformBufferUndefined UniformBufferType = iota
	ConstantBuffer
	TextureBuffer
)

// StringToUniformBufferType maps the declaration keyword.
func StringToUniformBufferType(s string) UniformBufferType {
	switch s {
	case "cbuffer":
		return ConstantBuffer
	case "tbuffer":
		return TextureBuffer
	}
	return UniformBufferUndefined
}

// TextureDeclStmt declares one or more texture objects of a common kind.
type TextureDeclStmt struct {
	stmt

	TextureType  TextureKind
	ColorType    DataType // template argument, zero value when absent
	NumSamples   int      // multisample count, 0 when absent
	TextureDecls []*TextureDecl
}

// SamplerDeclStmt declares one or more samplers.
type SamplerDeclStmt struct {
	stmt

	SamplerType  string // raw sampler type keyword
	SamplerDecls []*SamplerDecl
}

// StructDeclStmt is a free-standing structure declaration.
type StructDeclStmt struct {
	stmt

	StructDecl *StructDecl
}

// AliasDeclStmt is a typedef statement with one or more alias declarators.
type AliasDeclStmt struct {
	stmt

	StructDecl *StructDecl // inline struct in 'typedef struct {...} X;'
	AliasDecls []*AliasDecl
}

// ForLoopStmt is a for loop; Condition and Iteration may be nil.
type ForLoopStmt struct {
	stmt

	Attribs   []*Attribute
	InitStmt  Stmt
	Condition Expr
	Iteration Expr
	Body      Stmt
}

// WhileLoopStmt is a while loop.
type WhileLoopStmt struct {
	stmt

	Attribs   []*Attribute
	Condition Expr
	Body      Stmt
}

// DoWhileLoopStmt is a do-while loop.
type DoWhileLoopStmt struct {
	stmt

	Attribs   []*Attribute
	Body      Stmt
	Condition Expr
}

// IfStmt is an if statement with optional else branch.
type IfStmt struct {
	stmt

	Attribs   []*Attribute
	Condition Expr
	Body      Stmt
	ElseStmt  *ElseStmt
}

// ElseStmt is the else branch of an if statement.
type ElseStmt struct {
	stmt

	Body Stmt
}

// SwitchStmt is a switch statement.
type SwitchStmt struct {
	stmt

	Attribs  []*Attribute
	Selector Expr
	Cases    []*SwitchCase
}

// ExprStmt is an expression statement.
type ExprStmt struct {
	stmt

	Expr Expr
}

// ReturnStmt is a return statement; Expr is nil for 'return;'.
type ReturnStmt struct {
	stmt

	Expr Expr
}

// CtrlTransfer classifies control-transfer statements.
type CtrlTransfer int

const (
	TransferUndefined CtrlTransfer = iota
	TransferBreak
	TransferContinue
	TransferDiscard
)

// StringToCtrlTransfer maps a control-transfer keyword spelling.
func StringToCtrlTransfer(s string) CtrlTransfer {
	switch s {
	case "break":
		return TransferBreak
	case "continue":
		return TransferContinue
	case "discard":
		return TransferDiscard
	}
	return TransferUndefined
}

func (t CtrlTransfer) String() string {
	switch t {
	case TransferBreak:
		return "break"
	case TransferContinue:
		return "continue"
	case TransferDiscard:
		return "discard"
	}
	return ""
}

// CtrlTransferStmt is a break/continue/discard statement.
type CtrlTransferStmt struct {
	stmt

	Transfer CtrlTransfer
}
