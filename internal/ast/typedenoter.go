package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ScalarKind is the base arithmetic kind of a data type.
type ScalarKind int

const (
	ScalarUndefined ScalarKind = iota
	ScalarBool
	ScalarInt
	ScalarUInt
	ScalarHalf
	ScalarFloat
	ScalarDouble
	ScalarString
)

var scalarSpellings = map[ScalarKind]string{
	ScalarBool:   "bool",
	ScalarInt:    "int",
	ScalarUInt:   "uint",
	ScalarHalf:   "half",
	ScalarFloat:  "float",
	ScalarDouble: "double",
	ScalarString: "string",
}

func (k ScalarKind) String() string { return scalarSpellings[k] }

// IsReal reports whether the kind is a floating-point kind.
func (k ScalarKind) IsReal() bool {
	return k == ScalarHalf || k == ScalarFloat || k == ScalarDouble
}

// DataType carries the full arithmetic shape of a base type: a scalar kind
// with row and column counts. Scalars are 1x1, vectors Nx1.
type DataType struct {
	Scalar ScalarKind
	Rows   int
	Cols   int
}

// Scalar data types used throughout the analyzer.
var (
	DataBool   = DataType{ScalarBool, 1, 1}
	DataInt    = DataType{ScalarInt, 1, 1}
	DataUInt   = DataType{ScalarUInt, 1, 1}
	DataHalf   = DataType{ScalarHalf, 1, 1}
	DataFloat  = DataType{ScalarFloat, 1, 1}
	DataDouble = DataType{ScalarDouble, 1, 1}
	DataString = DataType{ScalarString, 1, 1}
)

// VectorDataType builds a vector type of the given dimension.
func VectorDataType(scalar ScalarKind, dim int) DataType {
	return DataType{Scalar: scalar, Rows: dim, Cols: 1}
}

// MatrixDataType builds a matrix type of the given dimensions.
func MatrixDataType(scalar ScalarKind, rows, cols int) DataType {
	return DataType{Scalar: scalar, Rows: rows, Cols: cols}
}

// IsValid reports whether the data type carries a real shape.
func (t DataType) IsValid() bool { return t.Scalar != ScalarUndefined }

// IsScalar reports a 1x1 shape.
func (t DataType) IsScalar() bool { return t.IsValid() && t.Rows == 1 && t.Cols == 1 }

// IsVector reports an Nx1 shape with N > 1.
func (t DataType) IsVector() bool { return t.IsValid() && t.Rows > 1 && t.Cols == 1 }

// IsMatrix reports an NxM shape with M > 1.
func (t DataType) IsMatrix() bool { return t.IsValid() && t.Cols > 1 }

// Components returns the total component count of the shape.
func (t DataType) Components() int { return t.Rows * t.Cols }

func (t DataType) String() string {
	if !t.IsValid() {
		return "<undefined>"
	}
	s := t.Scalar.String()
	if t.Cols > 1 {
		return s + strconv.Itoa(t.Rows) + "x" + strconv.Itoa(t.Cols)
	}
	if t.Rows > 1 {
		return s + strconv.Itoa(t.Rows)
	}
	return s
}

// DataTypeFromKeyword parses a scalar/vector/matrix type keyword such as
// "float", "int3", or "float4x4".
func DataTypeFromKeyword(keyword string) (DataType, error) {
	if keyword == "string" {
		return DataString, nil
	}
	for kind, base := range scalarSpellings {
		if !strings.HasPrefix(keyword, base) {
			continue
		}
		rest := keyword[len(base):]
		switch len(rest) {
		case 0:
			return DataType{Scalar: kind, Rows: 1, Cols: 1}, nil
		case 1:
			if m := int(rest[0] - '0'); m >= 1 && m <= 4 {
				return DataType{Scalar: kind, Rows: m, Cols: 1}, nil
			}
		case 3:
			if rest[1] == 'x' {
				m, n := int(rest[0]-'0'), int(rest[2]-'0')
				if m >= 1 && m <= 4 && n >= 1 && n <= 4 {
					return DataType{Scalar: kind, Rows: m, Cols: n}, nil
				}
			}
		}
	}
	if keyword == "dword" {
		return DataInt, nil
	}
	return DataType{}, fmt.Errorf("unknown data type keyword %q", keyword)
}

// TextureKind classifies texture object types.
type TextureKind int

const (
	TextureUndefined TextureKind = iota
	Texture1D
	Texture1DArray
	Texture2D
	Texture2DArray
	Texture3D
	TextureCube
	TextureCubeArray
	Texture2DMS
	Texture2DMSArray
	RWTexture1D
	RWTexture1DArray
	RWTexture2D
	RWTexture2DArray
	RWTexture3D
	GenericTexture // D3D9 'texture' keyword
)

var textureKinds = map[string]TextureKind{
	"texture":          GenericTexture,
	"Texture1D":        Texture1D,
	"Texture1DArray":   Texture1DArray,
	"Texture2D":        Texture2D,
	"Texture2DArray":   Texture2DArray,
	"Texture3D":        Texture3D,
	"TextureCube":      TextureCube,
	"TextureCubeArray": TextureCubeArray,
	"Texture2DMS":      Texture2DMS,
	"Texture2DMSArray": Texture2DMSArray,
	"RWTexture1D":      RWTexture1D,
	"RWTexture1DArray": RWTexture1DArray,
	"RWTexture2D":      RWTexture2D,
	"RWTexture2DArray": RWTexture2DArray,
	"RWTexture3D":      RWTexture3D,
}

// TextureKindFromKeyword maps a texture type keyword spelling.
func TextureKindFromKeyword(keyword string) TextureKind {
	return textureKinds[keyword]
}

func (k TextureKind) String() string {
	for s, kind := range textureKinds {
		if kind == k {
			return s
		}
	}
	return "texture"
}

/* ----- Type denoters ----- */

// TypeDenoter is the closed sum of type descriptions attached to declarations
// and computed for expressions.
type TypeDenoter interface {
	String() string

	// Get follows alias denoters to the canonical denoter. Alias targets are
	// available only after the analyzer has decorated the alias declaration.
	Get() TypeDenoter
}

// VoidTypeDenoter is the 'void' type, legal only as a function return type.
type VoidTypeDenoter struct{}

func (*VoidTypeDenoter) String() string   { return "void" }
func (d *VoidTypeDenoter) Get() TypeDenoter { return d }

// BaseTypeDenoter is a scalar, vector, matrix, or string type.
type BaseTypeDenoter struct {
	DataType DataType
}

func (d *BaseTypeDenoter) String() string   { return d.DataType.String() }
func (d *BaseTypeDenoter) Get() TypeDenoter { return d }

// ArrayTypeDenoter is an array over a base denoter. Dims holds one expression
// per dimension; a NullExpr marks a dynamic dimension.
type ArrayTypeDenoter struct {
	Base TypeDenoter
	Dims []Expr

	// Decorations: evaluated dimension sizes, -1 for dynamic.
	DimSizes []int
}

func (d *ArrayTypeDenoter) String() string {
	return d.Base.String() + strings.Repeat("[]", len(d.Dims))
}

func (d *ArrayTypeDenoter) Get() TypeDenoter { return d }

// GetFromArray peels n array dimensions off the denoter, following aliases.
// Peeling past the array rank is a type error.
func GetFromArray(t TypeDenoter, n int) (TypeDenoter, error) {
	t = t.Get()
	for n > 0 {
		arr, ok := t.(*ArrayTypeDenoter)
		if !ok {
			return nil, fmt.Errorf("cannot index non-array type %q", t.String())
		}
		if n >= len(arr.Dims) {
			n -= len(arr.Dims)
			t = arr.Base.Get()
		} else {
			return &ArrayTypeDenoter{Base: arr.Base, Dims: arr.Dims[:len(arr.Dims)-n]}, nil
		}
	}
	return t, nil
}

// StructTypeDenoter refers to a structure by name or declaration.
type StructTypeDenoter struct {
	Ident string

	// Decoration: resolved structure declaration.
	StructRef *StructDecl
}

// NewStructTypeDenoter builds a denoter bound to a declaration.
func NewStructTypeDenoter(decl *StructDecl) *StructTypeDenoter {
	return &StructTypeDenoter{Ident: decl.Ident, StructRef: decl}
}

func (d *StructTypeDenoter) String() string {
	if d.Ident != "" {
		return "struct " + d.Ident
	}
	return "struct <anonymous>"
}

func (d *StructTypeDenoter) Get() TypeDenoter { return d }

// AliasTypeDenoter refers to a typedef name.
type AliasTypeDenoter struct {
	Ident string

	// Decoration: resolved alias declaration.
	AliasRef *AliasDecl
}

func (d *AliasTypeDenoter) String() string { return d.Ident }

// Get resolves the alias to its canonical target when decorated; an
// undecorated alias denotes itself.
func (d *AliasTypeDenoter) Get() TypeDenoter {
	if d.AliasRef != nil && d.AliasRef.TypeDenoter != nil {
		return d.AliasRef.TypeDenoter.Get()
	}
	return d
}

// TextureTypeDenoter is a texture object type.
type TextureTypeDenoter struct {
	Kind TextureKind
}

func (d *TextureTypeDenoter) String() string   { return d.Kind.String() }
func (d *TextureTypeDenoter) Get() TypeDenoter { return d }

// SamplerTypeDenoter is a sampler object type.
type SamplerTypeDenoter struct{}

func (*SamplerTypeDenoter) String() string     { return "sampler" }
func (d *SamplerTypeDenoter) Get() TypeDenoter { return d }

// TypeDenotersEqual reports structural equality of two canonical denoters,
// used by overload resolution.
func TypeDenotersEqual(a, b TypeDenoter) bool {
	a, b = a.Get(), b.Get()
	switch lhs := a.(type) {
	case *VoidTypeDenoter:
		_, ok := b.(*VoidTypeDenoter)
		return ok
	case *BaseTypeDenoter:
		rhs, ok := b.(*BaseTypeDenoter)
		return ok && lhs.DataType == rhs.DataType
	case *StructTypeDenoter:
		rhs, ok := b.(*StructTypeDenoter)
		if !ok {
			return false
		}
		if lhs.StructRef != nil && rhs.StructRef != nil {
			return lhs.StructRef == rhs.StructRef
		}
		return lhs.Ident == rhs.Ident
	case *TextureTypeDenoter:
		rhs, ok := b.(*TextureTypeDenoter)
		return ok && lhs.Kind == rhs.Kind
	case *SamplerTypeDenoter:
		_, ok := b.(*SamplerTypeDenoter)
		return ok
	case *ArrayTypeDenoter:
		rhs, ok := b.(*ArrayTypeDenoter)
		return ok && len(lhs.Dims) == len(rhs.Dims) && TypeDenotersEqual(lhs.Base, rhs.Base)
	case *AliasTypeDenoter:
		rhs, ok := b.(*AliasTypeDenoter)
		return ok && lhs.Ident == rhs.Ident
	}
	return false
}
