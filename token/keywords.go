package token

import "strconv"

// keywords maps HLSL keyword spellings to their token kinds. Vector and matrix
// type names are generated from the scalar list at init time.
var keywords = map[string]Kind{
	"string": StringType,

	"true":  BoolLiteral,
	"false": BoolLiteral,

	"void": Void,

	"vector": Vector,
	"matrix": Matrix,

	"do":       Do,
	"while":    While,
	"for":      For,
	"if":       If,
	"else":     Else,
	"switch":   Switch,
	"case":     Case,
	"default":  Default,
	"typedef":  Typedef,
	"struct":   Struct,
	"register": Register,

	"packoffset": PackOffset,

	"break":    CtrlTransfer,
	"continue": CtrlTransfer,
	"discard":  CtrlTransfer,
	"return":   Return,

	"in":      InputModifier,
	"out":     InputModifier,
	"inout":   InputModifier,
	"uniform": InputModifier,

	"extern":          StorageClass,
	"nointerpolation": StorageClass,
	"precise":         StorageClass,
	"shared":          StorageClass,
	"groupshared":     StorageClass,
	"static":          StorageClass,
	"volatile":        StorageClass,
	"linear":          StorageClass,
	"centroid":        StorageClass,
	"noperspective":   StorageClass,
	"sample":          StorageClass,

	"const":        TypeModifier,
	"row_major":    TypeModifier,
	"column_major": TypeModifier,

	"inline": Inline,

	"technique": Technique,
	"pass":      Pass,
	"compile":   Compile,

	"sampler":    Sampler,
	"sampler1D":  Sampler,
	"sampler2D":  Sampler,
	"sampler3D":  Sampler,
	"samplerCUBE": Sampler,

	"sampler_state":          SamplerState,
	"SamplerState":           SamplerState,
	"SamplerComparisonState": SamplerState,

	"texture":          Texture,
	"Texture1D":        Texture,
	"Texture1DArray":   Texture,
	"Texture2D":        Texture,
	"Texture2DArray":   Texture,
	"Texture3D":        Texture,
	"TextureCube":      Texture,
	"TextureCubeArray": Texture,
	"Texture2DMS":      Texture,
	"Texture2DMSArray": Texture,
	"RWTexture1D":      Texture,
	"RWTexture1DArray": Texture,
	"RWTexture2D":      Texture,
	"RWTexture2DArray": Texture,
	"RWTexture3D":      Texture,

	"AppendStructuredBuffer":  StorageBuffer,
	"Buffer":                  StorageBuffer,
	"ByteAddressBuffer":       StorageBuffer,
	"ConsumeStructuredBuffer": StorageBuffer,
	"StructuredBuffer":        StorageBuffer,
	"RWBuffer":                StorageBuffer,
	"RWByteAddressBuffer":     StorageBuffer,
	"RWStructuredBuffer":      StorageBuffer,

	"cbuffer": UniformBuffer,
	"tbuffer": UniformBuffer,

	"auto":     Reserved,
	"catch":    Reserved,
	"char":     Reserved,
	"class":    Reserved,
	"enum":     Reserved,
	"explicit": Reserved,
	"friend":   Reserved,
	"goto":     Reserved,
	"long":     Reserved,
	"mutable":  Reserved,
	"new":      Reserved,
	"operator": Reserved,
	"private":  Reserved,
	"public":   Reserved,
	"short":    Reserved,
	"signed":   Reserved,
	"sizeof":   Reserved,
	"template": Reserved,
	"this":     Reserved,
	"throw":    Reserved,
	"try":      Reserved,
	"union":    Reserved,
	"unsigned": Reserved,
	"using":    Reserved,
	"virtual":  Reserved,
}

// ScalarTypes lists the HLSL scalar type keywords in declaration order.
var ScalarTypes = []string{"bool", "int", "uint", "dword", "half", "float", "double"}

func init() {
	for _, scalar := range ScalarTypes {
		keywords[scalar] = ScalarType
		for m := 1; m <= 4; m++ {
			keywords[scalar+strconv.Itoa(m)] = VectorType
			for n := 1; n <= 4; n++ {
				keywords[scalar+strconv.Itoa(m)+"x"+strconv.Itoa(n)] = MatrixType
			}
		}
	}
}

// LookupIdent classifies an identifier spelling, returning the keyword kind on
// a hit and Ident otherwise.
func LookupIdent(spell string) Kind {
	if k, ok := keywords[spell]; ok {
		return k
	}
	return Ident
}

// IsDataTypeKind reports whether the kind starts a type denoter.
func IsDataTypeKind(k Kind) bool {
	switch k {
	case StringType, ScalarType, VectorType, MatrixType,
		Vector, Matrix, Texture, Sampler, SamplerState:
		return true
	}
	return false
}
