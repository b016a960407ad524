package glsl

import (
	"strconv"

	"xshade/internal/ast"
	"xshade/internal/shader"
)

// DataTypeToKeyword maps an HLSL data type to its GLSL spelling.
func DataTypeToKeyword(t ast.DataType) string {
	if t.IsScalar() {
		switch t.Scalar {
		case ast.ScalarBool:
			return "bool"
		case ast.ScalarInt:
			return "int"
		case ast.ScalarUInt:
			return "uint"
		case ast.ScalarHalf, ast.ScalarFloat:
			return "float"
		case ast.ScalarDouble:
			return "double"
		}
		return "float"
	}

	prefix := ""
	switch t.Scalar {
	case ast.ScalarBool:
		prefix = "b"
	case ast.ScalarInt:
		prefix = "i"
	case ast.ScalarUInt:
		prefix = "u"
	case ast.ScalarDouble:
		prefix = "d"
	}

	if t.IsMatrix() {
		if t.Rows == t.Cols {
			return prefix + "mat" + strconv.Itoa(t.Rows)
		}
		return prefix + "mat" + strconv.Itoa(t.Rows) + "x" + strconv.Itoa(t.Cols)
	}
	return prefix + "vec" + strconv.Itoa(t.Rows)
}

// TextureKindToKeyword maps a texture kind to its GLSL sampler spelling.
func TextureKindToKeyword(k ast.TextureKind) string {
	switch k {
	case ast.Texture1D:
		return "sampler1D"
	case ast.Texture1DArray:
		return "sampler1DArray"
	case ast.Texture2D, ast.GenericTexture:
		return "sampler2D"
	case ast.Texture2DArray:
		return "sampler2DArray"
	case ast.Texture3D:
		return "sampler3D"
	case ast.TextureCube:
		return "samplerCube"
	case ast.TextureCubeArray:
		return "samplerCubeArray"
	case ast.Texture2DMS:
		return "sampler2DMS"
	case ast.Texture2DMSArray:
		return "sampler2DMSArray"
	}
	return "sampler2D"
}

// intrinsicNames maps resolved intrinsics to their GLSL spellings; entries
// missing here keep their HLSL spelling.
var intrinsicNames = map[ast.Intrinsic]string{
	ast.IntrinsicLerp:       "mix",
	ast.IntrinsicFrac:       "fract",
	ast.IntrinsicRSqrt:      "inversesqrt",
	ast.IntrinsicDDX:        "dFdx",
	ast.IntrinsicDDY:        "dFdy",
	ast.IntrinsicFMod:       "mod",
	ast.IntrinsicATan2:      "atan",
	ast.IntrinsicMad:        "fma",

	ast.IntrinsicTex1D2:   "texture",
	ast.IntrinsicTex2D2:   "texture",
	ast.IntrinsicTex3D2:   "texture",
	ast.IntrinsicTexCube2: "texture",
	ast.IntrinsicTex2DLod: "textureLod",

	ast.IntrinsicTextureSample2:      "texture",
	ast.IntrinsicTextureSample3:      "texture",
	ast.IntrinsicTextureSample4:      "texture",
	ast.IntrinsicTextureSample5:      "texture",
	ast.IntrinsicTextureSampleLevel3: "textureLod",
	ast.IntrinsicTextureSampleLevel4: "textureLod",
	ast.IntrinsicTextureSampleLevel5: "textureLod",
	ast.IntrinsicTextureLoad1:        "texelFetch",
	ast.IntrinsicTextureLoad2:        "texelFetch",
	ast.IntrinsicTextureLoad3:        "texelFetch",
}

// outputVarName picks the interface variable name for a function-return
// semantic without a GLSL built-in counterpart.
func outputVarName(sem ast.IndexedSemantic) string {
	if sem.Name != "" {
		return sem.Name
	}
	return "xsh_output"
}

// SemanticToKeyword maps a system-value semantic to the GLSL built-in
// variable it binds to; ok is false for user-defined varyings.
func SemanticToKeyword(sem ast.IndexedSemantic, target shader.Target, input bool) (string, bool) {
	switch sem.Semantic {
	case ast.SemanticVertexPosition:
		if !input {
			return "gl_Position", true
		}
	case ast.SemanticPosition:
		if target == shader.FragmentShader && input {
			return "gl_FragCoord", true
		}
	case ast.SemanticDepth:
		return "gl_FragDepth", true
	case ast.SemanticVertexID:
		return "gl_VertexID", true
	case ast.SemanticInstanceID:
		return "gl_InstanceID", true
	case ast.SemanticPrimitiveID:
		return "gl_PrimitiveID", true
	case ast.SemanticIsFrontFace:
		return "gl_FrontFacing", true
	case ast.SemanticSampleIndex:
		return "gl_SampleID", true
	case ast.SemanticDispatchThreadID:
		return "gl_GlobalInvocationID", true
	case ast.SemanticGroupID:
		return "gl_WorkGroupID", true
	case ast.SemanticGroupIndex:
		return "gl_LocalInvocationIndex", true
	case ast.SemanticGroupThreadID:
		return "gl_LocalInvocationID", true
	}
	return "", false
}
