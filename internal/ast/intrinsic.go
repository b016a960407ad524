package ast

// Intrinsic identifies a language-defined function. Overloaded intrinsics
// that are sensitive to argument count carry one entry per arity.
type Intrinsic int

const (
	IntrinsicUndefined Intrinsic = iota

	IntrinsicAbs
	IntrinsicACos
	IntrinsicAll
	IntrinsicAny
	IntrinsicASin
	IntrinsicATan
	IntrinsicATan2
	IntrinsicCeil
	IntrinsicClamp
	IntrinsicClip
	IntrinsicCos
	IntrinsicCosH
	IntrinsicCross
	IntrinsicDDX
	IntrinsicDDY
	IntrinsicDegrees
	IntrinsicDeterminant
	IntrinsicDistance
	IntrinsicDot
	IntrinsicExp
	IntrinsicExp2
	IntrinsicFloor
	IntrinsicFMod
	IntrinsicFrac
	IntrinsicIsInf
	IntrinsicIsNaN
	IntrinsicLdExp
	IntrinsicLength
	IntrinsicLerp
	IntrinsicLog
	IntrinsicLog2
	IntrinsicMad
	IntrinsicMax
	IntrinsicMin
	IntrinsicMul
	IntrinsicNormalize
	IntrinsicPow
	IntrinsicRadians
	IntrinsicRcp
	IntrinsicReflect
	IntrinsicRefract
	IntrinsicRound
	IntrinsicRSqrt
	IntrinsicSaturate
	IntrinsicSign
	IntrinsicSin
	IntrinsicSinCos
	IntrinsicSinH
	IntrinsicSmoothStep
	IntrinsicSqrt
	IntrinsicStep
	IntrinsicTan
	IntrinsicTanH
	IntrinsicTranspose
	IntrinsicTrunc

	IntrinsicAsFloat
	IntrinsicAsInt
	IntrinsicAsUInt1
	IntrinsicAsUInt3

	IntrinsicGroupMemoryBarrier
	IntrinsicGroupMemoryBarrierWithGroupSync
	IntrinsicInterlockedAdd
	IntrinsicInterlockedAnd
	IntrinsicInterlockedCompareExchange
	IntrinsicInterlockedExchange
	IntrinsicInterlockedMax
	IntrinsicInterlockedMin
	IntrinsicInterlockedOr
	IntrinsicInterlockedXor

	// D3D9 texture sampling.
	IntrinsicTex1D2
	IntrinsicTex1D4
	IntrinsicTex2D2
	IntrinsicTex2D4
	IntrinsicTex2DLod
	IntrinsicTex3D2
	IntrinsicTex3D4
	IntrinsicTexCube2
	IntrinsicTexCube4

	// Texture object methods.
	IntrinsicTextureGetDimensions
	IntrinsicTextureLoad1
	IntrinsicTextureLoad2
	IntrinsicTextureLoad3
	IntrinsicTextureSample2
	IntrinsicTextureSample3
	IntrinsicTextureSample4
	IntrinsicTextureSample5
	IntrinsicTextureSampleBias3
	IntrinsicTextureSampleBias4
	IntrinsicTextureSampleBias5
	IntrinsicTextureSampleBias6
	IntrinsicTextureSampleCmp3
	IntrinsicTextureSampleCmp4
	IntrinsicTextureSampleCmp5
	IntrinsicTextureSampleCmp6
	IntrinsicTextureSampleGrad4
	IntrinsicTextureSampleGrad5
	IntrinsicTextureSampleGrad6
	IntrinsicTextureSampleGrad7
	IntrinsicTextureSampleLevel3
	IntrinsicTextureSampleLevel4
	IntrinsicTextureSampleLevel5
	IntrinsicTextureGather
)

// IsTextureIntrinsic reports whether the intrinsic is a texture-object
// method and therefore only valid when called on a texture declaration.
func (i Intrinsic) IsTextureIntrinsic() bool {
	return i >= IntrinsicTextureGetDimensions && i <= IntrinsicTextureGather
}
