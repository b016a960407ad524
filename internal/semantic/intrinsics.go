package semantic

import (
	"xshade/internal/ast"
	"xshade/internal/shader"
)

// intrinsicEntry describes a language-defined function: its identifier, the
// minimum shader model it requires, and the texture-method classification.
type intrinsicEntry struct {
	intrinsic     ast.Intrinsic
	minShaderModel shader.Model
}

var (
	sm2 = shader.Model{Major: 2, Minor: 0}
	sm3 = shader.Model{Major: 3, Minor: 0}
	sm4 = shader.Model{Major: 4, Minor: 0}
	sm5 = shader.Model{Major: 5, Minor: 0}
)

// hlslIntrinsics maps intrinsic names (global functions and texture-object
// methods) to their entries. Read-only after initialization.
var hlslIntrinsics = map[string]intrinsicEntry{
	"abs":         {ast.IntrinsicAbs, sm2},
	"acos":        {ast.IntrinsicACos, sm2},
	"all":         {ast.IntrinsicAll, sm2},
	"any":         {ast.IntrinsicAny, sm2},
	"asin":        {ast.IntrinsicASin, sm2},
	"atan":        {ast.IntrinsicATan, sm2},
	"atan2":       {ast.IntrinsicATan2, sm2},
	"ceil":        {ast.IntrinsicCeil, sm2},
	"clamp":       {ast.IntrinsicClamp, sm2},
	"clip":        {ast.IntrinsicClip, sm2},
	"cos":         {ast.IntrinsicCos, sm2},
	"cosh":        {ast.IntrinsicCosH, sm2},
	"cross":       {ast.IntrinsicCross, sm2},
	"ddx":         {ast.IntrinsicDDX, sm2},
	"ddy":         {ast.IntrinsicDDY, sm2},
	"degrees":     {ast.IntrinsicDegrees, sm2},
	"determinant": {ast.IntrinsicDeterminant, sm2},
	"distance":    {ast.IntrinsicDistance, sm2},
	"dot":         {ast.IntrinsicDot, sm2},
	"exp":         {ast.IntrinsicExp, sm2},
	"exp2":        {ast.IntrinsicExp2, sm2},
	"floor":       {ast.IntrinsicFloor, sm2},
	"fmod":        {ast.IntrinsicFMod, sm2},
	"frac":        {ast.IntrinsicFrac, sm2},
	"isinf":       {ast.IntrinsicIsInf, sm2},
	"isnan":       {ast.IntrinsicIsNaN, sm2},
	"ldexp":       {ast.IntrinsicLdExp, sm2},
	"length":      {ast.IntrinsicLength, sm2},
	"lerp":        {ast.IntrinsicLerp, sm2},
	"log":         {ast.IntrinsicLog, sm2},
	"log2":        {ast.IntrinsicLog2, sm2},
	"mad":         {ast.IntrinsicMad, sm5},
	"max":         {ast.IntrinsicMax, sm2},
	"min":         {ast.IntrinsicMin, sm2},
	"mul":         {ast.IntrinsicMul, sm2},
	"normalize":   {ast.IntrinsicNormalize, sm2},
	"pow":         {ast.IntrinsicPow, sm2},
	"radians":     {ast.IntrinsicRadians, sm2},
	"rcp":         {ast.IntrinsicRcp, sm5},
	"reflect":     {ast.IntrinsicReflect, sm2},
	"refract":     {ast.IntrinsicRefract, sm2},
	"round":       {ast.IntrinsicRound, sm2},
	"rsqrt":       {ast.IntrinsicRSqrt, sm2},
	"saturate":    {ast.IntrinsicSaturate, sm2},
	"sign":        {ast.IntrinsicSign, sm2},
	"sin":         {ast.IntrinsicSin, sm2},
	"sincos":      {ast.IntrinsicSinCos, sm2},
	"sinh":        {ast.IntrinsicSinH, sm2},
	"smoothstep":  {ast.IntrinsicSmoothStep, sm2},
	"sqrt":        {ast.IntrinsicSqrt, sm2},
	"step":        {ast.IntrinsicStep, sm2},
	"tan":         {ast.IntrinsicTan, sm2},
	"tanh":        {ast.IntrinsicTanH, sm2},
	"transpose":   {ast.IntrinsicTranspose, sm2},
	"trunc":       {ast.IntrinsicTrunc, sm2},

	"asfloat": {ast.IntrinsicAsFloat, sm4},
	"asint":   {ast.IntrinsicAsInt, sm4},
	"asuint":  {ast.IntrinsicAsUInt1, sm4},

	"GroupMemoryBarrier":              {ast.IntrinsicGroupMemoryBarrier, sm5},
	"GroupMemoryBarrierWithGroupSync": {ast.IntrinsicGroupMemoryBarrierWithGroupSync, sm5},
	"InterlockedAdd":                  {ast.IntrinsicInterlockedAdd, sm5},
	"InterlockedAnd":                  {ast.IntrinsicInterlockedAnd, sm5},
	"InterlockedCompareExchange":      {ast.IntrinsicInterlockedCompareExchange, sm5},
	"InterlockedExchange":             {ast.IntrinsicInterlockedExchange, sm5},
	"InterlockedMax":                  {ast.IntrinsicInterlockedMax, sm5},
	"InterlockedMin":                  {ast.IntrinsicInterlockedMin, sm5},
	"InterlockedOr":                   {ast.IntrinsicInterlockedOr, sm5},
	"InterlockedXor":                  {ast.IntrinsicInterlockedXor, sm5},

	"tex1D":     {ast.IntrinsicTex1D2, sm2},
	"tex2D":     {ast.IntrinsicTex2D2, sm2},
	"tex2Dlod":  {ast.IntrinsicTex2DLod, sm3},
	"tex3D":     {ast.IntrinsicTex3D2, sm2},
	"texCUBE":   {ast.IntrinsicTexCube2, sm2},

	"GetDimensions": {ast.IntrinsicTextureGetDimensions, sm4},
	"Load":          {ast.IntrinsicTextureLoad1, sm4},
	"Sample":        {ast.IntrinsicTextureSample2, sm4},
	"SampleBias":    {ast.IntrinsicTextureSampleBias3, sm4},
	"SampleCmp":     {ast.IntrinsicTextureSampleCmp3, sm4},
	"SampleGrad":    {ast.IntrinsicTextureSampleGrad4, sm4},
	"SampleLevel":   {ast.IntrinsicTextureSampleLevel3, sm4},
	"Gather":        {ast.IntrinsicTextureGather, sm5},
}

// intrinsicConversion refines an overloaded intrinsic by argument count.
type intrinsicConversion struct {
	standard   ast.Intrinsic
	numArgs    int
	overloaded ast.Intrinsic
}

// intrinsicConversions is the (base, argc) -> specialized refinement table,
// applied after the name lookup.
var intrinsicConversions = []intrinsicConversion{
	{ast.IntrinsicAsUInt1, 3, ast.IntrinsicAsUInt3},
	{ast.IntrinsicTex1D2, 4, ast.IntrinsicTex1D4},
	{ast.IntrinsicTex2D2, 4, ast.IntrinsicTex2D4},
	{ast.IntrinsicTex3D2, 4, ast.IntrinsicTex3D4},
	{ast.IntrinsicTexCube2, 4, ast.IntrinsicTexCube4},
	{ast.IntrinsicTextureLoad1, 2, ast.IntrinsicTextureLoad2},
	{ast.IntrinsicTextureLoad1, 3, ast.IntrinsicTextureLoad3},
	{ast.IntrinsicTextureSample2, 3, ast.IntrinsicTextureSample3},
	{ast.IntrinsicTextureSample2, 4, ast.IntrinsicTextureSample4},
	{ast.IntrinsicTextureSample2, 5, ast.IntrinsicTextureSample5},
	{ast.IntrinsicTextureSampleBias3, 4, ast.IntrinsicTextureSampleBias4},
	{ast.IntrinsicTextureSampleBias3, 5, ast.IntrinsicTextureSampleBias5},
	{ast.IntrinsicTextureSampleBias3, 6, ast.IntrinsicTextureSampleBias6},
	{ast.IntrinsicTextureSampleCmp3, 4, ast.IntrinsicTextureSampleCmp4},
	{ast.IntrinsicTextureSampleCmp3, 5, ast.IntrinsicTextureSampleCmp5},
	{ast.IntrinsicTextureSampleCmp3, 6, ast.IntrinsicTextureSampleCmp6},
	{ast.IntrinsicTextureSampleGrad4, 5, ast.IntrinsicTextureSampleGrad5},
	{ast.IntrinsicTextureSampleGrad4, 6, ast.IntrinsicTextureSampleGrad6},
	{ast.IntrinsicTextureSampleGrad4, 7, ast.IntrinsicTextureSampleGrad7},
	{ast.IntrinsicTextureSampleLevel3, 4, ast.IntrinsicTextureSampleLevel4},
	{ast.IntrinsicTextureSampleLevel3, 5, ast.IntrinsicTextureSampleLevel5},
}

// refineIntrinsic applies the arity refinement; both tables are pure
// functions of the argument count.
func refineIntrinsic(intr ast.Intrinsic, numArgs int) ast.Intrinsic {
	for _, conv := range intrinsicConversions {
		if conv.standard == intr && conv.numArgs == numArgs {
			return conv.overloaded
		}
	}
	return intr
}
