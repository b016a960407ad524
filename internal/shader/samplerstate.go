package shader

// SamplerState is the harvested record of an inline sampler_state block.
type SamplerState struct {
	Filter         Filter
	AddressU       TextureAddressMode
	AddressV       TextureAddressMode
	AddressW       TextureAddressMode
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc ComparisonFunc
	BorderColor    [4]float32
	MinLOD         float32
	MaxLOD         float32
}

// NewSamplerState returns a sampler state with D3D default values.
func NewSamplerState() SamplerState {
	return SamplerState{
		Filter:         FilterMinMagMipLinear,
		AddressU:       AddressClamp,
		AddressV:       AddressClamp,
		AddressW:       AddressClamp,
		MaxAnisotropy:  1,
		ComparisonFunc: ComparisonNever,
		MaxLOD:         3.402823466e+38,
	}
}

// Filter enumerates D3D sampler filters.
type Filter int

const (
	FilterMinMagMipPoint Filter = iota
	FilterMinMagPointMipLinear
	FilterMinPointMagLinearMipPoint
	FilterMinPointMagMipLinear
	FilterMinLinearMagMipPoint
	FilterMinLinearMagPointMipLinear
	FilterMinMagLinearMipPoint
	FilterMinMagMipLinear
	FilterAnisotropic
	FilterComparisonMinMagMipPoint
	FilterComparisonMinMagPointMipLinear
	FilterComparisonMinPointMagLinearMipPoint
	FilterComparisonMinPointMagMipLinear
	FilterComparisonMinLinearMagMipPoint
	FilterComparisonMinLinearMagPointMipLinear
	FilterComparisonMinMagLinearMipPoint
	FilterComparisonMinMagMipLinear
	FilterComparisonAnisotropic
	FilterMinimumMinMagMipPoint
	FilterMinimumMinMagPointMipLinear
	FilterMinimumMinPointMagLinearMipPoint
	FilterMinimumMinPointMagMipLinear
	FilterMinimumMinLinearMagMipPoint
	FilterMinimumMinLinearMagPointMipLinear
	FilterMinimumMinMagLinearMipPoint
	FilterMinimumMinMagMipLinear
	FilterMinimumAnisotropic
	FilterMaximumMinMagMipPoint
	FilterMaximumMinMagPointMipLinear
	FilterMaximumMinPointMagLinearMipPoint
	FilterMaximumMinPointMagMipLinear
	FilterMaximumMinLinearMagMipPoint
	FilterMaximumMinLinearMagPointMipLinear
	FilterMaximumMinMagLinearMipPoint
	FilterMaximumMinMagMipLinear
	FilterMaximumAnisotropic
)

// Filters maps sampler_state spelling to filter value.
var Filters = map[string]Filter{
	"MIN_MAG_MIP_POINT":                          FilterMinMagMipPoint,
	"MIN_MAG_POINT_MIP_LINEAR":                   FilterMinMagPointMipLinear,
	"MIN_POINT_MAG_LINEAR_MIP_POINT":             FilterMinPointMagLinearMipPoint,
	"MIN_POINT_MAG_MIP_LINEAR":                   FilterMinPointMagMipLinear,
	"MIN_LINEAR_MAG_MIP_POINT":                   FilterMinLinearMagMipPoint,
	"MIN_LINEAR_MAG_POINT_MIP_LINEAR":            FilterMinLinearMagPointMipLinear,
	"MIN_MAG_LINEAR_MIP_POINT":                   FilterMinMagLinearMipPoint,
	"MIN_MAG_MIP_LINEAR":                         FilterMinMagMipLinear,
	"ANISOTROPIC":                                FilterAnisotropic,
	"COMPARISON_MIN_MAG_MIP_POINT":               FilterComparisonMinMagMipPoint,
	"COMPARISON_MIN_MAG_POINT_MIP_LINEAR":        FilterComparisonMinMagPointMipLinear,
	"COMPARISON_MIN_POINT_MAG_LINEAR_MIP_POINT":  FilterComparisonMinPointMagLinearMipPoint,
	"COMPARISON_MIN_POINT_MAG_MIP_LINEAR":        FilterComparisonMinPointMagMipLinear,
	"COMPARISON_MIN_LINEAR_MAG_MIP_POINT":        FilterComparisonMinLinearMagMipPoint,
	"COMPARISON_MIN_LINEAR_MAG_POINT_MIP_LINEAR": FilterComparisonMinLinearMagPointMipLinear,
	"COMPARISON_MIN_MAG_LINEAR_MIP_POINT":        FilterComparisonMinMagLinearMipPoint,
	"COMPARISON_MIN_MAG_MIP_LINEAR":              FilterComparisonMinMagMipLinear,
	"COMPARISON_ANISOTROPIC":                     FilterComparisonAnisotropic,
	"MINIMUM_MIN_MAG_MIP_POINT":                  FilterMinimumMinMagMipPoint,
	"MINIMUM_MIN_MAG_POINT_MIP_LINEAR":           FilterMinimumMinMagPointMipLinear,
	"MINIMUM_MIN_POINT_MAG_LINEAR_MIP_POINT":     FilterMinimumMinPointMagLinearMipPoint,
	"MINIMUM_MIN_POINT_MAG_MIP_LINEAR":           FilterMinimumMinPointMagMipLinear,
	"MINIMUM_MIN_LINEAR_MAG_MIP_POINT":           FilterMinimumMinLinearMagMipPoint,
	"MINIMUM_MIN_LINEAR_MAG_POINT_MIP_LINEAR":    FilterMinimumMinLinearMagPointMipLinear,
	"MINIMUM_MIN_MAG_LINEAR_MIP_POINT":           FilterMinimumMinMagLinearMipPoint,
	"MINIMUM_MIN_MAG_MIP_LINEAR":                 FilterMinimumMinMagMipLinear,
	"MINIMUM_ANISOTROPIC":                        FilterMinimumAnisotropic,
	"MAXIMUM_MIN_MAG_MIP_POINT":                  FilterMaximumMinMagMipPoint,
	"MAXIMUM_MIN_MAG_POINT_MIP_LINEAR":           FilterMaximumMinMagPointMipLinear,
	"MAXIMUM_MIN_POINT_MAG_LINEAR_MIP_POINT":     FilterMaximumMinPointMagLinearMipPoint,
	"MAXIMUM_MIN_POINT_MAG_MIP_LINEAR":           FilterMaximumMinPointMagMipLinear,
	"MAXIMUM_MIN_LINEAR_MAG_MIP_POINT":           FilterMaximumMinLinearMagMipPoint,
	"MAXIMUM_MIN_LINEAR_MAG_POINT_MIP_LINEAR":    FilterMaximumMinLinearMagPointMipLinear,
	"MAXIMUM_MIN_MAG_LINEAR_MIP_POINT":           FilterMaximumMinMagLinearMipPoint,
	"MAXIMUM_MIN_MAG_MIP_LINEAR":                 FilterMaximumMinMagMipLinear,
	"MAXIMUM_ANISOTROPIC":                        FilterMaximumAnisotropic,
}

// TextureAddressMode enumerates D3D texture addressing modes.
type TextureAddressMode int

const (
	AddressWrap TextureAddressMode = iota
	AddressMirror
	AddressClamp
	AddressBorder
	AddressMirrorOnce
)

// AddressModes maps sampler_state spelling to addressing mode.
var AddressModes = map[string]TextureAddressMode{
	"WRAP":        AddressWrap,
	"MIRROR":      AddressMirror,
	"CLAMP":       AddressClamp,
	"BORDER":      AddressBorder,
	"MIRROR_ONCE": AddressMirrorOnce,
}

// ComparisonFunc enumerates D3D comparison functions.
type ComparisonFunc int

const (
	ComparisonNever ComparisonFunc = iota
	ComparisonLess
	ComparisonEqual
	ComparisonLessEqual
	ComparisonGreater
	ComparisonNotEqual
	ComparisonGreaterEqual
	ComparisonAlways
)

// ComparisonFuncs maps sampler_state spelling to comparison function.
var ComparisonFuncs = map[string]ComparisonFunc{
	"COMPARISON_NEVER":         ComparisonNever,
	"COMPARISON_LESS":          ComparisonLess,
	"COMPARISON_EQUAL":         ComparisonEqual,
	"COMPARISON_LESS_EQUAL":    ComparisonLessEqual,
	"COMPARISON_GREATER":       ComparisonGreater,
	"COMPARISON_NOT_EQUAL":     ComparisonNotEqual,
	"COMPARISON_GREATER_EQUAL": ComparisonGreaterEqual,
	"COMPARISON_ALWAYS":        ComparisonAlways,
}
