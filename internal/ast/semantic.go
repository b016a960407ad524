package ast

import "strings"

// Semantic classifies the binding tag attached to a variable or function
// return. System-value semantics map to fixed pipeline inputs/outputs.
type Semantic int

const (
	SemanticUndefined Semantic = iota
	SemanticUserDefined

	// VertexPosition is the internal rewrite target for the vertex-stage
	// position semantic, so the back-end picks gl_Position.
	SemanticVertexPosition

	SemanticClipDistance
	SemanticCullDistance
	SemanticCoverage
	SemanticDepth
	SemanticDepthGreaterEqual
	SemanticDepthLessEqual
	SemanticDispatchThreadID
	SemanticDomainLocation
	SemanticGroupID
	SemanticGroupIndex
	SemanticGroupThreadID
	SemanticGSInstanceID
	SemanticInsideTessFactor
	SemanticInstanceID
	SemanticIsFrontFace
	SemanticOutputControlPointID
	SemanticPosition
	SemanticPrimitiveID
	SemanticRenderTargetArrayIndex
	SemanticSampleIndex
	SemanticStencilRef
	SemanticTarget
	SemanticTessFactor
	SemanticVertexID
	SemanticViewportArrayIndex
)

// semanticNames maps upper-cased semantic base names (digits stripped) to
// their classification. D3D9-era names share entries with their SV_
// counterparts so both generations land on the same pipeline slot.
var semanticNames = map[string]Semantic{
	"SV_CLIPDISTANCE":           SemanticClipDistance,
	"SV_CULLDISTANCE":           SemanticCullDistance,
	"SV_COVERAGE":               SemanticCoverage,
	"SV_DEPTH":                  SemanticDepth,
	"DEPTH":                     SemanticDepth,
	"SV_DEPTHGREATEREQUAL":      SemanticDepthGreaterEqual,
	"SV_DEPTHLESSEQUAL":         SemanticDepthLessEqual,
	"SV_DISPATCHTHREADID":       SemanticDispatchThreadID,
	"SV_DOMAINLOCATION":         SemanticDomainLocation,
	"SV_GROUPID":                SemanticGroupID,
	"SV_GROUPINDEX":             SemanticGroupIndex,
	"SV_GROUPTHREADID":          SemanticGroupThreadID,
	"SV_GSINSTANCEID":           SemanticGSInstanceID,
	"SV_INSIDETESSFACTOR":       SemanticInsideTessFactor,
	"SV_INSTANCEID":             SemanticInstanceID,
	"SV_ISFRONTFACE":            SemanticIsFrontFace,
	"VFACE":                     SemanticIsFrontFace,
	"SV_OUTPUTCONTROLPOINTID":   SemanticOutputControlPointID,
	"SV_POSITION":               SemanticPosition,
	"POSITION":                  SemanticPosition,
	"VPOS":                      SemanticPosition,
	"SV_PRIMITIVEID":            SemanticPrimitiveID,
	"SV_RENDERTARGETARRAYINDEX": SemanticRenderTargetArrayIndex,
	"SV_SAMPLEINDEX":            SemanticSampleIndex,
	"SV_STENCILREF":             SemanticStencilRef,
	"SV_TARGET":                 SemanticTarget,
	"COLOR":                     SemanticTarget,
	"SV_TESSFACTOR":             SemanticTessFactor,
	"SV_VERTEXID":               SemanticVertexID,
	"SV_VIEWPORTARRAYINDEX":     SemanticViewportArrayIndex,
}

// IndexedSemantic is a semantic classification plus its index and the
// original spelling.
type IndexedSemantic struct {
	Semantic Semantic
	Index    int
	Name     string
}

// ParseSemantic classifies a semantic identifier, splitting a trailing
// decimal index (e.g. "COLOR0" or "TEXCOORD3").
func ParseSemantic(ident string) IndexedSemantic {
	base := ident
	index := 0
	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}
	if i < len(base) && i > 0 {
		for _, c := range base[i:] {
			index = index*10 + int(c-'0')
		}
		base = base[:i]
	}
	sem, ok := semanticNames[strings.ToUpper(base)]
	if !ok {
		sem = SemanticUserDefined
	}
	return IndexedSemantic{Semantic: sem, Index: index, Name: ident}
}

// IsValid reports whether any semantic was attached.
func (s IndexedSemantic) IsValid() bool { return s.Semantic != SemanticUndefined }

// IsSystemValue reports whether the semantic binds to a fixed pipeline slot
// rather than a user-defined varying.
func (s IndexedSemantic) IsSystemValue() bool {
	return s.Semantic != SemanticUndefined && s.Semantic != SemanticUserDefined
}
