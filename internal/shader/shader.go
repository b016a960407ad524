// Package shader defines the pipeline-stage and language-version
// enumerations plus the compile-time statistics records shared between the
// analyzer and the public entry point.
package shader

import "strconv"

// Target is the pipeline stage the shader is compiled for.
type Target int

const (
	TargetUndefined Target = iota
	VertexShader
	FragmentShader
	GeometryShader
	TessControlShader
	TessEvaluationShader
	ComputeShader
)

func (t Target) String() string {
	switch t {
	case VertexShader:
		return "Vertex Shader"
	case FragmentShader:
		return "Fragment Shader"
	case GeometryShader:
		return "Geometry Shader"
	case TessControlShader:
		return "Tessellation-Control Shader"
	case TessEvaluationShader:
		return "Tessellation-Evaluation Shader"
	case ComputeShader:
		return "Compute Shader"
	}
	return "Undefined"
}

// TargetFromProfile maps an HLSL shader-profile prefix such as "vs_5_0".
func TargetFromProfile(profile string) Target {
	if len(profile) < 2 {
		return TargetUndefined
	}
	switch profile[:2] {
	case "vs":
		return VertexShader
	case "hs":
		return TessControlShader
	case "ds":
		return TessEvaluationShader
	case "gs":
		return GeometryShader
	case "ps":
		return FragmentShader
	case "cs":
		return ComputeShader
	}
	return TargetUndefined
}

// InputVersion is the HLSL feature-level the input is written against.
type InputVersion int

const (
	HLSL3 InputVersion = 3
	HLSL4 InputVersion = 4
	HLSL5 InputVersion = 5
)

func (v InputVersion) String() string {
	switch v {
	case HLSL3:
		return "HLSL 3.0"
	case HLSL4:
		return "HLSL 4.0"
	case HLSL5:
		return "HLSL 5.0"
	}
	return "HLSL"
}

// Model is a shader model as (major, minor), used to gate intrinsics.
type Model struct {
	Major int
	Minor int
}

// ModelFromVersion maps the input version to its shader model.
func ModelFromVersion(v InputVersion) Model {
	switch v {
	case HLSL3:
		return Model{3, 0}
	case HLSL4:
		return Model{4, 0}
	case HLSL5:
		return Model{5, 0}
	}
	return Model{1, 0}
}

// Less orders shader models.
func (m Model) Less(rhs Model) bool {
	if m.Major != rhs.Major {
		return m.Major < rhs.Major
	}
	return m.Minor < rhs.Minor
}

func (m Model) String() string {
	return strconv.Itoa(m.Major) + "." + strconv.Itoa(m.Minor)
}

// OutputVersion is the GLSL version emitted.
type OutputVersion int

const (
	GLSL OutputVersion = 0 // pick automatically
	GLSL130 OutputVersion = 130
	GLSL140 OutputVersion = 140
	GLSL150 OutputVersion = 150
	GLSL330 OutputVersion = 330
	GLSL400 OutputVersion = 400
	GLSL410 OutputVersion = 410
	GLSL420 OutputVersion = 420
	GLSL430 OutputVersion = 430
	GLSL440 OutputVersion = 440
	GLSL450 OutputVersion = 450
)

func (v OutputVersion) String() string {
	if v == GLSL {
		return "GLSL"
	}
	return "GLSL " + strconv.Itoa(int(v)/100) + "." + strconv.Itoa(int(v)%100/10) + "0"
}

// Binding associates a resource name with its slot.
type Binding struct {
	Name string
	Slot int
}

// Statistics is the optional compile-time statistics sink: defined macros,
// resource bindings, and harvested sampler states.
type Statistics struct {
	Macros          []string
	Textures        []Binding
	ConstantBuffers []Binding
	FragmentTargets []Binding
	SamplerStates   map[string]SamplerState
}
