package glsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/parser"
	"xshade/internal/semantic"
	"xshade/internal/shader"
	"xshade/internal/source"
)

func generate(t *testing.T, input string, target shader.Target, entry string, statistics *shader.Statistics) string {
	t.Helper()

	log := &errors.CollectLog{}
	p := parser.NewParser(log)
	prog := p.ParseSource(source.NewCodeFromString("test.hlsl", input))
	require.NotNil(t, prog, "parse reports: %v", log.Reports)

	analyzer := semantic.NewAnalyzer(log)
	ok := analyzer.DecorateAST(prog, nil, semantic.Options{
		EntryPoint: entry,
		Target:     target,
		Version:    shader.HLSL5,
		Statistics: statistics,
	})
	require.True(t, ok, "analyze reports: %v", log.Reports)

	var out strings.Builder
	generator := NewGenerator(log)
	require.True(t, generator.GenerateCode(prog, &out, Options{
		Target:     target,
		Version:    shader.GLSL330,
		Statistics: statistics,
	}))
	return out.String()
}

func TestVertexShaderOutput(t *testing.T) {
	input := `
cbuffer Scene : register(b0)
{
    float4x4 wvp;
};
struct VS_IN { float4 p : POSITION; };
float4 main(VS_IN i) : SV_Position
{
    return mul(wvp, i.p);
}`
	statistics := &shader.Statistics{}
	out := generate(t, input, shader.VertexShader, "main", statistics)

	assert.Contains(t, out, "#version 330")
	assert.Contains(t, out, "uniform mat4 wvp;")
	assert.Contains(t, out, "in vec4 p;")
	assert.Contains(t, out, "void main()")
	assert.Contains(t, out, "gl_Position = (wvp) * (p);")
	assert.NotContains(t, out, "struct VS_IN")

	require.Len(t, statistics.ConstantBuffers, 1)
	assert.Equal(t, shader.Binding{Name: "Scene", Slot: 0}, statistics.ConstantBuffers[0])
}

func TestFragmentShaderOutput(t *testing.T) {
	input := `
Texture2D colorMap : register(t2);
SamplerState colorSampler;
float4 main(float2 uv : TEXCOORD0) : SV_Target
{
    return colorMap.Sample(colorSampler, uv);
}`
	statistics := &shader.Statistics{}
	out := generate(t, input, shader.FragmentShader, "main", statistics)

	assert.Contains(t, out, "uniform sampler2D colorMap;")
	assert.Contains(t, out, "in vec2 uv;")
	assert.Contains(t, out, "texture(colorMap, uv)")

	require.Len(t, statistics.Textures, 1)
	assert.Equal(t, shader.Binding{Name: "colorMap", Slot: 2}, statistics.Textures[0])
	require.Len(t, statistics.FragmentTargets, 1)
	assert.Equal(t, "SV_Target", statistics.FragmentTargets[0].Name)
}

func TestPlainFunctionAndControlFlow(t *testing.T) {
	input := `
float accumulate(float x)
{
    float sum = 0.0;
    for (int i = 0; i < 4; i++)
    {
        if (i > 2)
            sum += x;
    }
    return sum;
}`
	out := generate(t, input, shader.VertexShader, "", nil)

	assert.Contains(t, out, "float accumulate(float x)")
	assert.Contains(t, out, "for (int i = 0; i < 4; i++)")
	assert.Contains(t, out, "return sum;")
}

func TestIntrinsicRenaming(t *testing.T) {
	input := "float f(float a, float b) { return lerp(a, b, frac(a)); }"
	out := generate(t, input, shader.VertexShader, "", nil)
	assert.Contains(t, out, "mix(a, b, fract(a))")
}

func TestDataTypeToKeyword(t *testing.T) {
	tests := []struct {
		dataType string
		expected string
	}{
		{"float", "float"},
		{"float3", "vec3"},
		{"int2", "ivec2"},
		{"uint4", "uvec4"},
		{"bool2", "bvec2"},
		{"float4x4", "mat4"},
		{"float3x2", "mat3x2"},
	}
	for _, test := range tests {
		dt, err := ast.DataTypeFromKeyword(test.dataType)
		require.NoError(t, err)
		assert.Equal(t, test.expected, DataTypeToKeyword(dt), "type: %s", test.dataType)
	}
}
