package xshade

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, input string, target ShaderTarget, entry string, options Options, statistics *Statistics) (string, *CollectLog, bool) {
	t.Helper()

	var out strings.Builder
	log := &CollectLog{}
	ok := CompileShader(
		ShaderInput{
			SourceCode:    strings.NewReader(input),
			Filename:      "test.hlsl",
			EntryPoint:    entry,
			Target:        target,
			ShaderVersion: HLSL5,
		},
		ShaderOutput{
			SourceCode:    &out,
			ShaderVersion: GLSL330,
			Options:       options,
			Statistics:    statistics,
		},
		log,
	)
	return out.String(), log, ok
}

const vertexSource = `
#define SCALE 2.0

cbuffer Scene : register(b0)
{
    float4x4 wvp;
};

struct VS_IN { float4 p : POSITION; };

float4 main(VS_IN i) : SV_Position
{
    return mul(wvp, i.p * SCALE);
}`

func TestCompileVertexShader(t *testing.T) {
	out, log, ok := compile(t, vertexSource, VertexShader, "main", Options{}, nil)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "#version 330")
	assert.Contains(t, out, "gl_Position")
	assert.Contains(t, out, "2.0")
}

func TestCompileReturnsFalseOnError(t *testing.T) {
	_, log, ok := compile(t, "void main() { undefined_symbol; }", VertexShader, "main", Options{}, nil)
	assert.False(t, ok)
	assert.NotEmpty(t, log.Errors())
}

func TestWarningsNeverGateSuccess(t *testing.T) {
	input := "technique T { pass P { } }\nfloat4 main() : SV_Position { return float4(0, 0, 0, 1); }"
	_, log, ok := compile(t, input, VertexShader, "main", Options{}, nil)
	require.True(t, ok, "reports: %v", log.Reports)

	warned := false
	for _, report := range log.Reports {
		if report.Severity == SeverityWarning {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestPreprocessOnly(t *testing.T) {
	input := "#define N 3\nint a[N];"
	out, log, ok := compile(t, input, VertexShader, "", Options{PreprocessOnly: true}, nil)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "int a[")
	assert.Contains(t, out, "3")
	assert.NotContains(t, out, "#version")
}

func TestValidateOnlyProducesNoOutput(t *testing.T) {
	var out strings.Builder
	log := &CollectLog{}
	ok := CompileShader(
		ShaderInput{
			SourceCode:    strings.NewReader(vertexSource),
			EntryPoint:    "main",
			Target:        VertexShader,
			ShaderVersion: HLSL5,
		},
		ShaderOutput{
			SourceCode:    &out,
			ShaderVersion: GLSL330,
			Options:       Options{ValidateOnly: true},
		},
		log,
	)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Empty(t, out.String())
}

func TestStatistics(t *testing.T) {
	statistics := &Statistics{}
	_, log, ok := compile(t, vertexSource, VertexShader, "main", Options{}, statistics)
	require.True(t, ok, "reports: %v", log.Reports)

	assert.Equal(t, []string{"SCALE"}, statistics.Macros)
	require.Len(t, statistics.ConstantBuffers, 1)
	assert.Equal(t, Binding{Name: "Scene", Slot: 0}, statistics.ConstantBuffers[0])
}

func TestStatisticsBindingsAreSortedBySlot(t *testing.T) {
	input := `
Texture2D a : register(t3);
Texture2D b : register(t1);
Texture2D c : register(t2);
float4 main() : SV_Position { return float4(0, 0, 0, 1); }`
	statistics := &Statistics{}
	_, log, ok := compile(t, input, VertexShader, "main", Options{}, statistics)
	require.True(t, ok, "reports: %v", log.Reports)

	require.Len(t, statistics.Textures, 3)
	assert.Equal(t, []Binding{
		{Name: "b", Slot: 1},
		{Name: "c", Slot: 2},
		{Name: "a", Slot: 3},
	}, statistics.Textures)
}

func TestShowTimes(t *testing.T) {
	_, log, ok := compile(t, vertexSource, VertexShader, "main", Options{ShowTimes: true}, nil)
	require.True(t, ok, "reports: %v", log.Reports)

	timings := 0
	for _, report := range log.Reports {
		if report.Severity == SeverityInfo && strings.HasPrefix(report.Message, "timing ") {
			timings++
		}
	}
	assert.Equal(t, 5, timings)
}

func TestShowAST(t *testing.T) {
	_, log, ok := compile(t, vertexSource, VertexShader, "main", Options{ShowAST: true}, nil)
	require.True(t, ok, "reports: %v", log.Reports)

	found := false
	for _, report := range log.Reports {
		if report.Severity == SeverityInfo && strings.Contains(report.Message, "FunctionDecl") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestOptimizePass(t *testing.T) {
	input := "void main() { ; ; float4 p = float4(0, 0, 0, 1); }"
	out, log, ok := compile(t, input, VertexShader, "main", Options{Optimize: true}, nil)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.NotContains(t, out, "    ;")
}

func TestConditionalCompilationEndToEnd(t *testing.T) {
	input := `
#if (1<<3) > 4
int x;
#endif
#if (1<<3) > 40
int y;
#endif
float4 main() : SV_Position { return float4(0, 0, 0, 1); }`
	out, log, ok := compile(t, input, VertexShader, "main", Options{}, nil)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out, "int x;")
	assert.NotContains(t, out, "int y;")
}

func TestIncludeHandler(t *testing.T) {
	handler := &stubIncludeHandler{files: map[string]string{
		"lib.hlsl": "float4 libColor() { return float4(1, 0, 0, 1); }\n",
	}}

	var out strings.Builder
	log := &CollectLog{}
	ok := CompileShader(
		ShaderInput{
			SourceCode:     strings.NewReader("#include \"lib.hlsl\"\nfloat4 main() : SV_Position { return libColor(); }"),
			EntryPoint:     "main",
			Target:         VertexShader,
			ShaderVersion:  HLSL5,
			IncludeHandler: handler,
		},
		ShaderOutput{SourceCode: &out, ShaderVersion: GLSL330},
		log,
	)
	require.True(t, ok, "reports: %v", log.Reports)
	assert.Contains(t, out.String(), "libColor")
}

type stubIncludeHandler struct {
	files map[string]string
}

func (h *stubIncludeHandler) Include(name string, isSystem bool) (io.Reader, error) {
	return strings.NewReader(h.files[name]), nil
}
