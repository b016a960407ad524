// Package xshade is a source-to-source shader cross-compiler translating
// HLSL into GLSL. One call to CompileShader processes one translation unit:
// preprocessing, parsing, context analysis, and GLSL code generation.
package xshade

import (
	"fmt"
	"io"
	"sort"
	"time"

	"xshade/internal/ast"
	"xshade/internal/errors"
	"xshade/internal/glsl"
	"xshade/internal/optimizer"
	"xshade/internal/parser"
	"xshade/internal/preprocessor"
	"xshade/internal/semantic"
	"xshade/internal/shader"
	"xshade/internal/source"
)

// Re-exported collaborator types; the core consumes them through narrow
// interfaces.
type (
	Severity       = errors.Severity
	Log            = errors.Log
	Report         = errors.Report
	CollectLog     = errors.CollectLog
	IncludeHandler = preprocessor.IncludeHandler
	Statistics     = shader.Statistics
	Binding        = shader.Binding
	SamplerState   = shader.SamplerState
	ShaderTarget   = shader.Target
	InputVersion   = shader.InputVersion
	OutputVersion  = shader.OutputVersion
)

// Report severities.
const (
	SeverityInfo    = errors.Info
	SeverityWarning = errors.Warning
	SeverityError   = errors.Error
	SeverityFatal   = errors.Fatal
)

// Shader targets.
const (
	VertexShader         = shader.VertexShader
	FragmentShader       = shader.FragmentShader
	GeometryShader       = shader.GeometryShader
	TessControlShader    = shader.TessControlShader
	TessEvaluationShader = shader.TessEvaluationShader
	ComputeShader        = shader.ComputeShader
)

// Input shader versions.
const (
	HLSL3 = shader.HLSL3
	HLSL4 = shader.HLSL4
	HLSL5 = shader.HLSL5
)

// Output shader versions.
const (
	GLSL    = shader.GLSL
	GLSL130 = shader.GLSL130
	GLSL140 = shader.GLSL140
	GLSL150 = shader.GLSL150
	GLSL330 = shader.GLSL330
	GLSL400 = shader.GLSL400
	GLSL410 = shader.GLSL410
	GLSL420 = shader.GLSL420
	GLSL430 = shader.GLSL430
	GLSL440 = shader.GLSL440
	GLSL450 = shader.GLSL450
)

// ShaderInput describes the HLSL translation unit to compile.
type ShaderInput struct {
	SourceCode     io.Reader
	Filename       string // informational only
	EntryPoint     string
	Target         ShaderTarget
	ShaderVersion  InputVersion
	IncludeHandler IncludeHandler // optional; nil falls back to the file system
}

// Options are the recognized compilation flags.
type Options struct {
	PreprocessOnly bool // emit preprocessed HLSL and stop
	ShowAST        bool // dump the AST to the log
	Optimize       bool // run the optimizer pass
	ValidateOnly   bool // discard output
	ShowTimes      bool // emit per-phase timing info
	PreferWrappers bool // emit intrinsic wrappers instead of inlining
}

// ShaderOutput describes where and how the GLSL output is produced.
type ShaderOutput struct {
	SourceCode    io.Writer
	ShaderVersion OutputVersion
	Options       Options
	Statistics    *Statistics // optional sink
}

// discardWriter backs validate-only runs.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// CompileShader translates one HLSL translation unit into GLSL. It returns
// false when a phase fails; every such failure except a failed write of
// PreprocessOnly output is submitted to the log as an error or fatal report.
// Warning and info reports never make it return false. The log may be nil.
func CompileShader(input ShaderInput, output ShaderOutput, log Log) (ok bool) {
	var timePoints [6]time.Time

	if output.Options.ValidateOnly {
		output.SourceCode = discardWriter{}
	}

	defer func() {
		if r := recover(); r != nil {
			// Invariant violations surface as a fatal report, never a crash.
			if log != nil {
				log.Submit(Report{
					Severity: errors.Fatal,
					Message:  fmt.Sprintf("internal error: %v", r),
				})
			}
			ok = false
		}
	}()

	ok = compileShaderPrimary(input, output, log, &timePoints)

	if output.Statistics != nil {
		sortBindings(output.Statistics.Textures)
		sortBindings(output.Statistics.ConstantBuffers)
		sortBindings(output.Statistics.FragmentTargets)
	}

	if output.Options.ShowTimes && log != nil {
		showTime := func(name string, from, to time.Time) {
			duration := time.Duration(0)
			if to.After(from) {
				duration = to.Sub(from)
			}
			log.Submit(Report{
				Severity: errors.Info,
				Message:  fmt.Sprintf("timing %s%d ms", name, duration.Milliseconds()),
			})
		}
		showTime("pre-processing:   ", timePoints[0], timePoints[1])
		showTime("parsing:          ", timePoints[1], timePoints[2])
		showTime("context analysis: ", timePoints[2], timePoints[3])
		showTime("optimization:     ", timePoints[3], timePoints[4])
		showTime("code generation:  ", timePoints[4], timePoints[5])
	}

	return ok
}

func compileShaderPrimary(input ShaderInput, output ShaderOutput, log Log, timePoints *[6]time.Time) bool {
	submitError := func(msg string) bool {
		if log != nil {
			log.Submit(Report{Severity: errors.Error, Message: msg})
		}
		return false
	}

	if input.SourceCode == nil {
		return submitError("input stream must not be null")
	}
	if output.SourceCode == nil {
		return submitError("output stream must not be null")
	}

	/* Pre-process input code */
	timePoints[0] = time.Now()

	src, err := source.NewCode(input.Filename, input.SourceCode)
	if err != nil {
		return submitError("reading input code failed: " + err.Error())
	}

	pp := preprocessor.New(input.IncludeHandler, log)
	processedInput, ppOK := pp.Process(src)

	if output.Statistics != nil {
		output.Statistics.Macros = pp.ListDefinedMacroIdents()
	}

	if !ppOK {
		return submitError("preprocessing input code failed")
	}

	if output.Options.PreprocessOnly {
		_, err := io.WriteString(output.SourceCode, processedInput)
		return err == nil
	}

	/* Parse HLSL input code */
	timePoints[1] = time.Now()

	processedSrc := source.NewCodeFromString(input.Filename, processedInput)

	p := parser.NewParser(log)
	program := p.ParseSource(processedSrc)
	if program == nil {
		return submitError("parsing input code failed")
	}

	/* Context analysis */
	timePoints[2] = time.Now()

	analyzer := semantic.NewAnalyzer(log)
	analyzerResult := analyzer.DecorateAST(program, processedSrc, semantic.Options{
		EntryPoint:     input.EntryPoint,
		Target:         input.Target,
		Version:        input.ShaderVersion,
		PreferWrappers: output.Options.PreferWrappers,
		Statistics:     output.Statistics,
	})

	if output.Options.ShowAST && log != nil {
		printer := &ast.Printer{}
		log.Submit(Report{Severity: errors.Info, Message: printer.PrintAST(program)})
	}

	if !analyzerResult {
		return submitError("analyzing input code failed")
	}

	/* Optimize AST */
	timePoints[3] = time.Now()

	if output.Options.Optimize {
		var opt optimizer.Optimizer
		opt.Optimize(program)
	}

	/* Generate GLSL output code */
	timePoints[4] = time.Now()

	generator := glsl.NewGenerator(log)
	genOK := generator.GenerateCode(program, output.SourceCode, glsl.Options{
		Target:     input.Target,
		Version:    output.ShaderVersion,
		Statistics: output.Statistics,
	})
	if !genOK {
		return submitError("generating output code failed")
	}

	timePoints[5] = time.Now()

	return true
}

func sortBindings(bindings []Binding) {
	sort.SliceStable(bindings, func(i, j int) bool {
		return bindings[i].Slot < bindings[j].Slot
	})
}

// TargetToString returns a descriptive name for a shader target.
func TargetToString(target ShaderTarget) string {
	return target.String()
}

// InputVersionToString returns a descriptive name for an input version.
func InputVersionToString(version InputVersion) string {
	return version.String()
}

// OutputVersionToString returns a descriptive name for an output version.
func OutputVersionToString(version OutputVersion) string {
	return version.String()
}
