package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"xshade"
	"xshade/internal/errors"
)

var targets = map[string]xshade.ShaderTarget{
	"vertex":   xshade.VertexShader,
	"fragment": xshade.FragmentShader,
	"geometry": xshade.GeometryShader,
	"tessc":    xshade.TessControlShader,
	"tesse":    xshade.TessEvaluationShader,
	"compute":  xshade.ComputeShader,
}

var inputVersions = map[string]xshade.InputVersion{
	"HLSL3": xshade.HLSL3,
	"HLSL4": xshade.HLSL4,
	"HLSL5": xshade.HLSL5,
}

func main() {
	var (
		entry          = flag.String("entry", "main", "entry point function name")
		target         = flag.String("target", "vertex", "shader target (vertex, fragment, geometry, tessc, tesse, compute)")
		versionIn      = flag.String("hlsl", "HLSL5", "input shader version (HLSL3, HLSL4, HLSL5)")
		versionOut     = flag.Int("glsl", 330, "output GLSL version (e.g. 130, 330, 450)")
		output         = flag.String("o", "", "output file (default: input with .glsl extension)")
		preprocessOnly = flag.Bool("PP", false, "preprocess only")
		showAST        = flag.Bool("ast", false, "dump the AST")
		optimize       = flag.Bool("O", false, "run the optimizer pass")
		validateOnly   = flag.Bool("validate", false, "validate only, discard output")
		showTimes      = flag.Bool("times", false, "show per-phase timings")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: xshade [options] <file.hlsl>")
		os.Exit(1)
	}

	path := flag.Arg(0)
	startTime := time.Now()

	inputFile, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer inputFile.Close()

	shaderTarget, ok := targets[*target]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown shader target: %s\n", *target)
		os.Exit(1)
	}
	inputVersion, ok := inputVersions[*versionIn]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown input shader version: %s\n", *versionIn)
		os.Exit(1)
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(path, ".hlsl") + ".glsl"
	}
	outputFile, err := os.Create(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output file: %v\n", err)
		os.Exit(1)
	}
	defer outputFile.Close()

	collectLog := &xshade.CollectLog{}

	ok = xshade.CompileShader(
		xshade.ShaderInput{
			SourceCode:    inputFile,
			Filename:      path,
			EntryPoint:    *entry,
			Target:        shaderTarget,
			ShaderVersion: inputVersion,
		},
		xshade.ShaderOutput{
			SourceCode:    outputFile,
			ShaderVersion: xshade.OutputVersion(*versionOut),
			Options: xshade.Options{
				PreprocessOnly: *preprocessOnly,
				ShowAST:        *showAST,
				Optimize:       *optimize,
				ValidateOnly:   *validateOnly,
				ShowTimes:      *showTimes,
			},
		},
		collectLog,
	)

	reporter := errors.NewReporter()
	for _, report := range collectLog.Reports {
		fmt.Print(reporter.Format(report))
	}

	duration := formatDuration(time.Since(startTime))
	if ok {
		color.Green("Successfully compiled %s in %s", path, duration)
	} else {
		color.Red("Compilation failed after %s", duration)
		os.Exit(1)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
