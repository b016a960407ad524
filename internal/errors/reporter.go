package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Reporter renders reports with caret markers and colors for terminal use.
type Reporter struct{}

// NewReporter creates a terminal report formatter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Format renders one report. Reports without a valid source area render
// without the location and source snippet lines.
func (rp *Reporter) Format(r Report) string {
	var sb strings.Builder

	levelColor := rp.levelColor(r.Severity)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	// Header: severity[code]: message
	if r.Code != "" {
		sb.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(r.Severity.String()), r.Code, r.Message))
	} else {
		sb.WriteString(fmt.Sprintf("%s: %s\n", levelColor(r.Severity.String()), r.Message))
	}

	if ctx := r.ContextDesc(); ctx != "" {
		sb.WriteString(fmt.Sprintf("  %s in %s\n", dim("..."), ctx))
	}

	if !r.Area.Valid() {
		sb.WriteString("\n")
		return sb.String()
	}

	pos := r.Area.Pos
	lineNumberWidth := rp.lineNumberWidth(pos.Line)
	indent := strings.Repeat(" ", lineNumberWidth)

	sb.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), pos.Filename, pos.Line, pos.Column))

	if r.Line != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", lineNumberWidth, pos.Line)), dim("│"), r.Line))
		sb.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), rp.marker(pos.Column, r.Area.Length, r.Severity)))
	}

	sb.WriteString("\n")
	return sb.String()
}

func (rp *Reporter) levelColor(s Severity) func(...interface{}) string {
	switch s {
	case Info:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (rp *Reporter) marker(column, length int, s Severity) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", max(0, column-1))
	markerColor := rp.levelColor(s)
	return spaces + markerColor(strings.Repeat("^", length))
}

func (rp *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
