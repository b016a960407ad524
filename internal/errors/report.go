// Package errors defines the structured report stream the compiler emits:
// severities, HLSL error codes, the log interface, and the report handler
// with its context-description stack.
package errors

import (
	"strings"

	"xshade/internal/source"
)

// Severity classifies a report.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal error"
	}
	return "report"
}

// Report is one diagnostic: a severity, a message, an optional source area
// with the offending line for snippets, an optional context stack
// ("in function 'main'"), and an optional HLSL error code.
type Report struct {
	Severity Severity
	Message  string
	Area     source.Area
	Line     string   // source line the area points into, for snippets
	Context  []string // innermost last
	Code     Code
}

// IsError reports whether the report gates compilation success.
func (r Report) IsError() bool { return r.Severity >= Error }

// ContextDesc returns the innermost context description, if any.
func (r Report) ContextDesc() string {
	if len(r.Context) == 0 {
		return ""
	}
	return r.Context[len(r.Context)-1]
}

func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString(r.Severity.String())
	if r.Code != "" {
		sb.WriteString(" ")
		sb.WriteString(string(r.Code))
	}
	if r.Area.Valid() {
		sb.WriteString(" (")
		pos := r.Area.Pos
		if pos.Filename != "" {
			sb.WriteString(pos.Filename)
			sb.WriteString(":")
		}
		sb.WriteString(itoa(pos.Line))
		sb.WriteString(":")
		sb.WriteString(itoa(pos.Column))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	if ctx := r.ContextDesc(); ctx != "" {
		sb.WriteString("in ")
		sb.WriteString(ctx)
		sb.WriteString(": ")
	}
	sb.WriteString(r.Message)
	return sb.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Log receives every report the compiler produces. The core never writes to
// stdout or stderr directly.
type Log interface {
	Submit(Report)
}

// CollectLog is a Log that retains every report, in submission order.
type CollectLog struct {
	Reports []Report
}

func (l *CollectLog) Submit(r Report) {
	l.Reports = append(l.Reports, r)
}

// Errors returns the reports that gate success.
func (l *CollectLog) Errors() []Report {
	var out []Report
	for _, r := range l.Reports {
		if r.IsError() {
			out = append(out, r)
		}
	}
	return out
}

// Handler builds reports, tracks the context-description stack, and counts
// errors for the enclosing phase.
type Handler struct {
	log      Log
	contexts []string
	numErrors int
}

// NewHandler builds a handler submitting to the given log; a nil log drops
// reports but still counts errors.
func NewHandler(log Log) *Handler {
	return &Handler{log: log}
}

// PushContext enters a context description, e.g. a function signature.
func (h *Handler) PushContext(desc string) {
	h.contexts = append(h.contexts, desc)
}

// PopContext leaves the innermost context description.
func (h *Handler) PopContext() {
	if len(h.contexts) > 0 {
		h.contexts = h.contexts[:len(h.contexts)-1]
	}
}

// HasErrors reports whether any error or fatal report was submitted.
func (h *Handler) HasErrors() bool { return h.numErrors > 0 }

// NumErrors returns the error count.
func (h *Handler) NumErrors() int { return h.numErrors }

// Submit forwards a prebuilt report, attaching the current context stack.
func (h *Handler) Submit(r Report) {
	if r.IsError() {
		h.numErrors++
	}
	if len(h.contexts) > 0 && len(r.Context) == 0 {
		r.Context = append([]string(nil), h.contexts...)
	}
	if h.log != nil {
		h.log.Submit(r)
	}
}

// SubmitReport builds and submits a report in one step.
func (h *Handler) SubmitReport(severity Severity, msg string, area source.Area, line string, code Code) {
	h.Submit(Report{
		Severity: severity,
		Message:  msg,
		Area:     area,
		Line:     line,
		Code:     code,
	})
}
