package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"xshade"
)

// ConvertReports transforms compiler reports into LSP diagnostics for IDE
// display. Reports without a source area attach to the document start.
func ConvertReports(reports []xshade.Report) []protocol.Diagnostic {
	var diagnostics []protocol.Diagnostic

	for _, report := range reports {
		line := 0
		column := 0
		length := 1
		if report.Area.Valid() {
			line = report.Area.Pos.Line - 1
			column = report.Area.Pos.Column - 1
			length = report.Area.Length
		}

		message := report.Message
		if ctx := report.ContextDesc(); ctx != "" {
			message += " (in " + ctx + ")"
		}

		diagnostic := protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{
					Line:      uint32(line),
					Character: uint32(column),
				},
				End: protocol.Position{
					Line:      uint32(line),
					Character: uint32(column + length),
				},
			},
			Severity: ptrSeverity(reportSeverity(report)),
			Source:   ptrString("xshade"),
			Message:  message,
		}
		diagnostics = append(diagnostics, diagnostic)
	}

	return diagnostics
}

func reportSeverity(report xshade.Report) protocol.DiagnosticSeverity {
	switch report.Severity {
	case xshade.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case xshade.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
