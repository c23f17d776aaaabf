package lsp

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

const diagnosticSource = "mlsmell"

// publishDiagnostics analyzes the document and publishes its smells.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	diagnostics := []Diagnostic{}
	if s.engine != nil && isPython(uri) {
		report, err := s.engine.LintSource(ctx, s.lintPath(uri), []byte(doc.Content))
		if err != nil {
			s.logger.Warn("analysis failed", "uri", uri, "error", err)
			s.sendNotification("window/logMessage", &ShowMessageParams{
				Type:    MessageTypeError,
				Message: "mlsmell: " + err.Error(),
			})
		} else {
			if !s.documents.SetSmells(uri, doc.Version, report.Diagnostics) {
				// A newer version arrived while analyzing.
				return
			}
			for _, d := range report.Diagnostics {
				diagnostics = append(diagnostics, toDiagnostic(doc, d))
			}
		}
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     doc.Version,
		Diagnostics: diagnostics,
	})
}

// lintPath is the path handed to the rules, resolved the same way the lint
// command resolves it so both report the same smells for a file.
func (s *Server) lintPath(uri string) string {
	return engine.RulePath(s.projectRoot, URIToPath(uri))
}

func isPython(uri string) bool {
	return strings.EqualFold(filepath.Ext(URIToPath(uri)), ".py")
}

// toDiagnostic converts a smell to an LSP diagnostic. The range covers the
// name at the smell's position, or the rest of the line when there is none.
func toDiagnostic(doc *Document, d smell.Diagnostic) Diagnostic {
	start := toPosition(d)
	_, rng := doc.GetWordAtPosition(start)
	if rng.Start == rng.End {
		line := doc.GetLine(int(start.Line))
		rng = Range{Start: start, End: Position{Line: start.Line, Character: uint32(len(line))}} //nolint:gosec // G115: line length is never negative
		if rng.End.Character < start.Character {
			rng.End = start
		}
	}

	diag := Diagnostic{
		Range:    rng,
		Severity: toSeverity(d.Severity),
		Code:     d.Code,
		Source:   diagnosticSource,
		Message:  d.Message,
	}
	if d.DocumentationURL != "" {
		diag.CodeDescription = &CodeDescription{Href: d.DocumentationURL}
	}
	return diag
}

// toPosition converts a 1-based smell position to a zero-based LSP position.
func toPosition(d smell.Diagnostic) Position {
	if !d.Pos.IsValid() {
		return Position{}
	}
	column := max(d.Pos.Column-1, 0)
	return Position{
		Line:      uint32(d.Pos.Line - 1), //nolint:gosec // G115: valid lines are positive
		Character: uint32(column),         //nolint:gosec // G115: clamped above
	}
}

func toSeverity(sev core.Severity) DiagnosticSeverity {
	switch sev {
	case core.SeverityError:
		return DiagnosticSeverityError
	case core.SeverityWarning:
		return DiagnosticSeverityWarning
	case core.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}
