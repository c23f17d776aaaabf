package lsp

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// getHover documents the smells reported on the hovered line. It returns nil
// when the line is clean.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	var sections []string
	var hoverRange *Range
	seen := make(map[string]bool)
	for _, d := range doc.Smells {
		diag := toDiagnostic(doc, d)
		if diag.Range.Start.Line != params.Position.Line || seen[d.RuleID] {
			continue
		}
		seen[d.RuleID] = true
		sections = append(sections, ruleMarkdown(d))
		if hoverRange == nil {
			rng := diag.Range
			hoverRange = &rng
		}
	}
	if len(sections) == 0 {
		return nil
	}

	return &Hover{
		Contents: MarkupContent{
			Kind:  MarkupKindMarkdown,
			Value: strings.Join(sections, "\n\n---\n\n"),
		},
		Range: hoverRange,
	}
}

// ruleMarkdown renders the documentation of the rule behind a smell.
func ruleMarkdown(d smell.Diagnostic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s`\n\n%s", d.Code, d.RuleID, d.Message)

	if def, ok := smell.Lookup(d.RuleID); ok {
		meta := def.Meta
		if meta.Rationale != "" {
			fmt.Fprintf(&sb, "\n\n%s", meta.Rationale)
		}
		if meta.Fix != "" {
			fmt.Fprintf(&sb, "\n\n**Fix:** %s", meta.Fix)
		}
		if meta.GoodExample != "" {
			fmt.Fprintf(&sb, "\n\n```python\n%s\n```", strings.TrimSpace(meta.GoodExample))
		}
	}
	if d.DocumentationURL != "" {
		fmt.Fprintf(&sb, "\n\n[Documentation](%s)", d.DocumentationURL)
	}
	return sb.String()
}
