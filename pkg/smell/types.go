package smell

import (
	"fmt"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
)

// DiagnosticKind separates real smell findings from rule failures.
type DiagnosticKind int

// Diagnostic kinds.
const (
	// KindFinding is a recognized smell.
	KindFinding DiagnosticKind = iota
	// KindRuleFailure reports a rule that failed while visiting a node.
	KindRuleFailure
)

// String returns the string representation of the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case KindFinding:
		return "finding"
	case KindRuleFailure:
		return "rule-failure"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *DiagnosticKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "finding":
		*k = KindFinding
	case "rule-failure":
		*k = KindRuleFailure
	default:
		return fmt.Errorf("unknown diagnostic kind %q", string(text))
	}
	return nil
}

// Diagnostic represents one reported smell instance.
type Diagnostic struct {
	RuleID   string         `json:"rule_id"`
	Code     string         `json:"code"`
	Kind     DiagnosticKind `json:"kind"`
	Severity core.Severity  `json:"severity"`
	Message  string         `json:"message"`
	File     string         `json:"file"`
	Pos      pyast.Position `json:"pos"`

	DocumentationURL string `json:"documentation_url,omitempty"`
}

// Location formats the diagnostic position as file:line:column.
func (d Diagnostic) Location() string {
	if !d.Pos.IsValid() {
		return d.File
	}
	return fmt.Sprintf("%s:%d:%d", d.File, d.Pos.Line, d.Pos.Column)
}

// Report is the ordered sequence of diagnostics for one file.
type Report struct {
	File        string       `json:"file"`
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Skipped counts (rule, node) pairs dropped because the node was malformed.
	Skipped int `json:"skipped,omitempty"`
}

// Findings returns only the smell findings.
func (r *Report) Findings() []Diagnostic {
	return r.byKind(KindFinding)
}

// Failures returns only the rule-failure diagnostics.
func (r *Report) Failures() []Diagnostic {
	return r.byKind(KindRuleFailure)
}

func (r *Report) byKind(kind DiagnosticKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Filter returns a copy of the report keeping diagnostics at least as severe as
// threshold. Rule failures are always kept.
func (r *Report) Filter(threshold core.Severity) *Report {
	out := &Report{File: r.File, Skipped: r.Skipped}
	for _, d := range r.Diagnostics {
		if d.Kind == KindRuleFailure || d.Severity.AtLeast(threshold) {
			out.Diagnostics = append(out.Diagnostics, d)
		}
	}
	return out
}
