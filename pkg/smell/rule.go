package smell

import (
	"fmt"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
)

// Rule is the interface all smell rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g. "hardcoded-hyperparameter"
	ID() string

	// Code returns the short message code, e.g. "W9001"
	Code() string

	// Name returns the human-readable name, e.g. "ml.hardcoded_hyperparameter"
	Name() string

	// Group returns the category, e.g. "reproducibility"
	Group() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() core.Severity

	// ConfigKeys returns configuration keys this rule accepts
	ConfigKeys() []string

	// Documentation methods
	Rationale() string
	BadExample() string
	GoodExample() string
	Fix() string

	// NodeKinds returns the node kinds this rule wants to visit.
	NodeKinds() []pyast.Kind

	// Visit inspects one node and returns zero or more diagnostics.
	// Returning a *MalformedNodeError skips the node for this rule.
	Visit(file *pyast.File, node *pyast.Node) ([]Diagnostic, error)

	// Reset clears per-file state. Called before each traversal.
	Reset()
}

// Meta is the static description of a rule.
type Meta struct {
	ID          string        // Unique identifier, e.g. "silent-dropna"
	Code        string        // Message code, e.g. "W9004"
	Name        string        // Human-readable name, e.g. "data.silent_dropna"
	Group       string        // Category, e.g. "data"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Kinds       []pyast.Kind  // Node kinds the rule visits
	ConfigKeys  []string      // Options accepted under lint.rules.<id>

	Rationale   string // Why this rule exists
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations
}

// Base implements the metadata half of Rule. Rules embed it and add Visit.
type Base struct {
	meta Meta
}

// NewBase returns a Base for meta.
func NewBase(meta Meta) Base {
	return Base{meta: meta}
}

func (b Base) ID() string                     { return b.meta.ID }
func (b Base) Code() string                   { return b.meta.Code }
func (b Base) Name() string                   { return b.meta.Name }
func (b Base) Group() string                  { return b.meta.Group }
func (b Base) Description() string            { return b.meta.Description }
func (b Base) DefaultSeverity() core.Severity { return b.meta.Severity }
func (b Base) ConfigKeys() []string           { return b.meta.ConfigKeys }
func (b Base) NodeKinds() []pyast.Kind        { return b.meta.Kinds }

// Documentation methods
func (b Base) Rationale() string   { return b.meta.Rationale }
func (b Base) BadExample() string  { return b.meta.BadExample }
func (b Base) GoodExample() string { return b.meta.GoodExample }
func (b Base) Fix() string         { return b.meta.Fix }

// Reset is a no-op for stateless rules.
func (b Base) Reset() {}

// Diagnose builds a finding for this rule at pos.
func (b Base) Diagnose(file *pyast.File, pos pyast.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		RuleID:           b.meta.ID,
		Code:             b.meta.Code,
		Kind:             KindFinding,
		Severity:         b.meta.Severity,
		Message:          fmt.Sprintf(format, args...),
		File:             file.Path,
		Pos:              pos,
		DocumentationURL: BuildDocURL(b.meta.ID),
	}
}

// Factory creates a fresh rule instance from rule-specific options.
type Factory func(opts Options) (Rule, error)

// Definition pairs a rule's metadata with its factory.
type Definition struct {
	Meta Meta
	New  Factory
}

// Info returns the definition's metadata without instantiating the rule.
func (d Definition) Info() core.RuleInfo {
	kinds := make([]string, 0, len(d.Meta.Kinds))
	for _, k := range d.Meta.Kinds {
		kinds = append(kinds, k.String())
	}
	return core.RuleInfo{
		ID:               d.Meta.ID,
		Code:             d.Meta.Code,
		Name:             d.Meta.Name,
		Group:            d.Meta.Group,
		Description:      d.Meta.Description,
		DefaultSeverity:  d.Meta.Severity,
		ConfigKeys:       d.Meta.ConfigKeys,
		NodeKinds:        kinds,
		Rationale:        d.Meta.Rationale,
		BadExample:       d.Meta.BadExample,
		GoodExample:      d.Meta.GoodExample,
		Fix:              d.Meta.Fix,
		DocumentationURL: BuildDocURL(d.Meta.ID),
	}
}
