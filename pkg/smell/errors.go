package smell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
)

// Sentinel errors.
var (
	// ErrEmptyRuleSet is returned when a registry has no rules to run.
	ErrEmptyRuleSet = errors.New("no rules enabled")
	// ErrDuplicateRule is returned when a rule ID is registered twice.
	ErrDuplicateRule = errors.New("duplicate rule")
	// ErrNoTree is returned when Run is given a file without a syntax tree.
	ErrNoTree = errors.New("file has no syntax tree")
)

// MalformedNodeError reports a node that does not have the shape its kind
// promises, e.g. a call without a callee.
type MalformedNodeError struct {
	Kind   pyast.Kind
	Pos    pyast.Position
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed %s node at %s: %s", e.Kind, e.Pos, e.Reason)
}

// Malformed returns a MalformedNodeError for node.
func Malformed(node *pyast.Node, reason string) *MalformedNodeError {
	return &MalformedNodeError{Kind: node.Kind, Pos: node.Pos, Reason: reason}
}

// RuleExecutionError wraps an error or panic raised by a rule's Visit.
type RuleExecutionError struct {
	RuleID string
	File   string
	Pos    pyast.Position
	Err    error
}

func (e *RuleExecutionError) Error() string {
	return fmt.Sprintf("rule %s failed at %s:%s: %v", e.RuleID, e.File, e.Pos, e.Err)
}

func (e *RuleExecutionError) Unwrap() error {
	return e.Err
}

// Diagnostic converts the failure into a rule-failure diagnostic.
func (e *RuleExecutionError) Diagnostic(code string) Diagnostic {
	return Diagnostic{
		RuleID:   e.RuleID,
		Code:     code,
		Kind:     KindRuleFailure,
		Severity: core.SeverityWarning,
		Message:  fmt.Sprintf("rule %s failed: %v", e.RuleID, e.Err),
		File:     e.File,
		Pos:      e.Pos,
	}
}

// ConfigError reports an invalid lint configuration. It is fatal to the run.
type ConfigError struct {
	Problems []string
	Err      error
}

func (e *ConfigError) Error() string {
	msg := "invalid lint configuration"
	if len(e.Problems) > 0 {
		msg += ": " + strings.Join(e.Problems, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
