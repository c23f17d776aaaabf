package data

import (
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func init() {
	smell.Register(SilentDropna)
}

// DefaultDropMethods are the calls treated as dropping rows.
var DefaultDropMethods = []string{"dropna"}

// Receivers and bare functions recognized as logging when allow_logged is on.
var (
	loggingReceivers = map[string]bool{"logging": true, "logger": true, "log": true, "warnings": true}
	loggingFuncs     = map[string]bool{"print": true, "warn": true}
)

// SilentDropna flags dropna() calls. With allow_logged set, a call whose block
// also contains a logging call is accepted.
var SilentDropna = smell.Definition{
	Meta: silentDropnaMeta,
	New:  newSilentDropna,
}

var silentDropnaMeta = smell.Meta{
	ID:          "silent-dropna",
	Code:        "W9004",
	Name:        "data.silent_dropna",
	Group:       "data",
	Description: "Rows dropped with dropna() should be logged or reported.",
	Severity:    core.SeverityWarning,
	Kinds:       []pyast.Kind{pyast.KindCall},
	ConfigKeys:  []string{"drop_methods", "allow_logged"},
	Rationale: `dropna() removes rows without saying how many. When upstream data quality
degrades the training set shrinks silently and the model drifts with no signal
in the logs.`,
	BadExample: `df = df.dropna()`,
	GoodExample: `before = len(df)
df = df.dropna()
logger.warning("dropped %d rows with missing values", before - len(df))`,
	Fix: "Log the number of dropped rows, or impute missing values instead.",
}

type silentDropna struct {
	smell.Base
	methods     map[string]bool
	allowLogged bool
}

type silentDropnaOptions struct {
	DropMethods []string `mapstructure:"drop_methods"`
	AllowLogged bool     `mapstructure:"allow_logged"`
}

func newSilentDropna(opts smell.Options) (smell.Rule, error) {
	settings := silentDropnaOptions{DropMethods: DefaultDropMethods}
	if err := opts.Decode(&settings); err != nil {
		return nil, err
	}
	return &silentDropna{
		Base:        smell.NewBase(silentDropnaMeta),
		methods:     smell.StringSet(settings.DropMethods),
		allowLogged: settings.AllowLogged,
	}, nil
}

func (r *silentDropna) Visit(file *pyast.File, node *pyast.Node) ([]smell.Diagnostic, error) {
	attr := node.CalleeAttribute()
	if attr == nil || !r.methods[attr.Attr] {
		return nil, nil
	}
	if r.allowLogged && blockLogs(node.EnclosingBlock()) {
		return nil, nil
	}
	return []smell.Diagnostic{
		r.Diagnose(file, node.Pos, "Data dropped via dropna() without logging or warning"),
	}, nil
}

// blockLogs reports whether any statement directly in block makes a logging
// call. Nested blocks are not searched.
func blockLogs(block *pyast.Node) bool {
	if block == nil {
		return false
	}
	found := false
	pyast.Walk(block, func(n *pyast.Node) bool {
		if found {
			return false
		}
		if n != block && n.Kind == pyast.KindBlock {
			return false
		}
		if n.Kind == pyast.KindCall && isLoggingCall(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isLoggingCall(call *pyast.Node) bool {
	if call.Callee == nil {
		return false
	}
	switch call.Callee.Kind {
	case pyast.KindName:
		return loggingFuncs[call.Callee.Name]
	case pyast.KindAttribute:
		if call.Callee.Object == nil {
			return false
		}
		// self.logger.info -> "logger"
		recv := call.Callee.Object.Source()
		if i := strings.LastIndex(recv, "."); i >= 0 {
			recv = recv[i+1:]
		}
		return loggingReceivers[strings.ToLower(recv)]
	default:
		return false
	}
}
