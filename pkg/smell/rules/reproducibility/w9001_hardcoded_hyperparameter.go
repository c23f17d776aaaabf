package reproducibility

import (
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func init() {
	smell.Register(HardcodedHyperparameter)
}

// Defaults for the hardcoded-hyperparameter rule.
var (
	DefaultModelClasses    = []string{"LogisticRegression", "RandomForestClassifier", "XGBClassifier"}
	DefaultAllowedPrefixes = []string{"param_grid", "config"}
)

// HardcodedHyperparameter flags keyword arguments of model constructors whose
// value is written inline instead of coming from a config or search grid.
var HardcodedHyperparameter = smell.Definition{
	Meta: hardcodedHyperparameterMeta,
	New:  newHardcodedHyperparameter,
}

var hardcodedHyperparameterMeta = smell.Meta{
	ID:          "hardcoded-hyperparameter",
	Code:        "W9001",
	Name:        "reproducibility.hardcoded_hyperparameter",
	Group:       "reproducibility",
	Description: "Model constructor hyperparameters should come from configuration or a search grid.",
	Severity:    core.SeverityWarning,
	Kinds:       []pyast.Kind{pyast.KindCall},
	ConfigKeys:  []string{"model_classes", "allowed_prefixes"},
	Rationale: `Hyperparameters typed directly into a model constructor are invisible to
experiment tracking and tuning. Changing them means editing code, and two runs
of the same script cannot be compared by looking at their configuration.`,
	BadExample:  `model = LogisticRegression(C=0.1, max_iter=100)`,
	GoodExample: `model = LogisticRegression(C=config["C"], max_iter=config["max_iter"])`,
	Fix:         "Read the value from a config object or a param_grid used for tuning.",
}

type hardcodedHyperparameter struct {
	smell.Base
	models   map[string]bool
	prefixes []string
}

type hardcodedHyperparameterOptions struct {
	ModelClasses    []string `mapstructure:"model_classes"`
	AllowedPrefixes []string `mapstructure:"allowed_prefixes"`
}

func newHardcodedHyperparameter(opts smell.Options) (smell.Rule, error) {
	settings := hardcodedHyperparameterOptions{
		ModelClasses:    DefaultModelClasses,
		AllowedPrefixes: DefaultAllowedPrefixes,
	}
	if err := opts.Decode(&settings); err != nil {
		return nil, err
	}
	return &hardcodedHyperparameter{
		Base:     smell.NewBase(hardcodedHyperparameterMeta),
		models:   smell.StringSet(settings.ModelClasses),
		prefixes: settings.AllowedPrefixes,
	}, nil
}

func (r *hardcodedHyperparameter) Visit(file *pyast.File, node *pyast.Node) ([]smell.Diagnostic, error) {
	if node.Callee == nil {
		return nil, smell.Malformed(node, "call without callee")
	}
	if !r.models[node.CalleeName()] {
		return nil, nil
	}

	var diags []smell.Diagnostic
	for _, arg := range node.Args {
		if !arg.IsKeyword() {
			continue
		}
		if arg.Value == nil {
			return nil, smell.Malformed(node, "keyword argument without value")
		}
		if r.allowed(arg.Value.Source()) {
			continue
		}
		pos := arg.Pos
		if !pos.IsValid() {
			pos = node.Pos
		}
		diags = append(diags, r.Diagnose(file, pos,
			"Hardcoded hyperparameter '%s' detected in model constructor", arg.Label()))
	}
	return diags, nil
}

func (r *hardcodedHyperparameter) allowed(text string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}
