package reproducibility

import (
	"strings"

	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func init() {
	smell.Register(UnseededRandomness)
}

// Defaults for the unseeded-randomness rule.
var (
	DefaultGenerators    = []string{"randint", "random", "shuffle", "choice"}
	DefaultModuleMarkers = []string{"random"}
)

// seedMethod marks a seeding call such as np.random.seed(42).
const seedMethod = "seed"

// UnseededRandomness flags random generator calls made before any seed call
// earlier in the same file.
var UnseededRandomness = smell.Definition{
	Meta: unseededRandomnessMeta,
	New:  newUnseededRandomness,
}

var unseededRandomnessMeta = smell.Meta{
	ID:          "unseeded-randomness",
	Code:        "W9002",
	Name:        "reproducibility.unseeded_randomness",
	Group:       "reproducibility",
	Description: "Random functions should only be used after a seed has been set.",
	Severity:    core.SeverityWarning,
	Kinds:       []pyast.Kind{pyast.KindCall},
	ConfigKeys:  []string{"generators", "module_markers"},
	Rationale: `Shuffles, samples and random splits that run without a fixed seed give a
different result on every run, so metrics cannot be reproduced or compared.`,
	BadExample: `import random
random.shuffle(rows)`,
	GoodExample: `import random
random.seed(42)
random.shuffle(rows)`,
	Fix: "Call seed() on the random module before the first random call in the file.",
}

// unseededRandomness only looks backwards: a seed set later in the file does
// not clear an earlier call.
type unseededRandomness struct {
	smell.Base
	generators map[string]bool
	markers    []string

	seeded bool
}

type unseededRandomnessOptions struct {
	Generators    []string `mapstructure:"generators"`
	ModuleMarkers []string `mapstructure:"module_markers"`
}

func newUnseededRandomness(opts smell.Options) (smell.Rule, error) {
	settings := unseededRandomnessOptions{
		Generators:    DefaultGenerators,
		ModuleMarkers: DefaultModuleMarkers,
	}
	if err := opts.Decode(&settings); err != nil {
		return nil, err
	}
	return &unseededRandomness{
		Base:       smell.NewBase(unseededRandomnessMeta),
		generators: smell.StringSet(settings.Generators),
		markers:    settings.ModuleMarkers,
	}, nil
}

func (r *unseededRandomness) Reset() {
	r.seeded = false
}

func (r *unseededRandomness) Visit(file *pyast.File, node *pyast.Node) ([]smell.Diagnostic, error) {
	if node.Callee == nil {
		return nil, smell.Malformed(node, "call without callee")
	}
	attr := node.CalleeAttribute()
	if attr == nil {
		return nil, nil
	}
	if attr.Object == nil {
		return nil, smell.Malformed(attr, "attribute without object")
	}

	if attr.Attr == seedMethod {
		r.seeded = true
		return nil, nil
	}
	if r.seeded || !r.generators[attr.Attr] || !r.isRandomModule(attr.Object.Source()) {
		return nil, nil
	}
	return []smell.Diagnostic{
		r.Diagnose(file, node.Pos, "Random function used without setting a seed"),
	}, nil
}

func (r *unseededRandomness) isRandomModule(receiver string) bool {
	for _, m := range r.markers {
		if strings.Contains(receiver, m) {
			return true
		}
	}
	return false
}
