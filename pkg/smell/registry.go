package smell

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/mlsmell/pkg/pyast"
)

// Registry is an ordered set of active rules with a per-kind dispatch table.
// A Registry owns its rule instances and is not safe for concurrent Run calls;
// use one registry per goroutine (see Analyzer).
type Registry struct {
	rules    []Rule
	ids      map[string]bool
	dispatch [pyast.KindCount][]int // indexes into rules, registration order
	config   *Config
	logger   *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithConfig applies severity overrides from cfg to every diagnostic.
func WithConfig(cfg *Config) RegistryOption {
	return func(r *Registry) {
		r.config = cfg
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		ids:    make(map[string]bool),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a rule. Rules run in registration order.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return errors.New("cannot register nil rule")
	}
	if r.ids[rule.ID()] {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
	}

	idx := len(r.rules)
	r.rules = append(r.rules, rule)
	r.ids[rule.ID()] = true
	for _, k := range rule.NodeKinds() {
		if !k.Valid() {
			continue
		}
		r.dispatch[k] = append(r.dispatch[k], idx)
	}
	return nil
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Run resets every rule, walks the file once and collects diagnostics in
// traversal order.
func (r *Registry) Run(file *pyast.File) (*Report, error) {
	if len(r.rules) == 0 {
		return nil, ErrEmptyRuleSet
	}
	if file == nil || file.Root == nil {
		return nil, ErrNoTree
	}

	for _, rule := range r.rules {
		rule.Reset()
	}

	report := &Report{File: file.Path}
	file.Inspect(func(node *pyast.Node) bool {
		if !node.Kind.Valid() {
			return true
		}
		for _, idx := range r.dispatch[node.Kind] {
			r.visit(report, r.rules[idx], file, node)
		}
		return true
	})

	r.logger.Debug("file analyzed",
		slog.String("file", file.Path),
		slog.Int("diagnostics", len(report.Diagnostics)),
		slog.Int("skipped", report.Skipped))
	return report, nil
}

func (r *Registry) visit(report *Report, rule Rule, file *pyast.File, node *pyast.Node) {
	diags, err := safeVisit(rule, file, node)
	if err != nil {
		var malformed *MalformedNodeError
		if errors.As(err, &malformed) {
			report.Skipped++
			r.logger.Debug("skipping malformed node",
				slog.String("rule", rule.ID()),
				slog.String("file", file.Path),
				slog.String("error", malformed.Error()))
			return
		}

		execErr := &RuleExecutionError{RuleID: rule.ID(), File: file.Path, Pos: node.Pos, Err: err}
		r.logger.Debug("rule failed", slog.String("error", execErr.Error()))
		d := execErr.Diagnostic(rule.Code())
		d.DocumentationURL = BuildDocURL(rule.ID())
		report.Diagnostics = append(report.Diagnostics, d)
		return
	}

	for _, d := range diags {
		if d.RuleID == "" {
			d.RuleID = rule.ID()
		}
		if d.Code == "" {
			d.Code = rule.Code()
		}
		if d.File == "" {
			d.File = file.Path
		}
		if d.DocumentationURL == "" {
			d.DocumentationURL = BuildDocURL(rule.ID())
		}
		d.Severity = r.config.GetSeverity(rule.ID(), d.Severity)
		report.Diagnostics = append(report.Diagnostics, d)
	}
}

// safeVisit calls Visit and turns a panic into an error.
func safeVisit(rule Rule, file *pyast.File, node *pyast.Node) (diags []Diagnostic, err error) {
	defer func() {
		if p := recover(); p != nil {
			diags = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return rule.Visit(file, node)
}
