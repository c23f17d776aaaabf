// Package smell provides the rule engine for detecting ML-specific code smells in
// Python syntax trees.
//
// # Architecture
//
//  1. Rules (pkg/smell/rules): independent visitors, each recognizing one
//     anti-pattern on one node kind. Rules may keep per-file state, which the
//     registry resets before every file.
//  2. Registry: the ordered set of active rule instances for one traversal. Run walks
//     a tree once, top-down, and dispatches each node to every interested rule in
//     registration order.
//  3. Catalog: the process-wide set of rule definitions, filled from init()
//     functions. Build turns a Config into a fresh Registry.
//  4. Analyzer: runs many files in parallel with one Registry per file, so rule
//     state is never shared between goroutines.
//
// # Rule Registration
//
// Rules are registered when their package is imported:
//
//	import _ "github.com/leapstack-labs/mlsmell/pkg/smell/rules"
//
// # Configuration
//
//	cfg := smell.NewConfig()
//	cfg.Disable("silent-dropna")
//	cfg.SetSeverity("unseeded-randomness", core.SeverityError)
//	cfg.SetRuleOptions("hardcoded-hyperparameter", map[string]any{
//		"model_classes": []string{"LogisticRegression", "SVC"},
//	})
//
//	reg, err := smell.Build(cfg, logger)
//	report, err := reg.Run(file)
//
// # Errors
//
// A rule that cannot make sense of a node returns a *MalformedNodeError; that node is
// skipped for that rule only. Any other error, or a panic, becomes a
// *RuleExecutionError recorded in the report as a rule-failure diagnostic, and the
// traversal continues. Configuration problems are reported as *ConfigError.
package smell
