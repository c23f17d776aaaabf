// Package core defines the shared language of the mlsmell system.
//
// This package contains:
//   - Severity levels and rule metadata (RuleInfo)
//   - Configuration types shared by the CLI and the lint API
//     (LintConfig, CacheConfig, ScoreConfig, ServeConfig)
//   - The result cache and run history contract (Store, Run, RunStats)
//
// The Golden Rule: pkg/core imports ONLY the standard library.
// All other packages depend on core, not the reverse.
package core
