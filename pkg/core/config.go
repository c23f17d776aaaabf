package core

// LintConfig holds lint rule configuration as written in mlsmell.yaml.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`

	// FailOn is the lowest severity that makes lint exit non-zero
	FailOn string `koanf:"fail_on"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// CacheConfig controls the result cache and run history database.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ScoreConfig locates the ML Test Score sheet and the badge it produces.
type ScoreConfig struct {
	Input string `koanf:"input"`
	Badge string `koanf:"badge"`
}

// ServeConfig holds configuration for the lint HTTP API.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}
