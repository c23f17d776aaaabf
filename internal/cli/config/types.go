// Package config provides configuration management for the mlsmell CLI.
//
// The shared configuration sections (LintConfig, CacheConfig, ScoreConfig,
// ServeConfig) are defined in pkg/core and re-exported here via type aliases
// for convenience.
package config

import "github.com/leapstack-labs/mlsmell/pkg/core"

// LintConfig is an alias for the shared lint configuration.
type LintConfig = core.LintConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// CacheConfig is an alias for the shared cache configuration.
type CacheConfig = core.CacheConfig

// ScoreConfig is an alias for the shared ML Test Score configuration.
type ScoreConfig = core.ScoreConfig

// ServeConfig is an alias for the shared lint API configuration.
type ServeConfig = core.ServeConfig

// Config holds all CLI configuration options.
type Config struct {
	OutputFormat string       `koanf:"output"`
	LogLevel     string       `koanf:"log_level"`
	Verbose      bool         `koanf:"verbose"`
	Concurrency  int          `koanf:"concurrency"`
	Exclude      []string     `koanf:"exclude"`
	Lint         *LintConfig  `koanf:"lint"`
	Cache        *CacheConfig `koanf:"cache"`
	Score        *ScoreConfig `koanf:"score"`
	Serve        *ServeConfig `koanf:"serve"`

	// DocsURL overrides the rule documentation site, e.g. for an internal mirror.
	DocsURL string `koanf:"docs_url"`

	// ProjectRoot is the directory holding mlsmell.yaml, or the CWD.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel    = "warn"
	DefaultFailOn      = "warning"
	DefaultCachePath   = ".mlsmell/cache.db"
	DefaultScoreInput  = "ml_test_score.yaml"
	DefaultScoreBadge  = "ml_test_score.txt"
	DefaultServeAddr   = "127.0.0.1:8740"
	DefaultConcurrency = 0 // runtime.NumCPU()
)

// DefaultExclude lists directory names never descended into.
var DefaultExclude = []string{".git", ".venv", "venv", "__pycache__", "node_modules", "build", "dist"}

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"mlsmell.yaml", "mlsmell.yml"}

// GetLint returns the lint section, never nil.
func (c *Config) GetLint() *LintConfig {
	if c.Lint == nil {
		return &LintConfig{FailOn: DefaultFailOn}
	}
	return c.Lint
}

// GetCache returns the cache section, never nil.
func (c *Config) GetCache() *CacheConfig {
	if c.Cache == nil {
		return &CacheConfig{Enabled: true, Path: DefaultCachePath}
	}
	return c.Cache
}

// GetScore returns the score section, never nil.
func (c *Config) GetScore() *ScoreConfig {
	if c.Score == nil {
		return &ScoreConfig{Input: DefaultScoreInput, Badge: DefaultScoreBadge}
	}
	return c.Score
}

// GetServe returns the serve section, never nil.
func (c *Config) GetServe() *ServeConfig {
	if c.Serve == nil || c.Serve.Addr == "" {
		return &ServeConfig{Addr: DefaultServeAddr}
	}
	return c.Serve
}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Concurrency:  DefaultConcurrency,
		Exclude:      append([]string(nil), DefaultExclude...),
		Lint:         &LintConfig{FailOn: DefaultFailOn},
		Cache:        &CacheConfig{Enabled: true, Path: DefaultCachePath},
		Score:        &ScoreConfig{Input: DefaultScoreInput, Badge: DefaultScoreBadge},
		Serve:        &ServeConfig{Addr: DefaultServeAddr},
		ProjectRoot:  ".",
	}
}
