package commands

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/config"
	"github.com/leapstack-labs/mlsmell/internal/cli/output"
	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// buildVersion is mixed into the cache fingerprint.
var buildVersion = "dev"

// newSourceParser overrides the tree-sitter parser. Tests set it.
var newSourceParser func() engine.SourceParser

// SetBuildVersion records the binary version for cache invalidation.
func SetBuildVersion(v string) {
	if v != "" {
		buildVersion = v
	}
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, lintCfg *smell.Config) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cmdCtx.Cfg, lintCfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that never lint.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, or defaults when the command
// runs outside the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func createEngine(cfg *config.Config, lintCfg *smell.Config, logger *slog.Logger) (*engine.Engine, error) {
	engineCfg := engine.Config{
		Lint:        lintCfg,
		Root:        cfg.ProjectRoot,
		Exclude:     cfg.Exclude,
		Concurrency: cfg.Concurrency,
		Version:     buildVersion,
		NewParser:   newSourceParser,
		Logger:      logger,
	}
	if cache := cfg.GetCache(); cache.Enabled {
		engineCfg.CachePath = cache.Path
	}
	return engine.New(engineCfg)
}

// buildLintConfig merges mlsmell.yaml lint settings with command line
// overrides. Rule codes (W9001) are accepted wherever an ID is.
func buildLintConfig(cfg *config.Config, disable, only []string) *smell.Config {
	lintCfg := smell.NewConfig()

	// Apply project config first (lower precedence)
	if cfg != nil && cfg.Lint != nil {
		for _, id := range cfg.Lint.Disabled {
			lintCfg.Disable(ruleID(id))
		}
		for id, sev := range cfg.Lint.Severity {
			if s, ok := core.ParseSeverity(sev); ok {
				lintCfg.SetSeverity(ruleID(id), s)
			}
		}
		for id, ruleOpts := range cfg.Lint.Rules {
			lintCfg.SetRuleOptions(ruleID(id), smell.Options(ruleOpts))
		}
	}

	// Apply CLI overrides (higher precedence)
	for _, id := range splitIDs(disable) {
		lintCfg.Disable(id)
	}
	lintCfg.Only(splitIDs(only)...)

	return lintCfg
}

// ruleID resolves a rule code to its ID. Unknown values pass through so that
// validation can report them.
func ruleID(idOrCode string) string {
	idOrCode = strings.TrimSpace(idOrCode)
	if def, ok := smell.Lookup(idOrCode); ok {
		return def.Meta.ID
	}
	return idOrCode
}

func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, ruleID(part))
			}
		}
	}
	return ids
}
