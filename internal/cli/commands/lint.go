package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/config"
	"github.com/leapstack-labs/mlsmell/internal/cli/output"
	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/internal/watch"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// ErrLintIssues is returned when findings reach the fail-on threshold.
var ErrLintIssues = errors.New("lint issues found")

// LintOptions holds options for the lint command.
type LintOptions struct {
	Paths    []string // Files or directories
	Format   string   // Output format override
	Disable  []string // Rule IDs or codes to disable
	Rules    []string // Run only these rules
	Severity string   // Minimum severity shown
	FailOn   string   // Minimum severity that fails the run
	Watch    bool     // Re-lint on change
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Detect ML code smells in Python files",
		// Findings are reported by the renderer; the caller prints the error.
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Analyze Python machine-learning code for common smells:

  W9001 hardcoded-hyperparameter  literal hyperparameters in model constructors
  W9002 unseeded-randomness       random calls before any seed is set
  W9003 training-in-inference     .fit() in application or prediction code
  W9004 silent-dropna             rows dropped without logging

Results are cached per file content and rule configuration, so unchanged
files are not re-analyzed. Rules can be configured in mlsmell.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - json, sarif, github: Machine-readable formats for CI`,
		Example: `  # Lint the current directory
  mlsmell lint

  # Lint specific paths
  mlsmell lint src/ scripts/train.py

  # SARIF for code scanning
  mlsmell lint --format sarif > mlsmell.sarif

  # GitHub Actions annotations
  mlsmell lint --format github

  # Disable a rule by ID or code
  mlsmell lint --disable silent-dropna,W9003

  # Only fail on errors
  mlsmell lint --fail-on error

  # Re-lint whenever a file changes
  mlsmell lint --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, sarif, github")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs or codes to disable")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity shown: error, warning, info, hint")
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "", "Minimum severity that fails the run (default from config: warning)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch for changes and re-lint")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "markdown", "json", "sarif", "github"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("rule", completeRuleIDs)
	_ = cmd.RegisterFlagCompletionFunc("disable", completeRuleIDs)

	return cmd
}

func completeRuleIDs(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	defs := smell.Definitions()
	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.Meta.ID+"\t"+def.Meta.Code)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// lintThresholds are the parsed --severity and --fail-on values.
type lintThresholds struct {
	show   core.Severity
	failOn core.Severity
}

func parseThresholds(cfg *config.Config, opts *LintOptions) (lintThresholds, error) {
	var th lintThresholds

	show, ok := core.ParseSeverity(opts.Severity)
	if !ok {
		return th, fmt.Errorf("invalid --severity %q (must be error, warning, info or hint)", opts.Severity)
	}
	th.show = show

	failOn := opts.FailOn
	if failOn == "" {
		failOn = cfg.GetLint().FailOn
	}
	if failOn == "" {
		failOn = config.DefaultFailOn
	}
	if th.failOn, ok = core.ParseSeverity(failOn); !ok {
		return th, fmt.Errorf("invalid --fail-on %q (must be error, warning, info or hint)", failOn)
	}
	return th, nil
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cfg := getConfig()
	th, err := parseThresholds(cfg, opts)
	if err != nil {
		return err
	}

	lintCfg := buildLintConfig(cfg, opts.Disable, opts.Rules)
	cmdCtx, cleanup, err := NewCommandContext(cmd, lintCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	result, err := cmdCtx.Engine.Lint(ctx, paths)
	if err != nil {
		return err
	}
	failing := renderLintResult(r, result, cmdCtx.Engine.Config(), th, cfg.ProjectRoot)

	if opts.Watch {
		return watchAndLint(ctx, cmdCtx, r, paths, th)
	}
	if failing {
		return ErrLintIssues
	}
	return nil
}

// watchAndLint re-lints changed files until interrupted.
func watchAndLint(ctx context.Context, cmdCtx *CommandContext, r *output.Renderer, paths []string, th lintThresholds) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := cmdCtx.Engine
	w, err := watch.New(paths, func(ctx context.Context, files []string) {
		result, err := eng.LintFiles(ctx, files, files)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				r.Error(err.Error())
			}
			return
		}
		renderLintResult(r, result, eng.Config(), th, cmdCtx.Cfg.ProjectRoot)
	},
		watch.WithExclude(cmdCtx.Cfg.Exclude),
		watch.WithLogger(cmdCtx.Logger),
	)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	r.Println(r.Styles().Muted.Render("Watching for changes (Ctrl+C to stop)..."))
	return w.Run(ctx)
}

// buildLintFiles converts engine results to output rows, keeping diagnostics
// at or above the display threshold. Clean files are omitted.
func buildLintFiles(result *engine.Result, show core.Severity) ([]output.LintFileResult, output.LintSummary) {
	summary := output.LintSummary{
		FilesAnalyzed: len(result.Files),
		CacheHits:     result.Stats.CacheHits,
	}

	var files []output.LintFileResult
	for _, f := range result.Files {
		if f.Err != nil {
			summary.ReadErrors++
			files = append(files, output.LintFileResult{Path: f.Path, Error: f.Err.Error()})
			continue
		}
		if f.Report == nil {
			continue
		}
		summary.Skipped += f.Report.Skipped

		report := f.Report.Filter(show)
		if len(report.Diagnostics) == 0 {
			continue
		}

		row := output.LintFileResult{Path: f.Path, Skipped: f.Report.Skipped}
		for _, d := range report.Diagnostics {
			row.Diagnostics = append(row.Diagnostics, toLintDiagnostic(d))
			summary.TotalIssues++
			if d.Kind == smell.KindRuleFailure {
				summary.RuleFailures++
				continue
			}
			switch d.Severity {
			case core.SeverityError:
				summary.Errors++
			case core.SeverityWarning:
				summary.Warnings++
			case core.SeverityInfo:
				summary.Info++
			case core.SeverityHint:
				summary.Hints++
			}
		}
		summary.FilesWithIssues++
		files = append(files, row)
	}
	return files, summary
}

func toLintDiagnostic(d smell.Diagnostic) output.LintDiagnostic {
	return output.LintDiagnostic{
		RuleID:           d.RuleID,
		Code:             d.Code,
		Kind:             d.Kind.String(),
		Severity:         d.Severity.String(),
		Message:          d.Message,
		Line:             d.Pos.Line,
		Column:           d.Pos.Column,
		DocumentationURL: d.DocumentationURL,
	}
}

// isFailing reports whether the run should exit non-zero.
func isFailing(result *engine.Result, failOn core.Severity) bool {
	for _, f := range result.Files {
		if f.Err != nil {
			return true
		}
		if f.Report == nil {
			continue
		}
		for _, d := range f.Report.Diagnostics {
			if d.Severity.AtLeast(failOn) {
				return true
			}
		}
	}
	return false
}

// activeRules returns metadata for the rules enabled by lintCfg.
func activeRules(lintCfg *smell.Config) []core.RuleInfo {
	var infos []core.RuleInfo
	for _, def := range smell.Definitions() {
		if lintCfg.IsDisabled(def.Meta.ID) {
			continue
		}
		info := def.Info()
		info.DefaultSeverity = lintCfg.GetSeverity(def.Meta.ID, info.DefaultSeverity)
		infos = append(infos, info)
	}
	return infos
}

// renderLintResult prints a lint result and reports whether it fails the run.
func renderLintResult(r *output.Renderer, result *engine.Result, lintCfg *smell.Config, th lintThresholds, root string) bool {
	files, summary := buildLintFiles(result, th.show)
	failing := isFailing(result, th.failOn)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		_ = r.JSON(output.LintOutput{
			RunID:       result.RunID,
			Fingerprint: result.Fingerprint,
			Summary:     summary,
			Files:       nonNil(files),
		})
		return failing
	case output.ModeSARIF:
		_ = r.JSON(output.BuildSARIF(files, activeRules(lintCfg), buildVersion, root))
		return failing
	case output.ModeGitHub:
		_ = output.WriteGitHubAnnotations(r.Writer(), files)
		return failing
	}

	if len(files) == 0 {
		r.Success(fmt.Sprintf("No ML smells found in %d files", summary.FilesAnalyzed))
		return failing
	}

	markdown := r.EffectiveMode() == output.ModeMarkdown
	if markdown {
		r.Header(2, "mlsmell results")
	}

	for _, f := range files {
		path := displayPath(f.Path, root)
		if markdown {
			r.Header(3, path)
		} else {
			r.Println(r.Styles().ModelPath.Render(path))
		}

		if f.Error != "" {
			r.Printf("  %s  %s\n", r.Styles().Error.Render("error  "), f.Error)
		}
		for _, d := range f.Diagnostics {
			loc := fmt.Sprintf("%d:%d", d.Line, d.Column)
			if d.Line == 0 {
				loc = "-"
			}
			if markdown {
				r.Printf("- `%s` **%s** %s (%s) %s\n", loc, d.Severity, d.Code, d.RuleID, d.Message)
				continue
			}
			r.Printf("  %s  %s  %s  %s\n",
				r.Styles().Muted.Render(fmt.Sprintf("%-7s", loc)),
				severityStyle(r, d),
				r.Styles().RuleID.Render(d.Code),
				d.Message,
			)
		}
		r.Println("")
	}

	r.Printf("Summary: %s in %d of %d files\n", summaryText(summary), summary.FilesWithIssues, summary.FilesAnalyzed)
	if summary.CacheHits > 0 {
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("%d files served from cache", summary.CacheHits)))
	}
	return failing
}

func summaryText(s output.LintSummary) string {
	parts := []string{fmt.Sprintf("%d issues", s.TotalIssues)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", s.Hints))
	}
	if s.RuleFailures > 0 {
		parts = append(parts, fmt.Sprintf("%d rule failures", s.RuleFailures))
	}
	if s.ReadErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable files", s.ReadErrors))
	}
	return strings.Join(parts, ", ")
}

func severityStyle(r *output.Renderer, d output.LintDiagnostic) string {
	if d.IsFailure() {
		return r.Styles().Error.Render("failed ")
	}
	switch d.Severity {
	case "error":
		return r.Styles().Error.Render("error  ")
	case "warning":
		return r.Styles().Warning.Render("warning")
	case "info":
		return r.Styles().Info.Render("info   ")
	case "hint":
		return r.Styles().Muted.Render("hint   ")
	default:
		return r.Styles().Muted.Render("unknown")
	}
}

// displayPath shortens paths under the project root.
func displayPath(path, root string) string {
	if root == "" {
		return path
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
