package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/output"
	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/internal/mlscore"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// maxDetails caps the findings listed per check.
const maxDetails = 3

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, markdown, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor [paths...]",
		Short: "Run a comprehensive ML project health check",
		Long: `Analyze your ML project and summarize its health.

The doctor command lints every Python file and provides a report including:
- Project summary (files, excluded files, cache hits, ML Test Score)
- One health check per smell rule, grouped by category
- Health score (0-100)
- Actionable recommendations

Unlike 'mlsmell lint', doctor never fails because of findings.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Run health check
  mlsmell doctor

  # Output as JSON
  mlsmell doctor --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks"`
	Score           int            `json:"score"`
	Recommendations []string       `json:"recommendations"`
	IssueCount      int            `json:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	Files       int    `json:"files"`
	Excluded    int    `json:"excluded"`
	CacheHits   int    `json:"cache_hits"`
	ReadErrors  int    `json:"read_errors"`
	MLTestScore string `json:"ml_test_score,omitempty"`
	// WeakestSection is the rubric section that sets the ML Test Score.
	WeakestSection string `json:"weakest_section,omitempty"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	RuleID     string   `json:"rule_id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Group      string   `json:"group"`
	Status     string   `json:"status"` // "pass", "warn", "error", "off"
	IssueCount int      `json:"issue_count"`
	Details    []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string, opts *DoctorOptions) error {
	cfg := getConfig()
	lintCfg := buildLintConfig(cfg, nil, nil)

	cmdCtx, cleanup, err := NewCommandContext(cmd, lintCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.ProjectRoot}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	eng := cmdCtx.Engine
	discovered, err := eng.Discover(paths)
	if err != nil {
		return err
	}
	if len(discovered.Files) == 0 {
		r.Warning("No Python files found")
		return nil
	}

	result, err := eng.LintFiles(ctx, discovered.Files, paths)
	if err != nil {
		return err
	}

	doctorOutput := buildDoctorOutput(result, discovered, eng.Config())
	addMLTestScore(cmdCtx, doctorOutput)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(doctorOutput)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, doctorOutput)
	default:
		renderDoctorText(r, doctorOutput)
	}
	return nil
}

func buildDoctorOutput(result *engine.Result, discovered *engine.DiscoveryResult, lintCfg *smell.Config) *DoctorOutput {
	summary := ProjectSummary{
		Files:     len(result.Files),
		Excluded:  discovered.Excluded,
		CacheHits: result.Stats.CacheHits,
	}

	diagsByRule := make(map[string][]smell.Diagnostic)
	issues := 0
	for _, f := range result.Files {
		if f.Err != nil {
			summary.ReadErrors++
			continue
		}
		if f.Report == nil {
			continue
		}
		for _, d := range f.Report.Diagnostics {
			diagsByRule[d.RuleID] = append(diagsByRule[d.RuleID], d)
			issues++
		}
	}

	defs := smell.Definitions()
	checks := make([]HealthCheck, 0, len(defs))
	for _, def := range defs {
		id := def.Meta.ID
		ruleDiags := diagsByRule[id]

		status := "pass"
		switch {
		case lintCfg.IsDisabled(id):
			status = "off"
		case len(ruleDiags) > 0 && lintCfg.GetSeverity(id, def.Meta.Severity) == core.SeverityError:
			status = "error"
		case len(ruleDiags) > 0:
			status = "warn"
		}

		details := make([]string, 0, len(ruleDiags))
		for _, d := range ruleDiags {
			details = append(details, fmt.Sprintf("%s %s", d.Location(), d.Message))
		}

		checks = append(checks, HealthCheck{
			RuleID:     id,
			Code:       def.Meta.Code,
			Name:       def.Meta.Name,
			Group:      def.Meta.Group,
			Status:     status,
			IssueCount: len(ruleDiags),
			Details:    details,
		})
	}

	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].Code < checks[j].Code
	})

	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks, summary.Files),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issues,
	}
}

// addMLTestScore folds the rubric score in when a sheet exists.
func addMLTestScore(cmdCtx *CommandContext, out *DoctorOutput) {
	input := cmdCtx.Cfg.GetScore().Input
	sheet, err := mlscore.Load(input)
	if err != nil {
		if !errors.Is(err, mlscore.ErrSheetNotFound) {
			cmdCtx.Logger.Warn("failed to load score sheet", "path", input, "error", err)
		}
		return
	}

	result := mlscore.Compute(sheet)
	out.Summary.MLTestScore = result.Badge()
	for _, s := range result.Sections {
		if s.Score == result.Final {
			out.Summary.WeakestSection = s.Name
			break
		}
	}
	if result.Final < mlscore.MaxSectionScore && out.Summary.WeakestSection != "" && len(out.Recommendations) < 5 {
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("Automate more %s tests to raise the ML Test Score (%s)", out.Summary.WeakestSection, result.Badge()))
	}
}

// calculateHealthScore computes a health score from 0-100.
// Each issue costs points. Larger projects pay less per issue and errors
// count double.
func calculateHealthScore(checks []HealthCheck, fileCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if fileCount > 10 {
		basePenalty = 3.0
	}
	if fileCount > 50 {
		basePenalty = 2.0
	}
	if fileCount > 100 {
		basePenalty = 1.0
	}

	for _, check := range checks {
		switch check.Status {
		case "error":
			score -= float64(check.IssueCount) * basePenalty * 2
		case "warn":
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// generateRecommendations turns failing checks into fix guidance, worst first.
func generateRecommendations(checks []HealthCheck) []string {
	failing := make([]HealthCheck, 0, len(checks))
	for _, check := range checks {
		if check.IssueCount > 0 && check.Status != "off" {
			failing = append(failing, check)
		}
	}
	sort.SliceStable(failing, func(i, j int) bool {
		return failing[i].IssueCount > failing[j].IssueCount
	})

	var recommendations []string
	seen := make(map[string]bool)
	for _, check := range failing {
		def, ok := smell.Lookup(check.RuleID)
		if !ok || def.Meta.Fix == "" || seen[def.Meta.Fix] {
			continue
		}
		seen[def.Meta.Fix] = true
		recommendations = append(recommendations,
			fmt.Sprintf("%s (%s, %d issues)", def.Meta.Fix, check.Code, check.IssueCount))
	}

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("mlsmell Project Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Println("")

	r.Println(styles.Header2.Render("Project Summary"))
	r.Printf("   Python files: %d | Excluded: %d | Cached: %d\n", out.Summary.Files, out.Summary.Excluded, out.Summary.CacheHits)
	if out.Summary.ReadErrors > 0 {
		r.Printf("   Unreadable files: %d\n", out.Summary.ReadErrors)
	}
	if out.Summary.MLTestScore != "" {
		r.Printf("   ML Test Score: %s (weakest: %s)\n", out.Summary.MLTestScore, out.Summary.WeakestSection)
	}
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case "warn":
			icon = styles.Warning.Render("!")
		case "error":
			icon = styles.StatusFailed.String()
		case "off":
			icon = styles.Muted.Render("-")
		}

		status := fmt.Sprintf("%s %s %s", icon, check.Code, check.Name)
		switch {
		case check.Status == "off":
			status += styles.Muted.Render(" (disabled)")
		case check.IssueCount > 0:
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

		for i, detail := range check.Details {
			if i >= maxDetails {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-maxDetails)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	r.Println("# mlsmell Project Health Report")
	r.Println("")

	r.Println("## Project Summary")
	r.Println("")
	r.Println(output.FormatKeyValue("Python files", fmt.Sprint(out.Summary.Files)))
	r.Println(output.FormatKeyValue("Excluded", fmt.Sprint(out.Summary.Excluded)))
	r.Println(output.FormatKeyValue("Cached", fmt.Sprint(out.Summary.CacheHits)))
	if out.Summary.ReadErrors > 0 {
		r.Println(output.FormatKeyValue("Unreadable files", fmt.Sprint(out.Summary.ReadErrors)))
	}
	if out.Summary.MLTestScore != "" {
		r.Println(output.FormatKeyValue("ML Test Score", out.Summary.MLTestScore))
	}
	r.Println("")

	r.Println("## Health Checks")
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("### " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s %s", strings.ToUpper(check.Status), check.Code, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}
}
