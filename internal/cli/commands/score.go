package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/output"
	"github.com/leapstack-labs/mlsmell/internal/mlscore"
)

// ScoreOptions holds options for the score command.
type ScoreOptions struct {
	Input   string // Score sheet path
	Badge   string // Badge output path
	NoBadge bool   // Skip writing the badge
	Format  string // Output format
	Min     float64
}

// ScoreOutput is the JSON output for the score command.
type ScoreOutput struct {
	*mlscore.Result
	Badge     string `json:"badge"`
	BadgePath string `json:"badge_path,omitempty"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand() *cobra.Command {
	opts := &ScoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the ML Test Score",
		Long: `Compute the ML Test Score from a rubric sheet.

The sheet (default ml_test_score.yaml) lists the tests of the four rubric
sections (data, model, infra, monitoring) with a status each:
  auto    automated test      1.0 point
  manual  manual procedure    0.5 point
  other   not done            0 points

Each section is out of 7. The final score is the lowest section score and is
written to a badge file (default ml_test_score.txt) as e.g. "3.5/7".`,
		Example: `  # Score the sheet in the project root
  mlsmell score

  # Use another sheet, do not write a badge
  mlsmell score --input docs/ml_test_score.yaml --no-badge

  # Fail CI when the score drops below 2
  mlsmell score --min 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Score sheet (default from config: ml_test_score.yaml)")
	cmd.Flags().StringVar(&opts.Badge, "badge", "", "Badge file (default from config: ml_test_score.txt)")
	cmd.Flags().BoolVar(&opts.NoBadge, "no-badge", false, "Do not write the badge file")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().Float64Var(&opts.Min, "min", 0, "Fail when the final score is below this value")

	return cmd
}

func runScore(cmd *cobra.Command, opts *ScoreOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	scoreCfg := cmdCtx.Cfg.GetScore()
	input := firstNonEmpty(opts.Input, scoreCfg.Input, "ml_test_score.yaml")
	badge := firstNonEmpty(opts.Badge, scoreCfg.Badge, "ml_test_score.txt")

	sheet, err := mlscore.Load(input)
	if err != nil {
		return err
	}
	result := mlscore.Compute(sheet)
	cmdCtx.Logger.Debug("ml test score computed", "input", input, "final", result.Final)

	out := ScoreOutput{Result: result, Badge: result.Badge()}
	if !opts.NoBadge {
		if err := mlscore.WriteBadge(badge, result); err != nil {
			return err
		}
		out.BadgePath = badge
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	default:
		renderScore(r, &out)
	}

	if opts.Min > 0 && result.Final < opts.Min {
		return fmt.Errorf("ML Test Score %s is below the minimum %.1f", result.Badge(), opts.Min)
	}
	return nil
}

func renderScore(r *output.Renderer, out *ScoreOutput) {
	styles := r.Styles()
	markdown := r.EffectiveMode() == output.ModeMarkdown

	if markdown {
		r.Header(2, "ML Test Score Breakdown")
	} else {
		r.Println(styles.Header1.Render("ML Test Score Breakdown"))
	}

	rows := make([][]string, 0, len(out.Sections))
	for _, s := range out.Sections {
		auto, manual, todo := 0, 0, 0
		for _, t := range s.Tests {
			switch t.Status {
			case mlscore.StatusAuto:
				auto++
			case mlscore.StatusManual:
				manual++
			default:
				todo++
			}
		}
		rows = append(rows, []string{
			s.Label(),
			fmt.Sprintf("%.1f / %d", s.Score, s.Max),
			fmt.Sprint(auto),
			fmt.Sprint(manual),
			fmt.Sprint(todo),
		})
	}
	writeTable(r, []string{"Section", "Score", "Auto", "Manual", "Todo"}, rows)
	r.Println("")

	final := fmt.Sprintf("Final ML Test Score: %s", out.Badge)
	if markdown {
		r.Println("**" + final + "**")
	} else {
		r.Println(styles.Bold.Render(final))
	}

	if len(out.Unknown) > 0 {
		r.Warning(fmt.Sprintf("ignored sections not in the rubric: %s", strings.Join(out.Unknown, ", ")))
	}
	if out.BadgePath != "" {
		r.Println(styles.Muted.Render("Badge written to " + out.BadgePath))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
