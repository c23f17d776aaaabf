package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/output"
	"github.com/leapstack-labs/mlsmell/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Format string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lint runs",
		Long: `Show the most recent lint runs recorded in the result cache.

Each run lists its status, how many files were linted, how many of them were
served from the cache, and the number of findings and rule failures.`,
		Example: `  # Last 20 runs
  mlsmell history

  # Last 5 runs as JSON
  mlsmell history --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	cache := cmdCtx.Cfg.GetCache()
	if !cache.Enabled {
		return errors.New("the result cache is disabled (cache.enabled: false), no history is recorded")
	}

	var runs []*state.Run
	if _, err := os.Stat(cache.Path); err == nil {
		store := state.NewSQLiteStore(cmdCtx.Logger)
		if err := store.Open(cache.Path); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer func() { _ = store.Close() }()
		if err := store.InitSchema(); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		if runs, err = store.RecentRuns(opts.Limit); err != nil {
			return err
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}

	if len(runs) == 0 {
		r.Println("No lint runs recorded yet. Run 'mlsmell lint' first.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Status),
			fmt.Sprint(run.Stats.Files),
			fmt.Sprint(run.Stats.CacheHits),
			fmt.Sprint(run.Stats.Findings),
			fmt.Sprint(run.Stats.Failures),
			formatDuration(run.Duration()),
			strings.Join(run.Paths, " "),
		})
	}
	writeTable(r, []string{"Run", "Started", "Status", "Files", "Cached", "Findings", "Failures", "Duration", "Paths"}, rows)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
