package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/output"
)

// DiscoverOutput is the JSON output for the discover command.
type DiscoverOutput struct {
	Files      []string `json:"files"`
	Total      int      `json:"total"`
	Excluded   int      `json:"excluded"`
	DurationMs int64    `json:"duration_ms"`
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [paths...]",
		Short: "List the Python files mlsmell would lint",
		Long: `Walk the given paths (default: the project root) and list every Python
file that 'mlsmell lint' would analyze. Directories matching the exclude
setting are skipped and counted.

Output adapts to environment:
  - Terminal: Styled list
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Files under the project root
  mlsmell discover

  # Check what a CI job would lint
  mlsmell discover src/ --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(cmd, args)
		},
	}

	return cmd
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg := getConfig()
	cmdCtx, cleanup, err := NewCommandContext(cmd, buildLintConfig(cfg, nil, nil))
	if err != nil {
		return err
	}
	defer cleanup()

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.ProjectRoot}
	}

	result, err := cmdCtx.Engine.Discover(paths)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	out := DiscoverOutput{
		Files:      nonNil(result.Files),
		Total:      len(result.Files),
		Excluded:   result.Excluded,
		DurationMs: result.Duration.Milliseconds(),
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		discoverMarkdown(r, &out, cfg.ProjectRoot)
	default:
		discoverText(r, &out, cfg.ProjectRoot)
	}
	return nil
}

// discoverText outputs discovery results in styled text format.
func discoverText(r *output.Renderer, out *DiscoverOutput, root string) {
	r.Success(fmt.Sprintf("Discovered %d Python files (%d excluded)", out.Total, out.Excluded))
	for _, f := range out.Files {
		r.Println("  " + r.Styles().ModelPath.Render(displayPath(f, root)))
	}
}

// discoverMarkdown outputs discovery results in markdown format.
func discoverMarkdown(r *output.Renderer, out *DiscoverOutput, root string) {
	r.Println(output.FormatHeader(1, "Discovery Results"))
	r.Println("")
	r.Println(output.FormatKeyValue("Python files", fmt.Sprint(out.Total)))
	r.Println(output.FormatKeyValue("Excluded", fmt.Sprint(out.Excluded)))
	r.Println("")

	if out.Total > 0 {
		r.Println(output.FormatHeader(2, "Files"))
		for _, f := range out.Files {
			r.Printf("- %s\n", displayPath(f, root))
		}
	}
}
