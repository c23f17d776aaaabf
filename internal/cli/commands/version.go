package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// VersionOutput is the JSON output for the version command.
type VersionOutput struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	Rules     int    `json:"rules"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display mlsmell version and build information.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := VersionOutput{
				Version:   version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				Rules:     smell.Count(),
			}
			if asJSON {
				return NewCommandContextWithoutEngine(cmd).Renderer.JSON(out)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mlsmell v%s\n", out.Version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ML code smell detector (%d rules, %s, %s)\n", out.Rules, out.GoVersion, out.Platform)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
