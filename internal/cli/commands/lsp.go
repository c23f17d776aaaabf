package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC and publishes
smell diagnostics for open Python files. Rules, severities and options
come from mlsmell.yaml in the working directory. Hovering a reported
line shows the rule documentation.`,
		Example: `  # Start LSP server (usually called by an editor)
  mlsmell lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, buildLintConfig(getConfig(), nil, nil))
	if err != nil {
		return err
	}
	defer cleanup()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.Config{
		Engine:  cmdCtx.Engine,
		Version: buildVersion,
		Logger:  cmdCtx.Logger,
	})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return server.Run(ctx)
}
