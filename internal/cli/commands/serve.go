package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint API over HTTP",
		Long: `Start a local HTTP server exposing the smell rules as a JSON API.

Endpoints:
  GET  /healthz          liveness probe
  GET  /api/rules        rule catalog
  GET  /api/rules/{id}   one rule by ID or code
  POST /api/lint         lint {"path": "...", "source": "..."}
  GET  /api/runs         recent lint runs from the result cache`,
		Example: `  # Serve on the configured address (default 127.0.0.1:8740)
  mlsmell serve

  # Serve on another port
  mlsmell serve --addr :9000

  # Lint a snippet
  curl -s localhost:8740/api/lint -d '{"path":"train.py","source":"df = df.dropna()\n"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default from config: 127.0.0.1:8740)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	cmdCtx, cleanup, err := NewCommandContext(cmd, buildLintConfig(cfg, nil, nil))
	if err != nil {
		return err
	}
	defer cleanup()

	addr := firstNonEmpty(opts.Addr, cfg.GetServe().Addr)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(server.Config{
		Engine: cmdCtx.Engine,
		Addr:   addr,
		Logger: cmdCtx.Logger,
	})

	cmdCtx.Renderer.Printf("Serving the lint API on http://%s\n", addr)
	cmdCtx.Renderer.Println("Press Ctrl+C to stop")

	return srv.Serve(ctx)
}
