package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlsmell/internal/cli/output"
	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

const (
	replPrompt     = "mlsmell> "
	replContPrompt = "    ...> "
	defaultAsPath  = "snippet.py"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var asPath string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Lint Python snippets interactively",
		Long: `Start an interactive session that lints Python snippets as you type.

Enter Python lines; an empty line lints everything entered since the last
check. The snippet is linted as if it lived at the --as path, so path based
rules such as training-in-inference can be tried out (e.g. --as app/serve.py).
Nothing is cached.`,
		Example: `  mlsmell repl
  mlsmell repl --as app/predict.py`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, asPath)
		},
	}

	cmd.Flags().StringVar(&asPath, "as", defaultAsPath, "File path the snippet is linted as")

	return cmd
}

func runREPL(cmd *cobra.Command, asPath string) error {
	cfg := getConfig()
	cmdCtx, cleanup, err := NewCommandContext(cmd, buildLintConfig(cfg, nil, nil))
	if err != nil {
		return err
	}
	defer cleanup()

	session := newREPLSession(cmdCtx.Engine, cmdCtx.Renderer, asPath)

	historyFile := ""
	if cache := cfg.GetCache(); cache.Enabled {
		historyFile = filepath.Join(filepath.Dir(cache.Path), "repl_history")
		_ = os.MkdirAll(filepath.Dir(historyFile), 0750)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mlsmell REPL (linting as %s)\n", asPath)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, an empty line to lint, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		prompt, quit := session.handle(ctx, line)
		if quit {
			break
		}
		rl.SetPrompt(prompt)
	}
	return nil
}

// replSession holds the snippet being typed.
type replSession struct {
	engine *engine.Engine
	r      *output.Renderer
	path   string
	lines  []string
}

func newREPLSession(eng *engine.Engine, r *output.Renderer, path string) *replSession {
	if path == "" {
		path = defaultAsPath
	}
	return &replSession{engine: eng, r: r, path: path}
}

func (s *replSession) reset() {
	s.lines = s.lines[:0]
}

// handle processes one input line and returns the next prompt.
func (s *replSession) handle(ctx context.Context, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, ".") {
		return replPrompt, s.dotCommand(ctx, trimmed)
	}

	if trimmed == "" {
		if len(s.lines) > 0 {
			s.lint(ctx)
		}
		return replPrompt, false
	}

	s.lines = append(s.lines, line)
	return replContPrompt, false
}

func (s *replSession) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(s.r.Writer())
	case ".rules":
		for _, def := range smell.Definitions() {
			s.r.Printf("  %s  %s\n", def.Meta.Code, def.Meta.ID)
		}
	case ".as":
		if len(parts) < 2 {
			s.r.Printf("linting as %s\n", s.path)
			break
		}
		s.path = parts[1]
		s.r.Printf("linting as %s\n", s.path)
	case ".show":
		for i, l := range s.lines {
			s.r.Printf("%3d  %s\n", i+1, l)
		}
	case ".reset":
		s.reset()
	case ".lint":
		s.lint(ctx)
	default:
		_, _ = fmt.Fprintf(s.r.ErrWriter(), "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

// lint checks the buffered snippet and clears it.
func (s *replSession) lint(ctx context.Context) {
	src := strings.Join(s.lines, "\n") + "\n"
	s.reset()

	report, err := s.engine.LintSource(ctx, s.path, []byte(src))
	if err != nil {
		s.r.Error(err.Error())
		return
	}
	if len(report.Diagnostics) == 0 {
		s.r.Success("no smells")
		return
	}
	for _, d := range report.Diagnostics {
		ld := toLintDiagnostic(d)
		s.r.Printf("  %d:%d  %s  %s  %s\n", ld.Line, ld.Column, severityStyle(s.r, ld), s.r.Styles().RuleID.Render(ld.Code), ld.Message)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .rules          List rules
  .as <path>      Lint snippets as if they lived at <path>
  .show           Show the snippet typed so far
  .lint           Lint the snippet now
  .reset          Discard the snippet
  .quit / .exit   Exit the REPL

Tips:
  - An empty line lints the snippet
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".rules"),
		readline.PcItem(".as"),
		readline.PcItem(".show"),
		readline.PcItem(".lint"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
