package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/cli/config"
	clitestutil "github.com/leapstack-labs/mlsmell/internal/cli/testutil"
	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/internal/testutil"
)

// setupLintProject writes the sample ML project plus an mlsmell.yaml and
// loads it as the current config. Sources are parsed with the CGO-free
// LineParser.
func setupLintProject(t *testing.T, configYAML string) (string, *testutil.LineParser) {
	t.Helper()

	dir := clitestutil.SetupTestProject(t)
	configPath := filepath.Join(dir, "mlsmell.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0600))

	_, err := config.LoadConfig(configPath, nil)
	require.NoError(t, err)
	t.Cleanup(config.ResetConfig)

	parser := &testutil.LineParser{}
	newSourceParser = func() engine.SourceParser { return parser }
	t.Cleanup(func() { newSourceParser = nil })

	return dir, parser
}

// execute runs cmd the way the root command does, with usage and error
// printing left to the caller.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return buf.String(), err
}
