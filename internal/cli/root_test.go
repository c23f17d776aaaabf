package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/cli/config"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"version", "lint", "rules", "score", "history", "doctor", "repl", "serve", "lsp", "discover", "init", "completion"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "output", "log-level", "verbose", "concurrency", "no-cache"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCommand_Version(t *testing.T) {
	out, err := executeRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mlsmell v"+Version)

	out, err = executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "ML code smell detector")
}

func TestRootCommand_OutputFlag(t *testing.T) {
	out, err := executeRoot(t, "-o", "json", "rules")
	require.NoError(t, err)

	var rules struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rules), out)
	assert.Equal(t, 4, rules.Total)
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, err := executeRoot(t, "--output", "yaml", "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output: unknown format")

	dir := t.TempDir()
	path := filepath.Join(dir, "mlsmell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lint:\n  fail_on: sometimes\n"), 0600))
	_, err = executeRoot(t, "--config", path, "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lint.fail_on")
}

func TestRootCommand_DocsURL(t *testing.T) {
	t.Cleanup(smell.ResetDocsBaseURL)

	dir := t.TempDir()
	path := filepath.Join(dir, "mlsmell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("docs_url: https://wiki.example.com/mlsmell/\n"), 0600))

	out, err := executeRoot(t, "--config", path, "-o", "json", "rules", "W9004")
	require.NoError(t, err)
	assert.Contains(t, out, "https://wiki.example.com/mlsmell/silent-dropna")

	out, err = executeRoot(t, "-o", "json", "rules", "W9004")
	require.NoError(t, err)
	assert.Contains(t, out, smell.DefaultDocsBaseURL+"/silent-dropna", "default restored without override")

	require.NoError(t, os.WriteFile(path, []byte("docs_url: wiki/mlsmell\n"), 0600))
	_, err = executeRoot(t, "--config", path, "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "docs_url")
}

func TestRootCommand_Completion(t *testing.T) {
	out, err := executeRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "mlsmell")

	_, err = executeRoot(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestConfigFlags(t *testing.T) {
	t.Cleanup(config.ResetConfig)

	root := NewRootCmd()
	lint, _, err := root.Find([]string{"lint"})
	require.NoError(t, err)
	require.NoError(t, lint.ParseFlags([]string{"--fail-on", "error", "--no-cache", "--concurrency", "2", "--severity", "info"}))

	flags := configFlags(lint)
	assert.NotNil(t, flags.Lookup("fail-on"))
	assert.Nil(t, flags.Lookup("severity"), "display-only flags do not feed the config")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), flags)
	require.Error(t, err, "an explicit config file must exist")
	assert.Nil(t, cfg)

	cfg, err = config.LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.GetLint().FailOn)
	assert.False(t, cfg.GetCache().Enabled)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestGetConfig(t *testing.T) {
	cfg := GetConfig(context.Background())
	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultOutput, cfg.OutputFormat)
}
