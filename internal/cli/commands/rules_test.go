package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/mlsmell/internal/cli/testutil"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules" // register rules
)

func executeRules(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, NewRulesCommand(), args...)
}

func TestNewRulesCommand(t *testing.T) {
	cmd := NewRulesCommand()

	assert.Equal(t, "rules [rule-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	flags := []string{"group", "verbose", "format"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRulesCommand_Markdown(t *testing.T) {
	out, err := executeRules(t, "--format", "markdown")
	require.NoError(t, err)

	clitestutil.AssertNoANSI(t, out)
	clitestutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# ML Smell Rules")
	assert.Contains(t, out, "## Data")
	assert.Contains(t, out, "## Pipeline")
	assert.Contains(t, out, "## Reproducibility")
	for _, code := range []string{"W9001", "W9002", "W9003", "W9004"} {
		assert.Contains(t, out, code)
	}
}

func TestRulesCommand_FilterByGroup(t *testing.T) {
	t.Run("known group", func(t *testing.T) {
		out, err := executeRules(t, "--format", "markdown", "--group", "Reproducibility")
		require.NoError(t, err)

		assert.Contains(t, out, "W9001")
		assert.Contains(t, out, "W9002")
		assert.NotContains(t, out, "W9004")
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := executeRules(t, "--group", "serving")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rules in group")
	})
}

func TestRulesCommand_ShowSpecificRule(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{name: "by id", arg: "silent-dropna"},
		{name: "by code", arg: "W9004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeRules(t, "--format", "markdown", tt.arg)
			require.NoError(t, err)

			assert.Contains(t, out, "# W9004 silent-dropna")
			assert.Contains(t, out, "## How to Fix")
			assert.Contains(t, out, "```python")
		})
	}
}

func TestRulesCommand_NotFound(t *testing.T) {
	_, err := executeRules(t, "W0000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRulesCommand_JSON(t *testing.T) {
	out, err := executeRules(t, "--format", "json")
	require.NoError(t, err)

	var result RulesJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, smell.Count(), result.Total)
	assert.Equal(t, 2, result.ByGroup["reproducibility"])
	assert.Equal(t, 1, result.ByGroup["pipeline"])
	assert.Equal(t, 1, result.ByGroup["data"])

	// sorted by group, then code
	require.Len(t, result.Rules, 4)
	assert.Equal(t, "W9004", result.Rules[0].Code)
	assert.Equal(t, "W9003", result.Rules[1].Code)
	assert.Equal(t, "W9001", result.Rules[2].Code)
	assert.Equal(t, core.SeverityWarning, result.Rules[0].DefaultSeverity)
}

func TestRulesCommand_SingleRuleJSON(t *testing.T) {
	out, err := executeRules(t, "--format", "json", "W9002")
	require.NoError(t, err)

	var rule core.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &rule))
	assert.Equal(t, "unseeded-randomness", rule.ID)
	assert.Equal(t, "reproducibility", rule.Group)
	assert.NotEmpty(t, rule.Fix)
}

func TestRulesCommand_TextVerbose(t *testing.T) {
	out, err := executeRules(t, "--format", "text", "-V")
	require.NoError(t, err)

	assert.Contains(t, out, "ML Smell Rules (4)")
	assert.Contains(t, out, "hardcoded-hyperparameter")
}

func TestFilterRulesByGroup(t *testing.T) {
	rules := []core.RuleInfo{
		{ID: "a", Group: "data"},
		{ID: "b", Group: "pipeline"},
		{ID: "c", Group: "data"},
	}

	tests := []struct {
		name  string
		group string
		want  []string
	}{
		{name: "no filter", group: "", want: []string{"a", "b", "c"}},
		{name: "case insensitive", group: "DATA", want: []string{"a", "c"}},
		{name: "no match", group: "serving", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, r := range filterRulesByGroup(rules, tt.group) {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTruncateOneLine(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "hello", maxLen: 10, want: "hello"},
		{name: "newlines flattened", input: "a\nb", maxLen: 10, want: "a b"},
		{name: "truncated", input: "hello world", maxLen: 8, want: "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateOneLine(tt.input, tt.maxLen))
		})
	}
}
