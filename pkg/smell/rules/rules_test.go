package rules_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/testutil"
	"github.com/leapstack-labs/mlsmell/pkg/core"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules"
)

func TestCatalog(t *testing.T) {
	defs := smell.Definitions()
	require.Len(t, defs, 4)

	var codes []string
	for _, def := range defs {
		codes = append(codes, def.Meta.Code)
		assert.Equal(t, core.SeverityWarning, def.Meta.Severity, def.Meta.ID)
		assert.Equal(t, []pyast.Kind{pyast.KindCall}, def.Meta.Kinds, def.Meta.ID)
		assert.NotEmpty(t, def.Meta.Rationale, def.Meta.ID)
		assert.NotEmpty(t, def.Meta.BadExample, def.Meta.ID)
	}
	assert.Equal(t, []string{"W9001", "W9002", "W9003", "W9004"}, codes)
}

func TestCatalog_FactoriesCarryMetadata(t *testing.T) {
	for _, def := range smell.Definitions() {
		t.Run(def.Meta.ID, func(t *testing.T) {
			rule, err := def.New(nil)
			require.NoError(t, err)
			assert.Equal(t, def.Meta.ID, rule.ID())
			assert.Equal(t, def.Meta.Code, rule.Code())
			assert.Equal(t, def.Meta.Kinds, rule.NodeKinds())
			assert.Equal(t, def.Meta.ConfigKeys, rule.ConfigKeys())
		})
	}
}

// trainingScript exercises every rule once.
func trainingScript(path string) *pyast.File {
	return pyast.NewFile(path, pyast.Module(
		pyast.Assign("df", pyast.Call(pyast.Dotted("df.dropna"))),
		pyast.Expr(pyast.Call(pyast.Dotted("np.random.shuffle"), pyast.Positional(pyast.Ident("rows")))),
		pyast.Assign("model", pyast.Call(pyast.Ident("LogisticRegression"),
			pyast.Kw("C", pyast.Lit("0.1")),
			pyast.Kw("solver", pyast.Lit(`"liblinear"`)))),
		pyast.Expr(pyast.Call(pyast.Dotted("model.fit"), pyast.Positional(pyast.Ident("X")), pyast.Positional(pyast.Ident("y")))),
	))
}

func TestAllRules_TraversalOrder(t *testing.T) {
	reg, err := smell.Build(smell.NewConfig(), testutil.NewTestLogger(t))
	require.NoError(t, err)

	report, err := reg.Run(trainingScript("app/predict.py"))
	require.NoError(t, err)

	var got []string
	for _, d := range report.Diagnostics {
		got = append(got, fmt.Sprintf("%d %s", d.Pos.Line, d.Code))
	}
	assert.Equal(t, []string{"1 W9004", "2 W9002", "3 W9001", "3 W9001", "4 W9003"}, got)
}

func TestAllRules_DisabledAndOverridden(t *testing.T) {
	cfg := smell.NewConfig().
		Disable("hardcoded-hyperparameter").
		SetSeverity("silent-dropna", core.SeverityError)
	reg, err := smell.Build(cfg, nil)
	require.NoError(t, err)

	report, err := reg.Run(trainingScript("train.py"))
	require.NoError(t, err)

	for _, d := range report.Diagnostics {
		assert.NotEqual(t, "hardcoded-hyperparameter", d.RuleID)
		if d.RuleID == "silent-dropna" {
			assert.Equal(t, core.SeverityError, d.Severity)
		} else {
			assert.Equal(t, core.SeverityWarning, d.Severity)
		}
	}
	assert.Len(t, report.Diagnostics, 2)
}

func TestAnalyzer_MatchesSequential(t *testing.T) {
	var files []*pyast.File
	for i := range 20 {
		path := fmt.Sprintf("pkg/train_%02d.py", i)
		if i%3 == 0 {
			path = fmt.Sprintf("serve/app_%02d.py", i)
		}
		files = append(files, trainingScript(path))
	}

	analyzer, err := smell.NewAnalyzer(smell.NewConfig(), smell.WithConcurrency(4))
	require.NoError(t, err)

	reports, err := analyzer.AnalyzeFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, reports, len(files))

	for i, file := range files {
		reg, err := smell.Build(smell.NewConfig(), nil)
		require.NoError(t, err)
		want, err := reg.Run(file)
		require.NoError(t, err)
		assert.Equal(t, want, reports[i], file.Path)
	}
}

func TestAnalyzer_Cancelled(t *testing.T) {
	analyzer, err := smell.NewAnalyzer(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = analyzer.AnalyzeFiles(ctx, []*pyast.File{trainingScript("a.py")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_InvalidConfig(t *testing.T) {
	_, err := smell.NewAnalyzer(smell.NewConfig().Disable("no-such-rule"))
	var cfgErr *smell.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
