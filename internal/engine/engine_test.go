package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/state"
	"github.com/leapstack-labs/mlsmell/internal/testutil"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
	_ "github.com/leapstack-labs/mlsmell/pkg/smell/rules" // register rules
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *testutil.LineParser) {
	t.Helper()
	parser := &testutil.LineParser{}
	cfg.NewParser = func() SourceParser { return parser }
	cfg.Logger = testutil.NewTestLogger(t)
	if cfg.Exclude == nil {
		cfg.Exclude = []string{".venv", "__pycache__", "*_generated.py"}
	}
	eng, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng, parser
}

func memoryStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEngine_Discover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"train.py":                "x = 1\n",
		"pkg/features.py":         "x = 1\n",
		"pkg/notes.txt":           "not python\n",
		"pkg/schema_generated.py": "x = 1\n",
		".venv/lib/site.py":       "x = 1\n",
		"pkg/__pycache__/x.py":    "x = 1\n",
	})
	eng, _ := newTestEngine(t, Config{})

	result, err := eng.Discover([]string{root, filepath.Join(root, "train.py")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "pkg", "features.py"),
		filepath.Join(root, "train.py"),
	}, result.Files)
	assert.Equal(t, 3, result.Excluded)
}

func TestEngine_Discover_MissingPath(t *testing.T) {
	eng, _ := newTestEngine(t, Config{})
	_, err := eng.Discover([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot lint")
}

func TestEngine_Lint(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"train.py":       "random.seed(42)\nmodel = LogisticRegression(C=0.1, solver=config.solver)\nmodel.fit(X, y)\n",
		"serve/infer.py": "x = random.randint(1, 10)\ndf = df.dropna()\n",
	})
	eng, _ := newTestEngine(t, Config{Concurrency: 2})

	result, err := eng.Lint(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Empty(t, result.RunID, "no store, no run history")

	infer := result.Files[0].Report
	require.NotNil(t, infer)
	var codes []string
	for _, d := range infer.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"W9002", "W9004"}, codes)

	train := result.Files[1].Report
	require.Len(t, train.Diagnostics, 1)
	assert.Equal(t, "hardcoded-hyperparameter", train.Diagnostics[0].RuleID)
	assert.Equal(t, 2, train.Diagnostics[0].Pos.Line)

	assert.Equal(t, 2, result.Stats.Files)
	assert.Equal(t, 3, result.Stats.Findings)
	assert.Zero(t, result.Stats.CacheHits)
}

func TestEngine_LintCache(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.py": "df = df.dropna()\n",
		"b.py": "model = XGBClassifier(max_depth=3)\n",
	})
	store := memoryStore(t)
	eng, parser := newTestEngine(t, Config{Store: store, Version: "test"})
	ctx := context.Background()

	first, err := eng.Lint(ctx, []string{root})
	require.NoError(t, err)
	assert.Equal(t, int64(2), parser.Parses())
	assert.Zero(t, first.Stats.CacheHits)
	require.NotEmpty(t, first.RunID)

	second, err := eng.Lint(ctx, []string{root})
	require.NoError(t, err)
	assert.Equal(t, int64(2), parser.Parses(), "cache hits are not parsed")
	assert.Equal(t, 2, second.Stats.CacheHits)
	for i := range first.Files {
		assert.True(t, second.Files[i].Cached)
		assert.Equal(t, first.Files[i].Report.Diagnostics, second.Files[i].Report.Diagnostics)
	}

	writeFiles(t, root, map[string]string{"a.py": "df = df.dropna()\ndf = df.dropna()\n"})
	third, err := eng.Lint(ctx, []string{root})
	require.NoError(t, err)
	assert.Equal(t, 1, third.Stats.CacheHits)
	assert.False(t, third.Files[0].Cached)
	assert.Len(t, third.Files[0].Report.Diagnostics, 2)

	// A different rule set never sees these entries.
	other, otherParser := newTestEngine(t, Config{
		Store: store,
		Lint:  smell.NewConfig().Disable("silent-dropna"),
	})
	fourth, err := other.Lint(ctx, []string{root})
	require.NoError(t, err)
	assert.Zero(t, fourth.Stats.CacheHits)
	assert.Equal(t, int64(2), otherParser.Parses())
	assert.Empty(t, fourth.Files[0].Report.Diagnostics)

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, state.RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[2].Stats.CacheHits)
}

func TestEngine_LintFiles_ReadError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"ok.py": "np.random.shuffle(x)\n"})
	eng, _ := newTestEngine(t, Config{})

	result, err := eng.LintFiles(context.Background(),
		[]string{filepath.Join(root, "gone.py"), filepath.Join(root, "ok.py")}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ReadErrors)
	require.Error(t, result.Files[0].Err)
	assert.Nil(t, result.Files[0].Report)
	require.NotNil(t, result.Files[1].Report)
	assert.Len(t, result.Files[1].Report.Findings(), 1)
	assert.Len(t, result.Reports(), 1)
}

func TestEngine_LintCancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "x = 1\n", "b.py": "x = 2\n"})
	store := memoryStore(t)
	eng, _ := newTestEngine(t, Config{Store: store})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Lint(ctx, []string{root})
	require.ErrorIs(t, err, context.Canceled)

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, state.RunStatusCancelled, runs[0].Status)
}

func TestEngine_LintSource(t *testing.T) {
	eng, _ := newTestEngine(t, Config{})
	report, err := eng.LintSource(context.Background(), "predict.py", []byte("clf.fit(X, y)\n"))
	require.NoError(t, err)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "W9003", report.Diagnostics[0].Code)
	assert.Equal(t, "predict.py", report.Diagnostics[0].File)
}

func TestEngine_New_InvalidConfig(t *testing.T) {
	_, err := New(Config{Lint: smell.NewConfig().Disable("no-such-rule")})
	var cfgErr *smell.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestEngine_CachePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mlsmell", "cache.db")
	eng, _ := newTestEngine(t, Config{CachePath: path})
	require.NotNil(t, eng.Store())
	assert.FileExists(t, path)
	assert.NotEmpty(t, eng.Fingerprint())
	assert.NotNil(t, eng.Config())
}

func TestEngine_CachePath_PrunesStaleRuleSets(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.py": "df = df.dropna()\n"})
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	first, _ := newTestEngine(t, Config{CachePath: path, Version: "v1"})
	_, err := first.Lint(ctx, []string{root})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, _ := newTestEngine(t, Config{CachePath: path, Version: "v2"})
	pruned, err := second.Store().PruneCache(second.Fingerprint())
	require.NoError(t, err)
	assert.Zero(t, pruned, "entries from v1 were pruned when the cache opened")
}

func TestRulePath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "app")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "inside root", path: filepath.Join(root, "serve", "predict.py"), want: "serve/predict.py"},
		{name: "root itself", path: root, want: "."},
		{name: "sibling with common prefix", path: root + "-old/train.py", want: filepath.ToSlash(root + "-old/train.py")},
		{name: "outside root", path: filepath.Join(filepath.Dir(root), "train.py"), want: filepath.ToSlash(filepath.Join(filepath.Dir(root), "train.py"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RulePath(root, tt.path))
		})
	}
}

func TestEngine_RulePathIndependentOfInvocation(t *testing.T) {
	// The project directory itself matches an inference marker.
	root := filepath.Join(t.TempDir(), "app")
	writeFiles(t, root, map[string]string{
		"train.py":         "clf.fit(X, y)\n",
		"serve/predict.py": "clf.fit(X, y)\n",
	})
	ctx := context.Background()

	codesByFile := func(result *Result) map[string][]string {
		out := map[string][]string{}
		for _, f := range result.Files {
			require.NotNil(t, f.Report, f.Path)
			codes := []string{}
			for _, d := range f.Report.Diagnostics {
				codes = append(codes, d.File+" "+d.Code)
			}
			out[f.Report.File] = codes
		}
		return out
	}
	want := map[string][]string{
		"serve/predict.py": {"serve/predict.py W9003"},
		"train.py":         {},
	}

	eng, parser := newTestEngine(t, Config{Store: memoryStore(t), Root: root})

	t.Chdir(root)
	relative, err := eng.Lint(ctx, []string{"."})
	require.NoError(t, err)
	assert.Equal(t, want, codesByFile(relative))

	absolute, err := eng.Lint(ctx, []string{root})
	require.NoError(t, err)
	assert.Equal(t, 2, absolute.Stats.CacheHits)
	assert.Equal(t, int64(2), parser.Parses())
	assert.Equal(t, want, codesByFile(absolute))

	fresh, _ := newTestEngine(t, Config{Root: root})
	uncached, err := fresh.Lint(ctx, []string{root})
	require.NoError(t, err)
	assert.Equal(t, want, codesByFile(uncached))
}
