package state

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/testutil"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	store := NewSQLiteStore(nil)

	require.NoError(t, store.Open(path))
	require.NoError(t, store.InitSchema())
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Close())

	// Reopening runs no migrations twice.
	store = NewSQLiteStore(nil)
	require.NoError(t, store.Open(path))
	defer store.Close()
	require.NoError(t, store.InitSchema())

	version, err := store.GetMigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	_, _, err := store.GetCachedReport("a.py", "h", "f")
	require.ErrorIs(t, err, errNotOpened)
	require.ErrorIs(t, store.PutCachedReport("a.py", "h", "f", nil), errNotOpened)
	_, err = store.CreateRun("f", nil)
	require.ErrorIs(t, err, errNotOpened)
	_, err = store.RecentRuns(5)
	require.ErrorIs(t, err, errNotOpened)
	require.NoError(t, store.Close())
}

func TestSQLiteStore_Cache(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentHash string
		fingerprint string
		wantHit     bool
	}{
		{"exact match", "train.py", "h1", "fp1", true},
		{"content changed", "train.py", "h2", "fp1", false},
		{"rules changed", "train.py", "h1", "fp2", false},
		{"other file", "predict.py", "h1", "fp1", false},
	}

	store := setupTestStore(t)
	require.NoError(t, store.PutCachedReport("train.py", "h1", "fp1", []byte(`{"file":"train.py"}`)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, hit, err := store.GetCachedReport(tt.path, tt.contentHash, tt.fingerprint)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.JSONEq(t, `{"file":"train.py"}`, string(report))
			} else {
				assert.Nil(t, report)
			}
		})
	}
}

func TestSQLiteStore_CacheReplace(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.PutCachedReport("a.py", "h1", "fp1", []byte("old")))
	require.NoError(t, store.PutCachedReport("a.py", "h2", "fp1", []byte("new")))

	_, hit, err := store.GetCachedReport("a.py", "h1", "fp1")
	require.NoError(t, err)
	assert.False(t, hit, "replaced entry must not be served")

	report, hit, err := store.GetCachedReport("a.py", "h2", "fp1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "new", string(report))
}

func TestSQLiteStore_PruneCache(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.PutCachedReport("a.py", "h", "old", []byte("a")))
	require.NoError(t, store.PutCachedReport("b.py", "h", "old", []byte("b")))
	require.NoError(t, store.PutCachedReport("c.py", "h", "new", []byte("c")))

	n, err := store.PruneCache("new")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, hit, err := store.GetCachedReport("c.py", "h", "new")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("fp1", []string{"src", "app"})
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "app"}, got.Paths)
	assert.Nil(t, got.CompletedAt)
	assert.Zero(t, got.Duration())

	stats := RunStats{Files: 4, CacheHits: 1, Findings: 3, Failures: 1}
	require.NoError(t, store.CompleteRun(run.ID, RunStatusCompleted, stats, ""))

	got, err = store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Equal(t, stats, got.Stats)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Error)

	err = store.CompleteRun("missing", RunStatusFailed, RunStats{}, "boom")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = store.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_RecentRuns(t *testing.T) {
	store := setupTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.CreateRun("fp", nil)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, store.CompleteRun(ids[0], RunStatusFailed, RunStats{}, "config error"))

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, []string{}, runs[0].Paths)

	all, err := store.RecentRuns(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "config error", all[2].Error)
}
