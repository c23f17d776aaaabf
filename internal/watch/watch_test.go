package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/mlsmell/internal/testutil"
)

func TestWatcher_Run(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".venv"), 0o755))

	batches := make(chan []string, 4)
	w, err := New([]string{root}, func(_ context.Context, files []string) {
		batches <- files
	},
		WithDebounce(20*time.Millisecond),
		WithExclude([]string{".venv"}),
		WithLogger(testutil.NewTestLogger(t)),
	)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	train := filepath.Join(root, "train.py")
	require.NoError(t, os.WriteFile(filepath.Join(root, ".venv", "site.py"), []byte("x = 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x\n"), 0o600))
	require.NoError(t, os.WriteFile(train, []byte("x = 1\n"), 0o600))

	select {
	case files := <-batches:
		assert.Equal(t, []string{train}, files)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_Handle(t *testing.T) {
	root := t.TempDir()
	single := filepath.Join(t.TempDir(), "predict_job.py")
	require.NoError(t, os.WriteFile(single, []byte("x = 1\n"), 0o600))

	w, err := New([]string{root, single}, func(context.Context, []string) {}, WithExclude([]string{"build"}))
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write in dir", fsnotify.Event{Name: filepath.Join(root, "a.py"), Op: fsnotify.Write}, true},
		{"watched file", fsnotify.Event{Name: single, Op: fsnotify.Write}, true},
		{"sibling of watched file", fsnotify.Event{Name: filepath.Join(filepath.Dir(single), "other.py"), Op: fsnotify.Write}, false},
		{"excluded dir", fsnotify.Event{Name: filepath.Join(root, "build", "a.py"), Op: fsnotify.Create}, false},
		{"not python", fsnotify.Event{Name: filepath.Join(root, "a.txt"), Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(root, "a.py"), Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := make(map[string]bool)
			assert.Equal(t, tt.want, w.handle(tt.event, pending))
			assert.Equal(t, tt.want, pending[tt.event.Name])
		})
	}
}

func TestNew_MissingPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing")}, func(context.Context, []string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot watch")
}
