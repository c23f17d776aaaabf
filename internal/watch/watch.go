// Package watch re-lints Python files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Watcher batches file system events on *.py files and hands each batch to
// a callback.
type Watcher struct {
	fs       *fsnotify.Watcher
	dirs     []string
	files    map[string]bool
	exclude  []string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(ctx context.Context, files []string)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExclude skips directories and files whose base name matches a pattern.
func WithExclude(patterns []string) Option {
	return func(w *Watcher) {
		w.exclude = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New watches the given files and directories (recursively).
func New(paths []string, onChange func(ctx context.Context, files []string), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		files:    make(map[string]bool),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(w)
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", path, err)
	}
	if !info.IsDir() {
		w.files[abs] = true
		return w.fs.Add(filepath.Dir(abs))
	}

	w.dirs = append(w.dirs, abs)
	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if p != abs && w.excluded(d.Name()) {
			return fs.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run delivers debounced batches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.handle(event, pending) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer.C:
			files := flush(pending)
			if len(files) == 0 {
				continue
			}
			w.logger.Debug("files changed", "count", len(files))
			w.onChange(ctx, files)
		}
	}
}

// handle records a relevant event and reports whether it was recorded.
func (w *Watcher) handle(event fsnotify.Event, pending map[string]bool) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.inDirs(event.Name) && !w.excluded(info.Name()) {
			if err := w.fs.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return false
		}
	}

	if !strings.HasSuffix(event.Name, ".py") || !w.relevant(event.Name) {
		return false
	}
	pending[event.Name] = true
	return true
}

func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}
	if !w.inDirs(path) {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if w.excluded(part) {
			return false
		}
	}
	return true
}

func (w *Watcher) inDirs(path string) bool {
	for _, dir := range w.dirs {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) excluded(name string) bool {
	for _, pattern := range w.exclude {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// flush returns the pending files that still exist, sorted, and clears pending.
func flush(pending map[string]bool) []string {
	files := make([]string, 0, len(pending))
	for f := range pending {
		delete(pending, f)
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}
