// Package engine discovers Python files, consults the result cache and runs
// the smell analyzer over everything that changed.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/leapstack-labs/mlsmell/internal/state"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// SourceParser turns Python source into a syntax tree.
// Implementations need not be safe for concurrent use.
type SourceParser interface {
	Parse(ctx context.Context, path string, source []byte) (*pyast.File, error)
}

// Engine orchestrates lint runs.
type Engine struct {
	analyzer    *smell.Analyzer
	store       state.Store
	ownsStore   bool
	logger      *slog.Logger
	root        string
	exclude     []string
	concurrency int
	fingerprint string
	parsers     sync.Pool
}

// Config holds engine configuration.
type Config struct {
	// Lint is the rule configuration (nil means all rules with defaults)
	Lint *smell.Config
	// Root is the project directory that analyzed paths are made relative to
	// (defaults to the working directory)
	Root string
	// Exclude lists directory or file name patterns skipped during discovery
	Exclude []string
	// Concurrency limits parallel parsing and analysis (0 = NumCPU)
	Concurrency int
	// CachePath is the SQLite cache location; empty disables the cache
	CachePath string
	// Store overrides CachePath with an already opened store
	Store state.Store
	// Version is mixed into the cache key so upgrades invalidate old results
	Version string
	// NewParser creates one parser per worker (defaults to tree-sitter)
	NewParser func() SourceParser
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine. A bad lint configuration fails here, before any
// file is read.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	analyzer, err := smell.NewAnalyzer(cfg.Lint,
		smell.WithConcurrency(cfg.Concurrency),
		smell.WithAnalyzerLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		analyzer:    analyzer,
		logger:      logger,
		exclude:     cfg.Exclude,
		concurrency: cfg.Concurrency,
		fingerprint: analyzer.Fingerprint(),
	}
	if cfg.Version != "" {
		e.fingerprint = cfg.Version + ":" + e.fingerprint
	}

	root := cfg.Root
	if root == "" {
		root = "."
	}
	if e.root, err = filepath.Abs(root); err != nil {
		return nil, fmt.Errorf("invalid project root %s: %w", root, err)
	}

	newParser := cfg.NewParser
	if newParser == nil {
		newParser = func() SourceParser { return pyast.NewParser(logger) }
	}
	e.parsers.New = func() any { return newParser() }

	switch {
	case cfg.Store != nil:
		e.store = cfg.Store
	case cfg.CachePath != "":
		store := state.NewSQLiteStore(logger)
		if err := store.Open(cfg.CachePath); err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		if err := store.InitSchema(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		e.store = store
		e.ownsStore = true
		if pruned, err := store.PruneCache(e.fingerprint); err != nil {
			logger.Warn("failed to prune cache", "error", err)
		} else if pruned > 0 {
			logger.Debug("pruned stale cache entries", "count", pruned)
		}
	}

	logger.Debug("engine initialized",
		"fingerprint", e.fingerprint,
		"root", e.root,
		"cache", e.store != nil,
		"concurrency", cfg.Concurrency)

	return e, nil
}

// Close releases the cache if the engine opened it.
func (e *Engine) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Fingerprint returns the cache key of the effective rule set.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Config returns the lint configuration in effect.
func (e *Engine) Config() *smell.Config {
	return e.analyzer.Config()
}

// Store returns the cache store, or nil when caching is disabled.
func (e *Engine) Store() state.Store {
	return e.store
}

func (e *Engine) parse(ctx context.Context, path string, src []byte) (*pyast.File, error) {
	p := e.parsers.Get().(SourceParser)
	defer e.parsers.Put(p)
	return p.Parse(ctx, path, src)
}
