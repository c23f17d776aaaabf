package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/mlsmell/internal/state"
	"github.com/leapstack-labs/mlsmell/pkg/pyast"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

// FileResult is the outcome for one file. Err is set when the file could not
// be read or parsed; Report is nil in that case.
type FileResult struct {
	Path   string
	Report *smell.Report
	Cached bool
	Err    error
}

// Result is the outcome of one lint run.
type Result struct {
	RunID       string
	Fingerprint string
	Files       []FileResult
	Stats       state.RunStats
	ReadErrors  int
	Duration    time.Duration
}

// Reports returns the reports of every file that was analyzed.
func (r *Result) Reports() []*smell.Report {
	out := make([]*smell.Report, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Report != nil {
			out = append(out, f.Report)
		}
	}
	return out
}

// pending is a file that missed the cache and must be analyzed.
type pending struct {
	index int
	key   string
	hash  string
	file  *pyast.File
}

// Lint discovers Python files under paths and analyzes them.
func (e *Engine) Lint(ctx context.Context, paths []string) (*Result, error) {
	discovered, err := e.Discover(paths)
	if err != nil {
		return nil, err
	}
	return e.LintFiles(ctx, discovered.Files, paths)
}

// LintFiles analyzes the given files. runPaths is recorded in the run history.
func (e *Engine) LintFiles(ctx context.Context, files []string, runPaths []string) (*Result, error) {
	start := time.Now()
	result := &Result{
		Fingerprint: e.fingerprint,
		Files:       make([]FileResult, len(files)),
	}

	var run *state.Run
	if e.store != nil {
		var err error
		if run, err = e.store.CreateRun(e.fingerprint, runPaths); err != nil {
			e.logger.Warn("failed to record run", "error", err)
		} else {
			result.RunID = run.ID
		}
	}

	misses, err := e.load(ctx, files, result)
	if err == nil {
		err = e.analyzeMisses(ctx, misses, result)
	}

	result.Duration = time.Since(start)
	result.Stats.Files = len(files)
	for _, f := range result.Files {
		if f.Report == nil {
			continue
		}
		result.Stats.Findings += len(f.Report.Findings())
		result.Stats.Failures += len(f.Report.Failures())
	}

	e.completeRun(run, result, err)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("lint complete",
		"files", result.Stats.Files,
		"cache_hits", result.Stats.CacheHits,
		"findings", result.Stats.Findings,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// load reads, hashes and parses files in parallel, serving cache hits
// directly into result. It returns the files that still need analysis.
func (e *Engine) load(ctx context.Context, files []string, result *Result) ([]*pending, error) {
	loaded := make([]*pending, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, path := range files {
		result.Files[i].Path = path
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from discovery
			if err != nil {
				result.Files[i].Err = fmt.Errorf("failed to read %s: %w", path, err)
				return nil
			}
			hash := computeHash(src)
			key := RulePath(e.root, path)

			if report, ok := e.cached(key, hash); ok {
				result.Files[i].Report = report
				result.Files[i].Cached = true
				return nil
			}

			file, err := e.parse(gctx, key, src)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				result.Files[i].Err = err
				return nil
			}
			loaded[i] = &pending{index: i, key: key, hash: hash, file: file}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var misses []*pending
	for i, p := range loaded {
		switch {
		case p != nil:
			misses = append(misses, p)
		case result.Files[i].Cached:
			result.Stats.CacheHits++
		case result.Files[i].Err != nil:
			result.ReadErrors++
			e.logger.Warn("skipping file", "path", result.Files[i].Path, "error", result.Files[i].Err)
		}
	}
	return misses, nil
}

func (e *Engine) analyzeMisses(ctx context.Context, misses []*pending, result *Result) error {
	if len(misses) == 0 {
		return nil
	}

	trees := make([]*pyast.File, len(misses))
	for i, p := range misses {
		trees[i] = p.file
	}

	reports, err := e.analyzer.AnalyzeFiles(ctx, trees)
	if err != nil {
		return err
	}

	for i, p := range misses {
		result.Files[p.index].Report = reports[i]
		e.storeReport(p.key, p.hash, reports[i])
	}
	return nil
}

// LintSource analyzes source that does not come from disk. Nothing is cached.
func (e *Engine) LintSource(ctx context.Context, path string, src []byte) (*smell.Report, error) {
	file, err := e.parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	return e.analyzer.Analyze(file)
}

// cached looks up the report stored for key, the file's RulePath.
func (e *Engine) cached(key, hash string) (*smell.Report, bool) {
	if e.store == nil {
		return nil, false
	}
	data, ok, err := e.store.GetCachedReport(key, hash, e.fingerprint)
	if err != nil {
		e.logger.Warn("cache lookup failed", "path", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var report smell.Report
	if err := json.Unmarshal(data, &report); err != nil {
		e.logger.Debug("discarding unreadable cache entry", "path", key, "error", err)
		return nil, false
	}
	report.File = key
	for i := range report.Diagnostics {
		report.Diagnostics[i].File = key
	}
	return &report, true
}

func (e *Engine) storeReport(key, hash string, report *smell.Report) {
	if e.store == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		e.logger.Warn("failed to encode report", "path", key, "error", err)
		return
	}
	if err := e.store.PutCachedReport(key, hash, e.fingerprint, data); err != nil {
		e.logger.Warn("failed to cache report", "path", key, "error", err)
	}
}

func (e *Engine) completeRun(run *state.Run, result *Result, runErr error) {
	if run == nil {
		return
	}
	status := state.RunStatusCompleted
	var msg string
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status, msg = state.RunStatusCancelled, runErr.Error()
	case runErr != nil:
		status, msg = state.RunStatusFailed, runErr.Error()
	}
	if err := e.store.CompleteRun(run.ID, status, result.Stats, msg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", run.ID, "error", err)
	}
}

func (e *Engine) workers() int {
	if e.concurrency > 0 {
		return e.concurrency
	}
	return runtime.NumCPU()
}

func computeHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:16])
}
