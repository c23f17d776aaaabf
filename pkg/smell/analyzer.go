package smell

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/mlsmell/pkg/pyast"
)

// Analyzer runs the catalog's enabled rules over many files in parallel.
// Every file gets a freshly built registry, so rule state is never shared
// between files or goroutines.
type Analyzer struct {
	config      *Config
	logger      *slog.Logger
	concurrency int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithConcurrency limits the number of files analyzed at once.
// Values below 1 mean runtime.NumCPU().
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.concurrency = n
	}
}

// WithAnalyzerLogger sets the logger handed to every registry.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an analyzer. The config is validated up front so that
// a bad configuration fails before any file is read.
func NewAnalyzer(config *Config, opts ...AnalyzerOption) (*Analyzer, error) {
	if config == nil {
		config = NewConfig()
	}
	a := &Analyzer{
		config: config,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.concurrency < 1 {
		a.concurrency = runtime.NumCPU()
	}

	// Building once surfaces ConfigError and ErrEmptyRuleSet early.
	if _, err := Build(a.config, a.logger); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the analyzer's lint configuration.
func (a *Analyzer) Config() *Config {
	return a.config
}

// Fingerprint identifies the analyzer's effective rule set.
func (a *Analyzer) Fingerprint() string {
	return Fingerprint(a.config)
}

// Analyze runs every enabled rule over one file.
func (a *Analyzer) Analyze(file *pyast.File) (*Report, error) {
	reg, err := Build(a.config, a.logger)
	if err != nil {
		return nil, err
	}
	return reg.Run(file)
}

// AnalyzeFiles analyzes files concurrently. Reports are returned in input
// order. Cancelling ctx stops scheduling further files and returns ctx.Err().
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []*pyast.File) ([]*Report, error) {
	reports := make([]*Report, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := a.Analyze(file)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}
