package core

import "time"

// Store defines the interface for the result cache and run history.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Result cache operations
	GetCachedReport(path, contentHash, fingerprint string) ([]byte, bool, error)
	PutCachedReport(path, contentHash, fingerprint string, report []byte) error
	PruneCache(fingerprint string) (int64, error)

	// Run operations
	CreateRun(fingerprint string, paths []string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, stats RunStats, errMsg string) error
	RecentRuns(limit int) ([]*Run, error)
}

// RunStatus represents the status of a lint run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunStats are the counters recorded when a run completes.
type RunStats struct {
	Files     int `json:"files"`
	CacheHits int `json:"cache_hits"`
	Findings  int `json:"findings"`
	Failures  int `json:"failures"`
}

// Run represents one lint invocation.
type Run struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	Paths       []string   `json:"paths"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Stats       RunStats   `json:"stats"`
	Error       string     `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r *Run) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
