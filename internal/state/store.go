// Package state persists lint results and run history in SQLite.
// Cached reports are keyed by file path and only served back when both the
// content hash and the rule-set fingerprint match.
package state

import "github.com/leapstack-labs/mlsmell/pkg/core"

type (
	// Store is an alias for core.Store.
	Store = core.Store

	// Run is an alias for core.Run.
	Run = core.Run

	// RunStatus is an alias for core.RunStatus.
	RunStatus = core.RunStatus

	// RunStats is an alias for core.RunStats.
	RunStats = core.RunStats
)

// Run status constants.
const (
	RunStatusRunning   = core.RunStatusRunning
	RunStatusCompleted = core.RunStatusCompleted
	RunStatusFailed    = core.RunStatusFailed
	RunStatusCancelled = core.RunStatusCancelled
)
