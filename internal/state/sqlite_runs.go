package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, fingerprint, paths, status, started_at, completed_at, files, cache_hits, findings, failures, error`

// CreateRun creates a new lint run.
func (s *SQLiteStore) CreateRun(fingerprint string, paths []string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if paths == nil {
		paths = []string{}
	}

	run := &Run{
		ID:          generateID(),
		Fingerprint: fingerprint,
		Paths:       paths,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	encoded, err := json.Marshal(run.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run paths: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, fingerprint, paths, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Fingerprint, string(encoded), string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as finished with the given status and counters.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, stats RunStats, errMsg string) error {
	if s.db == nil {
		return errNotOpened
	}

	var errVal sql.NullString
	if errMsg != "" {
		errVal = sql.NullString{String: errMsg, Valid: true}
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, files = ?, cache_hits = ?, findings = ?, failures = ?, error = ?
		 WHERE id = ?`,
		string(status), time.Now().UTC(), stats.Files, stats.CacheHits, stats.Findings, stats.Failures, errVal, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var paths string
	var completedAt sql.NullTime
	var errMsg sql.NullString

	err := row.Scan(&run.ID, &run.Fingerprint, &paths, &run.Status, &run.StartedAt, &completedAt,
		&run.Stats.Files, &run.Stats.CacheHits, &run.Stats.Findings, &run.Stats.Failures, &errMsg)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(paths), &run.Paths); err != nil {
		return nil, fmt.Errorf("failed to decode run paths: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}
