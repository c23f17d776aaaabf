package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetCachedReport returns the stored report for path when both the content
// hash and the fingerprint match the stored entry.
func (s *SQLiteStore) GetCachedReport(path, contentHash, fingerprint string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, errNotOpened
	}

	var report []byte
	err := s.db.QueryRow(
		`SELECT report FROM file_results WHERE path = ? AND content_hash = ? AND fingerprint = ?`,
		path, contentHash, fingerprint,
	).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached report: %w", err)
	}

	return report, true, nil
}

// PutCachedReport stores the report for path, replacing any previous entry.
func (s *SQLiteStore) PutCachedReport(path, contentHash, fingerprint string, report []byte) error {
	if s.db == nil {
		return errNotOpened
	}

	_, err := s.db.Exec(
		`INSERT INTO file_results (path, content_hash, fingerprint, report, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   content_hash = excluded.content_hash,
		   fingerprint = excluded.fingerprint,
		   report = excluded.report,
		   updated_at = excluded.updated_at`,
		path, contentHash, fingerprint, report, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cached report: %w", err)
	}
	return nil
}

// PruneCache deletes cached reports produced under any other fingerprint.
func (s *SQLiteStore) PruneCache(fingerprint string) (int64, error) {
	if s.db == nil {
		return 0, errNotOpened
	}

	res, err := s.db.Exec(`DELETE FROM file_results WHERE fingerprint <> ?`, fingerprint)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	if n > 0 {
		s.logger.Debug("pruned stale cache entries", "count", n)
	}
	return n, nil
}
