package state

import (
	"context"
	"fmt"
)

// SaveColumnSnapshot stores the ordered feature columns produced by a run.
// Inference uses the latest train snapshot to verify its reference schema.
func (s *SQLiteStore) SaveColumnSnapshot(runID string, columns []string) error {
	if s.db == nil {
		return errNotOpen
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM column_snapshots WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO column_snapshots (run_id, column_index, column_name) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, col := range columns {
		if _, err := stmt.ExecContext(ctx, runID, i, col); err != nil {
			return fmt.Errorf("insert snapshot for column %s: %w", col, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetColumnSnapshot returns the columns saved for a run, in order. A run
// without a snapshot yields an empty slice.
func (s *SQLiteStore) GetColumnSnapshot(runID string) ([]string, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.Query(
		`SELECT column_name FROM column_snapshots WHERE run_id = ? ORDER BY column_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}
