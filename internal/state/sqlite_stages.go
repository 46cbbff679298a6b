package state

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// RecordStage stores the row counts of one pipeline stage.
func (s *SQLiteStore) RecordStage(stage *core.StageRun) error {
	if s.db == nil {
		return errNotOpen
	}

	_, err := s.db.Exec(
		`INSERT INTO stage_runs (run_id, seq, stage, rows_in, rows_out, columns, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stage.RunID, stage.Seq, stage.Stage, stage.RowsIn, stage.RowsOut, stage.Columns, stage.Duration.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record stage %s: %w", stage.Stage, err)
	}
	return nil
}

// GetStagesForRun returns the stages of a run in execution order.
func (s *SQLiteStore) GetStagesForRun(runID string) ([]*core.StageRun, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	rows, err := s.db.Query(
		`SELECT run_id, seq, stage, rows_in, rows_out, columns, duration_ns
		 FROM stage_runs WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stages []*core.StageRun
	for rows.Next() {
		sr := &core.StageRun{}
		var ns int64
		if err := rows.Scan(&sr.RunID, &sr.Seq, &sr.Stage, &sr.RowsIn, &sr.RowsOut, &sr.Columns, &ns); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		sr.Duration = time.Duration(ns)
		stages = append(stages, sr)
	}
	return stages, rows.Err()
}
