package engine

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapprice/internal/features"
	"github.com/leapstack-labs/leapprice/internal/tabular"
	"github.com/leapstack-labs/leapprice/pkg/core"
)

// PreprocessResult summarises a preprocess run.
type PreprocessResult struct {
	RunID   string
	RowsIn  int
	RowsOut int
	Columns []string
	Stages  []features.StageResult
}

// Preprocess reads raw rows from in, runs the feature pipeline and writes
// the prepared table to out.
func (e *Engine) Preprocess(ctx context.Context, in, out string) (*PreprocessResult, error) {
	var result *PreprocessResult

	err := e.track(core.RunKindPreprocess, in, func(run *core.Run) (string, error) {
		raw, err := tabular.ReadCSV(in, e.csv)
		if err != nil {
			return "", err
		}
		e.logger.Info("loaded raw data", slog.String("path", in), slog.Int("rows", raw.Len()), slog.Int("columns", len(raw.Columns)))

		res, err := features.New(e.pipeline).Run(ctx, raw)
		if err != nil {
			return "", err
		}
		e.recordStages(run.ID, res)

		if err := tabular.WriteCSV(out, res.Table); err != nil {
			return "", err
		}
		if err := e.store.SaveColumnSnapshot(run.ID, res.Table.Columns); err != nil {
			e.logger.Warn("failed to save column snapshot", "error", err)
		}

		e.logger.Info("wrote prepared data", slog.String("path", out), slog.Int("rows", res.Table.Len()), slog.Int("columns", len(res.Table.Columns)))

		result = &PreprocessResult{
			RunID:   run.ID,
			RowsIn:  raw.Len(),
			RowsOut: res.Table.Len(),
			Columns: res.Table.Columns,
			Stages:  res.Stages,
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
