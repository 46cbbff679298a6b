package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapprice/internal/features"
	"github.com/leapstack-labs/leapprice/internal/model"
	"github.com/leapstack-labs/leapprice/internal/tabular"
	"github.com/leapstack-labs/leapprice/pkg/core"
)

// InferResult summarises an infer run.
type InferResult struct {
	RunID       string
	Rows        int
	Filled      []string // reference columns absent from the input, filled with 0
	Dropped     []string // input columns unknown to the reference, discarded
	Predictions []float64
}

// Infer prepares the raw rows at in, aligns them to the feature columns of
// the reference table, predicts with the model at modelPath and writes
// Id,SalePrice_Predicted to out.
func (e *Engine) Infer(ctx context.Context, in, modelPath, reference, out string) (*InferResult, error) {
	var result *InferResult

	err := e.track(core.RunKindInfer, in, func(run *core.Run) (string, error) {
		raw, err := tabular.ReadCSV(in, e.csv)
		if err != nil {
			return "", err
		}

		res, err := features.New(e.pipeline).Run(ctx, raw)
		if err != nil {
			return "", err
		}
		e.recordStages(run.ID, res)
		processed := res.Table

		header, err := tabular.ReadHeader(reference)
		if err != nil {
			return "", err
		}
		refColumns := features.FeatureColumns(header)
		e.checkReference(refColumns)

		ids := rowIDs(processed)

		aligned, report := features.AlignWithReport(refColumns, processed)
		report.Dropped = features.FeatureColumns(report.Dropped)
		if len(report.Filled) > 0 || len(report.Dropped) > 0 {
			e.logger.Info("aligned input to reference schema",
				"filled", len(report.Filled),
				"dropped", len(report.Dropped))
			e.logger.Debug("alignment details", "filled", report.Filled, "dropped", report.Dropped)
		}

		artifact, err := model.LoadArtifact(modelPath)
		if err != nil {
			return "", err
		}
		if artifact.SchemaVersion != features.SchemaVersion {
			e.logger.Warn("model was trained with a different schema version",
				"model", artifact.SchemaVersion, "current", features.SchemaVersion)
		}

		X, err := features.ToMatrix(aligned, nil)
		if err != nil {
			return "", err
		}
		logPred, err := artifact.Predict(X.Columns, X.Data)
		if err != nil {
			return "", err
		}
		pred := features.InverseTarget(logPred)

		outTable := core.NewTable(features.IDColumn, PredictionColumn)
		for i, p := range pred {
			outTable.Rows = append(outTable.Rows, core.Row{features.IDColumn: ids[i], PredictionColumn: p})
		}
		if err := tabular.WriteCSV(out, outTable); err != nil {
			return "", err
		}
		if e.metrics != nil {
			e.metrics.RecordInference(len(pred), len(report.Filled))
		}
		e.logger.Info("wrote predictions", slog.String("path", out), slog.Int("rows", len(pred)))

		result = &InferResult{
			RunID:       run.ID,
			Rows:        len(pred),
			Filled:      report.Filled,
			Dropped:     report.Dropped,
			Predictions: pred,
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkReference warns when the reference columns differ from the columns
// snapshotted by the latest train run.
func (e *Engine) checkReference(reference []string) {
	last, err := e.store.GetLatestRun(core.RunKindTrain)
	if err != nil || last == nil {
		return
	}
	trained, err := e.store.GetColumnSnapshot(last.ID)
	if err != nil || len(trained) == 0 {
		return
	}
	if !slices.Equal(trained, reference) {
		e.logger.Warn("reference columns differ from the latest train run",
			"train_run", last.ID,
			"trained", len(trained),
			"reference", len(reference))
	}
}

// rowIDs returns the Id column, or positional ids when there is none.
func rowIDs(t core.Table) []core.Value {
	ids := make([]core.Value, t.Len())
	hasID := t.HasColumn(features.IDColumn)
	for i, r := range t.Rows {
		if hasID {
			ids[i] = r[features.IDColumn]
		} else {
			ids[i] = float64(i)
		}
	}
	return ids
}
