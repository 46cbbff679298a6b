package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapprice/internal/features"
	"github.com/leapstack-labs/leapprice/internal/model"
	"github.com/leapstack-labs/leapprice/internal/tabular"
	"github.com/leapstack-labs/leapprice/pkg/core"
)

// TrainResult summarises a train run.
type TrainResult struct {
	RunID      string
	Rows       int
	TrainRows  int
	TestRows   int
	Features   []string
	Best       model.Params
	Candidates int
	CVScore    float64 // log space
	TestMAE    float64 // sale price units
	Elapsed    time.Duration
}

// Train fits the price model on the prepared table at in and saves the
// artifact to out. The log target is regressed on every feature column; the
// hold-out error is reported in original price units.
func (e *Engine) Train(ctx context.Context, in, out string) (*TrainResult, error) {
	var result *TrainResult

	err := e.track(core.RunKindTrain, in, func(run *core.Run) (string, error) {
		start := time.Now()

		prepared, err := tabular.ReadCSV(in, e.csv)
		if err != nil {
			return "", err
		}
		if prepared.Len() == 0 {
			return "", &core.EmptyResultError{Stage: "load"}
		}

		X, err := features.ToMatrix(prepared, features.NonFeatureColumns())
		if err != nil {
			return "", err
		}
		y, err := features.Column(prepared, features.LogTargetColumn)
		if err != nil {
			return "", err
		}

		opts := e.train
		split, err := model.TrainTestSplit(X.Rows(), opts.TestSize, opts.Seed)
		if err != nil {
			return "", fmt.Errorf("split: %w", err)
		}
		trainX, trainY := model.Take(X.Data, y, split.Train)
		testX, testY := model.Take(X.Data, y, split.Test)

		e.logger.Info("training model",
			slog.Int("rows", X.Rows()),
			slog.Int("features", len(X.Columns)),
			slog.Int("train_rows", len(split.Train)),
			slog.Int("test_rows", len(split.Test)))

		search := &model.GridSearch{
			Grid:    opts.Grid,
			Folds:   opts.Folds,
			Workers: opts.Workers,
			Seed:    opts.Seed,
			Logger:  e.logger,
		}
		sr, err := search.Fit(ctx, trainX, trainY)
		if err != nil {
			return "", fmt.Errorf("grid search: %w", err)
		}

		pred, err := sr.Model.Predict(testX)
		if err != nil {
			return "", err
		}
		testMAE, err := model.MAE(features.InverseTarget(testY), features.InverseTarget(pred))
		if err != nil {
			return "", err
		}
		e.logger.Info("model evaluated", "params", sr.Best.String(), "cv_mae_log", sr.BestScore, "test_mae", testMAE)

		artifact := &model.Artifact{
			Version:       model.ArtifactVersion,
			SchemaVersion: features.SchemaVersion,
			Features:      X.Columns,
			Target:        features.LogTargetColumn,
			Params:        sr.Best,
			Forest:        sr.Model,
			TrainedAt:     time.Now().UTC(),
			TrainRows:     len(split.Train),
			CVScore:       sr.BestScore,
			TestMAE:       testMAE,
		}
		if err := artifact.Save(out); err != nil {
			return "", err
		}
		if err := e.store.SaveColumnSnapshot(run.ID, X.Columns); err != nil {
			e.logger.Warn("failed to save column snapshot", "error", err)
		}
		if e.metrics != nil {
			e.metrics.RecordTraining(len(sr.Scores), sr.BestScore, testMAE)
		}

		result = &TrainResult{
			RunID:      run.ID,
			Rows:       X.Rows(),
			TrainRows:  len(split.Train),
			TestRows:   len(split.Test),
			Features:   X.Columns,
			Best:       sr.Best,
			Candidates: len(sr.Scores),
			CVScore:    sr.BestScore,
			TestMAE:    testMAE,
			Elapsed:    time.Since(start),
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
