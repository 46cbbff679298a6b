package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprice/internal/features"
	"github.com/leapstack-labs/leapprice/internal/metrics"
	"github.com/leapstack-labs/leapprice/internal/model"
	"github.com/leapstack-labs/leapprice/internal/tabular"
	"github.com/leapstack-labs/leapprice/internal/testutil"
	"github.com/leapstack-labs/leapprice/pkg/core"
)

func smallTrainOptions() *TrainOptions {
	return &TrainOptions{
		Grid: model.Grid{
			NEstimators:     []int{5},
			MaxDepth:        []int{4, 0},
			MinSamplesSplit: []int{2},
			MinSamplesLeaf:  []int{1},
		},
		Folds:    3,
		Workers:  4,
		TestSize: 0.2,
		Seed:     42,
	}
}

func setupEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	if cfg.Train == nil {
		cfg.Train = smallTrainOptions()
	}
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNew(t *testing.T) {
	e := setupEngine(t, Config{})
	require.NotNil(t, e.Store())
	assert.Nil(t, e.Metrics())
	assert.Equal(t, 3, e.train.Folds)

	d, err := New(Config{})
	require.NoError(t, err)
	defer func() { _ = d.Close() }()
	assert.Equal(t, DefaultTrainOptions(), d.train)
}

func TestNew_InvalidStatePath(t *testing.T) {
	_, err := New(Config{StatePath: "/nonexistent/path/state.db"})
	assert.Error(t, err)
}

func TestEngine_EndToEnd(t *testing.T) {
	dir := testutil.SetupTestProject(t, 60, 20)
	ctx := context.Background()
	collector := metrics.NewCollector(nil)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".leapprice"), 0o755))
	e := setupEngine(t, Config{
		StatePath: filepath.Join(dir, ".leapprice", "state.db"),
		Metrics:   collector,
	})

	raw := filepath.Join(dir, "data", "raw.csv")
	prep := filepath.Join(dir, "data", "prep.csv")
	modelPath := filepath.Join(dir, "models", "model.gob")
	test := filepath.Join(dir, "data", "test.csv")
	out := filepath.Join(dir, "data", "predictions.csv")

	// preprocess
	pre, err := e.Preprocess(ctx, raw, prep)
	require.NoError(t, err)
	assert.Equal(t, 60, pre.RowsIn)
	assert.Equal(t, 60, pre.RowsOut)
	assert.Len(t, pre.Stages, 5)
	assert.Contains(t, pre.Columns, features.LogTargetColumn)
	assert.Contains(t, pre.Columns, "MSZoning_RL")
	assert.NotContains(t, pre.Columns, "GarageYrBlt")

	prepared, err := tabular.ReadCSV(prep, tabular.Options{})
	require.NoError(t, err)
	assert.Equal(t, pre.Columns, prepared.Columns)

	// train
	tr, err := e.Train(ctx, prep, modelPath)
	require.NoError(t, err)
	assert.Equal(t, 60, tr.Rows)
	assert.Equal(t, 48, tr.TrainRows)
	assert.Equal(t, 12, tr.TestRows)
	assert.Equal(t, 2, tr.Candidates)
	assert.Equal(t, features.FeatureColumns(prepared.Columns), tr.Features)
	assert.Greater(t, tr.TestMAE, 0.0)
	assert.FileExists(t, modelPath)

	// infer
	inf, err := e.Infer(ctx, test, modelPath, prep, out)
	require.NoError(t, err)
	assert.Equal(t, 20, inf.Rows)
	assert.NotContains(t, inf.Dropped, features.IDColumn)

	predictions, err := tabular.ReadCSV(out, tabular.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{features.IDColumn, PredictionColumn}, predictions.Columns)
	require.Equal(t, 20, predictions.Len())
	assert.Equal(t, 1.0, predictions.Rows[0][features.IDColumn])
	assert.Equal(t, 20.0, predictions.Rows[19][features.IDColumn])

	prices, err := features.Column(prepared, features.TargetColumn)
	require.NoError(t, err)
	lo, hi := prices[0], prices[0]
	for _, p := range prices {
		lo, hi = min(lo, p), max(hi, p)
	}
	for _, p := range inf.Predictions {
		assert.GreaterOrEqual(t, p, lo-1)
		assert.LessOrEqual(t, p, hi+1)
	}

	// run history
	runs, err := e.Store().ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, core.RunKindInfer, runs[0].Kind)
	assert.Equal(t, core.RunKindTrain, runs[1].Kind)
	assert.Equal(t, core.RunKindPreprocess, runs[2].Kind)
	for _, r := range runs {
		assert.Equal(t, core.RunStatusCompleted, r.Status)
		assert.NotEmpty(t, r.Output)
	}

	stages, err := e.Store().GetStagesForRun(pre.RunID)
	require.NoError(t, err)
	require.Len(t, stages, 5)
	assert.Equal(t, features.StageNullsPre, stages[0].Stage)
	assert.Equal(t, features.StageNullsFinal, stages[4].Stage)

	snapshot, err := e.Store().GetColumnSnapshot(tr.RunID)
	require.NoError(t, err)
	assert.Equal(t, tr.Features, snapshot)

	// metrics
	n, err := promtestutil.GatherAndCount(collector.Registry(), "leapprice_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "one completed series per command kind")
}

func TestEngine_PreprocessMissingInput(t *testing.T) {
	e := setupEngine(t, Config{})
	dir := t.TempDir()

	_, err := e.Preprocess(context.Background(), filepath.Join(dir, "raw.csv"), filepath.Join(dir, "prep.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingInputFile)

	last, err := e.Store().GetLatestRun(core.RunKindPreprocess)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, core.RunStatusFailed, last.Status)
	assert.Contains(t, last.Error, "raw.csv")
	assert.NoFileExists(t, filepath.Join(dir, "prep.csv"))
}

func TestEngine_PreprocessUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "raw.csv", "Id,ExterQual,SalePrice\n1,TA,100000\n2,Superb,120000\n")
	e := setupEngine(t, Config{})

	_, err := e.Preprocess(context.Background(), in, filepath.Join(dir, "prep.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
	assert.Contains(t, err.Error(), "stage ordinal")
}

func TestEngine_TrainErrors(t *testing.T) {
	dir := testutil.SetupTestProject(t, 30, 10)
	ctx := context.Background()
	e := setupEngine(t, Config{})

	// raw data still holds category strings
	_, err := e.Train(ctx, filepath.Join(dir, "data", "raw.csv"), filepath.Join(dir, "m.gob"))
	assert.ErrorIs(t, err, core.ErrNonNumeric)

	// prepared data without a target
	prepNoTarget := filepath.Join(dir, "data", "prep_test.csv")
	_, err = e.Preprocess(ctx, filepath.Join(dir, "data", "test.csv"), prepNoTarget)
	require.NoError(t, err)
	_, err = e.Train(ctx, prepNoTarget, filepath.Join(dir, "m.gob"))
	assert.ErrorIs(t, err, core.ErrMissingColumn)

	_, err = e.Train(ctx, filepath.Join(dir, "missing.csv"), filepath.Join(dir, "m.gob"))
	assert.ErrorIs(t, err, core.ErrMissingInputFile)
	assert.NoFileExists(t, filepath.Join(dir, "m.gob"))
}

func TestEngine_InferErrors(t *testing.T) {
	dir := testutil.SetupTestProject(t, 40, 10)
	ctx := context.Background()
	e := setupEngine(t, Config{})

	prep := filepath.Join(dir, "data", "prep.csv")
	modelPath := filepath.Join(dir, "model.gob")
	_, err := e.Preprocess(ctx, filepath.Join(dir, "data", "raw.csv"), prep)
	require.NoError(t, err)
	test := filepath.Join(dir, "data", "test.csv")
	out := filepath.Join(dir, "out.csv")

	t.Run("missing model", func(t *testing.T) {
		_, err := e.Infer(ctx, test, modelPath, prep, out)
		assert.ErrorIs(t, err, core.ErrMissingInputFile)
	})

	t.Run("corrupt model", func(t *testing.T) {
		bad := testutil.WriteFile(t, dir, "bad.gob", "garbage")
		_, err := e.Infer(ctx, test, bad, prep, out)
		assert.ErrorIs(t, err, core.ErrModelLoad)
	})

	t.Run("empty input", func(t *testing.T) {
		header := strings.SplitN(testutil.HousingCSV(0, false), "\n", 2)[0]
		empty := testutil.WriteFile(t, dir, "empty.csv", header+"\n")
		_, err := e.Infer(ctx, empty, modelPath, prep, out)
		assert.ErrorIs(t, err, core.ErrEmptyResult)
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := e.Infer(ctx, test, modelPath, filepath.Join(dir, "nope.csv"), out)
		assert.ErrorIs(t, err, core.ErrMissingInputFile)
	})

	assert.NoFileExists(t, out)
}

func TestEngine_InferWithoutID(t *testing.T) {
	dir := testutil.SetupTestProject(t, 40, 5)
	ctx := context.Background()
	e := setupEngine(t, Config{})

	prep := filepath.Join(dir, "data", "prep.csv")
	modelPath := filepath.Join(dir, "model.gob")
	_, err := e.Preprocess(ctx, filepath.Join(dir, "data", "raw.csv"), prep)
	require.NoError(t, err)
	_, err = e.Train(ctx, prep, modelPath)
	require.NoError(t, err)

	// only a handful of columns; the rest are filled by alignment
	in := testutil.WriteFile(t, dir, "few.csv", "LotArea,OverallQual,MSZoning\n8000,7,RL\n9000,5,RM\n")
	out := filepath.Join(dir, "few_pred.csv")
	res, err := e.Infer(ctx, in, modelPath, prep, out)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Filled)
	assert.Empty(t, res.Dropped)

	predictions, err := tabular.ReadCSV(out, tabular.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, predictions.Len())
	assert.Equal(t, 0.0, predictions.Rows[0][features.IDColumn])
	assert.Equal(t, 1.0, predictions.Rows[1][features.IDColumn])
}
