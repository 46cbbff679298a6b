// Package engine runs the leapprice commands: preprocessing raw housing data,
// training the price model and batch inference. Every command is recorded
// as a run in the state store.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapprice/internal/features"
	"github.com/leapstack-labs/leapprice/internal/metrics"
	"github.com/leapstack-labs/leapprice/internal/model"
	"github.com/leapstack-labs/leapprice/internal/state"
	"github.com/leapstack-labs/leapprice/internal/tabular"
	"github.com/leapstack-labs/leapprice/pkg/core"
)

// PredictionColumn is the output column written by Infer.
const PredictionColumn = "SalePrice_Predicted"

// Engine orchestrates the pipeline, the model and the state store.
type Engine struct {
	logger    *slog.Logger
	store     core.Store
	ownsStore bool
	metrics   *metrics.Collector
	train     TrainOptions
	pipeline  features.Config
	csv       tabular.Options
}

// TrainOptions controls model selection.
type TrainOptions struct {
	Grid     model.Grid
	Folds    int
	Workers  int
	TestSize float64
	Seed     int64
}

// DefaultTrainOptions returns the 81-candidate grid, 5 folds and an 80/20
// split seeded with 42.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Grid:     model.DefaultGrid(),
		Folds:    5,
		TestSize: 0.2,
		Seed:     42,
	}
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite state database (":memory:" if empty)
	StatePath string
	// Store overrides StatePath with an already opened store (optional)
	Store core.Store
	// Train selects the search grid and split (zero value uses DefaultTrainOptions)
	Train *TrainOptions
	// Pipeline overrides the declared schemas (optional)
	Pipeline features.Config
	// NullTokens overrides the CSV null tokens (optional)
	NullTokens []string
	// Metrics receives stage and run metrics (optional)
	Metrics *metrics.Collector
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		logger:   logger,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		train:    DefaultTrainOptions(),
		pipeline: cfg.Pipeline,
		csv:      tabular.Options{NullTokens: cfg.NullTokens},
	}
	if cfg.Train != nil {
		e.train = *cfg.Train
	}
	e.pipeline.Logger = logger
	if e.metrics != nil {
		e.pipeline.Observer = e.metrics
	}

	if e.store == nil {
		path := cfg.StatePath
		if path == "" {
			path = ":memory:"
		}
		logger.Debug("initializing engine", "state", path)

		store := state.NewSQLiteStore(logger)
		if err := store.Open(path); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		if err := store.InitSchema(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize state schema: %w", err)
		}
		e.store = store
		e.ownsStore = true
	}

	return e, nil
}

// Close releases the state store if the engine opened it.
func (e *Engine) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Store returns the run history store.
func (e *Engine) Store() core.Store {
	return e.store
}

// Metrics returns the metrics collector, or nil.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

// track records fn as a run of kind. The run is completed with the output
// path fn returns, or failed with its error.
func (e *Engine) track(kind core.RunKind, input string, fn func(run *core.Run) (string, error)) error {
	run, err := e.store.CreateRun(kind, input)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	output, runErr := fn(run)

	status := core.RunStatusCompleted
	msg := ""
	if runErr != nil {
		status = core.RunStatusFailed
		msg = runErr.Error()
	}
	if err := e.store.CompleteRun(run.ID, status, output, msg); err != nil {
		e.logger.Warn("failed to complete run", "id", run.ID, "error", err)
	}
	if e.metrics != nil {
		e.metrics.RecordRun(string(kind), string(status))
	}

	if runErr != nil {
		e.logger.Debug("run failed", "id", run.ID, "kind", string(kind), "error", runErr)
		return runErr
	}
	e.logger.Debug("run completed", "id", run.ID, "kind", string(kind))
	return nil
}

// recordStages stores the stage row counts of a pipeline result.
func (e *Engine) recordStages(runID string, res *features.Result) {
	for i, s := range res.Stages {
		err := e.store.RecordStage(&core.StageRun{
			RunID:    runID,
			Seq:      i,
			Stage:    s.Name,
			RowsIn:   s.RowsIn,
			RowsOut:  s.RowsOut,
			Columns:  len(s.Table.Columns),
			Duration: s.Elapsed,
		})
		if err != nil {
			e.logger.Warn("failed to record stage", "stage", s.Name, "error", err)
		}
	}
}
