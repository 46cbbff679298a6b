package features

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapprice/pkg/core"
)

// Stage names, in execution order.
const (
	StageNullsPre   = "nulls_pre"
	StageOrdinal    = "ordinal"
	StageNominal    = "nominal"
	StageTarget     = "target"
	StageNullsFinal = "nulls_final"
)

// StageObserver receives row counts after every stage.
type StageObserver interface {
	ObserveStage(stage string, rowsIn, rowsOut int, elapsed time.Duration)
}

// Config holds pipeline configuration. Zero values select the declared
// schemas and policies.
type Config struct {
	Ordinal        OrdinalSchema
	NominalColumns []string
	TargetColumn   string
	PreEncode      *NullPolicy
	FinalSweep     *NullPolicy
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Observer is notified after each stage (optional)
	Observer StageObserver
}

// Pipeline sequences the feature stages. A Pipeline holds no mutable state
// and may be shared between goroutines.
type Pipeline struct {
	ordinal    OrdinalSchema
	nominal    []string
	target     string
	preEncode  NullPolicy
	finalSweep NullPolicy
	logger     *slog.Logger
	observer   StageObserver
}

// StageResult is the table produced by one stage.
type StageResult struct {
	Name    string
	Table   core.Table
	RowsIn  int
	RowsOut int
	Elapsed time.Duration
}

// Result is the output of Pipeline.Run.
type Result struct {
	Table         core.Table
	Stages        []StageResult
	TargetApplied bool
}

// Stage returns the named stage result.
func (r *Result) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		ordinal:    cfg.Ordinal,
		nominal:    cfg.NominalColumns,
		target:     cfg.TargetColumn,
		preEncode:  PreEncodePolicy,
		finalSweep: FinalSweepPolicy,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
	}
	if p.ordinal == nil {
		p.ordinal = DeclaredOrdinalSchema()
	}
	if p.nominal == nil {
		p.nominal = DeclaredNominalColumns()
	}
	if p.target == "" {
		p.target = TargetColumn
	}
	if cfg.PreEncode != nil {
		p.preEncode = *cfg.PreEncode
	}
	if cfg.FinalSweep != nil {
		p.finalSweep = *cfg.FinalSweep
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Run transforms raw rows into a feature table. The target stage runs only
// when the target column is present, so the same pipeline serves training
// and inference data.
func (p *Pipeline) Run(ctx context.Context, raw core.Table) (*Result, error) {
	res := &Result{}
	cur := raw

	type step struct {
		name string
		fn   func(core.Table) (core.Table, error)
	}
	steps := []step{
		{StageNullsPre, p.applyPolicy(p.preEncode)},
		{StageOrdinal, func(t core.Table) (core.Table, error) { return EncodeOrdinal(t, p.ordinal) }},
		{StageNominal, func(t core.Table) (core.Table, error) { return EncodeNominal(t, p.nominal), nil }},
	}
	if raw.HasColumn(p.target) {
		res.TargetApplied = true
		steps = append(steps, step{StageTarget, func(t core.Table) (core.Table, error) { return TransformTarget(t, p.target) }})
	} else {
		p.logger.Debug("target column absent, skipping target transform", "column", p.target)
	}
	steps = append(steps, step{StageNullsFinal, p.applyPolicy(p.finalSweep)})

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		next, err := s.fn(cur)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", s.name, err)
		}
		elapsed := time.Since(start)

		sr := StageResult{Name: s.name, Table: next, RowsIn: cur.Len(), RowsOut: next.Len(), Elapsed: elapsed}
		res.Stages = append(res.Stages, sr)
		if p.observer != nil {
			p.observer.ObserveStage(s.name, sr.RowsIn, sr.RowsOut, elapsed)
		}

		p.logger.Debug("stage complete",
			slog.String("stage", s.name),
			slog.Int("rows_in", sr.RowsIn),
			slog.Int("rows_out", sr.RowsOut),
			slog.Int("columns", len(next.Columns)))
		if sr.RowsOut < sr.RowsIn {
			p.logger.Info("rows dropped", "stage", s.name, "dropped", sr.RowsIn-sr.RowsOut, "remaining", sr.RowsOut)
		}

		if next.Len() == 0 {
			return nil, &core.EmptyResultError{Stage: s.name}
		}
		cur = next
	}

	res.Table = cur
	return res, nil
}

func (p *Pipeline) applyPolicy(policy NullPolicy) func(core.Table) (core.Table, error) {
	return func(t core.Table) (core.Table, error) {
		out, report := policy.Apply(t)
		if len(report.DroppedColumns) > 0 || report.FilledCells > 0 {
			p.logger.Debug("null policy applied",
				"policy", policy.Name,
				"filled", report.FilledCells,
				"dropped_columns", report.DroppedColumns)
		}
		return out, nil
	}
}
