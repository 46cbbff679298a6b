package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Grid lists the candidate values for each searched hyperparameter.
// A MaxDepth of 0 means unlimited depth.
type Grid struct {
	NEstimators     []int `json:"n_estimators" yaml:"n_estimators" koanf:"n_estimators"`
	MaxDepth        []int `json:"max_depth" yaml:"max_depth" koanf:"max_depth"`
	MinSamplesSplit []int `json:"min_samples_split" yaml:"min_samples_split" koanf:"min_samples_split"`
	MinSamplesLeaf  []int `json:"min_samples_leaf" yaml:"min_samples_leaf" koanf:"min_samples_leaf"`
}

// DefaultGrid is the 81-candidate grid used by train.
func DefaultGrid() Grid {
	return Grid{
		NEstimators:     []int{100, 200, 300},
		MaxDepth:        []int{10, 20, 0},
		MinSamplesSplit: []int{2, 5, 10},
		MinSamplesLeaf:  []int{1, 2, 4},
	}
}

// Validate checks that every axis has at least one value.
func (g Grid) Validate() error {
	switch {
	case len(g.NEstimators) == 0:
		return errors.New("grid: n_estimators is empty")
	case len(g.MaxDepth) == 0:
		return errors.New("grid: max_depth is empty")
	case len(g.MinSamplesSplit) == 0:
		return errors.New("grid: min_samples_split is empty")
	case len(g.MinSamplesLeaf) == 0:
		return errors.New("grid: min_samples_leaf is empty")
	}
	for _, n := range g.NEstimators {
		if n <= 0 {
			return fmt.Errorf("grid: n_estimators must be positive, got %d", n)
		}
	}
	return nil
}

// Candidates expands the grid in a fixed order: n_estimators varies
// slowest, min_samples_leaf fastest.
func (g Grid) Candidates() []Params {
	out := make([]Params, 0, len(g.NEstimators)*len(g.MaxDepth)*len(g.MinSamplesSplit)*len(g.MinSamplesLeaf))
	for _, n := range g.NEstimators {
		for _, d := range g.MaxDepth {
			for _, s := range g.MinSamplesSplit {
				for _, l := range g.MinSamplesLeaf {
					out = append(out, Params{NEstimators: n, MaxDepth: d, MinSamplesSplit: s, MinSamplesLeaf: l})
				}
			}
		}
	}
	return out
}

// GridSearch selects forest hyperparameters by k-fold cross-validated MAE.
type GridSearch struct {
	Grid    Grid
	Folds   int
	Workers int
	Seed    int64
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// CandidateScore is the cross-validation result of one candidate.
type CandidateScore struct {
	Params  Params
	FoldMAE []float64
	MeanMAE float64
}

// SearchResult is the outcome of a grid search.
type SearchResult struct {
	Best      Params
	BestScore float64
	Scores    []CandidateScore
	Model     *Forest
	Elapsed   time.Duration
}

// Fit cross-validates every candidate, picks the lowest mean MAE (ties go to
// the earlier candidate) and refits the winner on all of X.
func (s *GridSearch) Fit(ctx context.Context, X mat.Matrix, y []float64) (*SearchResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := s.Grid.Validate(); err != nil {
		return nil, err
	}
	if _, err := checkXY(X, y); err != nil {
		return nil, err
	}

	start := time.Now()
	folds, err := KFold(len(y), s.Folds, s.Seed)
	if err != nil {
		return nil, err
	}
	candidates := s.Grid.Candidates()
	scores := make([]CandidateScore, len(candidates))
	for i, c := range candidates {
		scores[i] = CandidateScore{Params: c, FoldMAE: make([]float64, len(folds))}
	}

	logger.Info("grid search started",
		"candidates", len(candidates),
		"folds", len(folds),
		"fits", len(candidates)*len(folds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(s.Workers))
	for ci := range candidates {
		for fi, fold := range folds {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				trainX, trainY := Take(X, y, fold.Train)
				testX, testY := Take(X, y, fold.Test)

				forest := NewForest(candidates[ci], WithSeed(s.Seed), WithWorkers(1))
				if err := forest.FitContext(gctx, trainX, trainY); err != nil {
					return fmt.Errorf("candidate %s fold %d: %w", candidates[ci], fi, err)
				}
				pred, err := forest.Predict(testX)
				if err != nil {
					return err
				}
				mae, err := MAE(testY, pred)
				if err != nil {
					return err
				}
				scores[ci].FoldMAE[fi] = mae
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := range scores {
		scores[i].MeanMAE = stat.Mean(scores[i].FoldMAE, nil)
		if scores[i].MeanMAE < scores[best].MeanMAE {
			best = i
		}
	}

	logger.Info("best candidate selected",
		"params", scores[best].Params.String(),
		"cv_mae", scores[best].MeanMAE)

	final := NewForest(scores[best].Params, WithSeed(s.Seed), WithWorkers(s.Workers))
	if err := final.FitContext(ctx, X, y); err != nil {
		return nil, fmt.Errorf("refit best candidate: %w", err)
	}

	return &SearchResult{
		Best:      scores[best].Params,
		BestScore: scores[best].MeanMAE,
		Scores:    scores,
		Model:     final,
		Elapsed:   time.Since(start),
	}, nil
}
