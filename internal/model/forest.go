package model

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Params are the forest hyperparameters searched by GridSearch.
type Params struct {
	NEstimators     int `json:"n_estimators" yaml:"n_estimators"`
	MaxDepth        int `json:"max_depth" yaml:"max_depth"` // 0 => unlimited
	MinSamplesSplit int `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	MaxFeatures     int `json:"max_features" yaml:"max_features"` // 0 => all features
}

// String renders the params for logs and tables.
func (p Params) String() string {
	depth := "none"
	if p.MaxDepth > 0 {
		depth = fmt.Sprint(p.MaxDepth)
	}
	return fmt.Sprintf("n_estimators=%d max_depth=%s min_samples_split=%d min_samples_leaf=%d",
		p.NEstimators, depth, p.MinSamplesSplit, p.MinSamplesLeaf)
}

// DefaultParams mirrors the usual random forest defaults.
func DefaultParams() Params {
	return Params{NEstimators: 100, MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// Forest is a bagged ensemble of regression trees; predictions are the mean
// of the tree predictions.
type Forest struct {
	Params    Params
	Seed      int64
	Bootstrap bool
	Trees     []*Tree
	// Workers bounds concurrent tree fitting (0 => GOMAXPROCS).
	Workers int
}

// ForestOption configures a Forest.
type ForestOption func(*Forest)

// WithSeed sets the random seed; tree i uses Seed+i.
func WithSeed(seed int64) ForestOption { return func(f *Forest) { f.Seed = seed } }

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) ForestOption { return func(f *Forest) { f.Bootstrap = b } }

// WithWorkers bounds the number of trees fitted concurrently.
func WithWorkers(n int) ForestOption { return func(f *Forest) { f.Workers = n } }

// NewForest returns an unfitted forest.
func NewForest(params Params, opts ...ForestOption) *Forest {
	if params.NEstimators <= 0 {
		params.NEstimators = DefaultParams().NEstimators
	}
	f := &Forest{Params: params, Seed: 60, Bootstrap: true}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains every tree. Trees are fitted concurrently; each tree draws its
// bootstrap sample from its own seeded source so the result does not depend
// on scheduling.
func (f *Forest) Fit(X mat.Matrix, y []float64) error {
	return f.FitContext(context.Background(), X, y)
}

// FitContext is Fit with cancellation.
func (f *Forest) FitContext(ctx context.Context, X mat.Matrix, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("forest: %w", err)
	}

	rows := rowViews(X)
	n := len(rows)
	trees := make([]*Tree, f.Params.NEstimators)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(f.Workers))
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seed := f.Seed + int64(i)
			rnd := rand.New(rand.NewSource(seed))

			idx := make([]int, n)
			for j := range idx {
				if f.Bootstrap {
					idx[j] = rnd.Intn(n)
				} else {
					idx[j] = j
				}
			}

			tree := NewTree(TreeParams{
				MaxDepth:        f.Params.MaxDepth,
				MinSamplesSplit: f.Params.MinSamplesSplit,
				MinSamplesLeaf:  f.Params.MinSamplesLeaf,
				MaxFeatures:     f.Params.MaxFeatures,
			}, seed)
			if err := tree.grow(rows, p, y, idx); err != nil {
				return fmt.Errorf("forest: tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.Trees = trees
	return nil
}

// Predict averages the tree predictions for every row of X.
func (f *Forest) Predict(X mat.Matrix) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, errors.New("forest: not fitted")
	}

	r, _ := dims(X)
	out := make([]float64, r)
	for _, t := range f.Trees {
		preds, err := t.Predict(X)
		if err != nil {
			return nil, fmt.Errorf("forest: %w", err)
		}
		floats.Add(out, preds)
	}
	floats.Scale(1/float64(len(f.Trees)), out)
	return out, nil
}

func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
