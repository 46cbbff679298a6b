package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapprice/internal/testutil"
)

func TestDefaultGridCandidates(t *testing.T) {
	c := DefaultGrid().Candidates()
	require.Len(t, c, 81)
	assert.Equal(t, Params{NEstimators: 100, MaxDepth: 10, MinSamplesSplit: 2, MinSamplesLeaf: 1}, c[0])
	assert.Equal(t, Params{NEstimators: 100, MaxDepth: 10, MinSamplesSplit: 2, MinSamplesLeaf: 2}, c[1])
	assert.Equal(t, Params{NEstimators: 300, MaxDepth: 0, MinSamplesSplit: 10, MinSamplesLeaf: 4}, c[80])
}

func TestGridValidate(t *testing.T) {
	assert.NoError(t, DefaultGrid().Validate())

	g := DefaultGrid()
	g.MaxDepth = nil
	assert.Error(t, g.Validate())

	g = DefaultGrid()
	g.NEstimators = []int{0}
	assert.Error(t, g.Validate())
}

func TestGridSearchPrefersDeeperTrees(t *testing.T) {
	X, y := linearData(60)

	s := &GridSearch{
		Grid: Grid{
			NEstimators:     []int{5},
			MaxDepth:        []int{1, 0},
			MinSamplesSplit: []int{2},
			MinSamplesLeaf:  []int{1},
		},
		Folds:   3,
		Workers: 4,
		Seed:    42,
		Logger:  testutil.NewTestLogger(t),
	}
	res, err := s.Fit(context.Background(), X, y)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Best.MaxDepth)
	require.Len(t, res.Scores, 2)
	assert.Len(t, res.Scores[0].FoldMAE, 3)
	assert.Less(t, res.Scores[1].MeanMAE, res.Scores[0].MeanMAE)
	assert.Equal(t, res.Scores[1].MeanMAE, res.BestScore)

	require.NotNil(t, res.Model)
	assert.Len(t, res.Model.Trees, 5)
	assert.Equal(t, res.Best, res.Model.Params)
}

func TestGridSearchTieGoesToFirstCandidate(t *testing.T) {
	X, y := stepData()

	// both depths grow identical stumps on two-valued data
	s := &GridSearch{
		Grid: Grid{
			NEstimators:     []int{3},
			MaxDepth:        []int{6, 5},
			MinSamplesSplit: []int{2},
			MinSamplesLeaf:  []int{1},
		},
		Folds: 2,
		Seed:  1,
	}
	res, err := s.Fit(context.Background(), X, y)
	require.NoError(t, err)

	assert.Equal(t, res.Scores[0].MeanMAE, res.Scores[1].MeanMAE)
	assert.Equal(t, 6, res.Best.MaxDepth)
}

func TestGridSearchErrors(t *testing.T) {
	X, y := linearData(10)

	s := &GridSearch{Grid: Grid{}, Folds: 2}
	_, err := s.Fit(context.Background(), X, y)
	assert.Error(t, err, "empty grid")

	s = &GridSearch{Grid: DefaultGrid(), Folds: 20}
	_, err = s.Fit(context.Background(), X, y)
	assert.Error(t, err, "more folds than rows")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s = &GridSearch{Grid: Grid{NEstimators: []int{2}, MaxDepth: []int{0}, MinSamplesSplit: []int{2}, MinSamplesLeaf: []int{1}}, Folds: 2}
	_, err = s.Fit(ctx, X, y)
	assert.ErrorIs(t, err, context.Canceled)
}
