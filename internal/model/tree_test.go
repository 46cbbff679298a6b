package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// column builds a one-feature matrix.
func column(vals ...float64) *mat.Dense {
	return mat.NewDense(len(vals), 1, vals)
}

func stepData() (*mat.Dense, []float64) {
	X := mat.NewDense(10, 1, nil)
	y := make([]float64, 10)
	for i := range y {
		X.Set(i, 0, float64(i))
		if i < 5 {
			y[i] = 1
		} else {
			y[i] = 10
		}
	}
	return X, y
}

func TestTreeFitsStepFunction(t *testing.T) {
	X, y := stepData()

	tree := NewTree(TreeParams{}, 1)
	require.NoError(t, tree.Fit(X, y))

	pred, err := tree.Predict(column(0, 4, 4.4, 4.6, 9, 100))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 10, 10, 10}, pred)
	assert.Equal(t, 1, tree.Depth())
	assert.Equal(t, 0, tree.Root.Feature)
	assert.InDelta(t, 4.5, tree.Root.Threshold, 1e-12)
}

func TestTreeConstantTargetIsLeaf(t *testing.T) {
	X := column(1, 2, 3)
	y := []float64{7, 7, 7}

	tree := NewTree(TreeParams{}, 1)
	require.NoError(t, tree.Fit(X, y))

	assert.True(t, tree.Root.Leaf)
	assert.Equal(t, 0, tree.Depth())
	pred, err := tree.Predict(column(42))
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, pred)
}

func TestTreeMaxDepth(t *testing.T) {
	X := mat.NewDense(32, 1, nil)
	y := make([]float64, 32)
	for i := range y {
		X.Set(i, 0, float64(i))
		y[i] = float64(i * i)
	}

	tree := NewTree(TreeParams{MaxDepth: 2}, 1)
	require.NoError(t, tree.Fit(X, y))
	assert.LessOrEqual(t, tree.Depth(), 2)

	unlimited := NewTree(TreeParams{}, 1)
	require.NoError(t, unlimited.Fit(X, y))
	assert.Greater(t, unlimited.Depth(), 2)
}

func TestTreeMinSamplesLeaf(t *testing.T) {
	X, y := stepData()

	tree := NewTree(TreeParams{MinSamplesLeaf: 6}, 1)
	require.NoError(t, tree.Fit(X, y))

	// no split can leave six rows on both sides of ten
	assert.True(t, tree.Root.Leaf)
	assert.InDelta(t, 5.5, tree.Root.Value, 1e-12)
}

func TestTreePicksInformativeFeature(t *testing.T) {
	X := mat.NewDense(8, 2, []float64{
		0, 3, 1, 1, 0, 2, 1, 0,
		0, 7, 1, 9, 0, 8, 1, 6,
	})
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	tree := NewTree(TreeParams{}, 1)
	require.NoError(t, tree.Fit(X, y))

	assert.Equal(t, 1, tree.Root.Feature)
	assert.InDelta(t, 4.5, tree.Root.Threshold, 1e-12)
}

func TestTreeErrors(t *testing.T) {
	tree := NewTree(TreeParams{}, 1)

	_, err := tree.Predict(column(1))
	assert.Error(t, err, "unfitted tree")

	assert.Error(t, tree.Fit(nil, nil))
	assert.Error(t, tree.Fit(&mat.Dense{}, nil))
	assert.Error(t, tree.Fit(column(1, 2), []float64{1}))

	X, y := stepData()
	require.NoError(t, tree.Fit(X, y))
	_, err = tree.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Error(t, err, "wrong feature count")
}

func TestTreeSplitsAdjacentValues(t *testing.T) {
	lo := math.Nextafter(1, 2)
	hi := math.Nextafter(lo, 2)

	tree := NewTree(TreeParams{}, 1)
	require.NoError(t, tree.Fit(column(lo, hi), []float64{0, 10}))

	require.False(t, tree.Root.Leaf)
	assert.Less(t, tree.Root.Threshold, hi)
	pred, err := tree.Predict(column(lo, hi))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10}, pred)
}

func TestMidpoint(t *testing.T) {
	assert.Equal(t, 4.5, midpoint(4, 5))

	lo := math.Nextafter(1, 2)
	hi := math.Nextafter(lo, 2)
	m := midpoint(lo, hi)
	assert.GreaterOrEqual(t, m, lo)
	assert.Less(t, m, hi)
}
