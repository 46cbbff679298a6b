package model

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TreeParams controls the growth of a regression tree.
type TreeParams struct {
	MaxDepth        int // 0 => no limit
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 => all features
}

// Node is one node of a regression tree. Fields are exported for gob.
type Node struct {
	Leaf      bool
	Value     float64 // mean target of the samples reaching the node
	Feature   int
	Threshold float64 // x[Feature] <= Threshold goes left
	Left      *Node
	Right     *Node
}

// Tree is a CART regression tree split on squared-error reduction.
type Tree struct {
	Params   TreeParams
	Seed     int64
	Features int
	Root     *Node
}

// NewTree returns an unfitted tree.
func NewTree(params TreeParams, seed int64) *Tree {
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}
	if params.MinSamplesLeaf < 1 {
		params.MinSamplesLeaf = 1
	}
	return &Tree{Params: params, Seed: seed}
}

// Fit grows the tree on all rows of X.
func (t *Tree) Fit(X mat.Matrix, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return err
	}
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	return t.grow(rowViews(X), p, y, idx)
}

// grow builds the tree on the rows listed in idx; repeated indices act as
// bootstrap weights.
func (t *Tree) grow(rows [][]float64, p int, y []float64, idx []int) error {
	if len(idx) == 0 {
		return errors.New("tree: no samples")
	}
	t.Features = p
	rnd := rand.New(rand.NewSource(t.Seed))
	t.Root = t.build(rows, y, append([]int(nil), idx...), 0, rnd)
	return nil
}

// Predict returns one prediction per row of X.
func (t *Tree) Predict(X mat.Matrix) ([]float64, error) {
	if t.Root == nil {
		return nil, errors.New("tree: not fitted")
	}
	r, c := dims(X)
	if r == 0 {
		return []float64{}, nil
	}
	if c != t.Features {
		return nil, fmt.Errorf("tree: X has %d features, want %d", c, t.Features)
	}
	out := make([]float64, r)
	for i, x := range rowViews(X) {
		out[i] = t.predictOne(x)
	}
	return out, nil
}

func (t *Tree) predictOne(x []float64) float64 {
	n := t.Root
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// Depth returns the depth of the deepest leaf (root = 0).
func (t *Tree) Depth() int {
	var walk func(*Node) int
	walk = func(n *Node) int {
		if n == nil || n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(t.Root)
}

func (t *Tree) build(X [][]float64, y []float64, idx []int, depth int, rnd *rand.Rand) *Node {
	node := &Node{Value: mean(y, idx)}

	if len(idx) < t.Params.MinSamplesSplit ||
		len(idx) < 2*t.Params.MinSamplesLeaf ||
		(t.Params.MaxDepth > 0 && depth >= t.Params.MaxDepth) ||
		constant(y, idx) {
		node.Leaf = true
		return node
	}

	best, ok := t.bestSplit(X, y, idx, rnd)
	if !ok {
		node.Leaf = true
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = t.build(X, y, left, depth+1, rnd)
	node.Right = t.build(X, y, right, depth+1, rnd)
	return node
}

type split struct {
	feature   int
	threshold float64
	score     float64 // squared error of the children, lower is better
}

// bestSplit scans candidate features with prefix sums over sorted values.
func (t *Tree) bestSplit(X [][]float64, y []float64, idx []int, rnd *rand.Rand) (split, bool) {
	features := rnd.Perm(t.Features)
	if t.Params.MaxFeatures > 0 && t.Params.MaxFeatures < t.Features {
		features = features[:t.Params.MaxFeatures]
	}
	// keep scan order stable so ties resolve to the lowest feature index
	sort.Ints(features)

	n := len(idx)
	minLeaf := t.Params.MinSamplesLeaf
	order := make([]int, n)

	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}

	best := split{score: totalSq - total*total/float64(n)}
	found := false

	for _, f := range features {
		copy(order, idx)
		sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			v := y[order[k]]
			leftSum += v
			leftSq += v * v

			nl := k + 1
			nr := n - nl
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			cur, next := X[order[k]][f], X[order[k+1]][f]
			if cur == next {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			score := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if score < best.score-1e-12 {
				best = split{feature: f, threshold: midpoint(cur, next), score: score}
				found = true
			}
		}
	}

	return best, found
}

// midpoint returns a threshold in [lo, hi) so that lo goes left and hi goes
// right, even when the two values are adjacent floats.
func midpoint(lo, hi float64) float64 {
	m := lo + (hi-lo)/2
	if m >= hi {
		return lo
	}
	return m
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = y[i]
	}
	return stat.Mean(vals, nil)
}

func constant(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
