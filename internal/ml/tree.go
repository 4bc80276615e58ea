package ml

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

type TreeOptions struct {
	MinLeaf  int
	MaxDepth int // 0 means unlimited
	// MaxFeatures is the number of features drawn at each split, 0 means all.
	MaxFeatures int
}

type treeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// RegressionTree is a CART tree splitting on squared error. Samples with
// x[Feature] <= Threshold go left.
type RegressionTree struct {
	opts  TreeOptions
	nodes []treeNode
}

func NewRegressionTree(opts TreeOptions) *RegressionTree {
	if opts.MinLeaf < 1 {
		opts.MinLeaf = 1
	}
	return &RegressionTree{opts: opts}
}

func (t *RegressionTree) Fit(X [][]float64, y []float64) error {
	if err := validateTraining(X, y); err != nil {
		return err
	}
	samples := make([]int, len(y))
	for i := range samples {
		samples[i] = i
	}
	t.fit(X, y, samples, rand.New(rand.NewPCG(0, 0)))
	return nil
}

func (t *RegressionTree) fit(X [][]float64, y []float64, samples []int, rng *rand.Rand) {
	t.nodes = t.nodes[:0]
	t.build(X, y, samples, 0, rng)
}

func (t *RegressionTree) Predict(x []float64) float64 {
	if len(t.nodes) == 0 {
		return math.NaN()
	}
	i := 0
	for !t.nodes[i].Leaf {
		if x[t.nodes[i].Feature] <= t.nodes[i].Threshold {
			i = t.nodes[i].Left
		} else {
			i = t.nodes[i].Right
		}
	}
	return t.nodes[i].Value
}

func (t *RegressionTree) Depth() int {
	if len(t.nodes) == 0 {
		return 0
	}
	var walk func(i int) int
	walk = func(i int) int {
		if t.nodes[i].Leaf {
			return 0
		}
		return 1 + max(walk(t.nodes[i].Left), walk(t.nodes[i].Right))
	}
	return walk(0)
}

func (t *RegressionTree) build(X [][]float64, y []float64, samples []int, depth int, rng *rand.Rand) int {
	sum, sumSq := 0.0, 0.0
	for _, s := range samples {
		sum += y[s]
		sumSq += y[s] * y[s]
	}
	n := float64(len(samples))
	idx := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{Leaf: true, Value: sum / n})

	impurity := sumSq - sum*sum/n
	if len(samples) < 2*t.opts.MinLeaf || impurity <= 1e-12 {
		return idx
	}
	if t.opts.MaxDepth > 0 && depth >= t.opts.MaxDepth {
		return idx
	}

	feature, threshold, ok := t.bestSplit(X, y, samples, impurity, rng)
	if !ok {
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if X[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := t.build(X, y, left, depth+1, rng)
	r := t.build(X, y, right, depth+1, rng)
	t.nodes[idx] = treeNode{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return idx
}

func (t *RegressionTree) bestSplit(X [][]float64, y []float64, samples []int, impurity float64, rng *rand.Rand) (int, float64, bool) {
	nFeatures := len(X[samples[0]])
	features := rng.Perm(nFeatures)
	if t.opts.MaxFeatures > 0 && t.opts.MaxFeatures < nFeatures {
		features = features[:t.opts.MaxFeatures]
	}

	bestFeature, bestThreshold, bestScore := -1, 0.0, impurity
	sorted := make([]int, len(samples))
	n := len(samples)

	for _, f := range features {
		copy(sorted, samples)
		sort.SliceStable(sorted, func(a, b int) bool {
			return X[sorted[a]][f] < X[sorted[b]][f]
		})

		totalSum, totalSq := 0.0, 0.0
		for _, s := range sorted {
			totalSum += y[s]
			totalSq += y[s] * y[s]
		}

		leftSum, leftSq := 0.0, 0.0
		for i := 0; i < n-1; i++ {
			v := y[sorted[i]]
			leftSum += v
			leftSq += v * v

			nl, nr := float64(i+1), float64(n-i-1)
			if i+1 < t.opts.MinLeaf || n-i-1 < t.opts.MinLeaf {
				continue
			}
			lo, hi := X[sorted[i]][f], X[sorted[i+1]][f]
			if lo == hi {
				continue
			}

			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			score := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if score < bestScore-1e-12 {
				bestFeature, bestThreshold, bestScore = f, lo+(hi-lo)/2, score
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func validateTraining(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: empty training set", ErrModelFit)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d feature rows for %d targets", ErrModelFit, len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return fmt.Errorf("%w: feature rows are empty", ErrModelFit)
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrModelFit, i, len(row), width)
		}
	}
	return nil
}
