package ml

import (
	"math"
	"math/rand/v2"

	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
)

type ForestOptions struct {
	Trees       int
	Seed        uint64
	MinLeaf     int
	MaxDepth    int
	MaxFeatures int
	// Workers above 1 grows trees on a worker pool. Results do not depend on it.
	Workers      int
	ShowProgress bool
}

func DefaultForestOptions() ForestOptions {
	return ForestOptions{
		Trees:   200,
		Seed:    42,
		MinLeaf: 1,
		Workers: 1,
	}
}

// RandomForest averages regression trees grown on bootstrap samples of the
// training rows. Tree i draws from its own generator seeded with (Seed, i).
type RandomForest struct {
	opts  ForestOptions
	trees []*RegressionTree
}

func NewRandomForest(opts ForestOptions) *RandomForest {
	if opts.Trees < 1 {
		opts.Trees = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &RandomForest{opts: opts}
}

func (f *RandomForest) Fit(X [][]float64, y []float64) error {
	if err := validateTraining(X, y); err != nil {
		return err
	}

	var progressBar *progressbar.ProgressBar
	if f.opts.ShowProgress {
		progressBar = progressbar.Default(int64(f.opts.Trees), "Training forest")
	} else {
		progressBar = progressbar.DefaultSilent(int64(f.opts.Trees), "Training forest")
	}

	trees := make([]*RegressionTree, f.opts.Trees)
	grow := func(i int) {
		rng := rand.New(rand.NewPCG(f.opts.Seed, uint64(i)))
		samples := make([]int, len(y))
		for j := range samples {
			samples[j] = rng.IntN(len(y))
		}
		tree := NewRegressionTree(TreeOptions{
			MinLeaf:     f.opts.MinLeaf,
			MaxDepth:    f.opts.MaxDepth,
			MaxFeatures: f.opts.MaxFeatures,
		})
		tree.fit(X, y, samples, rng)
		trees[i] = tree
		progressBar.Add(1)
	}

	if f.opts.Workers <= 1 {
		for i := range trees {
			grow(i)
		}
	} else {
		wp := workerpool.New(f.opts.Workers)
		for i := range trees {
			wp.Submit(func() { grow(i) })
		}
		wp.StopWait()
	}
	progressBar.Finish()

	f.trees = trees
	return nil
}

func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.Predict(x)
	}
	return sum / float64(len(f.trees))
}

func (f *RandomForest) Size() int {
	return len(f.trees)
}
