package canopy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/prng"
	"github.com/canopyml/canopy/tree"
)

// Defaults applied by NewTrainer.
const (
	DefaultTrees            = 100
	DefaultMaxDepth         = 1000
	DefaultMinLeafInstances = 2
	DefaultThreads          = 1
)

/*
Trainer holds the parameters of a forest training run.
*/
type Trainer struct {
	TargetIndex int
	Trees       int
	Threads     int
	Seed        uint32
	// MaxDepth bounds every grown tree, 0 for unlimited.
	MaxDepth         int
	MinLeafInstances int
	// FeaturesPerSplit is the number of features drawn at random for
	// every split, 0 to consider all of them.
	FeaturesPerSplit int
	ComputeOOB       bool
	Log              Logger
}

/*
NewTrainer returns a trainer predicting the given feature with the
default parameters. FeaturesPerSplit is left at 0, which considers
every feature at every split.
*/
func NewTrainer(targetIndex int) *Trainer {
	return &Trainer{
		TargetIndex:      targetIndex,
		Trees:            DefaultTrees,
		Threads:          DefaultThreads,
		Seed:             prng.DefaultSeed,
		MaxDepth:         DefaultMaxDepth,
		MinLeafInstances: DefaultMinLeafInstances,
	}
}

/*
Train grows a forest over the given dataset. Work is split statically
over the configured number of worker goroutines: every worker grows a
fixed share of the trees, with the remainder going to the first one,
and draws from its own random stream seeded with the trainer's seed
plus the worker index. Workers share nothing mutable, so a run with
the same dataset, parameters and thread count always grows the same
forest. Worker failures surface only after every worker has finished.

The context is checked between trees, so a canceled context aborts
the run early with its error.
*/
func (t *Trainer) Train(ctx context.Context, d *dataset.Dataset) (*Forest, error) {
	if d == nil || len(d.Instances) == 0 {
		return nil, fmt.Errorf("cannot train a forest over an empty dataset")
	}
	if t.TargetIndex < 0 || t.TargetIndex >= len(d.Definition) {
		return nil, fmt.Errorf("target feature index %d out of range for a definition with %d features", t.TargetIndex, len(d.Definition))
	}
	if t.Trees < 1 {
		return nil, fmt.Errorf("number of trees must be at least 1, got %d", t.Trees)
	}
	if t.Threads < 1 {
		return nil, fmt.Errorf("number of threads must be at least 1, got %d", t.Threads)
	}
	if t.Threads > t.Trees {
		return nil, fmt.Errorf("cannot split %d trees over %d threads", t.Trees, t.Threads)
	}
	kind, err := d.Definition.ModelKindFor(t.TargetIndex)
	if err != nil {
		return nil, err
	}
	featuresPerSplit := t.FeaturesPerSplit
	if featuresPerSplit == 0 {
		featuresPerSplit = len(d.Definition) - 1
	}
	forest := &Forest{
		TargetIndex:      t.TargetIndex,
		ModelKind:        kind,
		Trees:            make([]*tree.Tree, t.Trees),
		OOB:              make([][]int, t.Trees),
		Seed:             t.Seed,
		Threads:          t.Threads,
		MaxDepth:         t.MaxDepth,
		MinLeafInstances: t.MinLeafInstances,
		FeaturesPerSplit: featuresPerSplit,
		WithOOB:          t.ComputeOOB,
		Log:              t.Log,
	}
	perWorker := t.Trees / t.Threads
	remainder := t.Trees % t.Threads
	var g errgroup.Group
	start := 0
	for worker := 0; worker < t.Threads; worker++ {
		count := perWorker
		if worker == 0 {
			count += remainder
		}
		worker, count := worker, count
		offset := start
		g.Go(func() error {
			rng := prng.New(t.Seed + uint32(worker))
			builder := &tree.Builder{
				TargetIndex:      t.TargetIndex,
				MaxDepth:         t.MaxDepth,
				MinLeafInstances: t.MinLeafInstances,
				FeaturesPerSplit: featuresPerSplit,
				RNG:              rng,
				Log:              t.Log,
			}
			for i := 0; i < count; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				indices, oob := bootstrap(rng, len(d.Instances))
				grown, err := builder.Build(d.View(indices))
				if err != nil {
					return fmt.Errorf("worker %d could not grow tree %d: %v", worker, offset+i, err)
				}
				forest.Trees[offset+i] = grown
				forest.OOB[offset+i] = oob
			}
			return nil
		})
		start += count
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return forest, nil
}
