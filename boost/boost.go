/*
Package boost trains gradient boosted ensembles of regression trees.

Boosting grows shallow trees one after another, each one predicting
the residual error the ensemble so far leaves on the training set.
Every iteration draws a random subsample of the instances, grows a
depth-limited tree over it with leaf instance retention, and walks
the retained leaf lists to push the sampled residuals down by a
fraction of each leaf's prediction. Instances left out of the
subsample are updated through ordinary tree evaluation instead.
*/
package boost

import (
	"context"
	"fmt"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/prng"
	"github.com/canopyml/canopy/tree"
)

// Defaults applied by NewBooster.
const (
	DefaultIterations   = 50
	DefaultLearningRate = 0.1
	DefaultMaxDepth     = 3
	DefaultSubsample    = 0.5
)

/*
Model is a trained boosted ensemble. Its prediction for an instance
is the initial guess plus the scaled predictions of all its trees.
*/
type Model struct {
	TargetIndex  int
	InitialGuess float32
	LearningRate float64
	Trees        []*tree.Tree
}

/*
Evaluate returns the ensemble's prediction for the instance.
*/
func (m *Model) Evaluate(instance dataset.Instance) (feature.Value, error) {
	sum := float64(m.InitialGuess)
	for _, t := range m.Trees {
		prediction, err := t.Evaluate(instance)
		if err != nil {
			return feature.Value{}, err
		}
		sum += m.LearningRate * float64(prediction.Continuous)
	}
	return feature.NewContinuous(float32(sum)), nil
}

/*
Booster holds the parameters of a boosting run.
*/
type Booster struct {
	TargetIndex      int
	Iterations       int
	LearningRate     float64
	MaxDepth         int
	MinLeafInstances int
	FeaturesPerSplit int
	Subsample        float64
	Seed             uint32
	Log              tree.Logger
}

/*
NewBooster returns a booster predicting the given feature with the
default parameters.
*/
func NewBooster(targetIndex int) *Booster {
	return &Booster{
		TargetIndex:      targetIndex,
		Iterations:       DefaultIterations,
		LearningRate:     DefaultLearningRate,
		MaxDepth:         DefaultMaxDepth,
		MinLeafInstances: 1,
		Subsample:        DefaultSubsample,
		Seed:             prng.DefaultSeed,
	}
}

/*
Train grows a boosted ensemble over the given dataset. The target
feature must be continuous. The caller's instances are never
mutated: boosting works on a copy of the rows whose target column it
rewrites with residuals. The context is checked between iterations.
*/
func (b *Booster) Train(ctx context.Context, d *dataset.Dataset) (*Model, error) {
	if d == nil || len(d.Instances) == 0 {
		return nil, fmt.Errorf("cannot boost over an empty dataset")
	}
	if b.TargetIndex < 0 || b.TargetIndex >= len(d.Definition) {
		return nil, fmt.Errorf("target feature index %d out of range for a definition with %d features", b.TargetIndex, len(d.Definition))
	}
	if d.Definition[b.TargetIndex].Kind != feature.Continuous {
		return nil, fmt.Errorf("boosting predicts continuous features, %s is discrete", d.Definition[b.TargetIndex].Name)
	}
	if b.Iterations < 1 {
		return nil, fmt.Errorf("number of iterations must be at least 1, got %d", b.Iterations)
	}
	if b.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", b.LearningRate)
	}
	if b.Subsample <= 0 || b.Subsample > 1 {
		return nil, fmt.Errorf("subsample fraction must be in (0, 1], got %g", b.Subsample)
	}

	residuals := &dataset.Dataset{Definition: d.Definition}
	initial := d.ContinuousMean(b.TargetIndex)
	for _, instance := range d.Instances {
		row := make(dataset.Instance, len(instance))
		copy(row, instance)
		row[b.TargetIndex] = feature.NewContinuous(instance[b.TargetIndex].Continuous - initial)
		residuals.Instances = append(residuals.Instances, row)
	}

	m := &Model{
		TargetIndex:  b.TargetIndex,
		InitialGuess: initial,
		LearningRate: b.LearningRate,
	}
	// Unlike forests, boosting considers every feature at every split
	// unless told otherwise.
	featuresPerSplit := b.FeaturesPerSplit
	if featuresPerSplit == 0 {
		featuresPerSplit = len(d.Definition) - 1
	}
	rng := prng.New(b.Seed)
	builder := &tree.Builder{
		TargetIndex:         b.TargetIndex,
		MaxDepth:            b.MaxDepth,
		MinLeafInstances:    b.MinLeafInstances,
		FeaturesPerSplit:    featuresPerSplit,
		RetainLeafInstances: true,
		RNG:                 rng,
		Log:                 b.Log,
	}
	threshold := uint32(b.Subsample * 10000)
	for iteration := 0; iteration < b.Iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sampled := make([]bool, len(residuals.Instances))
		sample := &dataset.Dataset{Definition: d.Definition}
		for i, instance := range residuals.Instances {
			if rng.Uint32()%10000 < threshold {
				sampled[i] = true
				sample.Instances = append(sample.Instances, instance)
			}
		}
		if len(sample.Instances) == 0 {
			b.logf("iteration %d sampled no instances, skipping", iteration)
			continue
		}
		grown, err := builder.Build(sample)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %v", iteration, err)
		}
		// The retained leaf instances are the sampled rows themselves,
		// so the residuals of the sample can be pushed down in place
		// without evaluating the tree for them.
		for _, leaf := range grown.Leaves() {
			step := float32(b.LearningRate) * leaf.Prediction.Continuous
			for _, instance := range leaf.Instances {
				instance[b.TargetIndex].Continuous -= step
			}
		}
		for i, instance := range residuals.Instances {
			if sampled[i] {
				continue
			}
			prediction, err := grown.Evaluate(instance)
			if err != nil {
				return nil, fmt.Errorf("iteration %d: %v", iteration, err)
			}
			instance[b.TargetIndex].Continuous -= float32(b.LearningRate) * prediction.Continuous
		}
		grown.ClearLeafInstances()
		m.Trees = append(m.Trees, grown)
	}
	return m, nil
}

func (b *Booster) logf(format string, v ...interface{}) {
	if b.Log != nil {
		b.Log.Logf(format, v...)
	}
}
