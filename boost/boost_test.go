package boost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

func regressionSet(t *testing.T) *dataset.Dataset {
	t.Helper()
	d := dataset.New(feature.Definition{
		feature.NewContinuousDescriptor("x", 0, 0),
		feature.NewContinuousDescriptor("y", 0, 0),
	})
	// y is a noiseless step function of x.
	for i := 0; i < 30; i++ {
		y := float32(5)
		if i >= 10 {
			y = 20
		}
		if i >= 20 {
			y = 50
		}
		require.NoError(t, d.Add(dataset.Instance{
			feature.NewContinuous(float32(i)), feature.NewContinuous(y),
		}))
	}
	return d
}

func trainingMSE(t *testing.T, m *Model, d *dataset.Dataset) float64 {
	t.Helper()
	var sum float64
	for _, instance := range d.Instances {
		prediction, err := m.Evaluate(instance)
		require.NoError(t, err)
		diff := float64(prediction.Continuous - instance[1].Continuous)
		sum += diff * diff
	}
	return sum / float64(len(d.Instances))
}

func TestBoostReducesTrainingError(t *testing.T) {
	d := regressionSet(t)
	b := NewBooster(1)
	b.Iterations = 100
	model, err := b.Train(context.Background(), d)
	require.NoError(t, err)
	assert.NotEmpty(t, model.Trees)

	// The initial guess alone leaves the full variance as error.
	var baseline dataset.Stats
	for _, instance := range d.Instances {
		baseline.Add(instance[1].Continuous)
	}
	baselineMSE := baseline.SumOfSquares() / float64(d.Count())
	assert.Less(t, trainingMSE(t, model, d), baselineMSE/4)
}

func TestBoostDoesNotMutateTrainingData(t *testing.T) {
	d := regressionSet(t)
	before := make([]float32, d.Count())
	for i, instance := range d.Instances {
		before[i] = instance[1].Continuous
	}
	_, err := NewBooster(1).Train(context.Background(), d)
	require.NoError(t, err)
	for i, instance := range d.Instances {
		assert.Equal(t, before[i], instance[1].Continuous, "instance %d target changed", i)
	}
}

func TestBoostClearsRetainedLeafInstances(t *testing.T) {
	model, err := NewBooster(1).Train(context.Background(), regressionSet(t))
	require.NoError(t, err)
	for _, grown := range model.Trees {
		for _, leaf := range grown.Leaves() {
			assert.Empty(t, leaf.Instances)
		}
	}
}

func TestBoostDeterministicForSeed(t *testing.T) {
	d := regressionSet(t)
	train := func() *Model {
		b := NewBooster(1)
		b.Iterations = 20
		b.Seed = 123
		model, err := b.Train(context.Background(), d)
		require.NoError(t, err)
		return model
	}
	a, c := train(), train()
	require.Len(t, c.Trees, len(a.Trees))
	for _, instance := range d.Instances {
		pa, err := a.Evaluate(instance)
		require.NoError(t, err)
		pc, err := c.Evaluate(instance)
		require.NoError(t, err)
		assert.Equal(t, pa, pc)
	}
}

func TestBoostConfigurationErrors(t *testing.T) {
	d := regressionSet(t)
	ctx := context.Background()

	b := NewBooster(1)
	_, err := b.Train(ctx, dataset.New(d.Definition))
	assert.Error(t, err)

	b = NewBooster(5)
	_, err = b.Train(ctx, d)
	assert.Error(t, err)

	b = NewBooster(1)
	b.Iterations = 0
	_, err = b.Train(ctx, d)
	assert.Error(t, err)

	b = NewBooster(1)
	b.LearningRate = 0
	_, err = b.Train(ctx, d)
	assert.Error(t, err)

	b = NewBooster(1)
	b.Subsample = 1.5
	_, err = b.Train(ctx, d)
	assert.Error(t, err)

	discrete := dataset.New(feature.Definition{
		feature.NewContinuousDescriptor("x", 0, 0),
		feature.NewDiscreteDescriptor("label", []string{"A"}),
	})
	require.NoError(t, discrete.Add(dataset.Instance{feature.NewContinuous(1), feature.NewCategory(1)}))
	b = NewBooster(1)
	_, err = b.Train(ctx, discrete)
	assert.Error(t, err)
}
