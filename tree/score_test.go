package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

func TestRegressionScoreIsResidualSumOfSquares(t *testing.T) {
	d := dataset.New(feature.Definition{feature.NewContinuousDescriptor("y", 0, 0)})
	for _, v := range []float32{1, 2, 3, 4} {
		require.NoError(t, d.Add(dataset.Instance{feature.NewContinuous(v)}))
	}
	// Mean 2.5, squared deviations 2.25 + 0.25 + 0.25 + 2.25.
	assert.InDelta(t, 5.0, RegressionScore(d, 0), 1e-9)
}

func TestClassificationScoreIsGini(t *testing.T) {
	d := discreteDataset(t, false, 1, 1, 1, 2)
	// 1 - (3/4)^2 - (1/4)^2 = 0.375
	assert.InDelta(t, 0.375, ClassificationScore(d, 0), 1e-9)
}

func TestPureRegionScoresZero(t *testing.T) {
	assert.Zero(t, ClassificationScore(discreteDataset(t, false, 2, 2, 2), 0))
}

func TestEmptyRegionScoresZero(t *testing.T) {
	d := dataset.New(feature.Definition{feature.NewContinuousDescriptor("y", 0, 0)})
	assert.Zero(t, RegressionScore(d, 0))
	e := discreteDataset(t, false)
	assert.Zero(t, ClassificationScore(e, 0))
}

func TestCombinedRegressionScoreIsUnweightedSum(t *testing.T) {
	left := dataset.New(feature.Definition{feature.NewContinuousDescriptor("y", 0, 0)})
	right := dataset.New(left.Definition)
	for _, v := range []float32{1, 3} {
		require.NoError(t, left.Add(dataset.Instance{feature.NewContinuous(v)}))
	}
	for _, v := range []float32{10, 14, 12, 12} {
		require.NoError(t, right.Add(dataset.Instance{feature.NewContinuous(v)}))
	}
	// Left RSS 2, right RSS 8, summed without size weighting.
	assert.InDelta(t, 10.0, CombinedScore(left, right, 0, feature.Regression), 1e-9)
}

func TestCombinedClassificationScoreIsSizeWeighted(t *testing.T) {
	left := discreteDataset(t, false, 1, 1, 2)
	right := discreteDataset(t, false, 2)
	// (3 * 0.4444 + 1 * 0) / 4
	assert.InDelta(t, 1.0/3.0, CombinedScore(left, right, 0, feature.Classification), 1e-6)
}
