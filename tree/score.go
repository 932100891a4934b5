package tree

import (
	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
RegressionScore returns the residual sum of squares of the target
feature over the instances of d, that is the sum of squared
deviations from the region mean. An empty region scores 0. Lower is
better.
*/
func RegressionScore(d *dataset.Dataset, targetIndex int) float64 {
	var stats dataset.Stats
	for _, instance := range d.Instances {
		stats.Add(instance[targetIndex].Continuous)
	}
	return stats.SumOfSquares()
}

/*
ClassificationScore returns the Gini impurity of the target feature
over the instances of d, 1 minus the summed squared category
proportions. An empty region scores 0. Lower is better.
*/
func ClassificationScore(d *dataset.Dataset, targetIndex int) float64 {
	return giniImpurity(d.CategoryCounts(targetIndex), len(d.Instances))
}

func giniImpurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	var sumSquares float64
	for _, n := range counts {
		p := float64(n) / float64(total)
		sumSquares += p * p
	}
	return 1 - sumSquares
}

/*
RegionScore returns the score of a single undivided region for the
given model kind.
*/
func RegionScore(d *dataset.Dataset, targetIndex int, kind feature.ModelKind) float64 {
	if kind == feature.Regression {
		return RegressionScore(d, targetIndex)
	}
	return ClassificationScore(d, targetIndex)
}

/*
CombinedScore returns the score of a two-region partition for the
given model kind. Regression sums the residual sums of squares of the
two sides. Classification weights each side's Gini impurity by its
share of the instances.
*/
func CombinedScore(left, right *dataset.Dataset, targetIndex int, kind feature.ModelKind) float64 {
	if kind == feature.Regression {
		return RegressionScore(left, targetIndex) + RegressionScore(right, targetIndex)
	}
	total := len(left.Instances) + len(right.Instances)
	if total == 0 {
		return 0
	}
	leftScore := float64(len(left.Instances)) * ClassificationScore(left, targetIndex)
	rightScore := float64(len(right.Instances)) * ClassificationScore(right, targetIndex)
	return (leftScore + rightScore) / float64(total)
}
