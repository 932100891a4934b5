package canopy

import (
	"fmt"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/tree"
)

/*
OOBReport summarizes an out-of-bag evaluation of a forest over its
training set.
*/
type OOBReport struct {
	Evaluated        int
	Skipped          int
	Misclassified    int
	MeanSquaredError float64
}

/*
ErrorRate returns the fraction of evaluated instances a
classification forest misclassified out of bag.
*/
func (r *OOBReport) ErrorRate() float64 {
	if r.Evaluated == 0 {
		return 0
	}
	return float64(r.Misclassified) / float64(r.Evaluated)
}

/*
OOBEvaluate estimates the forest's generalization error over the
dataset it was trained on. Every instance is evaluated by the
transient sub-forest of the trees whose bootstrap sample left it out;
instances that ended up in every tree's sample are skipped, since no
tree can give them an unbiased prediction. The dataset must be the
training set, in training order, or the reported error is
meaningless.
*/
func (f *Forest) OOBEvaluate(d *dataset.Dataset) (*OOBReport, error) {
	if len(f.OOB) != len(f.Trees) {
		return nil, fmt.Errorf("forest has %d trees but %d out-of-bag index sets", len(f.Trees), len(f.OOB))
	}
	if d == nil || len(d.Instances) == 0 {
		return nil, fmt.Errorf("cannot evaluate out of bag over an empty dataset")
	}
	outOfBag := make([]map[int]bool, len(f.OOB))
	for i, indices := range f.OOB {
		outOfBag[i] = make(map[int]bool, len(indices))
		for _, index := range indices {
			outOfBag[i][index] = true
		}
	}
	report := &OOBReport{}
	var squaredError float64
	for index, instance := range d.Instances {
		var trees []*tree.Tree
		for i := range f.Trees {
			if outOfBag[i][index] {
				trees = append(trees, f.Trees[i])
			}
		}
		if len(trees) == 0 {
			report.Skipped++
			continue
		}
		sub := &Forest{TargetIndex: f.TargetIndex, ModelKind: f.ModelKind, Trees: trees, Log: f.Log}
		prediction, err := sub.Evaluate(instance)
		if err != nil {
			return nil, fmt.Errorf("cannot evaluate instance %d out of bag: %v", index, err)
		}
		report.Evaluated++
		actual := instance[f.TargetIndex]
		if f.ModelKind == feature.Classification {
			if prediction.Category != actual.Category {
				report.Misclassified++
			}
		} else {
			diff := float64(prediction.Continuous) - float64(actual.Continuous)
			squaredError += diff * diff
		}
	}
	if f.ModelKind == feature.Regression && report.Evaluated > 0 {
		report.MeanSquaredError = squaredError / float64(report.Evaluated)
	}
	return report, nil
}
