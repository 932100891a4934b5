package canopy

import (
	"fmt"
	"math"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
Results summarizes the evaluation of a forest against a labeled
dataset. Classification results carry a confusion matrix keyed by
"actual->predicted" category names; regression results accumulate
squared and absolute errors.
*/
type Results struct {
	Kind          feature.ModelKind
	Evaluated     int
	Correct       int
	Confusion     map[string]int
	squaredError  float64
	absoluteError float64
}

/*
Accuracy returns the fraction of instances a classification forest
predicted correctly.
*/
func (r *Results) Accuracy() float64 {
	if r.Evaluated == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Evaluated)
}

/*
MeanSquaredError returns the mean squared prediction error of a
regression forest.
*/
func (r *Results) MeanSquaredError() float64 {
	if r.Evaluated == 0 {
		return 0
	}
	return r.squaredError / float64(r.Evaluated)
}

/*
RootMeanSquaredError returns the root of the mean squared prediction
error of a regression forest.
*/
func (r *Results) RootMeanSquaredError() float64 {
	return math.Sqrt(r.MeanSquaredError())
}

/*
MeanAbsoluteError returns the mean absolute prediction error of a
regression forest.
*/
func (r *Results) MeanAbsoluteError() float64 {
	if r.Evaluated == 0 {
		return 0
	}
	return r.absoluteError / float64(r.Evaluated)
}

func (r *Results) String() string {
	if r.Kind == feature.Classification {
		return fmt.Sprintf("%d/%d correct (%.2f%%)", r.Correct, r.Evaluated, 100*r.Accuracy())
	}
	return fmt.Sprintf("mse %.6f, rmse %.6f, mae %.6f over %d instances", r.MeanSquaredError(), r.RootMeanSquaredError(), r.MeanAbsoluteError(), r.Evaluated)
}

/*
Test evaluates the forest against every instance of the dataset and
compares the predictions to the dataset's actual target values.
*/
func (f *Forest) Test(d *dataset.Dataset) (*Results, error) {
	if d == nil || len(d.Instances) == 0 {
		return nil, fmt.Errorf("cannot test a forest over an empty dataset")
	}
	results := &Results{Kind: f.ModelKind}
	target := d.Definition[f.TargetIndex]
	if f.ModelKind == feature.Classification {
		results.Confusion = make(map[string]int)
	}
	for i, instance := range d.Instances {
		prediction, err := f.Evaluate(instance)
		if err != nil {
			return nil, fmt.Errorf("cannot evaluate instance %d: %v", i, err)
		}
		results.Evaluated++
		actual := instance[f.TargetIndex]
		if f.ModelKind == feature.Classification {
			if prediction.Category == actual.Category {
				results.Correct++
			}
			key := fmt.Sprintf("%s->%s", target.CategoryName(actual.Category), target.CategoryName(prediction.Category))
			results.Confusion[key]++
		} else {
			diff := float64(prediction.Continuous) - float64(actual.Continuous)
			results.squaredError += diff * diff
			results.absoluteError += math.Abs(diff)
		}
	}
	return results, nil
}
