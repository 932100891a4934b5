/*
Package canopy trains and applies random forests of decision trees
over tabular datasets of continuous and discrete features.

A forest is grown by bootstrap aggregation: every tree is built over
a resample of the training set drawn with replacement, considering a
random subset of the features at every split. Training is
reproducible for a given seed and thread count, since every worker
draws from its own seeded random stream and the workers' trees are
combined in a fixed order.
*/
package canopy

import (
	"fmt"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/tree"
)

/*
Logger receives diagnostic messages produced while training and
applying forests.
*/
type Logger = tree.Logger

/*
Forest is a trained random forest. Besides the trees themselves it
keeps the out-of-bag instance indices of every tree, aligned with
Trees, and the parameters it was trained with.
*/
type Forest struct {
	TargetIndex      int
	ModelKind        feature.ModelKind
	Trees            []*tree.Tree
	OOB              [][]int
	Seed             uint32
	Threads          int
	MaxDepth         int
	MinLeafInstances int
	FeaturesPerSplit int
	WithOOB          bool
	Log              Logger
}

/*
Evaluate returns the forest's prediction for the instance. Regression
forests average the predictions of their trees; classification
forests take a majority vote, resolving ties in favor of the lowest
category index. An empty forest yields the zero value and a logged
warning.
*/
func (f *Forest) Evaluate(instance dataset.Instance) (feature.Value, error) {
	if len(f.Trees) == 0 {
		f.logf("evaluating an empty forest, predicting the zero value")
		return feature.Value{}, nil
	}
	if f.ModelKind == feature.Regression {
		var sum float64
		for _, t := range f.Trees {
			prediction, err := t.Evaluate(instance)
			if err != nil {
				return feature.Value{}, err
			}
			sum += float64(prediction.Continuous)
		}
		return feature.NewContinuous(float32(sum / float64(len(f.Trees)))), nil
	}
	votes := make(map[int]int)
	for _, t := range f.Trees {
		prediction, err := t.Evaluate(instance)
		if err != nil {
			return feature.Value{}, err
		}
		votes[prediction.Category]++
	}
	winner, winnerVotes := -1, 0
	for category, n := range votes {
		if n > winnerVotes || (n == winnerVotes && category < winner) {
			winner, winnerVotes = category, n
		}
	}
	return feature.NewCategory(winner), nil
}

func (f *Forest) logf(format string, v ...interface{}) {
	if f.Log != nil {
		f.Log.Logf(format, v...)
	}
}

/*
AlwaysInBag reports whether the instance at the given index was drawn
into the bootstrap sample of every tree of the forest, leaving no
tree that can give it an out-of-bag prediction.
*/
func (f *Forest) AlwaysInBag(index int) bool {
	for _, oob := range f.OOB {
		for _, i := range oob {
			if i == index {
				return false
			}
		}
	}
	return true
}

func (f *Forest) String() string {
	return fmt.Sprintf("forest of %d trees predicting feature %d", len(f.Trees), f.TargetIndex)
}
