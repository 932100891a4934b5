package tree

import (
	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
Candidate is a potential split of a region of instances on a single
feature. For continuous features the value is a threshold tested with
<= and >; for discrete features it is a category index tested with ==
and !=.
*/
type Candidate struct {
	FeatureIndex int
	Kind         feature.Kind
	Value        feature.Value
}

/*
Candidates returns the split candidates the given feature offers over
the instances of d.

For a discrete feature the candidates follow the categories present
in the region: a single present category offers no split at all, two
present categories offer a single candidate since testing either one
induces the same partition, and more offer one candidate per present
category. The unknown category is never split on unless the feature
is declared to preserve missing values.

For a continuous feature the candidates are the region's mean and,
when the values actually vary, the mean shifted half a standard
deviation each way. Mean and deviation are accumulated in a single
pass over the region.
*/
func Candidates(d *dataset.Dataset, featureIndex int) []Candidate {
	descriptor := d.Definition[featureIndex]
	if descriptor.Kind == feature.Discrete {
		return discreteCandidates(d, featureIndex, descriptor)
	}
	return continuousCandidates(d, featureIndex)
}

func discreteCandidates(d *dataset.Dataset, featureIndex int, descriptor *feature.Descriptor) []Candidate {
	counts := d.CategoryCounts(featureIndex)
	var present []int
	for category, n := range counts {
		if n > 0 {
			present = append(present, category)
		}
	}
	if len(present) < 2 {
		return nil
	}
	if len(present) == 2 {
		category := present[0]
		if category == 0 && !descriptor.PreserveMissing {
			category = present[1]
		}
		return []Candidate{{
			FeatureIndex: featureIndex,
			Kind:         feature.Discrete,
			Value:        feature.NewCategory(category),
		}}
	}
	candidates := make([]Candidate, 0, len(present))
	for _, category := range present {
		if category == 0 && !descriptor.PreserveMissing {
			continue
		}
		candidates = append(candidates, Candidate{
			FeatureIndex: featureIndex,
			Kind:         feature.Discrete,
			Value:        feature.NewCategory(category),
		})
	}
	return candidates
}

func continuousCandidates(d *dataset.Dataset, featureIndex int) []Candidate {
	var stats dataset.Stats
	for _, instance := range d.Instances {
		stats.Add(instance[featureIndex].Continuous)
	}
	if stats.Count() == 0 {
		return nil
	}
	mean := stats.Mean()
	candidates := []Candidate{{
		FeatureIndex: featureIndex,
		Kind:         feature.Continuous,
		Value:        feature.NewContinuous(mean),
	}}
	if sd := stats.StdDev(); sd > 0 {
		candidates = append(candidates,
			Candidate{
				FeatureIndex: featureIndex,
				Kind:         feature.Continuous,
				Value:        feature.NewContinuous(mean - sd/2),
			},
			Candidate{
				FeatureIndex: featureIndex,
				Kind:         feature.Continuous,
				Value:        feature.NewContinuous(mean + sd/2),
			})
	}
	return candidates
}

/*
matches reports whether an instance falls on the left side of the
candidate split.
*/
func (c Candidate) matches(instance dataset.Instance) bool {
	v := instance[c.FeatureIndex]
	if c.Kind == feature.Continuous {
		return v.Continuous <= c.Value.Continuous
	}
	return v.Category == c.Value.Category
}

/*
partition splits the instances of d into the left and right sides of
the candidate, sharing instance values with d.
*/
func (c Candidate) partition(d *dataset.Dataset) (*dataset.Dataset, *dataset.Dataset) {
	left := &dataset.Dataset{Definition: d.Definition}
	right := &dataset.Dataset{Definition: d.Definition}
	for _, instance := range d.Instances {
		if c.matches(instance) {
			left.Instances = append(left.Instances, instance)
		} else {
			right.Instances = append(right.Instances, instance)
		}
	}
	return left, right
}
