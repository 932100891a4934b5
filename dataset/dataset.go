/*
Package dataset holds in-memory tabular data for training and
evaluation. A Dataset pairs a feature.Definition with a slice of
instances; views over subsets of the instances share the underlying
instance values, so partitioning a dataset during tree growth never
copies feature data.
*/
package dataset

import (
	"fmt"

	"github.com/canopyml/canopy/feature"
)

/*
Instance is a single row of values, one per feature in the definition,
in definition order.
*/
type Instance []feature.Value

/*
Dataset is a feature definition together with the instances described
by it. Instances are shared by reference: a Dataset derived from
another with Subset or View reuses the same Instance slices.
*/
type Dataset struct {
	Definition feature.Definition
	Instances  []Instance
}

/*
New returns an empty dataset over the given definition.
*/
func New(definition feature.Definition) *Dataset {
	return &Dataset{Definition: definition}
}

/*
Add appends an instance to the dataset. It returns an error if the
instance does not have exactly one value per feature in the
definition.
*/
func (d *Dataset) Add(instance Instance) error {
	if len(instance) != len(d.Definition) {
		return fmt.Errorf("instance has %d values, definition has %d features", len(instance), len(d.Definition))
	}
	d.Instances = append(d.Instances, instance)
	return nil
}

/*
Count returns the number of instances in the dataset.
*/
func (d *Dataset) Count() int {
	return len(d.Instances)
}

/*
View returns a dataset over the instances selected by the given
indices, sharing both the definition and the instance values with d.
Indices may repeat, so View also serves bootstrap resampling.
*/
func (d *Dataset) View(indices []int) *Dataset {
	instances := make([]Instance, 0, len(indices))
	for _, i := range indices {
		instances = append(instances, d.Instances[i])
	}
	return &Dataset{Definition: d.Definition, Instances: instances}
}

/*
Subset returns a dataset over the instances for which keep returns
true, sharing the definition and instance values with d.
*/
func (d *Dataset) Subset(keep func(Instance) bool) *Dataset {
	instances := make([]Instance, 0, len(d.Instances))
	for _, instance := range d.Instances {
		if keep(instance) {
			instances = append(instances, instance)
		}
	}
	return &Dataset{Definition: d.Definition, Instances: instances}
}

/*
ContinuousMean returns the mean of the given continuous feature over
the dataset's instances, or 0 if the dataset is empty.
*/
func (d *Dataset) ContinuousMean(featureIndex int) float32 {
	if len(d.Instances) == 0 {
		return 0
	}
	var sum float64
	for _, instance := range d.Instances {
		sum += float64(instance[featureIndex].Continuous)
	}
	return float32(sum / float64(len(d.Instances)))
}

/*
CategoryMode returns the most frequent category index of the given
discrete feature over the dataset's instances. Ties are broken in
favor of the lowest category index. An empty dataset yields 0, the
unknown category.
*/
func (d *Dataset) CategoryMode(featureIndex int) int {
	if len(d.Instances) == 0 {
		return 0
	}
	categories := len(d.Definition[featureIndex].Categories)
	counts := make([]int, categories)
	for _, instance := range d.Instances {
		c := instance[featureIndex].Category
		if c >= 0 && c < categories {
			counts[c]++
		}
	}
	mode := 0
	for c, n := range counts {
		if n > counts[mode] {
			mode = c
		}
	}
	return mode
}

/*
CategoryCounts returns, for the given discrete feature, the number of
instances holding each of its category indices.
*/
func (d *Dataset) CategoryCounts(featureIndex int) []int {
	counts := make([]int, len(d.Definition[featureIndex].Categories))
	for _, instance := range d.Instances {
		c := instance[featureIndex].Category
		if c >= 0 && c < len(counts) {
			counts[c]++
		}
	}
	return counts
}
