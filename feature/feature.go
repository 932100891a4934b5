/*
Package feature describes the columns of a dataset: their names, kinds
and value distributions. A feature is either continuous (numeric) or
discrete (categorical). Descriptors are produced once during ingestion
and shared read-only by every model built afterwards.
*/
package feature

import "fmt"

/*
Kind indicates whether a feature takes numeric values or
values from a finite set of categories.
*/
type Kind int

const (
	// Continuous features take numeric values
	Continuous Kind = iota
	// Discrete features take one of a finite set of category values
	Discrete
)

/*
ModelKind indicates whether a model predicts a category
or a numeric value. It is derived from the kind of the
predicted feature and never changes afterwards.
*/
type ModelKind int

const (
	// Classification models predict a discrete feature
	Classification ModelKind = iota
	// Regression models predict a continuous feature
	Regression
)

/*
UnknownCategory is the name of the reserved category at index 0 of
every discrete feature's category table. It stands for values that
were missing or never seen during ingestion.
*/
const UnknownCategory = "<unknown>"

/*
MissingContinuous is the sentinel stored for missing continuous values
on features that preserve them instead of backfilling the mean.
*/
const MissingContinuous = float32(-3.4028234663852886e+38)

/*
Value is a single observed feature value. It holds either a continuous
value or a discrete category index; which of the two is meaningful is
decided by the Descriptor at the same column index, never by the value
itself. Code must not read the field the descriptor does not select.
*/
type Value struct {
	Continuous float32
	Category   int
}

/*
NewContinuous returns a Value holding the given continuous value.
*/
func NewContinuous(v float32) Value {
	return Value{Continuous: v}
}

/*
NewCategory returns a Value holding the given category index.
*/
func NewCategory(i int) Value {
	return Value{Category: i}
}

/*
Descriptor holds the name, kind and distribution of one feature.
It is created during ingestion and must not be mutated afterwards:
descriptors are shared by every tree of every model built from the
same data.
*/
type Descriptor struct {
	Kind    Kind
	Name    string
	Missing int

	// false (default): missing values were backfilled with the
	// feature's global mean or mode during ingestion.
	// true: missing values were kept, as an out-of-range value for
	// continuous features and as the reserved unknown category for
	// discrete ones.
	PreserveMissing bool

	// continuous features
	Mean   float32
	StdDev float32

	// discrete features. Categories[0] is always UnknownCategory.
	Categories     []string
	CategoryIndex  map[string]int
	CategoryCounts []int
	ModeIndex      int
}

/*
NewContinuousDescriptor returns a descriptor for a continuous feature
with the given name and distribution.
*/
func NewContinuousDescriptor(name string, mean, stddev float32) *Descriptor {
	return &Descriptor{Kind: Continuous, Name: name, Mean: mean, StdDev: stddev}
}

/*
NewDiscreteDescriptor returns a descriptor for a discrete feature with
the given name and categories. The reserved unknown category is
prepended if the given slice does not already start with it.
*/
func NewDiscreteDescriptor(name string, categories []string) *Descriptor {
	d := &Descriptor{Kind: Discrete, Name: name}
	d.AddCategory(UnknownCategory)
	for _, c := range categories {
		if c != UnknownCategory {
			d.AddCategory(c)
		}
	}
	return d
}

/*
AddCategory appends a category to the descriptor's table, unless it is
already present, and returns its index.
*/
func (d *Descriptor) AddCategory(name string) int {
	if d.CategoryIndex == nil {
		d.CategoryIndex = make(map[string]int)
	}
	if i, ok := d.CategoryIndex[name]; ok {
		return i
	}
	i := len(d.Categories)
	d.Categories = append(d.Categories, name)
	d.CategoryIndex[name] = i
	d.CategoryCounts = append(d.CategoryCounts, 0)
	return i
}

/*
CategoryName returns the name for the given category index, or
UnknownCategory if the index is out of range.
*/
func (d *Descriptor) CategoryName(i int) string {
	if i < 0 || i >= len(d.Categories) {
		return UnknownCategory
	}
	return d.Categories[i]
}

func (d *Descriptor) String() string {
	return d.Name
}

/*
Definition is the ordered sequence of feature descriptors an instance
and every model trained on it must agree on: same length, same kind
per column.
*/
type Definition []*Descriptor

/*
IndexOf returns the column index of the feature with the given name,
or an error if the definition declares no such feature.
*/
func (def Definition) IndexOf(name string) (int, error) {
	for i, d := range def {
		if d.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no feature named %q in instance definition", name)
}

/*
ModelKindFor returns the kind of model that predicts the feature at
the given column: Classification for discrete features, Regression for
continuous ones. It returns an error if the index is out of range.
*/
func (def Definition) ModelKindFor(index int) (ModelKind, error) {
	if index < 0 || index >= len(def) {
		return 0, fmt.Errorf("invalid index %d of feature to predict", index)
	}
	if def[index].Kind == Discrete {
		return Classification, nil
	}
	return Regression, nil
}
