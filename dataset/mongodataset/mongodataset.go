/*
Package mongodataset stores datasets on a MongoDB database and loads
them back. Instances are kept as one document per row keyed by
feature name, discrete values as their category names and continuous
ones as numbers, with missing values omitted from the document.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

const instancesCollectionName = "instances"

/*
Dataset reads and writes instances of a fixed feature definition on
the default database of a MongoDB session.
*/
type Dataset struct {
	session    *mgo.Session
	definition feature.Definition
}

/*
Open takes a MongoDB session and a feature definition and returns a
Dataset that works on the session's default database, ensuring an
index for every feature. It returns an error if a feature name is not
usable as a document field.
*/
func Open(ctx context.Context, session *mgo.Session, definition feature.Definition) (*Dataset, error) {
	mds := &Dataset{session: session, definition: definition}
	if err := mds.ensureIndexes(); err != nil {
		return nil, err
	}
	return mds, nil
}

/*
Count returns the number of instances stored on the collection.
*/
func (mds *Dataset) Count(ctx context.Context) (int, error) {
	return mds.instancesCollection().Find(nil).Count()
}

/*
Write stores the given instances and returns how many were written.
Unknown discrete values are omitted from the stored documents.
*/
func (mds *Dataset) Write(ctx context.Context, instances []dataset.Instance) (int, error) {
	if len(instances) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(instances))
	for index, instance := range instances {
		if len(instance) != len(mds.definition) {
			return 0, fmt.Errorf("instance %d has %d values, definition has %d features", index, len(instance), len(mds.definition))
		}
		doc := make(bson.M, len(instance))
		for i, descriptor := range mds.definition {
			if descriptor.Kind == feature.Continuous {
				doc[descriptor.Name] = float64(instance[i].Continuous)
				continue
			}
			if instance[i].Category != 0 {
				doc[descriptor.Name] = descriptor.CategoryName(instance[i].Category)
			}
		}
		docs = append(docs, doc)
	}
	if err := mds.instancesCollection().Insert(docs...); err != nil {
		return 0, fmt.Errorf("storing instances: %v", err)
	}
	return len(instances), nil
}

/*
WriteDataset stores every instance of the given dataset, which must
share the Dataset's definition.
*/
func (mds *Dataset) WriteDataset(ctx context.Context, d *dataset.Dataset) (int, error) {
	return mds.Write(ctx, d.Instances)
}

/*
Read loads every stored instance into an in-memory dataset over the
Dataset's definition. Omitted discrete fields and category names the
definition does not declare map to the unknown category; omitted
continuous fields take the definition's recorded mean. The context is
checked between documents.
*/
func (mds *Dataset) Read(ctx context.Context) (*dataset.Dataset, error) {
	d := dataset.New(mds.definition)
	iter := mds.instancesCollection().Find(nil).Iter()
	defer iter.Close()
	var doc bson.M
	for iter.Next(&doc) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		instance := make(dataset.Instance, len(mds.definition))
		for i, descriptor := range mds.definition {
			raw, ok := doc[descriptor.Name]
			if descriptor.Kind == feature.Continuous {
				if !ok {
					instance[i] = feature.NewContinuous(descriptor.Mean)
					continue
				}
				v, err := toFloat64(raw)
				if err != nil {
					return nil, fmt.Errorf("loading instances: field %s: %v", descriptor.Name, err)
				}
				instance[i] = feature.NewContinuous(float32(v))
				continue
			}
			if !ok {
				instance[i] = feature.NewCategory(0)
				continue
			}
			name, isString := raw.(string)
			if !isString {
				return nil, fmt.Errorf("loading instances: expected a category name in field %s, got %T", descriptor.Name, raw)
			}
			category, declared := descriptor.CategoryIndex[name]
			if !declared {
				category = 0
			}
			instance[i] = feature.NewCategory(category)
		}
		if err := d.Add(instance); err != nil {
			return nil, fmt.Errorf("loading instances: %v", err)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("loading instances: %v", err)
	}
	return d, nil
}

/*
CountFeatureValues returns, for the feature at the given index, the
number of stored instances holding each of its values, aggregated on
the database. Keys are category names for discrete features and
formatted numbers for continuous ones.
*/
func (mds *Dataset) CountFeatureValues(ctx context.Context, featureIndex int) (map[string]int, error) {
	if featureIndex < 0 || featureIndex >= len(mds.definition) {
		return nil, fmt.Errorf("feature index %d out of range for a definition with %d features", featureIndex, len(mds.definition))
	}
	name := mds.definition[featureIndex].Name
	iter := mds.instancesCollection().Pipe([]bson.M{
		{"$group": bson.M{"_id": fmt.Sprintf("$%s", name), "count": bson.M{"$sum": 1}}},
	}).Iter()
	defer iter.Close()
	var doc bson.M
	result := make(map[string]int)
	for iter.Next(&doc) {
		count, ok := doc["count"].(int)
		if !ok {
			return nil, fmt.Errorf("counting feature values: mongo aggregation query returned a %T instead of an int as count", doc["count"])
		}
		result[fmt.Sprintf("%v", doc["_id"])] = count
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (mds *Dataset) ensureIndexes() error {
	for _, descriptor := range mds.definition {
		if descriptor.Name == "_id" {
			return fmt.Errorf("invalid feature name %q: reserved collection field", descriptor.Name)
		}
		if strings.ContainsAny(descriptor.Name, ".$") {
			return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", descriptor.Name, ".", "$")
		}
		index := mgo.Index{
			Key:        []string{descriptor.Name},
			Background: true,
			Sparse:     true,
		}
		if err := mds.instancesCollection().EnsureIndex(index); err != nil {
			return err
		}
	}
	return nil
}

func (mds *Dataset) instancesCollection() *mgo.Collection {
	return mds.session.DB("").C(instancesCollectionName)
}

func toFloat64(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("expected a number, got %T", raw)
}
