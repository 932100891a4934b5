/*
Package sqldataset stores datasets on SQL databases and loads them
back, through backend adapters for the supported engines. Discrete
values are stored as ids into a shared categories table, so the
instance rows stay numeric and renaming-safe.
*/
package sqldataset

import (
	"context"
	"fmt"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
DB reads and writes instances of a fixed feature definition on a SQL
backend.
*/
type DB struct {
	adapter           Adapter
	definition        feature.Definition
	columns           []string
	discreteColumns   []string
	continuousColumns []string
	categories        map[int]string
	inverseCategories map[string]int
}

/*
Create returns a DB over the given adapter and definition, ensuring
the backing tables exist and the categories table holds every
category the definition declares.
*/
func Create(ctx context.Context, adapter Adapter, definition feature.Definition) (*DB, error) {
	db, err := newDB(adapter, definition)
	if err != nil {
		return nil, err
	}
	if err := adapter.CreateCategoryTable(ctx); err != nil {
		return nil, fmt.Errorf("creating categories table: %v", err)
	}
	if err := adapter.CreateInstanceTable(ctx, db.discreteColumns, db.continuousColumns); err != nil {
		return nil, fmt.Errorf("creating instances table: %v", err)
	}
	var names []string
	for _, descriptor := range definition {
		if descriptor.Kind != feature.Discrete {
			continue
		}
		for i, name := range descriptor.Categories {
			if i > 0 {
				names = append(names, name)
			}
		}
	}
	if err := adapter.AddCategories(ctx, names); err != nil {
		return nil, fmt.Errorf("storing categories: %v", err)
	}
	if err := db.loadCategories(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

/*
Open returns a DB over the given adapter and definition, expecting
the backing tables to exist already.
*/
func Open(ctx context.Context, adapter Adapter, definition feature.Definition) (*DB, error) {
	db, err := newDB(adapter, definition)
	if err != nil {
		return nil, err
	}
	if err := db.loadCategories(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func newDB(adapter Adapter, definition feature.Definition) (*DB, error) {
	db := &DB{adapter: adapter, definition: definition}
	seen := make(map[string]string, len(definition))
	for _, descriptor := range definition {
		column, err := adapter.ColumnName(descriptor.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid feature %s: %v", descriptor.Name, err)
		}
		if other, ok := seen[column]; ok {
			return nil, fmt.Errorf("features %s and %s translate to the same column name %s", descriptor.Name, other, column)
		}
		seen[column] = descriptor.Name
		db.columns = append(db.columns, column)
		if descriptor.Kind == feature.Discrete {
			db.discreteColumns = append(db.discreteColumns, column)
		} else {
			db.continuousColumns = append(db.continuousColumns, column)
		}
	}
	return db, nil
}

func (db *DB) loadCategories(ctx context.Context) error {
	categories, err := db.adapter.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %v", err)
	}
	db.categories = categories
	db.inverseCategories = make(map[string]int, len(categories))
	for id, name := range categories {
		db.inverseCategories[name] = id
	}
	return nil
}

/*
Count returns the number of instances stored on the backend.
*/
func (db *DB) Count(ctx context.Context) (int, error) {
	return db.adapter.CountInstances(ctx)
}

/*
Write stores the given instances and returns how many were written.
Unknown discrete values and missing category names are stored as
NULL.
*/
func (db *DB) Write(ctx context.Context, instances []dataset.Instance) (int, error) {
	if len(instances) == 0 {
		return 0, nil
	}
	rows := make([]map[string]interface{}, 0, len(instances))
	for index, instance := range instances {
		if len(instance) != len(db.definition) {
			return 0, fmt.Errorf("instance %d has %d values, definition has %d features", index, len(instance), len(db.definition))
		}
		row := make(map[string]interface{}, len(instance))
		for i, descriptor := range db.definition {
			if descriptor.Kind == feature.Continuous {
				row[db.columns[i]] = float64(instance[i].Continuous)
				continue
			}
			if instance[i].Category == 0 {
				continue
			}
			name := descriptor.CategoryName(instance[i].Category)
			id, ok := db.inverseCategories[name]
			if !ok {
				return 0, fmt.Errorf("category %q of feature %s is not stored on the backend", name, descriptor.Name)
			}
			row[db.columns[i]] = id
		}
		rows = append(rows, row)
	}
	n, err := db.adapter.AddInstances(ctx, rows, db.discreteColumns, db.continuousColumns)
	if err != nil {
		return n, fmt.Errorf("storing instances: %v", err)
	}
	return n, nil
}

/*
WriteDataset stores every instance of the given dataset, which must
share the DB's definition.
*/
func (db *DB) WriteDataset(ctx context.Context, d *dataset.Dataset) (int, error) {
	return db.Write(ctx, d.Instances)
}

/*
Read loads every stored instance into an in-memory dataset over the
DB's definition. NULL discrete values and category names the
definition does not declare map to the unknown category; NULL
continuous values take the definition's recorded mean.
*/
func (db *DB) Read(ctx context.Context) (*dataset.Dataset, error) {
	d := dataset.New(db.definition)
	err := db.adapter.IterateOnInstances(ctx, db.discreteColumns, db.continuousColumns,
		func(index int, row map[string]interface{}) (bool, error) {
			instance := make(dataset.Instance, len(db.definition))
			for i, descriptor := range db.definition {
				raw, ok := row[db.columns[i]]
				if descriptor.Kind == feature.Continuous {
					if !ok {
						instance[i] = feature.NewContinuous(descriptor.Mean)
						continue
					}
					v, isFloat := raw.(float64)
					if !isFloat {
						return false, fmt.Errorf("row %d: expected a number in column %s, got %T", index, db.columns[i], raw)
					}
					instance[i] = feature.NewContinuous(float32(v))
					continue
				}
				if !ok {
					instance[i] = feature.NewCategory(0)
					continue
				}
				id, isInt := raw.(int)
				if !isInt {
					return false, fmt.Errorf("row %d: expected a category id in column %s, got %T", index, db.columns[i], raw)
				}
				category, declared := descriptor.CategoryIndex[db.categories[id]]
				if !declared {
					category = 0
				}
				instance[i] = feature.NewCategory(category)
			}
			if err := d.Add(instance); err != nil {
				return false, err
			}
			return true, nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading instances: %v", err)
	}
	return d, nil
}

/*
Close releases the DB's backend connection.
*/
func (db *DB) Close() error {
	return db.adapter.Close()
}
