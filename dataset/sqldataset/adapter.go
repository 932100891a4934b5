package sqldataset

import "context"

/*
Adapter is the interface the sqldataset package uses to talk to a
specific SQL backend. Implementations translate the generic
operations into the backend's dialect: table creation, placeholder
style and conflict handling differ between engines, the schema does
not.

The schema is two tables: a categories table mapping every category
name ever stored to a numeric id, and an instances table with one
column per feature, discrete columns holding category ids and
continuous columns holding numbers, either kind nullable to represent
missing values.
*/
type Adapter interface {
	// ColumnName translates a feature name to the column name that
	// holds its values, or returns an error if the feature name
	// cannot be used on the backend.
	ColumnName(featureName string) (string, error)

	// CreateCategoryTable ensures the categories table exists.
	CreateCategoryTable(ctx context.Context) error

	// CreateInstanceTable ensures the instances table exists with the
	// given discrete and continuous columns.
	CreateInstanceTable(ctx context.Context, discreteColumns, continuousColumns []string) error

	// AddCategories stores the given category names, skipping the ones
	// already stored.
	AddCategories(ctx context.Context, names []string) error

	// ListCategories returns the stored category names by their ids.
	ListCategories(ctx context.Context) (map[int]string, error)

	// AddInstances inserts the given rows, keyed by column name, and
	// returns how many were inserted. A missing key stores NULL.
	AddInstances(ctx context.Context, rows []map[string]interface{}, discreteColumns, continuousColumns []string) (int, error)

	// IterateOnInstances calls the lambda for every stored row with
	// its index and its values keyed by column name, discrete values
	// as int category ids and continuous ones as float64, omitting
	// NULLs. Iteration stops early when the lambda returns false.
	IterateOnInstances(ctx context.Context, discreteColumns, continuousColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error

	// CountInstances returns the number of stored rows.
	CountInstances(ctx context.Context) (int, error)

	// Close releases the adapter's connection to the backend.
	Close() error
}
