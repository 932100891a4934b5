/*
Package sqlite3adapter implements the sqldataset adapter interface on
SQLite3 database files.
*/
package sqlite3adapter

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/canopyml/canopy/dataset/sqldataset"
)

/*
MaxInstanceInsertionsPerStatement is the maximum number of instances
inserted with a single statement. Larger writes are split into
multiple statements.
*/
const MaxInstanceInsertionsPerStatement = 100

const categoryTableCreateStmt = `CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL)`

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an adapter
that works on the file's database, or an error if it cannot be opened
as an SQLite3 database.
*/
func New(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	if featureName == "id" {
		return "", fmt.Errorf("'%s' is reserved and cannot be used as a feature name", featureName)
	}
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return featureName, nil
}

func (a *adapter) CreateCategoryTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, categoryTableCreateStmt)
	if err != nil {
		return fmt.Errorf("ensuring categories table exists: %v", err)
	}
	return nil
}

func (a *adapter) CreateInstanceTable(ctx context.Context, discreteColumns, continuousColumns []string) error {
	if _, err := a.db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return err
	}
	var createStmtBuf bytes.Buffer
	createStmtBuf.WriteString("CREATE TABLE IF NOT EXISTS instances(")
	for _, c := range discreteColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" INTEGER NULL REFERENCES categories(id), `, c))
	}
	for _, c := range continuousColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" REAL NULL, `, c))
	}
	createStmtBuf.WriteString(`"id" INTEGER PRIMARY KEY AUTOINCREMENT)`)
	if _, err := a.db.ExecContext(ctx, createStmtBuf.String()); err != nil {
		return fmt.Errorf("ensuring instances table exists: %v", err)
	}
	return nil
}

func (a *adapter) AddCategories(ctx context.Context, names []string) error {
	stmt, err := a.db.PrepareContext(ctx, "INSERT OR IGNORE INTO categories (name) VALUES (?)")
	if err != nil {
		return fmt.Errorf("preparing category insertion statement: %v", err)
	}
	defer stmt.Close()
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("inserting category %q: %v", name, err)
		}
	}
	return nil
}

func (a *adapter) ListCategories(ctx context.Context) (map[int]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT id, name FROM categories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[int]string)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		result[id] = name
	}
	return result, rows.Err()
}

func (a *adapter) AddInstances(ctx context.Context, rows []map[string]interface{}, discreteColumns, continuousColumns []string) (int, error) {
	columns := append(append([]string{}, discreteColumns...), continuousColumns...)
	if len(columns) == 0 {
		return 0, fmt.Errorf("no features to store")
	}
	inserted := 0
	for len(rows) > 0 {
		chunk := rows
		if len(chunk) > MaxInstanceInsertionsPerStatement {
			chunk = chunk[:MaxInstanceInsertionsPerStatement]
		}
		stmt, values := buildInsert(columns, chunk)
		if _, err := a.db.ExecContext(ctx, stmt, values...); err != nil {
			return inserted, fmt.Errorf("inserting %d instances: %v", len(chunk), err)
		}
		inserted += len(chunk)
		rows = rows[len(chunk):]
	}
	return inserted, nil
}

func (a *adapter) IterateOnInstances(ctx context.Context, discreteColumns, continuousColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error {
	var queryBuf bytes.Buffer
	queryBuf.WriteString(`SELECT "`)
	queryBuf.WriteString(strings.Join(append(append([]string{}, discreteColumns...), continuousColumns...), `", "`))
	queryBuf.WriteString(`" FROM instances ORDER BY id`)
	rows, err := a.db.QueryContext(ctx, queryBuf.String())
	if err != nil {
		return err
	}
	defer rows.Close()
	for index := 0; rows.Next(); index++ {
		discreteValues := make([]sql.NullInt64, len(discreteColumns))
		continuousValues := make([]sql.NullFloat64, len(continuousColumns))
		scanTargets := make([]interface{}, 0, len(discreteValues)+len(continuousValues))
		for i := range discreteValues {
			scanTargets = append(scanTargets, &discreteValues[i])
		}
		for i := range continuousValues {
			scanTargets = append(scanTargets, &continuousValues[i])
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return err
		}
		row := make(map[string]interface{})
		for i, c := range discreteColumns {
			if discreteValues[i].Valid {
				row[c] = int(discreteValues[i].Int64)
			}
		}
		for i, c := range continuousColumns {
			if continuousValues[i].Valid {
				row[c] = continuousValues[i].Float64
			}
		}
		ok, err := lambda(index, row)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return rows.Err()
}

func (a *adapter) CountInstances(ctx context.Context) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM instances").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (a *adapter) Close() error {
	return a.db.Close()
}

/*
buildInsert builds a multi-row insert statement for the given rows
over the given columns. Missing columns in a row insert NULL.
*/
func buildInsert(columns []string, rows []map[string]interface{}) (string, []interface{}) {
	var buf bytes.Buffer
	buf.WriteString(`INSERT INTO instances ("`)
	buf.WriteString(strings.Join(columns, `", "`))
	buf.WriteString(`") VALUES `)
	values := make([]interface{}, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(?")
		for j := 1; j < len(columns); j++ {
			buf.WriteString(", ?")
		}
		buf.WriteString(")")
		for _, c := range columns {
			v, ok := row[c]
			if !ok {
				values = append(values, nil)
				continue
			}
			values = append(values, v)
		}
	}
	return buf.String(), values
}
