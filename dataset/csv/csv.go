/*
Package csv reads datasets from CSV streams and writes them back.

The header row declares the features: every column is "Name:C" for a
continuous feature, "Name:D" for a discrete one, or "Name:I" for a
column to ignore. Discrete features accept an optional ":P" suffix to
preserve missing values as a splittable category. Body cells hold
numbers for continuous features and category names for discrete ones;
a "?" or empty cell is a missing value.

Ingestion is a two-pass process. The first pass parses the rows,
collecting the category table of every discrete feature and marking
missing values. The second pass computes the mean and standard
deviation of every continuous feature over its known values and the
mode of every discrete feature, then backfills missing values with
them, except in discrete features declared to preserve missing
values, which keep them in the reserved unknown category.
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
ReadDataset parses a CSV stream whose header declares the features
and returns the ingested dataset, missing values backfilled.
*/
func ReadDataset(reader io.Reader) (*dataset.Dataset, error) {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	definition, ignored, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	d := dataset.New(definition)
	missing, err := readRows(r, d, true, ignored)
	if err != nil {
		return nil, err
	}
	backfill(d, missing)
	return d, nil
}

/*
ReadDatasetFromFilePath opens the file at the given path, or stdin if
the path is empty, and uses ReadDataset to parse it.
*/
func ReadDatasetFromFilePath(filepath string) (*dataset.Dataset, error) {
	f, err := openOrStdin(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadDataset(f)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return d, err
}

/*
ReadInstances parses a CSV stream against an already ingested
definition, as when applying a trained model to new data. The header
must name the definition's features in definition order; annotations
are accepted and ignored. Category names the definition has never
seen map to the unknown category, and missing continuous values are
filled with the mean recorded in the definition.
*/
func ReadInstances(reader io.Reader, definition feature.Definition) (*dataset.Dataset, error) {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	if len(header) != len(definition) {
		return nil, fmt.Errorf("header has %d columns, definition has %d features", len(header), len(definition))
	}
	for i, cell := range header {
		name := strings.SplitN(cell, ":", 2)[0]
		if name != definition[i].Name {
			return nil, fmt.Errorf("column %d is %q, expected feature %q", i, name, definition[i].Name)
		}
	}
	d := dataset.New(definition)
	if _, err := readRows(r, d, false, nil); err != nil {
		return nil, err
	}
	return d, nil
}

/*
ReadInstancesFromFilePath opens the file at the given path, or stdin
if the path is empty, and uses ReadInstances to parse it.
*/
func ReadInstancesFromFilePath(filepath string, definition feature.Definition) (*dataset.Dataset, error) {
	f, err := openOrStdin(filepath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := ReadInstances(f, definition)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return d, err
}

/*
Write dumps the dataset to the writer in the CSV form ReadDataset
parses, annotated header included.
*/
func Write(writer io.Writer, d *dataset.Dataset) error {
	w := csv.NewWriter(writer)
	header := make([]string, len(d.Definition))
	for i, descriptor := range d.Definition {
		switch {
		case descriptor.Kind == feature.Continuous:
			header[i] = descriptor.Name + ":C"
		case descriptor.PreserveMissing:
			header[i] = descriptor.Name + ":D:P"
		default:
			header[i] = descriptor.Name + ":D"
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %v", err)
	}
	record := make([]string, len(d.Definition))
	for rowIndex, instance := range d.Instances {
		for i, descriptor := range d.Definition {
			if descriptor.Kind == feature.Continuous {
				record[i] = strconv.FormatFloat(float64(instance[i].Continuous), 'g', -1, 32)
			} else if instance[i].Category == 0 {
				record[i] = "?"
			} else {
				record[i] = descriptor.CategoryName(instance[i].Category)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing CSV row %d: %v", rowIndex, err)
		}
	}
	w.Flush()
	return w.Error()
}

func parseHeader(header []string) (feature.Definition, []bool, error) {
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("header has no columns")
	}
	definition := make(feature.Definition, 0, len(header))
	ignored := make([]bool, len(header))
	for i, cell := range header {
		parts := strings.Split(cell, ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, nil, fmt.Errorf("column %d: %q is not of the form Name:C, Name:D[:P] or Name:I", i, cell)
		}
		name := parts[0]
		kind := strings.ToUpper(parts[1])
		preserve := len(parts) > 2 && strings.ToUpper(parts[2]) == "P"
		switch kind {
		case "C":
			if preserve {
				return nil, nil, fmt.Errorf("column %d: continuous feature %s cannot preserve missing values", i, name)
			}
			definition = append(definition, feature.NewContinuousDescriptor(name, 0, 0))
		case "D":
			descriptor := feature.NewDiscreteDescriptor(name, nil)
			descriptor.PreserveMissing = preserve
			definition = append(definition, descriptor)
		case "I":
			ignored[i] = true
		default:
			return nil, nil, fmt.Errorf("column %d: unknown feature kind %q for %s", i, parts[1], name)
		}
	}
	if len(definition) == 0 {
		return nil, nil, fmt.Errorf("header declares no features, every column is ignored")
	}
	return definition, ignored, nil
}

/*
readRows parses the body rows into d. When ingesting, new category
names extend the definition's category tables, ignored columns are
dropped and missing continuous values are marked for backfilling;
otherwise unseen categories map to the unknown category and missing
continuous values take the definition's recorded mean.
*/
func readRows(r *csv.Reader, d *dataset.Dataset, ingesting bool, ignored []bool) ([][]bool, error) {
	width := len(d.Definition)
	if ignored != nil {
		width = len(ignored)
	}
	var missing [][]bool
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			return missing, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading body: %v", err)
		}
		if len(row) != width {
			return nil, fmt.Errorf("line %d has %d columns, expected %d", line, len(row), width)
		}
		instance := make(dataset.Instance, len(d.Definition))
		missingRow := make([]bool, len(d.Definition))
		i := 0
		for column, cell := range row {
			if ignored != nil && ignored[column] {
				continue
			}
			descriptor := d.Definition[i]
			switch {
			case cell == "?" || cell == "":
				missingRow[i] = true
				if descriptor.Kind != feature.Continuous {
					instance[i] = feature.NewCategory(0)
				} else if ingesting {
					instance[i] = feature.NewContinuous(feature.MissingContinuous)
				} else {
					instance[i] = feature.NewContinuous(descriptor.Mean)
				}
			case descriptor.Kind == feature.Continuous:
				v, err := strconv.ParseFloat(cell, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: converting %q to a number for feature %s: %v", line, cell, descriptor.Name, err)
				}
				instance[i] = feature.NewContinuous(float32(v))
			case ingesting:
				instance[i] = feature.NewCategory(descriptor.AddCategory(cell))
			default:
				category, ok := descriptor.CategoryIndex[cell]
				if !ok {
					category = 0
				}
				instance[i] = feature.NewCategory(category)
			}
			i++
		}
		if err := d.Add(instance); err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		if ingesting {
			missing = append(missing, missingRow)
		}
	}
}

/*
backfill records the distribution of every feature on its descriptor
and replaces the values marked missing: continuous features take
their mean and discrete features their mode, unless they preserve
missing values.
*/
func backfill(d *dataset.Dataset, missing [][]bool) {
	for i, descriptor := range d.Definition {
		if descriptor.Kind == feature.Continuous {
			var stats dataset.Stats
			for row, instance := range d.Instances {
				if !missing[row][i] {
					stats.Add(instance[i].Continuous)
				}
			}
			descriptor.Mean = stats.Mean()
			descriptor.StdDev = stats.StdDev()
			for row, instance := range d.Instances {
				if missing[row][i] {
					instance[i].Continuous = descriptor.Mean
				}
			}
			continue
		}
		descriptor.CategoryCounts = d.CategoryCounts(i)
		descriptor.ModeIndex = 0
		for category := 1; category < len(descriptor.CategoryCounts); category++ {
			if descriptor.ModeIndex == 0 || descriptor.CategoryCounts[category] > descriptor.CategoryCounts[descriptor.ModeIndex] {
				descriptor.ModeIndex = category
			}
		}
		if descriptor.PreserveMissing || descriptor.ModeIndex == 0 {
			continue
		}
		for row, instance := range d.Instances {
			if missing[row][i] {
				instance[i].Category = descriptor.ModeIndex
			}
		}
	}
}

func openOrStdin(filepath string) (*os.File, error) {
	if filepath == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %v", err)
	}
	return f, nil
}
