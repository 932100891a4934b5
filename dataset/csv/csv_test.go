package csv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyml/canopy/feature"
)

const irisLike = `sepal:C,soil:D:P,species:D
5.1,clay,setosa
4.9,sand,setosa
7.0,?,versicolor
6.4,clay,versicolor
?,sand,?
`

func TestReadDatasetParsesHeader(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	require.Len(t, d.Definition, 3)
	assert.Equal(t, feature.Continuous, d.Definition[0].Kind)
	assert.Equal(t, feature.Discrete, d.Definition[1].Kind)
	assert.True(t, d.Definition[1].PreserveMissing)
	assert.False(t, d.Definition[2].PreserveMissing)
	assert.Equal(t, []string{feature.UnknownCategory, "clay", "sand"}, d.Definition[1].Categories)
	assert.Equal(t, []string{feature.UnknownCategory, "setosa", "versicolor"}, d.Definition[2].Categories)
	assert.Equal(t, 5, d.Count())
}

func TestReadDatasetBackfillsContinuousWithMean(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	// Mean of the four known sepal values.
	mean := float32((5.1 + 4.9 + 7.0 + 6.4) / 4)
	assert.InDelta(t, float64(mean), float64(d.Definition[0].Mean), 1e-5)
	assert.Greater(t, d.Definition[0].StdDev, float32(0))
	assert.InDelta(t, float64(mean), float64(d.Instances[4][0].Continuous), 1e-5)
}

func TestReadDatasetBackfillsDiscreteWithMode(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	species := d.Definition[2]
	// setosa and versicolor tie at two; the lower index wins the mode.
	assert.Equal(t, 1, species.ModeIndex)
	assert.Equal(t, 1, d.Instances[4][2].Category)
}

func TestReadDatasetPreservesMissing(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	// soil is declared :P, so the missing value stays unknown.
	assert.Equal(t, 0, d.Instances[2][1].Category)
}

func TestReadDatasetIgnoresColumns(t *testing.T) {
	input := "id:I,sepal:C,comment:I,species:D\n1,5.1,first,setosa\n2,4.9,second,versicolor\n"
	d, err := ReadDataset(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, d.Definition, 2)
	assert.Equal(t, "sepal", d.Definition[0].Name)
	assert.Equal(t, "species", d.Definition[1].Name)
	require.Equal(t, 2, d.Count())
	assert.InDelta(t, 4.9, float64(d.Instances[1][0].Continuous), 1e-5)
	assert.Equal(t, 2, d.Instances[1][1].Category)

	_, err = ReadDataset(strings.NewReader("id:I,comment:I\n1,2\n"))
	assert.Error(t, err)
}

func TestReadDatasetHeaderErrors(t *testing.T) {
	for _, header := range []string{
		"sepal\n1\n",
		"sepal:X\n1\n",
		"sepal:C:P\n1\n",
		":C\n1\n",
	} {
		_, err := ReadDataset(strings.NewReader(header))
		assert.Error(t, err, "header %q accepted", header)
	}
}

func TestReadDatasetRowErrors(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("x:C,label:D\nnotanumber,a\n"))
	assert.Error(t, err)
}

func TestReadInstancesAgainstDefinition(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	input := "sepal,soil,species\n6.0,clay,versicolor\n?,peat,?\n"
	instances, err := ReadInstances(strings.NewReader(input), d.Definition)
	require.NoError(t, err)
	require.Equal(t, 2, instances.Count())
	assert.Equal(t, 2, instances.Instances[0][2].Category)
	// Missing continuous values take the ingested mean.
	assert.InDelta(t, float64(d.Definition[0].Mean), float64(instances.Instances[1][0].Continuous), 1e-5)
	// A category never seen during ingestion maps to unknown.
	assert.Equal(t, 0, instances.Instances[1][1].Category)
	assert.Equal(t, 0, instances.Instances[1][2].Category)
}

func TestReadInstancesRejectsWrongColumns(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	_, err = ReadInstances(strings.NewReader("sepal,species\n1,setosa\n"), d.Definition)
	assert.Error(t, err)
	_, err = ReadInstances(strings.NewReader("species,soil,sepal\nsetosa,clay,1\n"), d.Definition)
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	d, err := ReadDataset(strings.NewReader(irisLike))
	require.NoError(t, err)
	var buffer bytes.Buffer
	require.NoError(t, Write(&buffer, d))
	again, err := ReadDataset(&buffer)
	require.NoError(t, err)
	require.Equal(t, d.Count(), again.Count())
	assert.Equal(t, d.Definition[1].Categories, again.Definition[1].Categories)
	for i := range d.Instances {
		assert.Equal(t, d.Instances[i][1].Category, again.Instances[i][1].Category)
		assert.InDelta(t, float64(d.Instances[i][0].Continuous), float64(again.Instances[i][0].Continuous), 1e-5)
	}
}
