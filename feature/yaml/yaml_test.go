package yaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyml/canopy/feature"
)

const irisMetadata = `
features:
  - name: sepal_length
    kind: continuous
  - name: soil
    values: [clay, sand]
    preserve_missing: true
  - name: species
    values: [setosa, versicolor, virginica]
`

func TestReadDefinition(t *testing.T) {
	definition, err := ReadDefinition([]byte(irisMetadata))
	require.NoError(t, err)
	require.Len(t, definition, 3)

	assert.Equal(t, feature.Continuous, definition[0].Kind)
	assert.Equal(t, "sepal_length", definition[0].Name)

	assert.Equal(t, feature.Discrete, definition[1].Kind)
	assert.True(t, definition[1].PreserveMissing)
	assert.Equal(t, []string{feature.UnknownCategory, "clay", "sand"}, definition[1].Categories)

	assert.Equal(t, feature.Discrete, definition[2].Kind)
	assert.False(t, definition[2].PreserveMissing)
	assert.Equal(t, 3, definition[2].CategoryIndex["virginica"])
}

func TestReadDefinitionDefaultsToContinuous(t *testing.T) {
	definition, err := ReadDefinition([]byte("features:\n  - name: height\n"))
	require.NoError(t, err)
	require.Len(t, definition, 1)
	assert.Equal(t, feature.Continuous, definition[0].Kind)
}

func TestReadDefinitionErrors(t *testing.T) {
	_, err := ReadDefinition([]byte("features: []\n"))
	assert.Error(t, err)
	_, err = ReadDefinition([]byte("features:\n  - kind: continuous\n"))
	assert.Error(t, err)
	_, err = ReadDefinition([]byte("features:\n  - name: height\n    kind: numeric\n"))
	assert.Error(t, err)
	_, err = ReadDefinition([]byte("not yaml: ["))
	assert.Error(t, err)
}

func TestWriteDefinitionRoundTrip(t *testing.T) {
	definition, err := ReadDefinition([]byte(irisMetadata))
	require.NoError(t, err)
	md, err := WriteDefinition(definition)
	require.NoError(t, err)
	again, err := ReadDefinition(md)
	require.NoError(t, err)
	require.Len(t, again, len(definition))
	for i, descriptor := range definition {
		assert.Equal(t, descriptor.Name, again[i].Name)
		assert.Equal(t, descriptor.Kind, again[i].Kind)
		assert.Equal(t, descriptor.Categories, again[i].Categories)
		assert.Equal(t, descriptor.PreserveMissing, again[i].PreserveMissing)
	}
}
