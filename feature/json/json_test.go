package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyml/canopy/feature"
)

func testDefinition() feature.Definition {
	soil := feature.NewDiscreteDescriptor("soil", []string{"clay", "sand"})
	soil.PreserveMissing = true
	return feature.Definition{
		feature.NewContinuousDescriptor("sepal_length", 5.1, 0.6),
		soil,
		feature.NewDiscreteDescriptor("species", []string{"setosa", "versicolor"}),
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	definition := testDefinition()
	data, err := Marshal(definition)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, decoded, len(definition))
	for i, descriptor := range definition {
		assert.Equal(t, descriptor.Name, decoded[i].Name)
		assert.Equal(t, descriptor.Kind, decoded[i].Kind)
		assert.Equal(t, descriptor.Categories, decoded[i].Categories)
		assert.Equal(t, descriptor.PreserveMissing, decoded[i].PreserveMissing)
		assert.Equal(t, descriptor.Mean, decoded[i].Mean)
		assert.Equal(t, descriptor.StdDev, decoded[i].StdDev)
	}
}

func TestDecodeKeepsCategoryIndices(t *testing.T) {
	definition := testDefinition()
	data, err := Marshal(definition)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, definition[2].CategoryIndex["versicolor"], decoded[2].CategoryIndex["versicolor"])
	assert.Equal(t, 0, decoded[2].CategoryIndex[feature.UnknownCategory])
}

func TestDecodeErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`[{"kind": 0}]`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`[{"name": "soil", "kind": 7}]`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{`))
	assert.Error(t, err)
}
