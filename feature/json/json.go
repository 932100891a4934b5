/*
Package json serializes feature definitions to JSON and reconstructs
them. It is used by the model persistence layer to embed the
definition a model was trained over, so a stored model can be applied
without the original metadata file.
*/
package json

import (
	"encoding/json"
	"fmt"

	"github.com/canopyml/canopy/feature"
)

/*
Descriptor is the serialized form of a feature descriptor. The field
tags are part of the persisted format.
*/
type Descriptor struct {
	Name            string   `json:"name"`
	Kind            int      `json:"kind"`
	Categories      []string `json:"categories,omitempty"`
	PreserveMissing bool     `json:"preserve_missing,omitempty"`
	Mean            float32  `json:"mean,omitempty"`
	StdDev          float32  `json:"stddev,omitempty"`
}

/*
EncodeDefinition returns the serializable form of a definition.
*/
func EncodeDefinition(definition feature.Definition) []*Descriptor {
	encoded := make([]*Descriptor, 0, len(definition))
	for _, descriptor := range definition {
		jd := &Descriptor{
			Name: descriptor.Name,
			Kind: int(descriptor.Kind),
		}
		if descriptor.Kind == feature.Discrete {
			jd.Categories = descriptor.Categories
			jd.PreserveMissing = descriptor.PreserveMissing
		} else {
			jd.Mean = descriptor.Mean
			jd.StdDev = descriptor.StdDev
		}
		encoded = append(encoded, jd)
	}
	return encoded
}

/*
DecodeDefinition reconstructs a definition from its serialized form.
Discrete features keep their serialized category table verbatim, so
category indices recorded in a model keep their meaning.
*/
func DecodeDefinition(encoded []*Descriptor) (feature.Definition, error) {
	definition := make(feature.Definition, 0, len(encoded))
	for i, jd := range encoded {
		if jd.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		switch feature.Kind(jd.Kind) {
		case feature.Continuous:
			definition = append(definition, feature.NewContinuousDescriptor(jd.Name, jd.Mean, jd.StdDev))
		case feature.Discrete:
			descriptor := feature.NewDiscreteDescriptor(jd.Name, nil)
			for _, category := range jd.Categories {
				descriptor.AddCategory(category)
			}
			descriptor.PreserveMissing = jd.PreserveMissing
			definition = append(definition, descriptor)
		default:
			return nil, fmt.Errorf("feature %s has unknown kind %d", jd.Name, jd.Kind)
		}
	}
	return definition, nil
}

/*
Marshal serializes a definition as JSON.
*/
func Marshal(definition feature.Definition) ([]byte, error) {
	return json.Marshal(EncodeDefinition(definition))
}

/*
Unmarshal reconstructs a definition from its JSON serialization.
*/
func Unmarshal(data []byte) (feature.Definition, error) {
	var encoded []*Descriptor
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, fmt.Errorf("cannot parse feature definition: %v", err)
	}
	return DecodeDefinition(encoded)
}
