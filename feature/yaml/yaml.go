/*
Package yaml parses feature definitions, also known as metadata, from
YAML documents and writes them back.

A definition is declared as an ordered list, since the position of a
feature in the definition is the position of its column in the data:

	features:
	  - name: sepal_length
	    kind: continuous
	  - name: species
	    values: [setosa, versicolor, virginica]
	  - name: soil
	    values: [clay, sand]
	    preserve_missing: true

A feature with a values list is discrete; its declared categories are
indexed in order after the reserved unknown category. Discrete
features may also declare preserve_missing to make missing values
splittable like any category.
*/
package yaml

import (
	"fmt"
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"

	"github.com/canopyml/canopy/feature"
)

type metadata struct {
	Features []featureSpec `yaml:"features"`
}

type featureSpec struct {
	Name            string   `yaml:"name"`
	Kind            string   `yaml:"kind,omitempty"`
	Values          []string `yaml:"values,omitempty"`
	PreserveMissing bool     `yaml:"preserve_missing,omitempty"`
}

/*
ReadDefinition takes a slice of bytes with a feature definition in
YAML and returns the definition parsed from it or an error.
*/
func ReadDefinition(md []byte) (feature.Definition, error) {
	parsed := &metadata{}
	if err := yaml.Unmarshal(md, parsed); err != nil {
		return nil, fmt.Errorf("parsing yml features: %v", err)
	}
	if len(parsed.Features) == 0 {
		return nil, fmt.Errorf("metadata has no feature information")
	}
	definition := make(feature.Definition, 0, len(parsed.Features))
	for _, spec := range parsed.Features {
		if spec.Name == "" {
			return nil, fmt.Errorf("feature declaration without a name")
		}
		if len(spec.Values) > 0 {
			descriptor := feature.NewDiscreteDescriptor(spec.Name, spec.Values)
			descriptor.PreserveMissing = spec.PreserveMissing
			definition = append(definition, descriptor)
			continue
		}
		switch spec.Kind {
		case "continuous", "":
			definition = append(definition, feature.NewContinuousDescriptor(spec.Name, 0, 0))
		case "discrete":
			definition = append(definition, feature.NewDiscreteDescriptor(spec.Name, nil))
		default:
			return nil, fmt.Errorf("invalid kind '%s' for feature %s", spec.Kind, spec.Name)
		}
	}
	return definition, nil
}

/*
ReadDefinitionFromFile takes a filepath string, reads its contents
and uses ReadDefinition to parse it into a feature definition. If the
file cannot be opened for reading an error is returned.
*/
func ReadDefinitionFromFile(filepath string) (feature.Definition, error) {
	md, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading features yml file %s: %v", filepath, err)
	}
	definition, err := ReadDefinition(md)
	if err != nil {
		err = fmt.Errorf("parsing features yml file %s: %v", filepath, err)
	}
	return definition, err
}

/*
WriteDefinition serializes a feature definition as a YAML document in
the form ReadDefinition parses. The reserved unknown category of
discrete features is not written out.
*/
func WriteDefinition(definition feature.Definition) ([]byte, error) {
	md := &metadata{}
	for _, descriptor := range definition {
		spec := featureSpec{Name: descriptor.Name}
		if descriptor.Kind == feature.Discrete {
			spec.Kind = "discrete"
			if len(descriptor.Categories) > 1 {
				spec.Values = descriptor.Categories[1:]
			}
			spec.PreserveMissing = descriptor.PreserveMissing
		} else {
			spec.Kind = "continuous"
		}
		md.Features = append(md.Features, spec)
	}
	return yaml.Marshal(md)
}
