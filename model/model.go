/*
Package model persists trained forests as single JSON documents and
restores them. A document carries the training parameters, the
feature definition the forest was trained over and the serialized
trees, so a stored model is self-contained: it can be loaded and
applied without the metadata or data it was built from.
*/
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"

	canopy "github.com/canopyml/canopy"
	"github.com/canopyml/canopy/feature"
	featurejson "github.com/canopyml/canopy/feature/json"
	treejson "github.com/canopyml/canopy/tree/json"
)

/*
Forest is the serialized form of a trained forest. The field tags are
part of the persisted format.
*/
type Forest struct {
	ModelKind        int                       `json:"kind"`
	TargetIndex      int                       `json:"target"`
	TreeCount        int                       `json:"tree_count"`
	Seed             uint32                    `json:"seed"`
	Threads          int                       `json:"threads"`
	MaxDepth         int                       `json:"max_depth"`
	MinLeafInstances int                       `json:"min_leaf_instances"`
	FeaturesPerSplit int                       `json:"features_per_split"`
	OOB              bool                      `json:"oob"`
	Definition       []*featurejson.Descriptor `json:"features,omitempty"`
	Trees            []*treejson.Tree          `json:"forest"`
}

/*
Encode returns the serializable form of a forest together with the
definition it was trained over. Out-of-bag index sets are not
persisted, only whether they were computed.
*/
func Encode(f *canopy.Forest, definition feature.Definition) *Forest {
	encoded := &Forest{
		ModelKind:        int(f.ModelKind),
		TargetIndex:      f.TargetIndex,
		TreeCount:        len(f.Trees),
		Seed:             f.Seed,
		Threads:          f.Threads,
		MaxDepth:         f.MaxDepth,
		MinLeafInstances: f.MinLeafInstances,
		FeaturesPerSplit: f.FeaturesPerSplit,
		OOB:              f.WithOOB,
		Definition:       featurejson.EncodeDefinition(definition),
	}
	for _, t := range f.Trees {
		encoded.Trees = append(encoded.Trees, treejson.EncodeTree(t))
	}
	return encoded
}

/*
Decode reconstructs a forest and its feature definition from their
serialized form.
*/
func Decode(encoded *Forest) (*canopy.Forest, feature.Definition, error) {
	if encoded.TreeCount != len(encoded.Trees) {
		return nil, nil, fmt.Errorf("model declares %d trees but contains %d", encoded.TreeCount, len(encoded.Trees))
	}
	definition, err := featurejson.DecodeDefinition(encoded.Definition)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot decode model features: %v", err)
	}
	f := &canopy.Forest{
		TargetIndex:      encoded.TargetIndex,
		ModelKind:        feature.ModelKind(encoded.ModelKind),
		Seed:             encoded.Seed,
		Threads:          encoded.Threads,
		MaxDepth:         encoded.MaxDepth,
		MinLeafInstances: encoded.MinLeafInstances,
		FeaturesPerSplit: encoded.FeaturesPerSplit,
		WithOOB:          encoded.OOB,
	}
	for i, jt := range encoded.Trees {
		t, err := treejson.DecodeTree(jt)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot decode tree %d: %v", i, err)
		}
		f.Trees = append(f.Trees, t)
	}
	return f, definition, nil
}

/*
Write serializes the forest and its definition as a JSON document on
the given writer.
*/
func Write(w io.Writer, f *canopy.Forest, definition feature.Definition) error {
	if err := json.NewEncoder(w).Encode(Encode(f, definition)); err != nil {
		return fmt.Errorf("writing model: %v", err)
	}
	return nil
}

/*
Read reconstructs a forest and its definition from a JSON document on
the given reader.
*/
func Read(r io.Reader) (*canopy.Forest, feature.Definition, error) {
	encoded := &Forest{}
	if err := json.NewDecoder(r).Decode(encoded); err != nil {
		return nil, nil, fmt.Errorf("reading model: %v", err)
	}
	return Decode(encoded)
}

/*
Marshal serializes the forest and its definition as JSON.
*/
func Marshal(f *canopy.Forest, definition feature.Definition) ([]byte, error) {
	return json.Marshal(Encode(f, definition))
}

/*
Unmarshal reconstructs a forest and its definition from their JSON
serialization.
*/
func Unmarshal(data []byte) (*canopy.Forest, feature.Definition, error) {
	encoded := &Forest{}
	if err := json.Unmarshal(data, encoded); err != nil {
		return nil, nil, fmt.Errorf("cannot parse model: %v", err)
	}
	return Decode(encoded)
}

/*
WriteFile stores the forest and its definition in the file at the
given path, replacing it if it exists.
*/
func WriteFile(path string, f *canopy.Forest, definition feature.Definition) error {
	data, err := Marshal(f, definition)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing model file %s: %v", path, err)
	}
	return nil
}

/*
ReadFile loads a forest and its definition from the file at the given
path.
*/
func ReadFile(path string) (*canopy.Forest, feature.Definition, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading model file %s: %v", path, err)
	}
	return Unmarshal(data)
}
