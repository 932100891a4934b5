/*
Package json serializes decision trees to a flat JSON form and
reconstructs them. A tree is written as its counts plus a table of
nodes in preorder, each node naming its children by id, so a reader
can reconstruct the tree from nodes given in any order, including
tables where children appear before their parents.
*/
package json

import (
	"encoding/json"
	"fmt"

	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/tree"
)

/*
Tree is the serialized form of a decision tree. The field tags are
part of the persisted format.
*/
type Tree struct {
	TargetIndex      int       `json:"target"`
	ModelKind        int       `json:"kind"`
	NodeCount        int       `json:"nodes"`
	LeafCount        int       `json:"leaves"`
	RootID           int       `json:"root"`
	Nodes            []*Node   `json:"tree"`
	ImportanceScores []float64 `json:"importance_scores,omitempty"`
	ImportanceCounts []int     `json:"importance_counts,omitempty"`
}

/*
EncodeTree returns the serializable form of a tree. Instance lists
retained at the leaves are not carried over.
*/
func EncodeTree(t *tree.Tree) *Tree {
	jt := &Tree{
		TargetIndex: t.TargetIndex,
		ModelKind:   int(t.ModelKind),
		NodeCount:   t.NodeCount,
		LeafCount:   t.LeafCount,
	}
	if t.Root != nil {
		jt.RootID = t.Root.ID
		encodeNode(t.Root, t.ModelKind, &jt.Nodes)
	} else {
		jt.RootID = -1
	}
	for _, importance := range t.Importance {
		jt.ImportanceScores = append(jt.ImportanceScores, importance.Score)
		jt.ImportanceCounts = append(jt.ImportanceCounts, importance.Count)
	}
	return jt
}

/*
DecodeTree reconstructs a tree from its serialized form. It returns
an error if the node table is inconsistent: a missing or repeated
node id, a child of the wrong generation or an unknown node type.
*/
func DecodeTree(jt *Tree) (*tree.Tree, error) {
	t := &tree.Tree{
		TargetIndex: jt.TargetIndex,
		ModelKind:   feature.ModelKind(jt.ModelKind),
		NodeCount:   jt.NodeCount,
		LeafCount:   jt.LeafCount,
	}
	if len(jt.ImportanceScores) != len(jt.ImportanceCounts) {
		return nil, fmt.Errorf("tree has %d importance scores but %d importance counts", len(jt.ImportanceScores), len(jt.ImportanceCounts))
	}
	for i, score := range jt.ImportanceScores {
		t.Importance = append(t.Importance, tree.Importance{Score: score, Count: jt.ImportanceCounts[i]})
	}
	if jt.RootID < 0 {
		return t, nil
	}
	nodes := make(map[int]*Node, len(jt.Nodes))
	for _, jn := range jt.Nodes {
		if _, ok := nodes[jn.ID]; ok {
			return nil, fmt.Errorf("node id %d appears twice", jn.ID)
		}
		nodes[jn.ID] = jn
	}
	root, err := decodeNode(jt.RootID, nodes, t.ModelKind, make(map[int]bool, len(nodes)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode tree: %v", err)
	}
	t.Root = root
	return t, nil
}

/*
Marshal serializes a tree as JSON.
*/
func Marshal(t *tree.Tree) ([]byte, error) {
	return json.Marshal(EncodeTree(t))
}

/*
Unmarshal reconstructs a tree from its JSON serialization.
*/
func Unmarshal(data []byte) (*tree.Tree, error) {
	jt := &Tree{}
	if err := json.Unmarshal(data, jt); err != nil {
		return nil, fmt.Errorf("cannot parse tree: %v", err)
	}
	return DecodeTree(jt)
}
