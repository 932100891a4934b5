package json

import (
	"fmt"

	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/tree"
)

/*
Node is the flat serialized form of a tree node. Splits and leaves
share the shape: a split carries the tested feature, the value it is
tested against and the ids and operators of its children, while a
leaf carries its prediction in the value field and -1 for both child
ids. The field tags are part of the persisted format.
*/
type Node struct {
	ID           int     `json:"id"`
	Type         int     `json:"nt"`
	FeatureIndex int     `json:"fi"`
	FeatureKind  int     `json:"ft"`
	Value        float64 `json:"fv"`
	LeftID       int     `json:"lid"`
	LeftOp       int     `json:"lop"`
	RightID      int     `json:"rid"`
	RightOp      int     `json:"rop"`
}

func encodeNode(n *tree.Node, kind feature.ModelKind, out *[]*Node) {
	jn := &Node{
		ID:           n.ID,
		Type:         int(n.Type),
		FeatureIndex: n.FeatureIndex,
		FeatureKind:  int(n.FeatureKind),
		LeftID:       -1,
		RightID:      -1,
	}
	if n.Type == tree.LeafNode {
		if kind == feature.Regression {
			jn.Value = float64(n.Prediction.Continuous)
		} else {
			jn.Value = float64(n.Prediction.Category)
		}
		*out = append(*out, jn)
		return
	}
	if n.FeatureKind == feature.Continuous {
		jn.Value = float64(n.SplitValue.Continuous)
	} else {
		jn.Value = float64(n.SplitValue.Category)
	}
	jn.LeftID = n.Left.ID
	jn.LeftOp = int(n.LeftOp)
	jn.RightID = n.Right.ID
	jn.RightOp = int(n.RightOp)
	*out = append(*out, jn)
	encodeNode(n.Left, kind, out)
	encodeNode(n.Right, kind, out)
}

/*
decodeNode reconstructs the subtree rooted at the node with the given
id from the flat node table. Nodes may appear in the table in any
order, so children are resolved through the table rather than by
position. The visited set rejects tables whose links form a cycle.
*/
func decodeNode(id int, nodes map[int]*Node, kind feature.ModelKind, visited map[int]bool) (*tree.Node, error) {
	jn, ok := nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %d referenced but not present", id)
	}
	if visited[id] {
		return nil, fmt.Errorf("node %d referenced more than once", id)
	}
	visited[id] = true
	n := &tree.Node{
		ID:           jn.ID,
		Type:         tree.NodeType(jn.Type),
		FeatureIndex: jn.FeatureIndex,
		FeatureKind:  feature.Kind(jn.FeatureKind),
	}
	switch n.Type {
	case tree.LeafNode:
		if kind == feature.Regression {
			n.Prediction = feature.NewContinuous(float32(jn.Value))
		} else {
			n.Prediction = feature.NewCategory(int(jn.Value))
		}
		return n, nil
	case tree.SplitNode:
	default:
		return nil, fmt.Errorf("node %d has unknown type %d", id, jn.Type)
	}
	if n.FeatureKind == feature.Continuous {
		n.SplitValue = feature.NewContinuous(float32(jn.Value))
	} else {
		n.SplitValue = feature.NewCategory(int(jn.Value))
	}
	n.LeftOp = tree.Operator(jn.LeftOp)
	n.RightOp = tree.Operator(jn.RightOp)
	var err error
	n.Left, err = decodeNode(jn.LeftID, nodes, kind, visited)
	if err != nil {
		return nil, err
	}
	n.Right, err = decodeNode(jn.RightID, nodes, kind, visited)
	if err != nil {
		return nil, err
	}
	return n, nil
}
