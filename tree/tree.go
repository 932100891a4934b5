/*
Package tree grows, evaluates and prunes decision trees over datasets.

Trees are grown by recursive partitioning: at every node the builder
draws a random subset of the features, generates split candidates for
each and keeps the candidate whose partition scores strictly better
than leaving the region undivided. Regions that cannot be improved,
that would produce a side smaller than the minimum leaf size or that
sit at the depth limit become leaves predicting the region's mean or
mode.
*/
package tree

import (
	"fmt"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
Importance accumulates the contribution of one feature to a tree: the
total score reduction of the splits made on it and the number of such
splits.
*/
type Importance struct {
	Score float64
	Count int
}

/*
Tree is a grown decision tree. TargetIndex is the feature the tree
predicts; Importance holds one entry per feature of the definition
the tree was grown over.
*/
type Tree struct {
	Root        *Node
	TargetIndex int
	ModelKind   feature.ModelKind
	NodeCount   int
	LeafCount   int
	Importance  []Importance
}

func (t *Tree) String() string {
	return fmt.Sprintf("tree of %d nodes (%d leaves) predicting feature %d", t.NodeCount, t.LeafCount, t.TargetIndex)
}

/*
Evaluate walks the instance down the tree and returns the prediction
of the leaf it reaches. It returns an error if the instance carries
fewer values than a split on the path needs, and the zero value if
the tree has no root. It panics on a structurally invalid tree, such
as a split node with a missing child or an unknown operator.
*/
func (t *Tree) Evaluate(instance dataset.Instance) (feature.Value, error) {
	node := t.Root
	if node == nil {
		return feature.Value{}, nil
	}
	for node.Type == SplitNode {
		if node.FeatureIndex >= len(instance) {
			return feature.Value{}, fmt.Errorf("instance has %d values but node %d tests feature %d", len(instance), node.ID, node.FeatureIndex)
		}
		var next *Node
		if node.leftMatches(instance[node.FeatureIndex]) {
			next = node.Left
		} else {
			next = node.Right
		}
		if next == nil {
			panic(fmt.Sprintf("tree: split node %d is missing a child", node.ID))
		}
		node = next
	}
	return node.Prediction, nil
}

/*
Leaves returns the leaf nodes of the tree in preorder.
*/
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Type == LeafNode {
			leaves = append(leaves, n)
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
	return leaves
}

/*
ClearLeafInstances drops the instance lists retained at the leaves of
a tree grown with leaf instance retention.
*/
func (t *Tree) ClearLeafInstances() {
	for _, leaf := range t.Leaves() {
		leaf.Instances = nil
	}
}
