package tree

import (
	"fmt"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
)

/*
NodeType distinguishes interior split nodes from leaves. The numeric
values are part of the serialized tree format and must not change.
*/
type NodeType int

const (
	SplitNode NodeType = 1
	LeafNode  NodeType = 2
)

/*
Operator is the comparison a split node applies between an instance
value and the node's split value. The numeric values are part of the
serialized tree format and must not change. An instance follows the
left branch when the left operator holds and the right branch
otherwise, so the left and right operators of a node are always
complementary.
*/
type Operator int

const (
	NoOp        Operator = 0
	LessOrEqual Operator = 1
	Greater     Operator = 2
	Equal       Operator = 3
	NotEqual    Operator = 4
)

func (op Operator) String() string {
	switch op {
	case NoOp:
		return "noop"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	}
	return fmt.Sprintf("operator(%d)", int(op))
}

/*
Node is a node of a decision tree. A split node holds the feature it
tests, the value it tests against and its two children; a leaf node
holds the prediction for the region of instances that reaches it,
and optionally the instances themselves when the tree was grown with
leaf instance retention.
*/
type Node struct {
	ID           int
	Type         NodeType
	FeatureIndex int
	FeatureKind  feature.Kind
	SplitValue   feature.Value
	Left         *Node
	Right        *Node
	LeftOp       Operator
	RightOp      Operator
	Prediction   feature.Value
	Instances    []dataset.Instance
}

/*
leftMatches reports whether the instance value satisfies the node's
left constraint. It panics if the node carries an operator that is
not valid on the left branch, since that indicates a corrupt tree
rather than bad input.
*/
func (n *Node) leftMatches(v feature.Value) bool {
	switch n.LeftOp {
	case LessOrEqual:
		return v.Continuous <= n.SplitValue.Continuous
	case Equal:
		return v.Category == n.SplitValue.Category
	}
	panic(fmt.Sprintf("tree: node %d has invalid left operator %v", n.ID, n.LeftOp))
}
