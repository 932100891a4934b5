package tree

import (
	"fmt"
	"math"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/prng"
)

/*
Two regression leaves predicting within this distance of each other
are considered equal when deciding whether to collapse their parent.
*/
const predictionEqualTolerance = 1e-8

/*
Logger receives diagnostic messages produced while growing trees.
*/
type Logger interface {
	Logf(format string, v ...interface{})
}

/*
Builder grows decision trees over a dataset. A Builder is not safe
for concurrent use since every tree it grows consumes draws from its
random source.
*/
type Builder struct {
	TargetIndex int
	// MaxDepth bounds how many splits any branch may stack. A depth
	// of 0 leaves branches unbounded.
	MaxDepth            int
	MinLeafInstances    int
	FeaturesPerSplit    int
	RetainLeafInstances bool
	RNG                 *prng.Source
	Log                 Logger
}

/*
Build grows a tree predicting the builder's target feature over the
given dataset. It returns an error without growing anything if the
dataset is empty or the builder's configuration is invalid.
*/
func (b *Builder) Build(d *dataset.Dataset) (*Tree, error) {
	if d == nil || len(d.Instances) == 0 {
		return nil, fmt.Errorf("cannot build a tree over an empty dataset")
	}
	if b.TargetIndex < 0 || b.TargetIndex >= len(d.Definition) {
		return nil, fmt.Errorf("target feature index %d out of range for a definition with %d features", b.TargetIndex, len(d.Definition))
	}
	if b.MaxDepth < 0 {
		return nil, fmt.Errorf("maximum depth cannot be negative, got %d", b.MaxDepth)
	}
	if b.MinLeafInstances < 1 {
		return nil, fmt.Errorf("minimum leaf instances must be at least 1, got %d", b.MinLeafInstances)
	}
	if b.RNG == nil {
		return nil, fmt.Errorf("no random source given")
	}
	kind, err := d.Definition.ModelKindFor(b.TargetIndex)
	if err != nil {
		return nil, err
	}
	features := make([]int, 0, len(d.Definition)-1)
	for i := range d.Definition {
		if i != b.TargetIndex {
			features = append(features, i)
		}
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("definition has no features besides the target")
	}
	// 0 asks for every feature at every split.
	featuresPerSplit := b.FeaturesPerSplit
	if featuresPerSplit < 0 || featuresPerSplit > len(features) {
		b.logf("features per split %d is not in [0, %d], using all features", featuresPerSplit, len(features))
		featuresPerSplit = len(features)
	} else if featuresPerSplit == 0 {
		featuresPerSplit = len(features)
	}
	g := &grower{
		builder:          b,
		kind:             kind,
		features:         features,
		featuresPerSplit: featuresPerSplit,
		tree: &Tree{
			TargetIndex: b.TargetIndex,
			ModelKind:   kind,
			Importance:  make([]Importance, len(d.Definition)),
		},
	}
	g.tree.Root = g.grow(d, 0)
	return g.tree, nil
}

func (b *Builder) logf(format string, v ...interface{}) {
	if b.Log != nil {
		b.Log.Logf(format, v...)
	}
}

type grower struct {
	builder          *Builder
	kind             feature.ModelKind
	features         []int
	featuresPerSplit int
	tree             *Tree
	nextID           int
}

func (g *grower) grow(d *dataset.Dataset, depth int) *Node {
	node := &Node{ID: g.nextID}
	g.nextID++
	g.tree.NodeCount++
	if g.builder.MaxDepth > 0 && depth >= g.builder.MaxDepth {
		g.makeLeaf(node, d)
		return node
	}
	parentScore := RegionScore(d, g.builder.TargetIndex, g.kind)
	var best Candidate
	bestScore := parentScore
	found := false
	for _, featureIndex := range g.splitFeatures() {
		for _, candidate := range Candidates(d, featureIndex) {
			left, right := candidate.partition(d)
			score := CombinedScore(left, right, g.builder.TargetIndex, g.kind)
			if score < bestScore {
				best = candidate
				bestScore = score
				found = true
			}
		}
	}
	if !found {
		g.makeLeaf(node, d)
		return node
	}
	left, right := best.partition(d)
	if len(left.Instances) < g.builder.MinLeafInstances || len(right.Instances) < g.builder.MinLeafInstances {
		g.makeLeaf(node, d)
		return node
	}
	importance := &g.tree.Importance[best.FeatureIndex]
	importance.Score += parentScore - bestScore
	importance.Count++
	node.Type = SplitNode
	node.FeatureIndex = best.FeatureIndex
	node.FeatureKind = best.Kind
	node.SplitValue = best.Value
	if best.Kind == feature.Continuous {
		node.LeftOp, node.RightOp = LessOrEqual, Greater
	} else {
		node.LeftOp, node.RightOp = Equal, NotEqual
	}
	node.Left = g.grow(left, depth+1)
	node.Right = g.grow(right, depth+1)
	g.pruneTwinLeaves(node, d)
	return node
}

/*
splitFeatures returns the features to consider for the next split.
When a subset is configured the features are shuffled and the first
ones taken, a draw without replacement; when all features are in
play their definition order is kept and no random draws are spent.
*/
func (g *grower) splitFeatures() []int {
	if g.featuresPerSplit >= len(g.features) {
		return g.features
	}
	g.builder.RNG.Shuffle(len(g.features), func(i, j int) {
		g.features[i], g.features[j] = g.features[j], g.features[i]
	})
	return g.features[:g.featuresPerSplit]
}

func (g *grower) makeLeaf(node *Node, d *dataset.Dataset) {
	node.Type = LeafNode
	node.FeatureIndex = g.builder.TargetIndex
	if g.kind == feature.Regression {
		node.FeatureKind = feature.Continuous
		node.Prediction = feature.NewContinuous(d.ContinuousMean(g.builder.TargetIndex))
	} else {
		node.FeatureKind = feature.Discrete
		node.Prediction = feature.NewCategory(d.CategoryMode(g.builder.TargetIndex))
	}
	if g.builder.RetainLeafInstances {
		node.Instances = d.Instances
	}
	g.tree.LeafCount++
}

/*
pruneTwinLeaves collapses a split whose two children are leaves with
the same prediction, since such a split separates nothing. The node
is reconfigured as a leaf over its own region and the counts of the
discarded children are taken back.
*/
func (g *grower) pruneTwinLeaves(node *Node, d *dataset.Dataset) {
	left, right := node.Left, node.Right
	if left.Type != LeafNode || right.Type != LeafNode {
		return
	}
	var equal bool
	if g.kind == feature.Regression {
		equal = math.Abs(float64(left.Prediction.Continuous)-float64(right.Prediction.Continuous)) <= predictionEqualTolerance
	} else {
		equal = left.Prediction.Category == right.Prediction.Category
	}
	if !equal {
		return
	}
	g.tree.NodeCount -= 2
	g.tree.LeafCount -= 2
	node.Left, node.Right = nil, nil
	node.LeftOp, node.RightOp = NoOp, NoOp
	node.SplitValue = feature.Value{}
	g.makeLeaf(node, d)
}
