package tree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyml/canopy/dataset"
	"github.com/canopyml/canopy/feature"
	"github.com/canopyml/canopy/prng"
)

type testLogger struct {
	messages []string
}

func (l *testLogger) Logf(format string, v ...interface{}) {
	l.messages = append(l.messages, fmt.Sprintf(format, v...))
}

func labeledDataset(t *testing.T, rows ...struct {
	x     float32
	label int
}) *dataset.Dataset {
	t.Helper()
	d := dataset.New(feature.Definition{
		feature.NewContinuousDescriptor("x", 0, 0),
		feature.NewDiscreteDescriptor("label", []string{"A", "B"}),
	})
	for _, row := range rows {
		require.NoError(t, d.Add(dataset.Instance{feature.NewContinuous(row.x), feature.NewCategory(row.label)}))
	}
	return d
}

type row = struct {
	x     float32
	label int
}

const (
	labelA = 1
	labelB = 2
)

func TestBuildSeparableClasses(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	b := &Builder{
		TargetIndex:      1,
		MaxDepth:         2,
		MinLeafInstances: 1,
		FeaturesPerSplit: 1,
		RNG:              prng.New(prng.DefaultSeed),
	}
	tr, err := b.Build(d)
	require.NoError(t, err)
	require.NotNil(t, tr.Root)
	require.Equal(t, SplitNode, tr.Root.Type)
	assert.Equal(t, 0, tr.Root.FeatureIndex)
	threshold := float64(tr.Root.SplitValue.Continuous)
	assert.Greater(t, threshold, 2.0)
	assert.Less(t, threshold, 10.0)
	assert.Equal(t, 3, tr.NodeCount)
	assert.Equal(t, 2, tr.LeafCount)
	require.Equal(t, LeafNode, tr.Root.Left.Type)
	require.Equal(t, LeafNode, tr.Root.Right.Type)
	assert.Equal(t, labelA, tr.Root.Left.Prediction.Category)
	assert.Equal(t, labelB, tr.Root.Right.Prediction.Category)

	for _, instance := range d.Instances {
		prediction, err := tr.Evaluate(instance)
		require.NoError(t, err)
		assert.Equal(t, instance[1].Category, prediction.Category)
	}
}

func TestBuildConstantTargetIsSingleLeaf(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{5, labelA}, row{9, labelA}, row{13, labelA})
	b := &Builder{TargetIndex: 1, MaxDepth: 4, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.NodeCount)
	assert.Equal(t, 1, tr.LeafCount)
	require.Equal(t, LeafNode, tr.Root.Type)
	assert.Equal(t, labelA, tr.Root.Prediction.Category)
}

func TestBuildPrunesTwinLeaves(t *testing.T) {
	// Splitting at the mean improves the Gini score, but both resulting
	// leaves still predict A, so the split is collapsed back into a leaf.
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{3, labelB}, row{10, labelA})
	b := &Builder{TargetIndex: 1, MaxDepth: 1, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.NodeCount)
	assert.Equal(t, 1, tr.LeafCount)
	require.Equal(t, LeafNode, tr.Root.Type)
	assert.Equal(t, labelA, tr.Root.Prediction.Category)
	assert.Equal(t, NoOp, tr.Root.LeftOp)
	assert.Nil(t, tr.Root.Left)
}

func TestBuildRespectsMinLeafInstances(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 3, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	require.Equal(t, LeafNode, tr.Root.Type)
	// A two-way tie for the mode resolves to the lowest category index.
	assert.Equal(t, labelA, tr.Root.Prediction.Category)
}

func TestBuildRespectsMaxDepth(t *testing.T) {
	d := labeledDataset(t,
		row{1, labelA}, row{2, labelB}, row{3, labelA}, row{4, labelB},
		row{5, labelA}, row{6, labelB}, row{7, labelA}, row{8, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	var maxDepth func(n *Node) int
	maxDepth = func(n *Node) int {
		if n == nil || n.Type == LeafNode {
			return 0
		}
		left, right := maxDepth(n.Left), maxDepth(n.Right)
		if right > left {
			left = right
		}
		return left + 1
	}
	assert.LessOrEqual(t, maxDepth(tr.Root), 2)
}

func TestBuildZeroMaxDepthIsUnlimited(t *testing.T) {
	d := labeledDataset(t,
		row{1, labelA}, row{2, labelB}, row{3, labelA}, row{4, labelB},
		row{5, labelA}, row{6, labelB}, row{7, labelA}, row{8, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 0, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	// The alternating labels force a split per instance pair, which a
	// bounded depth of 2 could never separate.
	for _, instance := range d.Instances {
		prediction, err := tr.Evaluate(instance)
		require.NoError(t, err)
		assert.Equal(t, instance[1].Category, prediction.Category)
	}
}

func TestBuildLeavesCarryPredictedFeature(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(prng.DefaultSeed)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	leaves := tr.Leaves()
	require.Len(t, leaves, 2)
	for _, leaf := range leaves {
		assert.Equal(t, 1, leaf.FeatureIndex)
		assert.Equal(t, feature.Discrete, leaf.FeatureKind)
	}

	// A collapsed twin-leaf split becomes a leaf itself and must carry
	// the predicted feature too, not the split's.
	pruned := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{3, labelB}, row{10, labelA})
	b = &Builder{TargetIndex: 1, MaxDepth: 1, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err = b.Build(pruned)
	require.NoError(t, err)
	require.Equal(t, LeafNode, tr.Root.Type)
	assert.Equal(t, 1, tr.Root.FeatureIndex)
	assert.Equal(t, feature.Discrete, tr.Root.FeatureKind)
}

func TestBuildZeroFeaturesPerSplitUsesAll(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	log := &testLogger{}
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 0, RNG: prng.New(1), Log: log}
	tr, err := b.Build(d)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.NodeCount)
	assert.Empty(t, log.messages)
}

func TestBuildDeterministicForSeed(t *testing.T) {
	d := labeledDataset(t,
		row{1, labelA}, row{2, labelB}, row{3, labelA}, row{4, labelB},
		row{5, labelB}, row{6, labelA}, row{7, labelB}, row{8, labelA})
	build := func() *Tree {
		b := &Builder{TargetIndex: 1, MaxDepth: 4, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(77)}
		tr, err := b.Build(d)
		require.NoError(t, err)
		return tr
	}
	a, c := build(), build()
	assert.Equal(t, a.NodeCount, c.NodeCount)
	assert.Equal(t, a.LeafCount, c.LeafCount)
	for _, instance := range d.Instances {
		pa, err := a.Evaluate(instance)
		require.NoError(t, err)
		pc, err := c.Evaluate(instance)
		require.NoError(t, err)
		assert.Equal(t, pa, pc)
	}
}

func TestBuildRegressionLeafPredictsMean(t *testing.T) {
	d := dataset.New(feature.Definition{
		feature.NewDiscreteDescriptor("group", []string{"low", "high"}),
		feature.NewContinuousDescriptor("y", 0, 0),
	})
	for _, r := range []struct {
		group int
		y     float32
	}{{1, 10}, {1, 14}, {2, 100}, {2, 104}} {
		require.NoError(t, d.Add(dataset.Instance{feature.NewCategory(r.group), feature.NewContinuous(r.y)}))
	}
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	require.Equal(t, SplitNode, tr.Root.Type)
	assert.Equal(t, Equal, tr.Root.LeftOp)
	assert.Equal(t, NotEqual, tr.Root.RightOp)
	assert.InDelta(t, 12, float64(tr.Root.Left.Prediction.Continuous), 1e-4)
	assert.InDelta(t, 102, float64(tr.Root.Right.Prediction.Continuous), 1e-4)
}

func TestBuildRecordsImportance(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	require.Len(t, tr.Importance, 2)
	assert.Equal(t, 1, tr.Importance[0].Count)
	// The split takes the root's Gini of 0.5 down to 0.
	assert.InDelta(t, 0.5, tr.Importance[0].Score, 1e-9)
	assert.Zero(t, tr.Importance[1].Count)
}

func TestBuildRetainsLeafInstances(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RetainLeafInstances: true, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	leaves := tr.Leaves()
	require.Len(t, leaves, 2)
	total := 0
	for _, leaf := range leaves {
		total += len(leaf.Instances)
	}
	assert.Equal(t, 4, total)
	tr.ClearLeafInstances()
	for _, leaf := range leaves {
		assert.Empty(t, leaf.Instances)
	}
}

func TestBuildInvalidFeaturesPerSplitUsesAll(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	log := &testLogger{}
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 9, RNG: prng.New(1), Log: log}
	tr, err := b.Build(d)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.NodeCount)
	require.Len(t, log.messages, 1)
	assert.Contains(t, log.messages[0], "using all features")
}

func TestBuildConfigurationErrors(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelB})
	valid := Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}

	b := valid
	_, err := b.Build(dataset.New(d.Definition))
	assert.Error(t, err)

	b = valid
	b.TargetIndex = 5
	_, err = b.Build(d)
	assert.Error(t, err)

	b = valid
	b.MaxDepth = -1
	_, err = b.Build(d)
	assert.Error(t, err)

	b = valid
	b.MinLeafInstances = 0
	_, err = b.Build(d)
	assert.Error(t, err)

	b = valid
	b.RNG = nil
	_, err = b.Build(d)
	assert.Error(t, err)
}

func TestEvaluateShortInstance(t *testing.T) {
	d := labeledDataset(t, row{1, labelA}, row{2, labelA}, row{10, labelB}, row{11, labelB})
	b := &Builder{TargetIndex: 1, MaxDepth: 2, MinLeafInstances: 1, FeaturesPerSplit: 1, RNG: prng.New(1)}
	tr, err := b.Build(d)
	require.NoError(t, err)
	_, err = tr.Evaluate(dataset.Instance{})
	assert.Error(t, err)
}

func TestEvaluateEmptyTree(t *testing.T) {
	tr := &Tree{}
	prediction, err := tr.Evaluate(dataset.Instance{feature.NewContinuous(1)})
	require.NoError(t, err)
	assert.Equal(t, feature.Value{}, prediction)
}
