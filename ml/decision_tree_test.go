package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stump() *DecisionTree {
	return &DecisionTree{
		Classes:  3,
		Features: 2,
		Nodes: []TreeNode{
			{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: []float64{8, 2, 0}, IsLeaf: true},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: []float64{0, 1, 3}, IsLeaf: true},
		},
	}
}

func TestDecisionTreePredict(t *testing.T) {
	tree := stump()
	require.NoError(t, tree.Validate())

	label, err := tree.Predict([]float64{0.1, 9})
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	proba, err := tree.PredictProba([]float64{0.9, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.75}, proba, 1e-12)

	label, err = tree.Predict([]float64{0.9, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, label)
}

func TestDecisionTreeThresholdGoesLeft(t *testing.T) {
	label, err := stump().Predict([]float64{0.5, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestDecisionTreeDimensionMismatch(t *testing.T) {
	_, err := stump().PredictProba([]float64{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDecisionTreeValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DecisionTree)
	}{
		{"no nodes", func(dt *DecisionTree) { dt.Nodes = nil }},
		{"no classes", func(dt *DecisionTree) { dt.Classes = 0 }},
		{"short leaf", func(dt *DecisionTree) { dt.Nodes[1].Value = []float64{1, 1} }},
		{"zero leaf", func(dt *DecisionTree) { dt.Nodes[2].Value = []float64{0, 0, 0} }},
		{"bad feature", func(dt *DecisionTree) { dt.Nodes[0].FeatureIdx = 7 }},
		{"backwards child", func(dt *DecisionTree) { dt.Nodes[0].RightChild = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := stump()
			tt.mutate(tree)
			assert.Error(t, tree.Validate())
		})
	}
}

func TestArgmaxPrefersFirstMaximum(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{0.2, 0.4, 0.4}))
	assert.Equal(t, 0, argmax([]float64{1}))
}
