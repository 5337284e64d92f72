package ml

import (
	"math"

	"github.com/cockroachdb/errors"
)

// DecisionTree is a fitted classification tree stored as a flat node slice.
// Node 0 is the root; children are addressed by index.
type DecisionTree struct {
	Nodes    []TreeNode `json:"nodes"`
	Classes  int        `json:"n_classes"`
	Features int        `json:"n_features"`
}

// TreeNode is a split or a leaf. Value holds the per-class sample weights that reached
// the node; only leaf values are used for prediction.
type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	Value      []float64 `json:"value,omitempty"`
	IsLeaf     bool      `json:"is_leaf"`
}

func (dt *DecisionTree) NumClasses() int  { return dt.Classes }
func (dt *DecisionTree) NumFeatures() int { return dt.Features }

// Predict returns the class with the highest leaf probability.
func (dt *DecisionTree) Predict(features []float64) (int, error) {
	proba, err := dt.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

// PredictProba returns the normalised class distribution of the leaf reached by features.
func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	if len(features) != dt.Features {
		return nil, dimensionError(len(features), dt.Features)
	}
	leaf, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	return normalize(leaf.Value)
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return TreeNode{}, errors.New("model not trained")
	}
	idx := 0
	// a well-formed tree reaches a leaf in fewer steps than it has nodes
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
	return TreeNode{}, errors.New("tree contains a cycle")
}

// Validate checks the structural invariants that Predict relies on.
func (dt *DecisionTree) Validate() error {
	if len(dt.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if dt.Classes <= 0 {
		return errors.Newf("invalid class count %d", dt.Classes)
	}
	if dt.Features <= 0 {
		return errors.Newf("invalid feature count %d", dt.Features)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			if len(node.Value) != dt.Classes {
				return errors.Newf("leaf %d has %d class weights, want %d", i, len(node.Value), dt.Classes)
			}
			if _, err := normalize(node.Value); err != nil {
				return errors.Wrapf(err, "leaf %d", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.Features {
			return errors.Newf("node %d splits on feature %d outside [0,%d)", i, node.FeatureIdx, dt.Features)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) ||
			node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return errors.Newf("node %d has invalid children %d/%d", i, node.LeftChild, node.RightChild)
		}
	}
	return nil
}

func normalize(weights []float64) ([]float64, error) {
	total := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.Newf("invalid class weight %v", w)
		}
		total += w
	}
	if total == 0 {
		return nil, errors.New("class weights sum to zero")
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / total
	}
	return out, nil
}

// argmax returns the first index holding the maximum value.
func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
