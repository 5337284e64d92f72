// Package mltest provides in-memory and on-disk wine cultivar artifacts for tests.
package mltest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cultivar/ml"
)

// Schema is the feature order of the fixture model.
func Schema() ml.FeatureSchema {
	return ml.FeatureSchema{"alcohol", "malic_acid", "ash", "total_phenols", "flavanoids", "color_intensity"}
}

// Scaler returns the standard scaler fit on the wine measurements.
func Scaler() *ml.StandardScaler {
	return &ml.StandardScaler{
		Mean:  []float64{13.0006, 2.3363, 2.3665, 2.2951, 2.0293, 5.0581},
		Scale: []float64{0.8095, 1.1140, 0.2735, 0.6240, 0.9961, 2.3117},
	}
}

func split(feature int, threshold float64, left, right int) ml.TreeNode {
	return ml.TreeNode{FeatureIdx: feature, Threshold: threshold, LeftChild: left, RightChild: right}
}

func leaf(weights ...float64) ml.TreeNode {
	return ml.TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, Value: weights, IsLeaf: true}
}

// Forest returns a three-tree forest over Schema, identical to model/wine_cultivar_model.json.
func Forest() *ml.RandomForest {
	tree := func(nodes ...ml.TreeNode) *ml.DecisionTree {
		return &ml.DecisionTree{Nodes: nodes, Classes: 3, Features: 6}
	}
	return &ml.RandomForest{
		Classes:  3,
		Features: 6,
		Trees: []*ml.DecisionTree{
			tree(
				split(5, -0.65, 1, 2), leaf(2, 60, 0),
				split(4, -0.85, 3, 4), leaf(0, 3, 45),
				split(0, -0.2, 5, 6), leaf(4, 10, 1), leaf(52, 2, 0),
			),
			tree(
				split(4, -0.7, 1, 4),
				split(5, -0.9, 2, 3), leaf(0, 6, 0), leaf(0, 2, 44),
				split(0, -0.35, 5, 6), leaf(1, 55, 1),
				split(3, -0.3, 7, 8), leaf(3, 7, 2), leaf(50, 3, 0),
			),
			tree(
				split(0, -0.4, 1, 4),
				split(1, 0.9, 2, 3), leaf(0, 52, 1), leaf(0, 4, 8),
				split(5, -0.6, 5, 6), leaf(3, 14, 0),
				split(4, -0.5, 7, 8), leaf(0, 1, 40), leaf(55, 2, 1),
			),
		},
	}
}

// Artifacts returns ready in-memory artifacts.
func Artifacts(tb testing.TB) *ml.Artifacts {
	tb.Helper()
	artifacts, err := ml.NewArtifacts(Forest(), Scaler(), Schema())
	if err != nil {
		tb.Fatalf("build fixture artifacts: %v", err)
	}
	return artifacts
}

// Unavailable returns artifacts in the state left by a failed load.
func Unavailable() *ml.Artifacts {
	return &ml.Artifacts{Err: ml.ErrArtifactLoad}
}

type envelope struct {
	Type          string `json:"type"`
	FormatVersion int    `json:"format_version"`
}

// WriteArtifacts writes the fixture artifacts into dir using the default file names.
func WriteArtifacts(tb testing.TB, dir string) ml.ArtifactFiles {
	tb.Helper()
	files := ml.DefaultArtifactFiles()
	WriteJSON(tb, filepath.Join(dir, files.Model), struct {
		envelope
		*ml.RandomForest
	}{envelope{"random_forest", ml.ArtifactFormatVersion}, Forest()})
	WriteJSON(tb, filepath.Join(dir, files.Scaler), struct {
		envelope
		*ml.StandardScaler
	}{envelope{"standard", ml.ArtifactFormatVersion}, Scaler()})
	WriteJSON(tb, filepath.Join(dir, files.Features), Schema())
	return files
}

// WriteJSON marshals v into path.
func WriteJSON(tb testing.TB, path string, v any) {
	tb.Helper()
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		tb.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}
