package ml_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cultivar/ml"
	"cultivar/ml/mltest"
)

func TestLoadClassifierDecisionTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	mltest.WriteJSON(t, path, map[string]any{
		"type":           "decision_tree",
		"format_version": 1,
		"n_classes":      2,
		"n_features":     1,
		"nodes": []map[string]any{
			{"feature_idx": 0, "threshold": 0, "left_child": 1, "right_child": 2},
			{"feature_idx": -1, "left_child": -1, "right_child": -1, "value": []float64{1, 0}, "is_leaf": true},
			{"feature_idx": -1, "left_child": -1, "right_child": -1, "value": []float64{0, 1}, "is_leaf": true},
		},
	})

	model, err := ml.LoadClassifier(path)
	require.NoError(t, err)
	assert.IsType(t, &ml.DecisionTree{}, model)

	label, err := model.Predict([]float64{3})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestLoadClassifierRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svm.json")
	mltest.WriteJSON(t, path, map[string]any{"type": "svm", "format_version": 1})

	_, err := ml.LoadClassifier(path)
	assert.ErrorIs(t, err, ml.ErrUnsupportedArtifact)
}

func TestLoadClassifierRejectsInvalidForest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forest.json")
	mltest.WriteJSON(t, path, map[string]any{
		"type": "random_forest", "format_version": 1, "n_classes": 3, "n_features": 6, "trees": []any{},
	})

	_, err := ml.LoadClassifier(path)
	assert.Error(t, err)
}

func TestLoadScalerMinMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scaler.json")
	mltest.WriteJSON(t, path, map[string]any{
		"type": "minmax", "format_version": 1, "min": []float64{0, 1}, "max": []float64{2, 3},
	})

	scaler, err := ml.LoadScaler(path)
	require.NoError(t, err)
	assert.Equal(t, 2, scaler.NumFeatures())
}

func TestLoadFeatureSchema(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	mltest.WriteJSON(t, good, []string{"alcohol", "ash"})
	schema, err := ml.LoadFeatureSchema(good)
	require.NoError(t, err)
	assert.Equal(t, ml.FeatureSchema{"alcohol", "ash"}, schema)
	assert.Equal(t, 1, schema.Index("ash"))
	assert.Equal(t, -1, schema.Index("hue"))

	for name, content := range map[string]any{
		"empty.json": []string{},
		"dup.json":   []string{"ash", "ash"},
		"blank.json": []string{"ash", " "},
		"obj.json":   map[string]any{"features": []string{"ash"}},
	} {
		path := filepath.Join(dir, name)
		mltest.WriteJSON(t, path, content)
		_, err := ml.LoadFeatureSchema(path)
		assert.Error(t, err, name)
	}
}
