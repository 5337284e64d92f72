package pipeline

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cultivar/ml"
)

func TestCultivarLabel(t *testing.T) {
	assert.Equal(t, "Cultivar 1", CultivarLabel(0))
	assert.Equal(t, "Cultivar 2", CultivarLabel(1))
	assert.Equal(t, "Cultivar 3", CultivarLabel(2))
	// outside the table: index + 1
	assert.Equal(t, "Cultivar 4", CultivarLabel(3))
	assert.Equal(t, "Cultivar 11", CultivarLabel(10))
	assert.Equal(t, "Cultivar 0", CultivarLabel(-1))
}

func TestFormatPrediction(t *testing.T) {
	schema := ml.FeatureSchema{"alcohol", "ash"}
	result := PredictionResult{Class: 1, Probabilities: []float64{0.1, 0.75, 0.15}}

	resp, err := FormatPrediction(result, FeatureVector{13.5, 0}, schema)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Cultivar 2", resp.PredictedCultivar)
	assert.Equal(t, 1, resp.PredictedClass)
	assert.InDelta(t, 75.0, resp.Confidence, 1e-9)
	assert.Len(t, resp.Probabilities, 3)
	assert.InDelta(t, 10.0, resp.Probabilities["Cultivar 1"], 1e-9)
	assert.InDelta(t, 15.0, resp.Probabilities["Cultivar 3"], 1e-9)
	assert.Equal(t, map[string]float64{"alcohol": 13.5, "ash": 0}, resp.InputFeatures)
}

func TestFormatPredictionFallbackLabels(t *testing.T) {
	result := PredictionResult{Class: 3, Probabilities: []float64{0.1, 0.1, 0.1, 0.7}}
	resp, err := FormatPrediction(result, FeatureVector{1}, ml.FeatureSchema{"alcohol"})
	require.NoError(t, err)
	assert.Equal(t, "Cultivar 4", resp.PredictedCultivar)
	assert.Contains(t, resp.Probabilities, "Cultivar 4")
	assert.InDelta(t, 70.0, resp.Confidence, 1e-9)
}

func TestFormatPredictionRejectsInconsistentInput(t *testing.T) {
	_, err := FormatPrediction(PredictionResult{Class: 0, Probabilities: []float64{1}}, FeatureVector{1, 2}, ml.FeatureSchema{"alcohol"})
	assert.True(t, errors.Is(err, ErrInference))

	_, err = FormatPrediction(PredictionResult{Class: 2, Probabilities: []float64{1}}, FeatureVector{1}, ml.FeatureSchema{"alcohol"})
	assert.True(t, errors.Is(err, ErrInference))
}

func TestFormatError(t *testing.T) {
	resp := FormatError(&ValidationError{Feature: "ash", Value: "x"})
	assert.False(t, resp.Success)
	assert.Equal(t, `invalid value for feature "ash": could not convert to float: "x"`, resp.Error)

	assert.Equal(t, "unknown error", FormatError(nil).Error)
}

func TestKindAndStatus(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "validation", Kind(&ValidationError{Feature: "ash"}))
	assert.Equal(t, "model_unavailable", Kind(ErrModelUnavailable))
	assert.Equal(t, "malformed_input", Kind(errors.Wrap(ErrMalformedInput, "x")))
	assert.Equal(t, "internal", Kind(errors.New("other")))

	assert.Equal(t, 200, StatusFor(nil))
	assert.Equal(t, 400, StatusFor(ErrModelUnavailable))
	assert.Equal(t, 400, StatusFor(ErrInference))
}
