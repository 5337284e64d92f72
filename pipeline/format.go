package pipeline

import (
	"github.com/cockroachdb/errors"

	"cultivar/ml"
)

// PredictResponse is the success payload of POST /predict.
type PredictResponse struct {
	Success           bool               `json:"success"`
	PredictedCultivar string             `json:"predicted_cultivar"`
	PredictedClass    int                `json:"predicted_class"`
	Confidence        float64            `json:"confidence"`
	Probabilities     map[string]float64 `json:"probabilities"`
	InputFeatures     map[string]float64 `json:"input_features"`
}

// ErrorResponse is the failure payload of POST /predict.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// FormatPrediction turns an engine result into the response payload. Probabilities
// and confidence are percentages.
func FormatPrediction(result PredictionResult, vector FeatureVector, schema ml.FeatureSchema) (*PredictResponse, error) {
	if len(vector) != len(schema) {
		return nil, errors.Wrapf(ErrInference, "feature vector has %d values for %d features", len(vector), len(schema))
	}
	if result.Class < 0 || result.Class >= len(result.Probabilities) {
		return nil, errors.Wrapf(ErrInference, "predicted class %d has no probability", result.Class)
	}

	probabilities := make(map[string]float64, len(result.Probabilities))
	for i, p := range result.Probabilities {
		probabilities[CultivarLabel(i)] = p * 100
	}
	inputs := make(map[string]float64, len(schema))
	for i, name := range schema {
		inputs[name] = vector[i]
	}

	return &PredictResponse{
		Success:           true,
		PredictedCultivar: CultivarLabel(result.Class),
		PredictedClass:    result.Class,
		Confidence:        result.Probabilities[result.Class] * 100,
		Probabilities:     probabilities,
		InputFeatures:     inputs,
	}, nil
}

// FormatError builds the failure payload. Only the message chain is exposed.
func FormatError(err error) ErrorResponse {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ErrorResponse{Success: false, Error: msg}
}
