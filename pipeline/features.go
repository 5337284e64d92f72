package pipeline

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"cultivar/ml"
)

// RawInput is the client-supplied mapping from feature name to value.
type RawInput map[string]any

// FeatureVector holds one value per schema feature, in schema order.
type FeatureVector []float64

// DefaultFeatureValue is used for schema features absent from the input.
const DefaultFeatureValue = 0.0

// DecodeRawInput reads a JSON object. Numbers are kept as json.Number so that no
// precision is lost before extraction.
func DecodeRawInput(r io.Reader) (RawInput, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read request body"), ErrMalformedInput)
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, errors.Wrap(ErrMalformedInput, "request body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode request body"), ErrMalformedInput)
	}
	if dec.More() {
		return nil, errors.Wrap(ErrMalformedInput, "request body has trailing data")
	}
	raw, ok := body.(map[string]any)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedInput, "request body must be a JSON object, got %s", jsonKind(body))
	}
	return RawInput(raw), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return "value"
	}
}

// ExtractFeatures lays raw out in schema order. Missing features default to
// DefaultFeatureValue and keys outside the schema are ignored.
func ExtractFeatures(raw RawInput, schema ml.FeatureSchema) (FeatureVector, error) {
	vector := make(FeatureVector, len(schema))
	for i, name := range schema {
		value, ok := raw[name]
		if !ok {
			vector[i] = DefaultFeatureValue
			continue
		}
		f, err := toFloat(value)
		if err != nil {
			return nil, &ValidationError{Feature: name, Value: value, Reason: err.Error()}
		}
		vector[i] = f
	}
	return vector, nil
}

func toFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, errors.New("could not convert to float")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.New("could not convert string to float")
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case nil:
		return 0, errors.New("value is null")
	default:
		return 0, errors.Newf("expected a number, got %s", jsonKind(value))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("value must be finite")
	}
	return f, nil
}
