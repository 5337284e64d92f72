package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Every pipeline failure is, or wraps, exactly one of these.
var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrValidation       = errors.New("invalid feature value")
	ErrModelUnavailable = errors.New("model or scaler not loaded")
	ErrInference        = errors.New("inference failed")
)

// ValidationError reports a feature whose value cannot be used as a number.
type ValidationError struct {
	Feature string
	Value   any
	Reason  string
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "could not convert to float"
	}
	return fmt.Sprintf("invalid value for feature %q: %s: %s", e.Feature, reason, describeValue(e.Value))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func describeValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(payload)
}

// Kind names the error category for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, ErrInference):
		return "inference"
	default:
		return "internal"
	}
}

// StatusFor maps a pipeline outcome to its HTTP status. Every failure is a 400.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return http.StatusBadRequest
}
