package pipeline

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"

	"cultivar/ml"
)

// PredictionResult is the classifier output for one feature vector.
type PredictionResult struct {
	Class         int
	Probabilities []float64
}

func (r PredictionResult) clone() PredictionResult {
	return PredictionResult{Class: r.Class, Probabilities: append([]float64(nil), r.Probabilities...)}
}

// Engine scales feature vectors and runs the classifier. It only reads the shared
// artifacts, so one Engine serves any number of concurrent requests.
type Engine struct {
	artifacts *ml.Artifacts
	cache     *lru.Cache[string, PredictionResult]
	hits      atomic.Uint64
}

// NewEngine builds an engine over artifacts. cacheSize > 0 memoises results per
// distinct feature vector; prediction is deterministic so cached results are exact.
func NewEngine(artifacts *ml.Artifacts, cacheSize int) (*Engine, error) {
	e := &Engine{artifacts: artifacts}
	if cacheSize > 0 {
		cache, err := lru.New[string, PredictionResult](cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create prediction cache")
		}
		e.cache = cache
	}
	return e, nil
}

// CacheHits returns how many predictions were served from the cache.
func (e *Engine) CacheHits() uint64 { return e.hits.Load() }

// Predict scales vector and classifies it.
func (e *Engine) Predict(vector FeatureVector) (PredictionResult, error) {
	if !e.artifacts.ModelLoaded() || !e.artifacts.ScalerLoaded() {
		return PredictionResult{}, ErrModelUnavailable
	}

	var key string
	if e.cache != nil {
		key = cacheKey(vector)
		if cached, ok := e.cache.Get(key); ok {
			e.hits.Add(1)
			return cached.clone(), nil
		}
	}

	scaled, err := e.artifacts.Scaler.Transform(vector)
	if err != nil {
		return PredictionResult{}, inferenceError(err, "scale features")
	}
	probabilities, err := e.artifacts.Classifier.PredictProba(scaled)
	if err != nil {
		return PredictionResult{}, inferenceError(err, "predict probabilities")
	}
	class, err := e.artifacts.Classifier.Predict(scaled)
	if err != nil {
		return PredictionResult{}, inferenceError(err, "predict class")
	}
	if class < 0 || class >= len(probabilities) {
		return PredictionResult{}, errors.Wrapf(ErrInference,
			"predicted class %d outside %d probabilities", class, len(probabilities))
	}
	for i, p := range probabilities {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return PredictionResult{}, errors.Wrapf(ErrInference, "probability %d is %v", i, p)
		}
	}

	result := PredictionResult{Class: class, Probabilities: probabilities}
	if e.cache != nil {
		e.cache.Add(key, result.clone())
	}
	return result, nil
}

func inferenceError(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrInference)
}

// cacheKey encodes the exact bit pattern of every value.
func cacheKey(vector FeatureVector) string {
	buf := make([]byte, 8*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}
