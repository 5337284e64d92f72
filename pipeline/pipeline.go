// Package pipeline turns a client payload into a cultivar prediction: extract the
// ordered feature vector, run the engine, format the response. The first failing
// stage ends the run; there are no retries and no partial results.
package pipeline

import (
	"cultivar/ml"
)

// Options tunes a Pipeline.
type Options struct {
	CacheSize int
}

// Pipeline chains the extractor, engine and formatter over one set of artifacts.
type Pipeline struct {
	artifacts *ml.Artifacts
	engine    *Engine
}

// New builds a pipeline. A nil artifacts value is treated as a failed load.
func New(artifacts *ml.Artifacts, opts Options) (*Pipeline, error) {
	if artifacts == nil {
		artifacts = &ml.Artifacts{Err: ml.ErrArtifactLoad}
	}
	engine, err := NewEngine(artifacts, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Pipeline{artifacts: artifacts, engine: engine}, nil
}

// Run executes the pipeline for one request.
func (p *Pipeline) Run(raw RawInput) (*PredictResponse, error) {
	vector, err := ExtractFeatures(raw, p.artifacts.Features)
	if err != nil {
		return nil, err
	}
	result, err := p.engine.Predict(vector)
	if err != nil {
		return nil, err
	}
	return FormatPrediction(result, vector, p.artifacts.Features)
}

func (p *Pipeline) Artifacts() *ml.Artifacts { return p.artifacts }

func (p *Pipeline) Engine() *Engine { return p.engine }
