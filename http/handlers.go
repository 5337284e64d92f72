package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cultivar/ml"
	"cultivar/monitoring"
	"cultivar/pipeline"
)

// ModelInfo is the static model description served by /api/features.
type ModelInfo struct {
	Algorithm string
	Accuracy  float64
}

// Handlers serves the prediction API over one pipeline.
type Handlers struct {
	pipeline     *pipeline.Pipeline
	metrics      *monitoring.MetricsCollector
	logger       *zap.SugaredLogger
	info         ModelInfo
	maxBodyBytes int64
}

func NewHandlers(p *pipeline.Pipeline, metrics *monitoring.MetricsCollector, logger *zap.SugaredLogger, info ModelInfo, maxBodyBytes int64) *Handlers {
	if metrics == nil {
		metrics = monitoring.NewMetricsCollector()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handlers{pipeline: p, metrics: metrics, logger: logger, info: info, maxBodyBytes: maxBodyBytes}
}

func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /predict", h.handlePredict)
	mux.HandleFunc("GET /api/features", h.handleFeatures)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ScalerLoaded bool   `json:"scaler_loaded"`
}

type featuresResponse struct {
	Features       []string `json:"features"`
	FeatureCount   int      `json:"feature_count"`
	ModelAlgorithm string   `json:"model_algorithm"`
	ModelAccuracy  float64  `json:"model_accuracy"`
}

func (h *Handlers) artifacts() *ml.Artifacts { return h.pipeline.Artifacts() }

func (h *Handlers) features() []string {
	schema := h.artifacts().Schema()
	if schema == nil {
		return []string{}
	}
	return schema
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "healthy",
		ModelLoaded:  h.artifacts().ModelLoaded(),
		ScalerLoaded: h.artifacts().ScalerLoaded(),
	})
}

func (h *Handlers) handleFeatures(w http.ResponseWriter, r *http.Request) {
	features := h.features()
	writeJSON(w, http.StatusOK, featuresResponse{
		Features:       features,
		FeatureCount:   len(features),
		ModelAlgorithm: h.info.Algorithm,
		ModelAccuracy:  h.info.Accuracy,
	})
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.Snapshot(h.pipeline.Engine().CacheHits()))
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp, err := h.predict(w, r)
	kind := pipeline.Kind(err)
	h.metrics.RecordPrediction(kind, time.Since(start))

	if err != nil {
		h.logger.Infow("Prediction failed",
			"request_id", GetRequestID(r.Context()),
			"kind", kind,
			"error", err)
		writeJSON(w, pipeline.StatusFor(err), pipeline.FormatError(err))
		return
	}
	h.logger.Debugw("Prediction served",
		"request_id", GetRequestID(r.Context()),
		"class", resp.PredictedClass,
		"confidence", resp.Confidence)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) predict(w http.ResponseWriter, r *http.Request) (*pipeline.PredictResponse, error) {
	raw, err := pipeline.DecodeRawInput(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return h.pipeline.Run(raw)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Wine Cultivar Prediction</title></head>
<body>
<h1>Wine Cultivar Prediction</h1>
{{if .Ready}}
<p>POST a JSON object with the measurements below to <code>/predict</code>.</p>
<ul>
{{range .Features}}<li><code>{{.}}</code></li>
{{end}}</ul>
{{else}}
<p>The model is not loaded. Check <code>/api/health</code>.</p>
{{end}}
</body>
</html>
`))

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTemplate.Execute(w, struct {
		Ready    bool
		Features []string
	}{
		Ready:    h.artifacts().Ready(),
		Features: h.features(),
	})
	if err != nil {
		h.logger.Errorw("Failed to render index", "error", err)
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
