package monitoring

import (
	"sync"
	"time"
)

// PredictionStats 预测统计快照
type PredictionStats struct {
	Total          int64            `json:"total"`
	Succeeded      int64            `json:"succeeded"`
	Failed         int64            `json:"failed"`
	FailuresByKind map[string]int64 `json:"failures_by_kind"`
	CacheHits      uint64           `json:"cache_hits"`
	MeanLatencyMs  float64          `json:"mean_latency_ms"`
	MaxLatencyMs   float64          `json:"max_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	mu         sync.Mutex
	total      int64
	failures   map[string]int64
	latencySum time.Duration
	latencyMax time.Duration
	startTime  time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		failures:  make(map[string]int64),
		startTime: time.Now(),
	}
}

// RecordPrediction 记录一次预测; kind 为 "ok" 表示成功
func (mc *MetricsCollector) RecordPrediction(kind string, latency time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.total++
	if kind != "ok" {
		mc.failures[kind]++
	}
	mc.latencySum += latency
	if latency > mc.latencyMax {
		mc.latencyMax = latency
	}
}

// Snapshot 获取当前统计
func (mc *MetricsCollector) Snapshot(cacheHits uint64) PredictionStats {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	stats := PredictionStats{
		Total:          mc.total,
		FailuresByKind: make(map[string]int64, len(mc.failures)),
		CacheHits:      cacheHits,
		MaxLatencyMs:   float64(mc.latencyMax) / float64(time.Millisecond),
		UptimeSeconds:  time.Since(mc.startTime).Seconds(),
	}
	for kind, n := range mc.failures {
		stats.FailuresByKind[kind] = n
		stats.Failed += n
	}
	stats.Succeeded = stats.Total - stats.Failed
	if mc.total > 0 {
		stats.MeanLatencyMs = float64(mc.latencySum) / float64(mc.total) / float64(time.Millisecond)
	}
	return stats
}
