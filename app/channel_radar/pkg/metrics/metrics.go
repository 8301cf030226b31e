package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 生成后端
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_radar_generation_requests_total",
			Help: "Generation calls by outcome",
		},
		[]string{"outcome"}, // "ok", "no_response", "unavailable", "breaker_open", "error", "canceled"
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "channel_radar_generation_duration_seconds",
			Help:    "Duration of backend generation calls, lock wait included",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	GenerationInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "channel_radar_generation_in_flight",
			Help: "Generation calls currently holding a backend slot",
		},
	)

	// 结构化结果
	InsightAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_radar_insight_attempts_total",
			Help: "Orchestrator attempts by kind and result",
		},
		[]string{"kind", "result"}, // "no_response", "irrelevant", "unparsable", "ok"
	)

	InsightOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_radar_insight_outcomes_total",
			Help: "Final source of each insight kind",
		},
		[]string{"kind", "source"}, // "llm", "fallback", "failed"
	)

	ExtractionStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_radar_extraction_stage_total",
			Help: "Extraction stage that produced a structured result",
		},
		[]string{"kind", "stage"},
	)

	// 存储
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_radar_store_operations_total",
			Help: "Engagement store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	// 洞察缓存
	InsightCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "channel_radar_insight_cache_hits_total",
			Help: "Keyword analyses served from cache",
		},
	)

	InsightCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "channel_radar_insight_cache_misses_total",
			Help: "Keyword analyses computed because of a cache miss",
		},
	)

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_radar_http_requests_total",
			Help: "HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "channel_radar_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BackendAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "channel_radar_backend_available",
			Help: "1 when the startup probe found the generation backend",
		},
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求
func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordStoreOperation 记录一次存储操作
func RecordStoreOperation(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(backend, op, result).Inc()
}

// SetBackendAvailable 设置后端可用性
func SetBackendAvailable(ok bool) {
	if ok {
		BackendAvailable.Set(1)
		return
	}
	BackendAvailable.Set(0)
}
