package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all prometheus metrics for platewise.
// uses a custom registry to avoid polluting the global namespace.
type Metrics struct {
	Registry *prometheus.Registry

	// http_request_duration_seconds - histogram for api latency
	HTTPRequestDuration *prometheus.HistogramVec

	// platewise_meals_ingested_total - counter for persisted meal entries by result
	MealsIngestedTotal *prometheus.CounterVec

	// platewise_ingestion_buffer_size - gauge for entries waiting in the buffer
	BufferSize prometheus.Gauge

	// platewise_insight_duration_seconds - histogram for insight computation per view
	InsightDuration *prometheus.HistogramVec

	// platewise_insight_cache_requests_total - counter for cache lookups by view and result
	InsightCacheRequests *prometheus.CounterVec
}

// New creates and registers all prometheus metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	// add standard go runtime and process collectors
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		MealsIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platewise_meals_ingested_total",
				Help: "Total number of meal log entries flushed by the ingestion worker",
			},
			[]string{"result"},
		),

		BufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "platewise_ingestion_buffer_size",
			Help: "Current number of meal entries waiting in the ingestion buffer",
		}),

		InsightDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "platewise_insight_duration_seconds",
				Help:    "Duration of insight view requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"view"},
		),

		InsightCacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "platewise_insight_cache_requests_total",
				Help: "Insight cache lookups by view and result",
			},
			[]string{"view", "result"},
		),
	}

	// register all custom metrics
	reg.MustRegister(
		m.HTTPRequestDuration,
		m.MealsIngestedTotal,
		m.BufferSize,
		m.InsightDuration,
		m.InsightCacheRequests,
	)

	return m
}

// RecordHTTPRequest records the duration of an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
}

// RecordMealsIngested adds count entries to the ingested counter.
// result is "saved" or "failed".
func (m *Metrics) RecordMealsIngested(result string, count int) {
	m.MealsIngestedTotal.WithLabelValues(result).Add(float64(count))
}

// SetBufferSize sets the current buffer size gauge.
func (m *Metrics) SetBufferSize(size int) {
	m.BufferSize.Set(float64(size))
}

// RecordInsightDuration records how long an insight view took to serve.
func (m *Metrics) RecordInsightDuration(view string, seconds float64) {
	m.InsightDuration.WithLabelValues(view).Observe(seconds)
}

// RecordInsightCache counts a cache hit or miss for a view.
func (m *Metrics) RecordInsightCache(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.InsightCacheRequests.WithLabelValues(view, result).Inc()
}
