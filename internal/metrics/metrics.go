package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxa_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voxa_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	UtterancesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxa_utterances_total",
			Help: "Processed utterances by generation strategy.",
		},
		[]string{"strategy"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "voxa_generation_duration_seconds",
			Help:    "Reply generation duration in seconds, cache misses only.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)

	ResponseCacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxa_response_cache_events_total",
			Help: "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	StatusCacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxa_status_cache_events_total",
			Help: "Integration status cache lookups by result.",
		},
		[]string{"result"},
	)

	SideEffectIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxa_side_effect_intents_total",
			Help: "Detected side-effect intents by type.",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		UtterancesTotal,
		GenerationDuration,
		ResponseCacheEvents,
		StatusCacheEvents,
		SideEffectIntentsTotal,
	)
}
