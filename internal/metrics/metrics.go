package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cobuilder_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cobuilder_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cobuilder_ws_connections",
			Help: "Currently connected WebSocket clients",
		},
	)

	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cobuilder_messages_relayed_total",
			Help: "Total messages broadcast to rooms",
		},
		[]string{"sender"}, // "user" or "ai"
	)

	BroadcastFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cobuilder_broadcast_failures_total",
			Help: "Total per-member delivery failures during broadcast",
		},
	)

	// Generation metrics
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cobuilder_generations_total",
			Help: "Total generation attempts",
		},
		[]string{"outcome"}, // "ok", "empty_prompt" or "upstream_error"
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cobuilder_generation_duration_seconds",
			Help:    "Generation backend call latency",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cobuilder_extractions_total",
			Help: "Total extractions by the stage that produced the text",
		},
		[]string{"stage"}, // "strict", "regex" or "plain"
	)

	// Infrastructure metrics
	RedisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cobuilder_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)
)
