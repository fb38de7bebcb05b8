// Package metrics exposes Prometheus collectors for the symscan service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messagesTotal              *prometheus.CounterVec
	symbolsTotal               prometheus.Counter
	truncationsTotal           *prometheus.CounterVec
	parseDurationSeconds       prometheus.Histogram
	activeSessions             prometheus.Gauge
	sessionsTotal              *prometheus.CounterVec
	rateLimitDelaySeconds      prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		messagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "symscan_messages_total",
				Help: "Total number of messages processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		symbolsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "symscan_symbols_total",
				Help: "Total number of symbols extracted.",
			},
		)

		truncationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "symscan_truncations_total",
				Help: "Total number of truncations applied, labeled by reason (size or symbols).",
			},
			[]string{"reason"},
		)

		parseDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "symscan_parse_duration_seconds",
				Help:    "Histogram of per-message parse latencies.",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		)

		activeSessions = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "symscan_active_sessions",
				Help: "Number of connection sessions currently open.",
			},
		)

		sessionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "symscan_sessions_total",
				Help: "Total number of sessions ended, labeled by termination reason.",
			},
			[]string{"reason"},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "symscan_rate_limit_delay_seconds",
				Help:    "Histogram of per-message rate limit wait durations.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests to the ops endpoint, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of ops endpoint request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveMessage records one processed message.
func ObserveMessage(outcome string, symbols int, duration time.Duration) {
	messagesTotal.WithLabelValues(outcome).Inc()
	if symbols > 0 {
		symbolsTotal.Add(float64(symbols))
	}
	parseDurationSeconds.Observe(duration.Seconds())
}

// ObserveTruncation records one truncation with its reason.
func ObserveTruncation(reason string) {
	truncationsTotal.WithLabelValues(reason).Inc()
}

// IncActiveSessions increments the open session gauge.
func IncActiveSessions() {
	activeSessions.Inc()
}

// DecActiveSessions decrements the open session gauge.
func DecActiveSessions() {
	activeSessions.Dec()
}

// ObserveSessionEnd counts a session termination for the given reason.
func ObserveSessionEnd(reason string) {
	sessionsTotal.WithLabelValues(reason).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(duration time.Duration) {
	rateLimitDelaySeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the ops endpoint request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
