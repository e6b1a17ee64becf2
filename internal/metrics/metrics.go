package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	OutcomeExhausted = "exhausted"
)

// Retry run results.
const (
	RunCompleted = "completed"
	RunSkipped   = "skipped"
	RunError     = "error"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing, so services can run without a registry.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	eventsIngested *prometheus.CounterVec
	routeDuration  *prometheus.HistogramVec

	retryRuns     *prometheus.CounterVec
	retryEvents   *prometheus.CounterVec
	retryDuration prometheus.Histogram

	eventStatus *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
		eventsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_ingested_total",
				Help: "Webhook events seen by the ingestor, by type and outcome.",
			},
			[]string{"event_type", "outcome"},
		),
		routeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webhook_route_duration_seconds",
				Help:    "Time spent in the event router per event (seconds).",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),
		retryRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_retry_runs_total",
				Help: "Retry scheduler runs by result.",
			},
			[]string{"result"},
		),
		retryEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_retry_events_total",
				Help: "Events re-driven by the retry scheduler, by outcome.",
			},
			[]string{"outcome"},
		),
		retryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webhook_retry_run_duration_seconds",
				Help:    "Wall-clock duration of a retry batch (seconds).",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		eventStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "webhook_events_count",
				Help: "Current count of webhook_events rows by status.",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.eventsIngested,
		m.routeDuration,
		m.retryRuns,
		m.retryEvents,
		m.retryDuration,
		m.eventStatus,
	)
	return m
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// --- HTTP ---
func (m *Metrics) ObserveHTTPRequest(method, route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// --- Ingest ---
func (m *Metrics) IncIngested(eventType, outcome string) {
	if m == nil {
		return
	}
	m.eventsIngested.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) ObserveRoute(eventType string, d time.Duration) {
	if m == nil {
		return
	}
	m.routeDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

// --- Retry ---
func (m *Metrics) IncRetryRun(result string) {
	if m == nil {
		return
	}
	m.retryRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) IncRetryEvent(outcome string) {
	if m == nil {
		return
	}
	m.retryEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRetryRun(d time.Duration) {
	if m == nil {
		return
	}
	m.retryDuration.Observe(d.Seconds())
}

// --- Gauges ---
func (m *Metrics) SetEventStatusCount(status string, count int64) {
	if m == nil {
		return
	}
	if count < 0 {
		count = 0
	}
	m.eventStatus.WithLabelValues(status).Set(float64(count))
}
