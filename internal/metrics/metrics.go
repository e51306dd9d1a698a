package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gasdoc"

// Metrics owns a private Prometheus registry and the pipeline collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	confidence      *prometheus.HistogramVec
	processed       *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them, plus Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Documents classified, by resulting document type.",
		}, []string{"document_type"}),
		confidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_confidence",
			Help:      "Classification confidence scores.",
			Buckets:   []float64{10, 29, 50, 70, 80, 90, 95, 100},
		}, []string{"document_type"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents run through classify, extract and project, by type and outcome.",
		}, []string{"document_type", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of pipeline stages.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.classifications, m.confidence, m.processed, m.stageDuration, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveClassification(documentType string, confidence int) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(documentType).Inc()
	m.confidence.WithLabelValues(documentType).Observe(float64(confidence))
}

func (m *Metrics) ObserveProcessed(documentType, outcome string) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(documentType, outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
