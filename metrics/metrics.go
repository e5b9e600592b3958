// Package metrics exposes server statistics in the Prometheus format.
//
// A nil *Metrics is valid and records nothing, so components never have to check
// whether metrics are enabled.
package metrics

import (
	"time"

	"github.com/indigo-web/staticd/http/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	bytesWritten      prometheus.Counter
	compressed        prometheus.Counter
	connsAccepted     prometheus.Counter
	connsInFlight     prometheus.Gauge
	jobPanics         prometheus.Counter
	compressionErrors prometheus.Counter
}

// New registers all the collectors in a fresh registry, together with the Go
// runtime and process collectors.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of responses sent, by status code",
			},
			[]string{"code"},
		),
		requestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time from accepting a connection till the response is written",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payload_bytes_total",
				Help:      "Total number of payload bytes sent, after compression",
			},
		),
		compressed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gzip_responses_total",
				Help:      "Total number of responses sent gzip-compressed",
			},
		),
		connsAccepted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connections_accepted_total",
				Help:      "Total number of accepted connections",
			},
		),
		connsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connections_in_flight",
				Help:      "Number of connections currently being handled",
			},
		),
		jobPanics: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_panics_total",
				Help:      "Total number of jobs recovered from a panic",
			},
		),
		compressionErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compression_errors_total",
				Help:      "Total number of responses failed to be compressed",
			},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}

	return m.registry
}

// ObserveResponse records a sent response.
func (m *Metrics) ObserveResponse(code status.Code, took time.Duration, payload int, gzipped bool) {
	if m == nil {
		return
	}

	m.requestsTotal.WithLabelValues(code.String()).Inc()
	m.requestDuration.Observe(took.Seconds())
	m.bytesWritten.Add(float64(payload))

	if gzipped {
		m.compressed.Inc()
	}
}

// ConnectionStarted must be paired with ConnectionFinished.
func (m *Metrics) ConnectionStarted() {
	if m == nil {
		return
	}

	m.connsAccepted.Inc()
	m.connsInFlight.Inc()
}

func (m *Metrics) ConnectionFinished() {
	if m == nil {
		return
	}

	m.connsInFlight.Dec()
}

func (m *Metrics) JobPanicked(any) {
	if m == nil {
		return
	}

	m.jobPanics.Inc()
}

func (m *Metrics) CompressionFailed() {
	if m == nil {
		return
	}

	m.compressionErrors.Inc()
}
