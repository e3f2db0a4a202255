// Package metrics collects request metrics of the feeder client and exposes
// them for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport"
	OutcomeDecode    = "decode"
)

// Recorder receives one observation per backend request.
type Recorder interface {
	RecordRequest(operation, outcome string, latency time.Duration)
	RecordStateChange(state string)
}

// Collector is the Prometheus Recorder.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	stateChanges *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aln_client_requests_total",
			Help: "Backend requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aln_client_request_latency_seconds",
			Help:    "Backend request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		stateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aln_client_auth_state_changes_total",
			Help: "Auth state transitions by target state.",
		}, []string{"state"}),
	}

	reg.MustRegister(c.requests, c.latency, c.stateChanges)

	return c
}

func (c *Collector) RecordRequest(operation, outcome string, latency time.Duration) {
	c.requests.WithLabelValues(operation, outcome).Inc()
	c.latency.WithLabelValues(operation).Observe(latency.Seconds())
}

func (c *Collector) RecordStateChange(state string) {
	c.stateChanges.WithLabelValues(state).Inc()
}

// Nop discards observations.
type Nop struct{}

func (Nop) RecordRequest(string, string, time.Duration) {}
func (Nop) RecordStateChange(string)                    {}

// Handler returns a /metrics handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
