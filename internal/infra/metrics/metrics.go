// Package metrics holds the service's prometheus collectors on a private
// registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry       *prometheus.Registry
	issued         *prometheus.CounterVec
	failures       *prometheus.CounterVec
	identityVerify *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revix_attestations_issued_total",
			Help: "Attestations signed, by claim kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revix_attestation_failures_total",
			Help: "Attestation requests that ended in an error, by claim kind and error code.",
		}, []string{"kind", "code"}),
		identityVerify: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "revix_identity_verify_seconds",
			Help:    "Latency of identity provider verification.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"provider", "outcome"}),
	}
	m.registry.MustRegister(
		m.issued,
		m.failures,
		m.identityVerify,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Issued(kind string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(kind).Inc()
}

func (m *Metrics) Failed(kind, code string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind, code).Inc()
}

func (m *Metrics) ObserveIdentity(provider string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	m.identityVerify.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
