// Package metrics holds the prometheus collectors of the web frontend.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	guardRedirects  prometheus.Counter
	activeSessions  prometheus.Gauge
}

// New registers every collector on a fresh registry, so multiple instances
// (one per test) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		backendRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_backend_requests_total",
			Help: "Backend API requests by operation and HTTP status (0 = no response)",
		}, []string{"operation", "status"}),
		backendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_backend_request_duration_seconds",
			Help:    "Backend API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		guardRedirects: f.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_guard_redirects_total",
			Help: "Unauthenticated navigations redirected to the login view",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "helpdesk_active_sessions",
			Help: "Sessions currently held by the in-memory store",
		}),
	}
}

// ObserveBackendRequest implements apiclient.Observer.
func (m *Metrics) ObserveBackendRequest(operation string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.backendLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) GuardRedirect() {
	if m == nil {
		return
	}
	m.guardRedirects.Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
