package observability

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

	submitted      prometheus.Counter
	decisions      *prometheus.CounterVec
	conflicts      prometheus.Counter
	partialCommits prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics registers collectors on a private registry so tests can build
// as many instances as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "applications_submitted_total",
			Help: "Applications accepted for review.",
		}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "application_decisions_total",
			Help: "Underwriter decisions that were committed.",
		}, []string{"decision"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "application_decision_conflicts_total",
			Help: "Decisions refused because the application was no longer pending.",
		}),
		partialCommits: factory.NewCounter(prometheus.CounterOpts{
			Name: "application_partial_commits_total",
			Help: "Approvals that left a loan behind without a matching application update.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) Submitted()              { m.submitted.Inc() }
func (m *Metrics) Decided(decision string) { m.decisions.WithLabelValues(decision).Inc() }
func (m *Metrics) Conflict()               { m.conflicts.Inc() }
func (m *Metrics) PartialCommit()          { m.partialCommits.Inc() }

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
