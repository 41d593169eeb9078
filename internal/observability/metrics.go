package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "watersafe"

// Metrics holds the Prometheus collectors for report intake and moderation.
type Metrics struct {
	ReportsCreated       *prometheus.CounterVec // labels: priority
	StatusTransitions    *prometheus.CounterVec // labels: from, to
	CodeCollisions       prometheus.Counter
	CodeExhausted        prometheus.Counter
	CoordinatesProcessed *prometheus.CounterVec // labels: result={absent,valid,invalid}
	ReportsDeleted       prometheus.Counter
	EventsPublished      *prometheus.CounterVec // labels: type, outcome={success,error}

	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route, status
}

func newCollectors() *Metrics {
	return &Metrics{
		ReportsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_created_total",
			Help:      "Reports accepted by intake, by priority.",
		}, []string{"priority"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_status_transitions_total",
			Help:      "Committed report status changes.",
		}, []string{"from", "to"}),
		CodeCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_code_collisions_total",
			Help:      "Generated report codes rejected by storage as already taken.",
		}),
		CodeExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_code_exhausted_total",
			Help:      "Report creations that ran out of code generation attempts.",
		}),
		CoordinatesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinates_normalized_total",
			Help:      "Coordinate normalization results at intake.",
		}, []string{"result"}),
		ReportsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_deleted_total",
			Help:      "Reports removed by operators.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Lifecycle events handed to the broker, by type and outcome.",
		}, []string{"type", "outcome"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ReportsCreated,
		m.StatusTransitions,
		m.CodeCollisions,
		m.CodeExhausted,
		m.CoordinatesProcessed,
		m.ReportsDeleted,
		m.EventsPublished,
		m.HTTPRequestDuration,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// every test gets fresh counters.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}

// NewMetricsWithRegistry registers the collectors in a caller-owned registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newCollectors()
	reg.MustRegister(m.collectors()...)
	return m
}
