package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge
	AuthTransitions     *prometheus.CounterVec
	GroupListRequests   *prometheus.CounterVec
	GroupListLatency    prometheus.Histogram
	GroupsListed        prometheus.Gauge
	LeaveOutcomes       *prometheus.CounterVec
	LoginAttemptsActive prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgroups_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tgroups_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tgroups_http_active_requests",
			Help: "Number of HTTP requests being served.",
		}),
		AuthTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgroups_auth_transitions_total",
				Help: "Login steps by step and outcome.",
			},
			[]string{"step", "outcome"},
		),
		GroupListRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgroups_group_list_requests_total",
				Help: "Group directory queries by result.",
			},
			[]string{"result"},
		),
		GroupListLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgroups_group_list_duration_seconds",
			Help:    "Latency of group directory queries, connection included.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		GroupsListed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tgroups_groups_listed",
			Help: "Number of groups returned by the last successful query.",
		}),
		LeaveOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgroups_group_leave_total",
				Help: "Group departures by peer type and status.",
			},
			[]string{"peer_type", "status"},
		),
		LoginAttemptsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tgroups_login_attempts_in_flight",
			Help: "Login attempts waiting for a code or password.",
		}),
	}
}

// ActiveRequestsInc marks the start of an HTTP request.
func (m *Metrics) ActiveRequestsInc() { m.HTTPActiveRequests.Inc() }

// ActiveRequestsDec marks the end of an HTTP request.
func (m *Metrics) ActiveRequestsDec() { m.HTTPActiveRequests.Dec() }

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, statusLabel(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

//Personal.AI order the ending
