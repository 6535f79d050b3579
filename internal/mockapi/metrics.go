package mockapi

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the mock served.
type Metrics struct {
	requests   *prometheus.CounterVec
	violations prometheus.Counter
	misses     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pizzamock_requests_total",
			Help: "Requests answered by a scenario route",
		}, []string{"route", "method", "status"}),
		violations: f.NewCounter(prometheus.CounterOpts{
			Name: "pizzamock_violations_total",
			Help: "Requests that broke a route expectation",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "pizzamock_unmatched_total",
			Help: "Requests no scenario route matched",
		}),
	}
}

// Wrong-method requests carry the route label "-".
func (m *Metrics) observe(route, method string, status int, miss, violated bool) {
	switch {
	case miss:
		m.misses.Inc()
	case route == "":
		m.requests.WithLabelValues("-", method, strconv.Itoa(status)).Inc()
	default:
		m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if violated {
		m.violations.Inc()
	}
}
