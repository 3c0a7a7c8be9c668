package binder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded by Metrics.
const (
	OutcomeResolved         = "resolved"
	OutcomeDefaulted        = "defaulted"
	OutcomeAbsent           = "absent"
	OutcomeMissing          = "missing"
	OutcomeInvalidFormat    = "invalid_format"
	OutcomeSchemaValidation = "schema_validation"
	OutcomeConfigError      = "config_error"
)

// Metrics holds the Prometheus collectors for parameter resolution.
type Metrics struct {
	// Resolutions counts resolved parameters by location and outcome.
	Resolutions *prometheus.CounterVec
	// RequestDuration observes how long resolving all of an operation's
	// parameters took.
	RequestDuration *prometheus.HistogramVec
	// Rejections counts requests rejected by the middleware, by status.
	Rejections *prometheus.CounterVec
}

// NewMetrics registers the collectors with the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry registers the collectors with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasbind",
				Name:      "parameter_resolutions_total",
				Help:      "Parameters resolved, by location and outcome",
			},
			[]string{"location", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "oasbind",
				Name:      "resolve_duration_seconds",
				Help:      "Time spent resolving an operation's parameters",
				Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .1},
			},
			[]string{"operation"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasbind",
				Name:      "rejected_requests_total",
				Help:      "Requests rejected before reaching the handler",
			},
			[]string{"operation", "status"},
		),
	}
}

func (m *Metrics) observeResolution(loc Location, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(string(loc), outcome).Inc()
}

func (m *Metrics) observeDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) observeRejection(operation string, status int) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(operation, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	}
	return "other"
}
