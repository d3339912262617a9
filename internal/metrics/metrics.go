// Package metrics provides Prometheus metrics for the identity service.
//
// All methods are safe on a nil *Metrics, so components can be built
// without metrics in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity_service"

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginError   = "error"
)

type Metrics struct {
	// IdentityResolutions counts requests by the source their email came from.
	IdentityResolutions *prometheus.CounterVec
	// Logins counts login attempts by outcome.
	Logins *prometheus.CounterVec
}

// New creates and registers all metrics with the default Prometheus registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry.
// This is useful for testing to avoid metric registration conflicts.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		IdentityResolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "identity_resolutions_total",
				Help:      "Total number of request identities resolved, by source",
			},
			[]string{"source"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Total number of login attempts, by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordIdentityResolved(source string) {
	if m == nil {
		return
	}
	m.IdentityResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}
