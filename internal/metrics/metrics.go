// Package metrics exposes Prometheus counters and gauges for the
// authentication lifecycle. An Observer on the event bus keeps them current.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/manager"
	"github.com/gatebox/gatebox/internal/session"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	// authentications is a singleton for the outcome counter vec.
	authentications *prometheus.CounterVec //nolint:gochecknoglobals

	// activeSessions is a singleton for the live session gauge.
	activeSessions prometheus.Gauge //nolint:gochecknoglobals

	// sessionExpirations is a singleton for the expiration counter.
	sessionExpirations prometheus.Counter //nolint:gochecknoglobals
)

// Observer updates Prometheus collectors from lifecycle events.
type Observer struct{}

// NewObserver returns a metrics observer, registering the collectors on first
// use.
func NewObserver() *Observer {
	if authentications == nil {
		authentications = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatebox_authentications_total",
				Help: "Number of authentication attempts, differentiated by outcome.",
			},
			[]string{"outcome"},
		)

		activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gatebox_active_sessions",
			Help: "Number of currently valid sessions.",
		})

		sessionExpirations = promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatebox_session_expirations_total",
			Help: "Number of sessions invalidated by the expiration timer.",
		})
	}

	return &Observer{}
}

// Observes declares the measured lifecycle kinds.
func (o *Observer) Observes() []event.Kind {
	return []event.Kind{
		manager.KindAuthenticated,
		manager.KindNotAuthenticated,
		manager.KindAuthenticationFailed,
		session.KindCreated,
		session.KindInvalidated,
		session.KindExpired,
	}
}

// Handle updates the collectors for one lifecycle event.
func (o *Observer) Handle(e event.Event) {
	switch e.(type) {
	case manager.AuthenticatedEvent:
		authentications.WithLabelValues(outcomeSuccess).Inc()
	case manager.NotAuthenticatedEvent:
		authentications.WithLabelValues(outcomeRejected).Inc()
	case manager.AuthenticationFailedEvent:
		authentications.WithLabelValues(outcomeError).Inc()
	case session.CreatedEvent:
		activeSessions.Inc()
	case session.InvalidatedEvent:
		activeSessions.Dec()
	case session.ExpiredEvent:
		activeSessions.Dec()
		sessionExpirations.Inc()
	}
}
