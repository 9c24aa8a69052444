// Package metrics exposes Prometheus instrumentation for the chat server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks server-level Prometheus metrics.
//
// All metrics use the wirechat_ prefix. A nil *Metrics is a valid no-op
// collector so instrumentation can be disabled without branching at
// every call site.
type Metrics struct {
	// ConnectionsTotal counts accepted connections by outcome
	ConnectionsTotal *prometheus.CounterVec

	// SessionsActive tracks authenticated sessions currently live
	SessionsActive prometheus.Gauge

	// FramesTotal counts wire frames by direction
	FramesTotal *prometheus.CounterVec

	// MessagesPersisted counts messages written to the store by kind
	MessagesPersisted *prometheus.CounterVec

	// MessagesDelivered counts frames fanned out to recipients by kind
	MessagesDelivered *prometheus.CounterVec

	// AuthTotal counts authentication attempts by operation and outcome
	AuthTotal *prometheus.CounterVec
}

// NewMetrics creates chat server metrics registered on reg.
// Panics if registration fails, which only happens during init.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wirechat_connections_total",
				Help: "Total accepted TCP connections by outcome",
			},
			[]string{"outcome"}, // "admitted", "rejected_full"
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wirechat_sessions_active",
				Help: "Authenticated sessions currently connected",
			},
		),
		FramesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wirechat_frames_total",
				Help: "Total wire frames by direction",
			},
			[]string{"direction"}, // "read", "written"
		),
		MessagesPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wirechat_messages_persisted_total",
				Help: "Messages written to the store by kind",
			},
			[]string{"kind"}, // "broadcast", "direct", "group"
		),
		MessagesDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wirechat_messages_delivered_total",
				Help: "Message frames fanned out to recipients by kind",
			},
			[]string{"kind"},
		),
		AuthTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wirechat_auth_total",
				Help: "Authentication attempts by operation and outcome",
			},
			[]string{"operation", "outcome"}, // operation: "register", "login"; outcome: "success", "failure"
		),
	}

	reg.MustRegister(
		m.ConnectionsTotal,
		m.SessionsActive,
		m.FramesTotal,
		m.MessagesPersisted,
		m.MessagesDelivered,
		m.AuthTotal,
	)

	return m
}

// RecordConnection records an accept loop decision.
func (m *Metrics) RecordConnection(outcome string) {
	if m == nil {
		return
	}
	m.ConnectionsTotal.WithLabelValues(outcome).Inc()
}

// SessionOpened bumps the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

// SessionClosed drops the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// RecordFrame counts one frame in the given direction.
func (m *Metrics) RecordFrame(direction string) {
	if m == nil {
		return
	}
	m.FramesTotal.WithLabelValues(direction).Inc()
}

// RecordPersisted counts a message saved to the store.
func (m *Metrics) RecordPersisted(kind string) {
	if m == nil {
		return
	}
	m.MessagesPersisted.WithLabelValues(kind).Inc()
}

// RecordDelivered counts frames handed to recipient sessions.
func (m *Metrics) RecordDelivered(kind string, count int) {
	if m == nil {
		return
	}
	m.MessagesDelivered.WithLabelValues(kind).Add(float64(count))
}

// RecordAuth records an authentication attempt.
func (m *Metrics) RecordAuth(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthTotal.WithLabelValues(operation, outcome).Inc()
}

// Handler returns the scrape endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
