// Package metrics provides Prometheus metrics for the chatbot service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	MessagesTotal      *prometheus.CounterVec
	CommandsTotal      *prometheus.CounterVec
	LoginAttemptsTotal *prometheus.CounterVec
	RepliesTotal       *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	ActiveSessions     prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_messages_total",
				Help: "Inbound chat messages by conversation state at arrival.",
			},
			[]string{"state"},
		),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_commands_total",
				Help: "Parsed commands by kind and result.",
			},
			[]string{"command", "result"},
		),
		LoginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_login_attempts_total",
				Help: "Chat login attempts by result.",
			},
			[]string{"result"},
		),
		RepliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_replies_total",
				Help: "Outbound WhatsApp messages by provider and status.",
			},
			[]string{"provider", "status"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_notifications_total",
				Help: "Scheduled notifications by kind and status.",
			},
			[]string{"kind", "status"},
		),
		ProcessingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatbot_message_processing_seconds",
				Help:    "Time spent turning an inbound message into a reply.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatbot_active_sessions",
				Help: "Chat sessions currently held in memory.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.MessagesTotal)
	reg.MustRegister(m.CommandsTotal)
	reg.MustRegister(m.LoginAttemptsTotal)
	reg.MustRegister(m.RepliesTotal)
	reg.MustRegister(m.NotificationsTotal)
	reg.MustRegister(m.ProcessingDuration)
	reg.MustRegister(m.ActiveSessions)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The record helpers accept a nil receiver so components can run without metrics.

// RecordMessage increments the inbound message counter.
func (m *Metrics) RecordMessage(state string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(state).Inc()
}

// RecordCommand increments the command counter.
func (m *Metrics) RecordCommand(command, result string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, result).Inc()
}

// RecordLogin increments the login attempt counter.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordReply increments the outbound message counter.
func (m *Metrics) RecordReply(provider, status string) {
	if m == nil {
		return
	}
	m.RepliesTotal.WithLabelValues(provider, status).Inc()
}

// RecordNotification increments the scheduled notification counter.
func (m *Metrics) RecordNotification(kind, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveProcessing records message processing duration.
func (m *Metrics) ObserveProcessing(seconds float64) {
	if m == nil {
		return
	}
	m.ProcessingDuration.Observe(seconds)
}

// SetActiveSessions sets the in-memory session gauge.
func (m *Metrics) SetActiveSessions(count int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(count))
}
