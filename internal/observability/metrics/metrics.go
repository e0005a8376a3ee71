// Package metrics defines the Prometheus instruments for the bot engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters shared across the engine. A nil *Metrics is
// valid everywhere; observe methods become no-ops.
type Metrics struct {
	inboundTotal   *prometheus.CounterVec
	outboundTotal  *prometheus.CounterVec
	remindersTotal *prometheus.CounterVec
	importsTotal   *prometheus.CounterVec
}

// New creates and registers the bot counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_inbound_messages_total",
			Help: "Inbound webhook messages by handling outcome.",
		}, []string{"outcome"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_outbound_messages_total",
			Help: "Outbound messages by delivery status.",
		}, []string{"status"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_reminders_total",
			Help: "Reminder messages by kind.",
		}, []string{"kind"}),
		importsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_imports_total",
			Help: "Spreadsheet imports by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.remindersTotal, m.importsTotal)
	return m
}

// ObserveInbound records an inbound message with its routing outcome
// (e.g. "handled", "ignored_unknown", "ignored_non_text").
func (m *Metrics) ObserveInbound(outcome string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(outcome).Inc()
}

// ObserveOutbound records an outbound send attempt result ("sent" or
// "failed").
func (m *Metrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

// ObserveReminder records a fired reminder ("countdown" or "near_term").
func (m *Metrics) ObserveReminder(kind string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(kind).Inc()
}

// ObserveImport records a spreadsheet import ("ok" or "error").
func (m *Metrics) ObserveImport(result string) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(result).Inc()
}
