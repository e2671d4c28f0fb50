// Package observability exposes Prometheus metrics for the game server.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the server's Prometheus collectors. A nil *Metrics is
// valid and records nothing, which keeps tests free of registry setup.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionsTotal  prometheus.Counter
	ActionsTotal   *prometheus.CounterVec
	ForfeitsTotal  prometheus.Counter
	CleanupsTotal  prometheus.Counter
	WSMessagesTotal *prometheus.CounterVec
	WSConnections   prometheus.Gauge
}

func New(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of session actors currently resident in memory.",
		}),
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total sessions created.",
		}),
		ActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Game actions processed, by action type and outcome.",
		}, []string{"action", "outcome"}),
		ForfeitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forfeits_total",
			Help:      "Sessions completed by disconnect forfeit.",
		}),
		CleanupsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_cleanups_total",
			Help:      "Completed sessions purged after the retention delay.",
		}),
		WSMessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket frames, by direction and frame type.",
		}, []string{"direction", "type"}),
		WSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Currently open WebSocket connections.",
		}),
	}
}

func (m *Metrics) SessionCreated() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
}

// ActorUp and ActorDown track session actors resident in memory, which is
// distinct from sessions created: restored actors count too.
func (m *Metrics) ActorUp() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) ActorDown() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) Action(action, outcome string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) Forfeit() {
	if m == nil {
		return
	}
	m.ForfeitsTotal.Inc()
}

func (m *Metrics) Cleanup() {
	if m == nil {
		return
	}
	m.CleanupsTotal.Inc()
}

func (m *Metrics) WSMessage(direction, frameType string) {
	if m == nil {
		return
	}
	m.WSMessagesTotal.WithLabelValues(direction, frameType).Inc()
}

func (m *Metrics) WSOpened() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

func (m *Metrics) WSClosed() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
