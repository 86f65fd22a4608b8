package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts relay activity. A nil *Metrics records nothing.
type Metrics struct {
	connections prometheus.Counter
	rejected    prometheus.Counter
	active      prometheus.Gauge
	forwarded   prometheus.Counter
	dropped     *prometheus.CounterVec
}

// NewMetrics registers the relay collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		connections: f.NewCounter(prometheus.CounterOpts{
			Name: "cipherlink_relay_connections_total",
			Help: "Number of accepted websocket connections",
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Name: "cipherlink_relay_rejected_connections_total",
			Help: "Number of connections refused because the user was already connected",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Name: "cipherlink_relay_active_clients",
			Help: "Number of currently connected users",
		}),
		forwarded: f.NewCounter(prometheus.CounterOpts{
			Name: "cipherlink_relay_forwarded_frames_total",
			Help: "Number of frames forwarded between paired users",
		}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cipherlink_relay_dropped_frames_total",
			Help: "Number of frames not delivered",
		}, []string{"reason"}),
	}
}

func (m *Metrics) connected() {
	if m == nil {
		return
	}
	m.connections.Inc()
	m.active.Inc()
}

func (m *Metrics) disconnected() {
	if m == nil {
		return
	}
	m.active.Dec()
}

func (m *Metrics) reject() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

func (m *Metrics) forward() {
	if m == nil {
		return
	}
	m.forwarded.Inc()
}

func (m *Metrics) drop(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}
