// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics for the event loop, exported through Prometheus.
// Collectors are safe to read from any goroutine; only the event loop
// updates them.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wsreactor"

// Metrics holds the server's collectors.
type Metrics struct {
	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	Handshakes          prometheus.Counter
	FramesReceived      *prometheus.CounterVec
	FramesSent          *prometheus.CounterVec
	ConnectionErrors    *prometheus.CounterVec
	LogsSuppressed      prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "TCP connections accepted by the listener.",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Connections currently held by the registry.",
		}),
		Handshakes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Completed WebSocket upgrade handshakes.",
		}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Frames decoded from clients, by opcode.",
		}, []string{"opcode"}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Frames written to clients, by opcode.",
		}, []string{"opcode"}),
		ConnectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Connections torn down because of an error, by kind.",
		}, []string{"kind"}),
		LogsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logs_suppressed_total",
			Help:      "Error log lines dropped by the log rate limiter.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ConnectionsAccepted,
			m.ConnectionsActive,
			m.Handshakes,
			m.FramesReceived,
			m.FramesSent,
			m.ConnectionErrors,
			m.LogsSuppressed,
		)
	}
	return m
}
