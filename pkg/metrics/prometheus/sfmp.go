// Package prometheus implements the pkg/metrics interfaces with
// Prometheus collectors registered on metrics.GetRegistry().
package prometheus

import (
	"time"

	"github.com/marmos91/sfmp/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// sfmpMetrics is the Prometheus implementation of metrics.SFMPMetrics.
type sfmpMetrics struct {
	commands          *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec
	verdicts          *prometheus.CounterVec
	bytesTransferred  *prometheus.CounterVec
	transferSize      *prometheus.HistogramVec
	activeConnections prometheus.Gauge
	accepted          prometheus.Counter
	closed            prometheus.Counter
	forceClosed       prometheus.Counter
}

// NewSFMPMetrics creates a Prometheus-backed SFMPMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewSFMPMetrics() metrics.SFMPMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sfmpMetrics{
		commands: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfmp_commands_total",
				Help: "Total number of commands by header and outcome",
			},
			[]string{"header", "outcome"},
		),
		commandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "sfmp_command_duration_milliseconds",
				Help: "Duration of commands in milliseconds, handshake and payload included",
				Buckets: []float64{
					0.5,   // handshake only, rejected
					1,     // small files
					5,     // 5ms
					25,    // 25ms
					100,   // 100ms
					500,   // 500ms
					2500,  // 2.5s
					10000, // 10s - large transfers
				},
			},
			[]string{"header"},
		),
		verdicts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfmp_verdicts_total",
				Help: "Total number of VALID/INVALID replies by header",
			},
			[]string{"header", "verdict"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sfmp_bytes_transferred_total",
				Help: "Total payload bytes by header and direction",
			},
			[]string{"header", "direction"}, // direction: "in", "out"
		),
		transferSize: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "sfmp_transfer_size_bytes",
				Help: "Distribution of payload sizes",
				Buckets: []float64{
					0,        // empty files
					4096,     // one default chunk
					65536,    // 64KB
					1048576,  // 1MB - one full frame
					16777216, // 16MB
					268435456,
				},
			},
			[]string{"header"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "sfmp_active_connections",
				Help: "Current number of connected sessions",
			},
		),
		accepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "sfmp_connections_accepted_total",
				Help: "Total number of accepted connections",
			},
		),
		closed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "sfmp_connections_closed_total",
				Help: "Total number of closed connections",
			},
		),
		forceClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "sfmp_connections_force_closed_total",
				Help: "Total number of connections force-closed at shutdown",
			},
		),
	}
}

func (m *sfmpMetrics) RecordCommand(header string, outcome string, duration time.Duration) {
	m.commands.WithLabelValues(header, outcome).Inc()
	m.commandDuration.WithLabelValues(header).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *sfmpMetrics) RecordVerdict(header string, valid bool) {
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	m.verdicts.WithLabelValues(header, verdict).Inc()
}

func (m *sfmpMetrics) RecordBytesTransferred(header string, direction string, bytes int64) {
	if bytes < 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(header, direction).Add(float64(bytes))
	m.transferSize.WithLabelValues(header).Observe(float64(bytes))
}

func (m *sfmpMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *sfmpMetrics) RecordConnectionAccepted() {
	m.accepted.Inc()
}

func (m *sfmpMetrics) RecordConnectionClosed() {
	m.closed.Inc()
}

func (m *sfmpMetrics) RecordConnectionForceClosed() {
	m.forceClosed.Inc()
}
