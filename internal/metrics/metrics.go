// Package metrics exposes protocol counters and polled fan parameters as
// Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blauberg"

// NewRegistry creates a Prometheus registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the protocol client counters. A nil *Metrics is valid and
// records nothing, so clients built without metrics need no checks.
type Metrics struct {
	Exchanges          *prometheus.CounterVec // labels: function
	Timeouts           prometheus.Counter
	ChecksumMismatches prometheus.Counter
	TruncatedBlocks    prometheus.Counter
	ShortFrames        prometheus.Counter
	ParameterValue     *prometheus.GaugeVec   // labels: fan, param
	PollErrors         *prometheus.CounterVec // labels: fan
}

// New registers and returns the client metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_total",
			Help:      "Commands sent to fans by function.",
		}, []string{"function"}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_timeouts_total",
			Help:      "Commands that received no response before the timeout.",
		}),
		ChecksumMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checksum_mismatches_total",
			Help:      "Responses accepted despite a checksum mismatch.",
		}),
		TruncatedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_blocks_total",
			Help:      "Response data blocks that ended inside an entry.",
		}),
		ShortFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "short_frames_total",
			Help:      "Responses shorter than the fixed response fields.",
		}),
		ParameterValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "parameter_value",
			Help:      "Last polled value of a fan parameter.",
		}, []string{"fan", "param"}),
		PollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Failed exporter polls by fan.",
		}, []string{"fan"}),
	}
	reg.MustRegister(m.Exchanges, m.Timeouts, m.ChecksumMismatches, m.TruncatedBlocks, m.ShortFrames, m.ParameterValue, m.PollErrors)
	return m
}

// ObserveExchange counts a command sent with the given function.
func (m *Metrics) ObserveExchange(function string) {
	if m == nil {
		return
	}
	m.Exchanges.WithLabelValues(function).Inc()
}

// ObserveTimeout counts a command without response.
func (m *Metrics) ObserveTimeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}

// ObserveChecksumMismatch counts a response whose checksum did not match.
func (m *Metrics) ObserveChecksumMismatch() {
	if m == nil {
		return
	}
	m.ChecksumMismatches.Inc()
}

// ObserveTruncatedBlock counts a truncated response data block.
func (m *Metrics) ObserveTruncatedBlock() {
	if m == nil {
		return
	}
	m.TruncatedBlocks.Inc()
}

// ObserveShortFrame counts a response too short to parse.
func (m *Metrics) ObserveShortFrame() {
	if m == nil {
		return
	}
	m.ShortFrames.Inc()
}

// SetParameter records the last polled value of a parameter.
func (m *Metrics) SetParameter(fan, param string, value float64) {
	if m == nil {
		return
	}
	m.ParameterValue.WithLabelValues(fan, param).Set(value)
}

// ObservePollError counts a failed poll of a fan.
func (m *Metrics) ObservePollError(fan string) {
	if m == nil {
		return
	}
	m.PollErrors.WithLabelValues(fan).Inc()
}
