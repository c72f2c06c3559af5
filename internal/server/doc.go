// Package server implements the Prometheus exporter behind "blauberg exporter".
//
// The server polls every configured fan at a fixed interval, reading all
// parameters of the fan's profile in one exchange, and publishes each value
// as blauberg_parameter_value{fan, param}. Protocol counters recorded by the
// fan clients (exchanges, timeouts, checksum mismatches, truncated blocks)
// are served from the same registry.
//
// Endpoints:
//
//   - /metrics: Prometheus text exposition
//   - /healthz: JSON map of fan name to last poll time and error
//
// Polls run one fan at a time; a slow fan delays the others by at most the
// configured timeout. Start handles SIGINT and SIGTERM with a graceful
// shutdown.
package server
