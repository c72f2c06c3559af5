// Package ui renders the blauberg CLI output.
//
// Commands print through a Printer, which renders lipgloss styled boxes
// and tables on a terminal or plain JSON when --format json is selected:
//
//   - Header: command banner with the fan address and other facts
//   - Result: success, warning and failure boxes with details
//   - Table: parameter values with invalid entries highlighted
//
// Output is rendered once and written; the interactive monitor lives in
// the tui package.
//
// # Logging Integration
//
// Logging is controlled via the BLAUBERG_LOG_LEVEL environment variable or
// --log-level. When unset, zap logging is silent so the rendered output is
// displayed cleanly. Logs go to stderr.
package ui
