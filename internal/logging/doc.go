// Package logging provides structured logging for the blauberg tools.
//
// This package wraps a zap logger with convenience functions. Logging is
// silent unless a level is passed to Initialize or the BLAUBERG_LOG_LEVEL
// environment variable is set, so library callers of the protocol client
// never see unexpected output.
//
// # Log Levels
//
//   - Debug: datagram hex dumps, encoded data blocks, parsed frames
//   - Info: command lifecycle (discovery results, exporter polls)
//   - Warn: protocol anomalies that are tolerated (checksum mismatch,
//     truncated data block, response timeout, short response frame)
//   - Error: failures that abort a command
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Warn("invalid checksum in response",
//	    zap.Uint16("expected", 0x1234),
//	    zap.Uint16("actual", 0x4321),
//	)
//
// Logs are written to stderr in console format so that command output on
// stdout stays machine readable.
package logging
