// Package logging provides structured logging for the avrkit tools.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the toolkit. It provides both general logging
// functions and specialized functions for receiver protocol logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (command payloads, response bodies)
//   - Info: Normal operations (connections, discovery, setting changes)
//   - Warn: Non-fatal issues (rejected commands, retries)
//   - Error: Fatal issues (startup failures, transport errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Receiver found",
//	    zap.String("host", "192.168.1.100"),
//	    zap.String("model", "AVR-X1500H"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Command Logging:
//
//	logging.LogCommand(host, appcommand.SettingsEndpoint, "GetAudyssey")
//	logging.LogTransportError(host, endpoint, err)
//	logging.LogMalformedResponse(host, endpoint)
//
// Simulator Logging:
//
//	logging.LogConnection(remoteAddr, "event_stream_opened")
//	logging.LogHTTPRequest(remoteAddr, "POST", "/goform/AppCommand0300.xml")
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Enable it with the
// AVRKIT_LOG_LEVEL environment variable or an explicit Initialize call:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
