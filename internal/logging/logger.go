package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "AVRKIT_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks AVRKIT_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	// If no level provided, check environment variable
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	// If still no level, use silent mode (nop logger)
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	// Customize encoder for better readability
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the AVRKIT_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging
// for CLI commands that want silent mode by default.
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		// This ensures no unexpected log output in CLI commands
		logger = zap.NewNop()
	}
	return logger
}

// SetLogger replaces the global logger instance. Intended for tests that
// need to observe log output.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogCommand logs an outgoing control command at debug level
func LogCommand(host string, endpoint string, command string) {
	Debug("Sending command",
		zap.String("host", host),
		zap.String("endpoint", endpoint),
		zap.String("command", command),
	)
}

// LogTransportError logs a failed request to a receiver endpoint.
// Connect timeouts are not logged through here; they are treated as
// transient and swallowed by callers.
func LogTransportError(host string, endpoint string, err error) {
	Error("No connection to end point",
		zap.String("endpoint", endpoint),
		zap.String("host", host),
		zap.Error(err),
	)
}

// LogMalformedResponse logs a response body that could not be parsed
func LogMalformedResponse(host string, endpoint string) {
	Error("End point returned malformed XML",
		zap.String("endpoint", endpoint),
		zap.String("host", host),
	)
}

// LogRequestBuildError logs a request that could not be serialized
// before being sent. This is a client-side failure, distinct from a
// malformed receiver response.
func LogRequestBuildError(host string, endpoint string, err error) {
	Error("Failed to build command request",
		zap.String("endpoint", endpoint),
		zap.String("host", host),
		zap.Error(err),
	)
}

// LogSettingChange logs the outcome of a settings write
func LogSettingChange(host string, parameter string, value string, accepted bool) {
	Info("Setting change",
		zap.String("host", host),
		zap.String("parameter", parameter),
		zap.String("value", value),
		zap.Bool("accepted", accepted),
	)
}

// LogDiscovery logs a discovery event
func LogDiscovery(event string, fields ...zap.Field) {
	Info("Discovery event",
		append([]zap.Field{zap.String("event", event)}, fields...)...,
	)
}

// LogConnection logs a connection event on the simulator side
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogHTTPRequest logs an HTTP request handled by the simulator
func LogHTTPRequest(remoteAddr string, method string, path string) {
	Info("HTTP request received",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
	)
}

// LogPayload logs a request or response body (useful for debugging the
// XML dialect). Bodies are truncated and non-printable bytes replaced.
func LogPayload(label string, data []byte) {
	Debug(label,
		zap.Int("length", len(data)),
		zap.String("body", payloadPreview(data)),
	)
}

// payloadPreview renders up to 512 bytes of a payload as printable ASCII
func payloadPreview(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	truncated := false
	if len(data) > 512 {
		data = data[:512]
		truncated = true
	}

	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	if truncated {
		return string(result) + "..."
	}
	return string(result)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
