// Package log provides a structured logging interface for statlearn
// model-fitting and evaluation operations.
//
// This package defines a minimal logging interface backed by zerolog,
// with standard attribute keys for statistical modeling workflows
// (model names, data shapes, error metrics, sweep positions). The
// interface is slog-shaped so implementations can be swapped without
// touching call sites.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "RandomForest",
//	)
//	logger.Info("fit complete",
//	    log.OperationKey, "fit",
//	    log.SamplesKey, 253,
//	    log.TreesKey, 500,
//	)
package log

import "context"

// Logger defines a structured logging interface with slog-style
// variadic key-value fields and contextual chaining via With.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error its stack trace, when present, is
	// attached under the stacktrace attribute.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
