// Package log provides structured logging for pulseml training and inference.
//
// The package is a thin layer over log/slog: SetupLogger installs a JSON
// handler wrapped so that errors logged via ErrAttr carry a stacktrace
// attribute, and GetLoggerWithName hands out component-scoped loggers used
// by the trainer and the hyperparameter search loop.
package log

import (
	"fmt"
	"log/slog"
	"os"
)

// SetupLogger configures the process-wide default logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

// ToLogLevel converts a level name into a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"

	// ComponentAttrKey identifies the library component emitting a record.
	ComponentAttrKey = "component"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// GetLogger returns the process-wide default logger.
func GetLogger() *slog.Logger {
	return slog.Default()
}

// GetLoggerWithName returns a logger scoped to a named component,
// e.g. "gbdt.trainer" or "gbdt.search".
func GetLoggerWithName(name string) *slog.Logger {
	return slog.Default().With(ComponentAttrKey, name)
}
