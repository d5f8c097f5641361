// Package logging provides the shared zerolog construction.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger to give the rest of the codebase one type.
type Logger struct {
	zerolog.Logger
}

// New creates a logger at the named level writing to stderr.
func New(level string) *Logger {
	return NewWithOutput(level, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}

// NewWithOutput creates a logger writing to a specific output.
func NewWithOutput(level string, w io.Writer) *Logger {
	var lvl zerolog.Level
	switch level {
	case "trace":
		lvl = zerolog.TraceLevel
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewSilent creates a logger that discards all output, for tests.
func NewSilent() *Logger {
	return &Logger{Logger: zerolog.New(io.Discard)}
}
