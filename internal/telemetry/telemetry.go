// Package telemetry wraps charmbracelet/log into the orchestrator's
// structured logging surface, grounded on the teacher's use of
// charmbracelet/log throughout internal/mcp/repository.go (key-value
// pairs passed as variadic args to Info/Debug/Error rather than a
// format string).
package telemetry

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the structured logger the demo CLI constructs. It is a thin
// alias over *log.Logger so callers need not import charmbracelet/log
// directly. The internal orchestration packages do not log.
type Logger = log.Logger

// New constructs a Logger writing to stderr at the given level
// ("debug", "info", "warn", "error"). An unrecognized level falls back
// to info, matching the teacher's permissive config loading style.
func New(level string) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// WithRequest returns a child logger tagged with request_id, for scoping
// log lines to one request.
func WithRequest(l *Logger, requestID string) *Logger {
	return l.With("request_id", requestID)
}
