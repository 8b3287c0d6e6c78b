package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Output formats understood by New
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ParseLevel converts a level name to a slog.Level. Unknown names map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a structured logger writing to w. format selects the handler;
// anything other than "text" produces JSON.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, FormatText) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Event names attached to domain log records
const (
	EventChannelCreated   = "channel_created"
	EventProgramCreated   = "program_created"
	EventProgramUpdated   = "program_updated"
	EventProgramDeleted   = "program_deleted"
	EventRequestRejected  = "request_rejected"
	EventHealthCheckFails = "health_check_failed"
)

// Discard returns a logger that drops every record. Useful as a default for
// optional logger dependencies.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
