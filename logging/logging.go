// Package logging builds the structured loggers used across chatmd.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// EnvLevel is the environment variable holding the default log level.
const EnvLevel = "CHATMD_LOG_LEVEL"

// New creates a text slog.Logger writing to w at the named level
// (DEBUG, INFO, WARN, ERROR). Unknown or empty levels mean INFO.
func New(level string, w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, case-insensitively.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
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

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
