// Package logger builds the JSON slog logger used across the client.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a level name to a slog.Level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup returns a JSON logger writing to w at the named level.
func Setup(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler)
}

// SetupDefault installs a Setup logger as the slog default. A nil writer
// discards output; the TUI owns stdout.
func SetupDefault(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	l := Setup(w, level)
	slog.SetDefault(l)
	return l
}
