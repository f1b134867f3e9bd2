// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a logger writing to stderr in the given format ("text" or "json")
// and installs it as the slog default.
func Setup(format string) *slog.Logger {
	l := New(os.Stderr, format, slog.LevelInfo)
	slog.SetDefault(l)
	return l
}

// New returns a logger for w. Unknown formats fall back to text.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
