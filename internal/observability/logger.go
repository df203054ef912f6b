// Package observability provides simple logging utilities.
//
// The engine itself is pure computation; the only observability concern
// is the structured diagnostics the ranker and grouper emit for
// excluded records. This package builds the slog.Logger those
// components accept.
package observability

import (
	"io"
	"log/slog"
	"os"

	"github.com/briankaplan/fresh-expense-2-sub006/internal/config"
)

// NewLogger creates a structured logger from logging config.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return NewLoggerTo(os.Stdout, cfg)
}

// NewLoggerTo creates a structured logger writing to w. Tests use this
// to capture output.
func NewLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
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
