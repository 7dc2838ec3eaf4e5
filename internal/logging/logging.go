// Package logging builds the slog handlers used by the CLI. Text output goes
// through tint so diagnostics stay readable next to interpreter messages; JSON
// output is available for scripted callers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vk/gmicli/internal/console"
)

// ParseLevel maps a level name onto a slog.Level.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", levelStr)
	}
}

// NewHandler creates a handler writing to outW. It does not touch the global
// logger, so every run gets an isolated instance.
func NewHandler(outW io.Writer, level slog.Level, formatStr string) slog.Handler {
	if formatStr == "json" {
		return slog.NewJSONHandler(outW, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(outW, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !console.IsTerminal(outW),
	})
}

// New is a shorthand for slog.New(NewHandler(...)).
func New(outW io.Writer, level slog.Level, formatStr string) *slog.Logger {
	return slog.New(NewHandler(outW, level, formatStr))
}
