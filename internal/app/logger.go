package app

import (
	"io"
	"log/slog"

	"github.com/vk/gmicli/internal/config"
	"github.com/vk/gmicli/internal/logging"
)

// newLogger creates the run's logger. It does not set the global logger,
// allowing for isolated logger instances.
func newLogger(cfg *config.Config, outW io.Writer) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return logging.New(outW, level, cfg.LogFormat)
}
