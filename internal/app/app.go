package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gmicli/internal/bootstrap"
	"github.com/vk/gmicli/internal/config"
	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/defsfile"
	"github.com/vk/gmicli/internal/fetch"
	"github.com/vk/gmicli/internal/session"
)

// startCommand is registered before anything else so scripts can always
// call the start marker, whatever the definition files contain.
const startCommand = "cli_start : "

// App encapsulates the run's dependencies and lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *session.Session
	loader  *defsfile.Loader
	fetcher fetch.Fetcher
	sources bootstrap.Sources
}

// Option configures an App.
type Option func(*App)

// WithFetcher replaces the HTTP fetcher used for remote definition files.
func WithFetcher(f fetch.Fetcher) Option {
	return func(a *App) { a.fetcher = f }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// NewApp creates the main interpreter, registers the CLI host commands and
// loads the update and user definition sources. Logs and interpreter
// messages go to diag; help goes to stdout.
func NewApp(ctx context.Context, cfg *config.Config, f session.Factory, stdout, diag io.Writer, opts ...Option) (*App, error) {
	a := &App{
		cfg:     cfg,
		loader:  defsfile.NewLoader(config.Version),
		fetcher: fetch.NewHTTPFetcher(cfg.FetchTimeout),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = newLogger(cfg, diag)
	}
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Logger configured successfully.", "level", cfg.LogLevel, "format", cfg.LogFormat)

	s, err := session.New(ctx, f, stdout, diag)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}
	if err := s.Interpreter.AddCommands([]byte(startCommand), ""); err != nil {
		return nil, fmt.Errorf("failed to register host commands: %w", err)
	}
	s.Interpreter.SetVariable("_host", "cli")
	a.session = s

	a.sources = bootstrap.Load(ctx, s.Interpreter, a.loader, cfg.UpdateFile(), cfg.UserFile)
	a.logger.Debug("Definition sources loaded.",
		"update_present", a.sources.Update.Present(),
		"update_invalid", a.sources.Update.Invalid,
		"user_present", a.sources.User.Present(),
		"user_invalid", a.sources.User.Invalid,
	)
	return a, nil
}

// Sources returns the bootstrapped definition sources.
func (a *App) Sources() bootstrap.Sources {
	return a.sources
}

// Session returns the interpreter session. This is primarily for testing.
func (a *App) Session() *session.Session {
	return a.session
}
