package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Version is the interpreter version the update file is tagged with.
const Version = 360

// Environment variables read by New.
const (
	EnvPath         = "GMIC_PATH"
	EnvLogLevel     = "GMIC_LOG_LEVEL"
	EnvLogFormat    = "GMIC_LOG_FORMAT"
	EnvFetchTimeout = "GMIC_FETCH_TIMEOUT"
)

// Config holds everything the CLI needs before the interpreter starts.
type Config struct {
	// ResourcesDir holds the version-tagged update file.
	ResourcesDir string
	// UserFile is the user-writable definitions file, one level above the
	// resources directory.
	UserFile string

	Debug        bool
	LogLevel     string
	LogFormat    string
	FetchTimeout time.Duration
}

// DefaultConfig returns a configuration with no paths resolved.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		LogFormat:    "text",
		FetchTimeout: 30 * time.Second,
	}
}

// UpdateFile is the path of the update definitions file for this Version.
func (c *Config) UpdateFile() string {
	return filepath.Join(c.ResourcesDir, fmt.Sprintf("update%d.gmic", Version))
}

// New resolves the configuration from the environment. debug forces the
// debug log level regardless of GMIC_LOG_LEVEL.
func New(getenv func(string) string, debug bool) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Debug = debug
	cfg.ResourcesDir, cfg.UserFile = resolvePaths(getenv, runtime.GOOS)

	if v := strings.ToLower(strings.TrimSpace(getenv(EnvLogLevel))); v != "" {
		cfg.LogLevel = v
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if v := strings.ToLower(strings.TrimSpace(getenv(EnvLogFormat))); v != "" {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(getenv(EnvFetchTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the logging and fetch settings.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat)
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	return nil
}

// resolvePaths picks the resources directory and the user file.
//
// GMIC_PATH wins when set. Otherwise Windows uses APPDATA, and other systems
// use XDG_CONFIG_HOME (or HOME/.config) for resources and HOME for the user
// file.
func resolvePaths(getenv func(string) string, goos string) (resources, user string) {
	if base := getenv(EnvPath); base != "" {
		return filepath.Join(base, "gmic"), filepath.Join(base, userFileName(goos))
	}

	if goos == "windows" {
		base := getenv("APPDATA")
		if base == "" {
			base = os.TempDir()
		}
		return filepath.Join(base, "gmic"), filepath.Join(base, userFileName(goos))
	}

	home := getenv("HOME")
	if home == "" {
		home = os.TempDir()
	}
	user = filepath.Join(home, userFileName(goos))
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gmic"), user
	}
	return filepath.Join(home, ".config", "gmic"), user
}

func userFileName(goos string) string {
	if goos == "windows" {
		return "user.gmic"
	}
	return ".gmic"
}

// EnsureResourcesDir creates the resources directory if it is missing.
func EnsureResourcesDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.ResourcesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create resources folder %s: %w", cfg.ResourcesDir, err)
	}
	return nil
}
