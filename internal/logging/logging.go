package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

// Settings holds the logger configuration read from the environment.
type Settings struct {
	Level   string `env:"SAGAGO_LOG_LEVEL" envDefault:"info"`
	Format  string `env:"SAGAGO_LOG_FORMAT" envDefault:"text"`
	Verbose int    `env:"SAGAGO_VERBOSE" envDefault:"0"`
}

// EffectiveLevel returns the level to log at. A verbosity of 3 or more always
// means debug.
func (s Settings) EffectiveLevel() string {
	if s.Verbose >= 3 {
		return "debug"
	}
	return strings.ToLower(s.Level)
}

// ParseSettings reads Settings from the process environment.
func ParseSettings() (Settings, error) {
	return parseSettings(env.Options{})
}

// ParseSettingsFrom reads Settings from the given environment map instead of
// the process environment.
func ParseSettingsFrom(environ map[string]string) (Settings, error) {
	return parseSettings(env.Options{Environment: environ})
}

func parseSettings(opts env.Options) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, fmt.Errorf("parse logging env: %w", err)
	}
	return s, nil
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances.
func New(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}
	var handler slog.Handler

	if strings.ToLower(formatStr) == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}

var (
	defaultOnce   sync.Once
	defaultLogger *slog.Logger
)

// Default returns the process logger, building it on first use. A malformed
// environment falls back to info level text output and logs a warning.
func Default() *slog.Logger {
	defaultOnce.Do(func() {
		s, err := ParseSettings()
		if err != nil {
			defaultLogger = New("info", "text", os.Stderr)
			defaultLogger.Warn("Invalid logging environment, using defaults.", "error", err)
			return
		}
		defaultLogger = New(s.EffectiveLevel(), s.Format, os.Stderr)
	})
	return defaultLogger
}

// Named returns a child logger tagged with a component name.
func Named(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = Default()
	}
	return logger.With("component", component)
}
