package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/sagago/internal/adaptor"
	"github.com/specialistvlad/sagago/internal/config"
	"github.com/specialistvlad/sagago/internal/ctxlog"
	"github.com/specialistvlad/sagago/internal/engine"
	"github.com/specialistvlad/sagago/internal/loader"
	"github.com/specialistvlad/sagago/internal/logging"
	"github.com/specialistvlad/sagago/internal/registry"
	"github.com/specialistvlad/sagago/internal/session"
)

// App encapsulates the runtime's dependencies.
type App struct {
	logger   *slog.Logger
	config   *config.Store
	registry *registry.Registry
	engine   *engine.Engine
	report   loader.Report
}

type settings struct {
	logger       *slog.Logger
	modules      []adaptor.Module
	replace      bool
	adaptorPaths []string
	configFile   string
	lookupEnv    config.LookupEnvFunc
}

// Option customises New.
type Option func(*settings)

// WithLogger sets the logger. Defaults to logging.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithModules replaces the compiled-in modules.
func WithModules(modules ...adaptor.Module) Option {
	return func(s *settings) {
		s.modules = modules
		s.replace = true
	}
}

// withExtraModules appends modules after the compiled-in ones.
func withExtraModules(modules ...adaptor.Module) Option {
	return func(s *settings) { s.modules = append(s.modules, modules...) }
}

// WithAdaptorPaths sets adaptor_paths, taking precedence over the
// environment and the config file.
func WithAdaptorPaths(paths ...string) Option {
	return func(s *settings) { s.adaptorPaths = paths }
}

// WithConfigFile sets config_file, taking precedence over the environment.
func WithConfigFile(path string) Option {
	return func(s *settings) { s.configFile = path }
}

// WithLookupEnv replaces the environment lookup used by the config store.
func WithLookupEnv(fn config.LookupEnvFunc) Option {
	return func(s *settings) { s.lookupEnv = fn }
}

// New builds an isolated, fully discovered App. Adaptor load failures do not
// fail New; they are logged and listed in Report.
func New(ctx context.Context, opts ...Option) (*App, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	logger := s.logger
	ctx = ctxlog.WithLogger(ctx, logger)

	var storeOpts []config.StoreOption
	if s.lookupEnv != nil {
		storeOpts = append(storeOpts, config.WithLookupEnv(s.lookupEnv))
	}
	store := config.NewStore(storeOpts...)
	section, err := store.RegisterCategory(EngineCategory, engineSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to register engine options: %w", err)
	}

	if s.configFile != "" {
		if err := section.Set(OptionConfigFile, s.configFile); err != nil {
			return nil, err
		}
	}
	configFile, err := section.String(OptionConfigFile)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := store.LoadFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.Debug("Configuration file loaded.", "path", configFile)
	}

	if s.adaptorPaths != nil {
		if err := section.Set(OptionAdaptorPaths, s.adaptorPaths); err != nil {
			return nil, err
		}
	}
	paths, err := section.Strings(OptionAdaptorPaths)
	if err != nil {
		return nil, err
	}
	builtins, err := section.Bool(OptionBuiltinAdaptors)
	if err != nil {
		return nil, err
	}

	modules := s.modules
	if !s.replace {
		modules = append(coreModules(), s.modules...)
	}

	reg := registry.New(logging.Named(logger, "registry"))
	ld := loader.New(reg, logging.Named(logger, "loader"), modules...)
	if !builtins {
		ld.DisableBuiltins()
	}
	report := ld.Discover(ctx, paths)

	return &App{
		logger:   logger,
		config:   store,
		registry: reg,
		engine:   engine.New(reg, logging.Named(logger, "engine")),
		report:   report,
	}, nil
}

// Config returns the configuration store. Adaptors and clients may register
// their own categories on it.
func (a *App) Config() *config.Store { return a.config }

// Registry returns the frozen adaptor registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Engine returns the resolution engine.
func (a *App) Engine() *engine.Engine { return a.engine }

// Logger returns the runtime logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Report returns the outcome of adaptor discovery.
func (a *App) Report() loader.Report { return a.report }

// Resolve binds category and rawURL to the first accepting adaptor.
func (a *App) Resolve(ctx context.Context, category, rawURL string, sess *session.Session) (*engine.Binding, error) {
	return a.engine.Resolve(ctxlog.WithLogger(ctx, a.logger), category, rawURL, sess)
}
