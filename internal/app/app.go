package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/engine"
	"github.com/vk/bootcfg/internal/filter"
	"github.com/vk/bootcfg/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	engine   *engine.Engine
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Logs go to errW, the resolved configuration to outW.
func NewApp(outW, errW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.NoColor, errW)
	logger = logger.With("run_id", uuid.NewString())
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(cfg)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	for _, f := range filter.Builtin() {
		reg.RegisterFilter(f)
	}
	logger.Debug("All modules registered.", "count", len(modules))

	// A broken registry is a wiring error, not a runtime condition.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		engine:   engine.New(reg, engine.Options{Vars: cfg.Vars}),
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
