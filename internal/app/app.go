package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/ftmpl/internal/assembler"
	"github.com/vk/ftmpl/internal/compiler"
	"github.com/vk/ftmpl/internal/config"
	"github.com/vk/ftmpl/internal/ctxlog"
	"github.com/vk/ftmpl/internal/loader"
	"github.com/vk/ftmpl/internal/observer"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/vk/ftmpl/internal/source"
	"github.com/vk/ftmpl/internal/transform"
)

// ErrModuleNotFound is returned when no search path holds a module.
var ErrModuleNotFound = errors.New("template module not found")

// App encapsulates the application's dependencies and configuration.
type App struct {
	logger   *slog.Logger
	config   *config.Config
	compiler *compiler.Context
	loader   *loader.FileLoader
	metrics  *observer.Metrics
	registry *prometheus.Registry
	closers  []io.Closer
}

// NewApp builds an App from a validated configuration. Logs go to logW.
// The returned App must be closed.
func NewApp(logW io.Writer, cfg *config.Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		logger:   logger,
		config:   cfg,
		registry: prometheus.NewRegistry(),
	}

	c := compiler.New()
	if err := registerPipelines(c.Registry(), cfg.Transforms); err != nil {
		return nil, err
	}
	logger.Debug("Transforms registered.", "options", c.Registry().Names())

	metrics, err := observer.NewMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}
	a.metrics = metrics

	observers := []observer.Func{metrics.Observe}
	if cfg.ObserveLog != "" {
		fn, closer, err := observer.OpenLog(cfg.ObserveLog)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer)
		observers = append(observers, fn)
		logger.Debug("Template use log opened.", "path", cfg.ObserveLog)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		observers = append(observers, observer.Log(logger))
	}
	c.SetObserver(observer.Fanout(observers...))

	a.compiler = c
	a.loader = &loader.FileLoader{Suffix: cfg.Suffix, Compiler: c}
	return a, nil
}

// registerPipelines registers every configured transform as the
// composition of its steps. Steps may name earlier pipelines.
func registerPipelines(reg *transform.Registry, pipelines map[string][]string) error {
	pending := make(map[string][]string, len(pipelines))
	for name, steps := range pipelines {
		pending[name] = steps
	}
	for len(pending) > 0 {
		progress := false
		for name, steps := range pending {
			if !resolvable(reg, steps) {
				continue
			}
			reg.Register(name, pipeline(reg, steps))
			delete(pending, name)
			progress = true
		}
		if !progress {
			for name, steps := range pending {
				return fmt.Errorf("transform %q: unknown step in %v", name, steps)
			}
		}
	}
	return nil
}

func resolvable(reg *transform.Registry, steps []string) bool {
	for _, step := range steps {
		if _, ok := reg.Lookup(step); !ok {
			return false
		}
	}
	return true
}

func pipeline(reg *transform.Registry, steps []string) transform.Func {
	fns := make([]transform.Func, len(steps))
	for i, step := range steps {
		fns[i], _ = reg.Lookup(step)
	}
	return func(body, doc string) (string, string) {
		for _, fn := range fns {
			body, doc = fn(body, doc)
		}
		return body, doc
	}
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.config
}

// Compiler returns the compiler context.
func (a *App) Compiler() *compiler.Context {
	return a.compiler
}

// Metrics returns the render metrics.
func (a *App) Metrics() *observer.Metrics {
	return a.metrics
}

// Gatherer returns the registry the metrics are registered with.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.registry
}

// Compile parses and assembles doc without linking it.
func (a *App) Compile(ctx context.Context, doc *source.Document) (*assembler.Module, error) {
	return a.compiler.Compile(a.Context(ctx), doc)
}

// Resolve finds and links a module by name in the configured paths.
func (a *App) Resolve(ctx context.Context, name string) (*runtime.Module, error) {
	mod, ok, err := loader.ResolveIn(a.Context(ctx), a.loader, name, a.config.Paths)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (searched %v)", ErrModuleNotFound, name, a.config.Paths)
	}
	return mod, nil
}

// Close releases files opened for observers.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
