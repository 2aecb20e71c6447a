package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/vk/exportmap/internal/ctxlog"
	"github.com/vk/exportmap/internal/engine"
	"github.com/vk/exportmap/internal/geo"
	"github.com/vk/exportmap/internal/job"
	"github.com/vk/exportmap/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	engine  engine.Initializer
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger. The engine is not initialized until Run.
func NewApp(outW io.Writer, cfg *Config, initializer engine.Initializer) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		engine:  initializer,
		metrics: metrics.New(),
		now:     time.Now,
	}
}

// Metrics returns the application's metrics recorder. This is primarily for testing.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Run performs one export. The engine is initialized once and shut down
// exactly once on every path.
//
// Only an engine initialization failure and an unsupported format are
// returned as errors. Every other pipeline failure, including a recovered
// engine panic, is reported on the output writer and Run returns nil.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg := a.config
	a.logger.Info("🚀 Starting export script...")
	a.logger.Info("📂 Project: " + cfg.ProjectPath)
	a.logger.Info("📸 Output: " + cfg.OutputPath)
	a.logger.Info("📐 Input Bounds (EPSG:4326): " + geo.FormatBounds(cfg.Extent))
	a.logger.Info("🧾 Format: " + string(cfg.Format))

	rt, err := a.initEngine(ctx)
	if err != nil {
		a.logger.Error("❌ Engine initialization failed", "error", err)
		a.finish(ctx, metrics.OutcomeError, nil)
		return err
	}
	defer a.shutdown(ctx, rt)

	if version := rt.Version(); version != "" {
		a.logger.Info("🔍 Engine version: " + version)
	} else {
		a.logger.Warn("⚠️ Unable to detect engine version.")
	}

	report, err := job.Run(ctx, rt, job.Request{
		ProjectPath: cfg.ProjectPath,
		OutputPath:  cfg.OutputPath,
		Format:      cfg.Format,
		Extent:      cfg.Extent,
	}, job.Options{FontFamily: cfg.FontFamily})

	switch {
	case err == nil && report.Succeeded():
		a.finish(ctx, metrics.OutcomeSuccess, report)
	case err == nil:
		a.finish(ctx, metrics.OutcomeExportFailed, report)
	case errors.Is(err, job.ErrUnsupportedFormat):
		a.finish(ctx, metrics.OutcomeError, report)
		return err
	default:
		a.reportFailure(err, report)
		var panicErr *job.PanicError
		if errors.As(err, &panicErr) {
			a.finish(ctx, metrics.OutcomePanic, report)
		} else {
			a.finish(ctx, metrics.OutcomeError, report)
		}
	}
	return nil
}

func (a *App) initEngine(ctx context.Context) (rt engine.Runtime, err error) {
	defer func() {
		if v := recover(); v != nil {
			rt = nil
			err = &job.PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	rt, err = a.engine.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	return rt, nil
}

// shutdown releases the engine. It is deferred right after a successful
// initialization, so it runs once per Run.
func (a *App) shutdown(ctx context.Context, rt engine.Runtime) {
	logger := ctxlog.FromContext(ctx)
	defer func() {
		if v := recover(); v != nil {
			logger.Error("Engine shutdown panicked", "panic", v)
		}
		logger.Info("👋 Engine exited")
	}()

	if err := rt.Shutdown(); err != nil {
		logger.Error("Engine shutdown failed", "error", err)
	}
}

func (a *App) finish(ctx context.Context, outcome string, report *job.Report) {
	a.metrics.Observe(a.config.Format, outcome, report, a.now())
	if a.config.MetricsTextfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.config.MetricsTextfile); err != nil {
		ctxlog.FromContext(ctx).Warn("Metrics not written", "path", a.config.MetricsTextfile, "error", err)
		return
	}
	ctxlog.FromContext(ctx).Debug("Metrics written.", "path", a.config.MetricsTextfile)
}
