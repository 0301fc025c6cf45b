package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"UniPredict/pkg/config"
	xhttp "UniPredict/pkg/http"
	applogger "UniPredict/pkg/logger"
)

type closer struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	registry   *prometheus.Registry
	closers    []closer
	httpServer *xhttp.Server
}

type Option func(*App)

// WithRegistry exposes reg on the configured metrics path.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) { a.registry = reg }
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, opts ...Option) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	a := &App{cfg: cfg, log: l, handler: handler}
	for _, opt := range opts {
		opt(a)
	}

	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
	}
	if a.registry != nil {
		serverOpts = append(serverOpts, xhttp.WithMetrics(a.registry, cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(handler, serverOpts...)
	return a
}

// OnShutdown registers a resource closed after the HTTP server stops.
func (a *App) OnShutdown(name string, c io.Closer) {
	if c == nil {
		return
	}
	a.closers = append(a.closers, closer{name: name, c: c})
}

// Server returns the HTTP server.
func (a *App) Server() *xhttp.Server { return a.httpServer }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("universities", len(a.cfg.Universities)),
		applogger.Int("sources", len(a.cfg.Sources)),
		applogger.Int("target_year", a.cfg.Prediction.TargetYear),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.Shutdown(ctx)
}

// Shutdown stops the HTTP server and closes registered resources.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Flush aggregated logs while the producer is still open.
	a.log.RemoveCollector()

	for _, c := range a.closers {
		if err := c.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
