package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	xhttp "CryptoLiquidity/pkg/http"
	"CryptoLiquidity/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	log        *logger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(l *logger.Logger, srv *xhttp.Server) *App {
	return &App{log: l, httpServer: srv}
}

// Run starts serving and blocks until SIGINT/SIGTERM or until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-a.httpServer.Errors():
		a.log.Error("http server error", logger.Error(err))
		runErr = err
	}

	return a.shutdown(runErr)
}

// shutdown stops the HTTP server. The shutdown timeout is applied by the server.
func (a *App) shutdown(runErr error) error {
	a.log.Info("shutting down")
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	a.log.Info("shutdown complete")
	return runErr
}
