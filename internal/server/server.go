// Package server runs the HTTP listener until its context is cancelled.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sincro/backoffice/config"
	"github.com/sincro/backoffice/internal/bootstrap"
	"github.com/sincro/backoffice/internal/kernel"
	"github.com/sincro/backoffice/pkg/logger"
	"github.com/sincro/backoffice/pkg/middleware"
)

// ShutdownTimeout bounds how long in-flight requests may take to drain.
const ShutdownTimeout = 15 * time.Second

// Start serves app on APP_PORT until ctx is done, then drains connections.
func Start(ctx context.Context, app *bootstrap.App) error {
	ln, err := net.Listen("tcp", ":"+config.AppPort())
	if err != nil {
		return err
	}
	return Serve(ctx, ln, app)
}

// Serve is Start on an existing listener.
func Serve(ctx context.Context, ln net.Listener, app *bootstrap.App) error {
	limiter := middleware.NewRateLimiter(config.RateLimit(), time.Minute)
	r, err := kernel.New(app, limiter)
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      config.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("http server shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	logger.Info("http server stopped")
	return err
}
