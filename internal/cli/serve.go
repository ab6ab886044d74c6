package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/storefront/internal/config"
	httpAdapter "github.com/aretw0/storefront/pkg/adapters/http"
)

// ShutdownTimeout bounds graceful shutdown of the server and broadcasts.
const ShutdownTimeout = 10 * time.Second

// Serve runs the webhook server until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config) error {
	logger := NewLogger(cfg, os.Stderr)

	messenger, streams := NewMessenger(cfg, logger)
	rt, err := Build(ctx, cfg, messenger, logger)
	if err != nil {
		return err
	}

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithMetrics(rt.Metrics.Handler()),
		httpAdapter.WithLogger(logger.With("component", "http")),
	}
	if streams != nil {
		handlerOpts = append(handlerOpts, httpAdapter.WithStreams(streams))
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpAdapter.NewHandler(rt.Shop, rt.Shop.Orders(), handlerOpts...),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if streams != nil {
		srv.RegisterOnShutdown(streams.Close)
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("storefront server listening",
			"addr", srv.Addr,
			"sessions", cfg.Storage.Sessions,
			"records", cfg.Storage.Records,
			"gateway", cfg.HTTP.GatewayURL != "",
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", "err", err)
		_ = srv.Close()
	}
	if err := rt.Close(shutdownCtx); err != nil {
		logger.Warn("release backends", "err", err)
	}
	logger.Info("storefront server stopped")
	return runErr
}
