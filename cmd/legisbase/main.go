package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"legisbase/internal/backend"
	"legisbase/internal/cli"
	"legisbase/internal/config"
	apphttp "legisbase/internal/http"
	applog "legisbase/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	boot := cli.SetupLogger(applog.ComponentApp, "info", "text")
	cfg := cli.LoadAndValidateConfig(boot.Logger, (*config.Config).Validate)
	logger := cli.SetupLogger(applog.ComponentApp, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger.Logger, "Server failed", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger.Logger)
	defer stop()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	cat, err := backend.OpenCatalog(ctx, backend.NewFactory(logger.Logger), bc, cfg.PublishesLookups())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.Warn("Failed to release catalog resources", "error", err)
		}
	}()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               cfg.Addr(),
		Source:             cat.Source,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheSize:          cfg.ResponseCacheSize,
		CacheTTL:           cfg.ResponseCacheTTL,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	}, cat.Service)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting legisbase server",
			"addr", srv.Addr,
			applog.FieldSource, cat.Source,
			"bills", cat.Service.Store().Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server", "timeout", cfg.ShutdownTimeout)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
