package main

import (
	"fmt"

	"legisbase/internal/amqp"
	"legisbase/internal/cli"
	"legisbase/internal/config"
	applog "legisbase/internal/log"
	"legisbase/internal/storage"
	"legisbase/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	boot := cli.SetupLogger(applog.ComponentWorker, "info", "text")
	cfg := cli.LoadAndValidateConfig(boot.Logger, func(c *config.Config) error {
		if err := c.Validate(); err != nil {
			return err
		}
		return c.ValidateWorker()
	})
	logger := cli.SetupLogger(applog.ComponentWorker, cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting legisbase-worker")

	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger.Logger, "Worker failed", err)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(logger.Logger)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("initialize SQLite repository at %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	w := worker.NewLookupWorker(repo, client, cfg.WorkerBatchSize, cfg.WorkerFlushInterval)
	return w.Run(ctx)
}
