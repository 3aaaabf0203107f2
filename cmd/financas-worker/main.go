package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	"financas/internal/analysis"
	"financas/internal/config"
	applog "financas/internal/log"
	"financas/internal/storage"
	"financas/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "financas-worker",
	})
	applog.SetDefault(logger)

	logger.Info("Starting financas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	engine := analysis.NewEngine(repo)
	reconciler := analysis.NewReconciler(engine, repo)
	alertWorker := worker.NewAlertWorker(reconciler, repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// On startup, regenerate alerts that might have gone stale while down.
	if err := alertWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup regeneration failed", "error", err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeAlertRegenerate(gctx, func(msg *amqp.AlertRegenerateMessage) error {
			return alertWorker.HandleRegenerateMessage(gctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// Periodic catch-up for any missed messages.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.RegenerateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := alertWorker.RegenerateCurrentMonth(gctx); err != nil {
					logger.Error("Periodic regeneration failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
