package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tripsplit/internal/amqp"
	"tripsplit/internal/cli"
	"tripsplit/internal/sheets"
	gsheet "tripsplit/internal/sheets/google"
	mem "tripsplit/internal/sheets/memory"
	"tripsplit/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("worker")
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting tripsplit-worker")

	// The worker reads groups straight from SQLite; the memory backend
	// has nothing durable to sync.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Upload to Google Sheets when configured, otherwise keep the
	// in-memory sink so local runs exercise the full pipeline.
	var sink sheets.WorkbookWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets sink initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		sink = mem.New()
		logger.Info("Google Sheets disabled - using in-memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sink, cfg.CurrencySymbol)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on anything mutated while the worker was down.
	if err := syncWorker.SyncAll(shutdownCtx); err != nil {
		logger.Error("Startup sync pass failed", "error", err)
		// Keep going; the consumer and periodic pass will retry.
	}

	g, ctx := errgroup.WithContext(shutdownCtx)

	g.Go(func() error {
		return amqpClient.ConsumeGroupSync(ctx, func(msg *amqp.GroupSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := syncWorker.SyncAll(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
