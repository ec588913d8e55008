package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/config"
	"spendlog/internal/log"
	"spendlog/internal/sheets"
	"spendlog/internal/storage"
	"spendlog/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting spendlog-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the backup worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Without a spreadsheet the worker still drains the queue, keeping rows
	// in memory only. Useful for local development against a real broker.
	var appender sheets.Appender
	if cfg.BackupSpreadsheetID != "" {
		appender, err = sheets.NewGoogleAppender(ctx, cfg.BackupSpreadsheetID, cfg.BackupSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets appender", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets appender initialized",
			"spreadsheet_id", cfg.BackupSpreadsheetID,
			"sheet", cfg.BackupSheetName)
	} else {
		appender = sheets.NewMemoryAppender()
		logger.Info("Spreadsheet backup disabled - using in-memory appender")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backupWorker := worker.NewBackupWorker(repo, appender, cfg.BackupBatchSize)

	// Optional startup snapshot for the configured owners, then the event loop.
	g, gctx := errgroup.WithContext(ctx)

	for _, owner := range cfg.SnapshotOwners {
		owner := owner
		g.Go(func() error {
			return backupWorker.StartupSnapshot(gctx, owner)
		})
	}

	g.Go(func() error {
		return amqpClient.ConsumeExpenseEvents(gctx, backupWorker.HandleEvent)
	})

	logger.Info("Backup worker running", "queue", cfg.AMQPQueue)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
