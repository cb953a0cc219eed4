package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"domus/internal/amqp"
	"domus/internal/cli"
	"domus/internal/sheets"
	gsheet "domus/internal/sheets/google"
	"domus/internal/sheets/memory"
	"domus/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap("worker")

	logger.Info("Starting domus-worker")

	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ledger sheets.LedgerWriter
	if cfg.SheetsConfigured() {
		client, err := gsheet.NewClient(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		ledger = memory.New()
		logger.Info("Sheets mirror not configured - using in-memory ledger")
	}

	syncWorker := worker.NewSyncWorker(repo, ledger, cfg.SyncBatchSize)

	// Drain anything that piled up while the worker was down.
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumePaymentSync(ctx, syncWorker.HandleSyncMessage)
		})
	} else {
		logger.Info("AMQP disabled - relying on the polling loop only")
	}

	g.Go(func() error {
		return syncWorker.RunPolling(ctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	// Give in-flight operations a moment to settle.
	time.Sleep(100 * time.Millisecond)
	logger.Info("Worker shutdown complete")
}
