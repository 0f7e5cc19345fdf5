package main

import (
	"context"
	"os"
	"time"

	"societyfund/internal/cli"
	applog "societyfund/internal/log"
	"societyfund/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting societyfund-worker")

	publisher := cli.InitPublisher(context.Background(), logger, cfg)
	if publisher == nil {
		logger.Error("The worker needs GOOGLE_SPREADSHEET_ID to mirror reports",
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	backendResult := cli.InitBackend(context.Background(), logger, cfg)
	reports := cli.NewReportService(cfg, backendResult, publisher)

	// Without a broker the worker still mirrors on the sync interval.
	amqpClient := cli.InitAMQP(logger, cfg)
	var source worker.ChangeSource
	if amqpClient != nil {
		source = amqpClient
	}

	closeAll := func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	}
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) { closeAll() })

	w := worker.NewSyncWorker(reports, cfg.SyncInterval)
	if err := w.Run(ctx, source); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		closeAll()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
