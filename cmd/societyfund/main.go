package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"societyfund/internal/cli"
	apphttp "societyfund/internal/http"
	applog "societyfund/internal/log"
	"societyfund/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, applog.ComponentApp)

	backendResult := cli.InitBackend(context.Background(), logger, cfg)
	amqpClient := cli.InitAMQP(logger, cfg)
	publisher := cli.InitPublisher(context.Background(), logger, cfg)

	entries := services.NewEntryService(backendResult.Store, cli.Notifier(amqpClient))
	reports := cli.NewReportService(cfg, backendResult, publisher)

	srv := apphttp.NewServer(":"+cfg.Port, entries, reports, apphttp.Options{
		Title:              cfg.ReportTitle,
		CurrencySymbol:     cfg.CurrencySymbol,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(applog.ComponentHTTP),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
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
	})

	logger.Info("Starting societyfund server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sheets", cfg.SheetsEnabled(),
		"amqp", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
