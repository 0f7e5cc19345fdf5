// Package cli provides the initialization shared by cmd/societyfund,
// cmd/societyfund-worker and cmd/societyfund-export.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"societyfund/internal/amqp"
	"societyfund/internal/backend"
	"societyfund/internal/config"
	"societyfund/internal/export"
	applog "societyfund/internal/log"
	"societyfund/internal/report"
	"societyfund/internal/services"
	"societyfund/internal/sheets"
	gsheet "societyfund/internal/sheets/google"
)

// SetupLogger installs a text logger at info level as the default. It is
// used until the configuration is known.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// ConfigureLogger replaces the default logger with one honouring the
// configured level and format.
func ConfigureLogger(cfg *config.Config, component string) *applog.Logger {
	level, _ := cfg.SlogLevel()
	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured store. Exits the process on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger.With(applog.FieldComponent, applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend,
			applog.FieldErrorType, applog.ErrorTypeStoreConnection)
		os.Exit(1)
	}
	return result
}

// InitAMQP connects to the broker when one is configured. A nil client
// means change notifications are off; a broker that cannot be reached at
// startup is logged and treated the same way.
func InitAMQP(logger *applog.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err, "exchange", cfg.AMQPExchange)
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// Notifier converts a possibly nil client into a notifier interface that is
// nil when notifications are off.
func Notifier(client *amqp.Client) services.ChangeNotifier {
	if client == nil {
		return nil
	}
	return client
}

// InitPublisher creates the Google Sheets mirror when a spreadsheet is
// configured. Exits the process when the configured credentials are unusable.
func InitPublisher(ctx context.Context, logger *applog.Logger, cfg *config.Config) sheets.Publisher {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil
	}
	client, err := gsheet.NewFromConfig(ctx, cfg.GoogleSpreadsheetID, gsheet.Credentials{
		File: cfg.GoogleServiceAccountFile,
		JSON: cfg.GoogleServiceAccountJSON,
	}, cfg.CurrencySymbol)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}

// NewReportService wires the report builder and renderer from cfg.
func NewReportService(cfg *config.Config, backendResult *backend.BackendResult, publisher sheets.Publisher) *services.ReportService {
	return services.NewReportService(
		backendResult.Store,
		report.NewBuilder(cfg.ReportTitle),
		export.NewRenderer(cfg.CurrencySymbol, cfg.ExportFilePrefix),
		publisher,
	)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
