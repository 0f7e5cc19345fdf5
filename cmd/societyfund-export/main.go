// Command societyfund-export renders a report straight from the configured
// store into a file, without running the web server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"societyfund/internal/cli"
	"societyfund/internal/export"
	applog "societyfund/internal/log"
	"societyfund/internal/report"
	"societyfund/internal/services"
)

func main() {
	reportFlag := flag.String("report", "fund", "Report to render: fund, summary, expense or all")
	scopeFlag := flag.String("scope", "all", "Block for the fund report (all, A..J, Shop, Other)")
	formatFlag := flag.String("format", "xlsx", "Output format: xlsx or pdf")
	outFlag := flag.String("out", ".", "Directory to write the file into")
	timeoutFlag := flag.Duration("timeout", time.Minute, "Deadline for loading and rendering")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, applog.ComponentExport)

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		fail(err)
	}
	scope, err := report.ParseScope(*scopeFlag)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	backendResult := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if backendResult.Cleanup != nil {
			_ = backendResult.Cleanup()
		}
	}()
	reports := cli.NewReportService(cfg, backendResult, nil)

	names := []string{strings.ToLower(*reportFlag)}
	if names[0] == "all" {
		names = []string{"fund", "summary", "expense"}
	}

	for _, name := range names {
		f, err := render(ctx, reports, name, scope, format)
		if err != nil {
			logger.Error("Export failed", "report", name, "error", err,
				applog.FieldErrorType, applog.ErrorTypeExportAssembly)
			os.Exit(1)
		}
		path, err := export.WriteFile(*outFlag, f)
		if err != nil {
			logger.Error("Writing export failed", "report", name, "error", err)
			os.Exit(1)
		}
		logger.Info("Report written", "report", name, "scope", scope.String(), "format", string(format),
			"path", path, "bytes", len(f.Data))
	}
}

func render(ctx context.Context, reports *services.ReportService, name string, scope report.Scope, format export.Format) (export.File, error) {
	switch name {
	case "fund":
		return reports.FundExport(ctx, scope, format)
	case "summary":
		return reports.SummaryExport(ctx, format)
	case "expense", "balance":
		return reports.BalanceExport(ctx, format)
	}
	return export.File{}, fmt.Errorf("unknown report %q (want fund, summary, expense or all)", name)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "societyfund-export:", err)
	flag.Usage()
	os.Exit(2)
}
