package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"npaicli/internal/config"
	"npaicli/internal/infrastructure"
	"npaicli/internal/report"
	"npaicli/pkg/contracts"
)

func main() {
	chart := flag.String("chart", "", "override the chart image path (empty keeps the configured one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}
	if *chart != "" {
		cfg.Paths.ChartImage = *chart
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting cost & volume report",
		slog.String("version", contracts.Version),
		slog.Int("year_one", cfg.Report.YearOne),
		slog.Int("year_two", cfg.Report.YearTwo),
		slog.String("output", cfg.Paths.CostReportFile))

	if err := report.New(cfg.Report, cfg.Paths, logger).Run(ctx); err != nil {
		logger.Error("report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Report complete")
}
