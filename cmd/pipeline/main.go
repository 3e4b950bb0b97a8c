package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"npaicli/internal/config"
	"npaicli/internal/infrastructure"
	"npaicli/internal/mail"
	"npaicli/internal/pipeline"
	"npaicli/pkg/contracts"
)

func main() {
	full := flag.Bool("full", false, "rebuild masters from every source file, ignoring the ledger")
	noMail := flag.Bool("no-mail", false, "skip the mailbox fetch, process ZIPs already on disk")
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

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fetcher mail.Fetcher
	if *noMail || cfg.Mail.Mailbox == "" {
		logger.Info("mailbox fetch disabled, processing local archives only")
	} else {
		fetcher, err = mail.NewGmailFetcher(ctx, cfg.Mail, logger)
		if err != nil {
			logger.Error("mailbox unavailable", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("Starting NPAI ingestion pipeline",
		slog.String("version", contracts.Version),
		slog.Bool("force_full", *full),
		slog.String("processed_dir", cfg.Paths.ProcessedDir))

	runner := pipeline.NewIngestionRunner(cfg, fetcher, *full, logger)
	if err := runner.Run(ctx); err != nil {
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			logger.Error("pipeline failed",
				slog.String("step", stepErr.Step),
				slog.String("type", string(stepErr.Type)),
				slog.String("error", err.Error()))
		} else {
			logger.Error("pipeline failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	logger.Info("Pipeline complete")
}
