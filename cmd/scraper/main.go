package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/epw-station-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/epw-station-etl/internal/adapter/energyplus"
	httpadapter "github.com/couchcryptid/epw-station-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/epw-station-etl/internal/adapter/kafka"
	"github.com/couchcryptid/epw-station-etl/internal/config"
	"github.com/couchcryptid/epw-station-etl/internal/domain"
	"github.com/couchcryptid/epw-station-etl/internal/observability"
	"github.com/couchcryptid/epw-station-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger, closeLog, err := observability.NewLogger(cfg)
	if err != nil {
		slog.Error("failed to create logger", "error", err)
		return 1
	}
	defer closeLog() //nolint:errcheck // process is exiting
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := energyplus.NewClient(cfg, metrics, logger)

	loaders := []pipeline.Loader{csvfile.NewWriter(cfg.OutputPath, logger)}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
		logger.Info("kafka loader enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		client,
		loaders,
		domain.NewPriorityTable(cfg.SourcePriority),
		pipeline.NewPacer(cfg.MinDelay, cfg.MaxDelay, clockwork.NewRealClock()),
		logger,
		metrics,
	)

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	features, err := client.FetchIndex(ctx, cfg.IndexURL)
	if err != nil {
		logger.Error("failed to load weather index", "error", err)
		return 1
	}

	report, err := p.Run(ctx, cfg.IndexURL, features)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("scrape interrupted", "processed", report.Processed, "unique", len(report.Locations))
			return 130
		}
		logger.Error("scrape failed", "error", err)
		return 1
	}

	logger.Info("scrape complete",
		"total", report.Total,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failures", len(report.Failures),
		"unique", len(report.Locations),
		"output", cfg.OutputPath,
	)

	// Keep serving /locations and /metrics until signalled.
	if srv != nil {
		logger.Info("serving results until interrupted", "addr", cfg.HTTPAddr)
		<-ctx.Done()
		logger.Info("shutting down")
	}
	return 0
}
