// Package main wires together the textsift crawler binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/textsift/textsift/internal/clock/system"
	"github.com/textsift/textsift/internal/config"
	"github.com/textsift/textsift/internal/crawl"
	"github.com/textsift/textsift/internal/extract"
	collyfetcher "github.com/textsift/textsift/internal/fetcher/colly"
	"github.com/textsift/textsift/internal/id/uuid"
	"github.com/textsift/textsift/internal/logging"
	"github.com/textsift/textsift/internal/ops"
	"github.com/textsift/textsift/internal/progress"
	progresssinks "github.com/textsift/textsift/internal/progress/sinks"
	fssink "github.com/textsift/textsift/internal/sink/fs"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("crawl failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seeds := cfg.Crawler.StartURLs
	if args := flag.Args(); len(args) > 0 {
		seeds = args
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no start URLs: set crawler.start_urls or pass them as arguments")
	}

	writer, err := fssink.NewWriter(cfg.Output.Dir, logger.Named("sink"))
	if err != nil {
		return fmt.Errorf("init output sink: %w", err)
	}
	if cfg.Output.Clean {
		if err := writer.Reset(); err != nil {
			return fmt.Errorf("clean output dir: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	promSink, err := progresssinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		progresssinks.NewLogSink(logger.Named("events")),
		promSink,
	)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hub.Close(closeCtx); err != nil {
			logger.Warn("progress hub close failed", zap.Error(err))
		}
	}()

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Timeout(),
	})
	extractor := extract.New(extract.Config{SameHostOnly: cfg.Crawler.SameHostOnly})

	scheduler := crawl.NewScheduler(
		fetcher,
		extractor,
		writer,
		system.New(),
		uuid.New(),
		hub,
		crawl.Config{
			MaxDepth:    cfg.Crawler.MaxDepth,
			Concurrency: cfg.Crawler.Concurrency,
		},
		logger.Named("crawl"),
	)

	if cfg.Metrics.Enabled {
		opsServer := ops.NewServer(cfg.Metrics.Port, registry, scheduler, logger.Named("ops"))
		go func() {
			if err := opsServer.Run(ctx); err != nil {
				logger.Warn("ops server stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("starting crawl",
		zap.Strings("seeds", seeds),
		zap.Int("max_depth", cfg.Crawler.MaxDepth),
		zap.Int("concurrency", cfg.Crawler.Concurrency),
		zap.String("output_dir", cfg.Output.Dir),
	)

	summary, err := scheduler.Run(ctx, seeds)
	logSummary(logger, summary)
	if err != nil {
		return err
	}
	return nil
}

func logSummary(logger *zap.Logger, summary crawl.Summary) {
	logger.Info("crawl finished",
		zap.String("run_id", summary.RunID),
		zap.Int64("pages_fetched", summary.PagesFetched),
		zap.Int64("pages_written", summary.PagesWritten),
		zap.Int64("fetch_failures", summary.FetchFailures),
		zap.Int64("parse_failures", summary.ParseFailures),
		zap.Int64("write_failures", summary.WriteFailures),
		zap.Int64("duplicate_skips", summary.DuplicateSkips),
		zap.Int64("over_depth_skips", summary.OverDepthSkips),
		zap.Int64("invalid_links", summary.InvalidLinks),
		zap.Duration("duration", summary.Duration),
	)
}
