package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"

	"sales-pipeline/config"
	"sales-pipeline/plot"
	"sales-pipeline/services"
	"sales-pipeline/storage"
	"sales-pipeline/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	inputPath := flag.String("input", cfg.InputPath, "path to the sales CSV file")
	chartKind := flag.String("chart", cfg.ChartKind, "chart kind: bar or line")
	every := flag.Duration("every", 0, "re-run interval; 0 runs the pipeline once and exits")
	flag.Parse()

	logger.Info("=== Monthly Sales Pipeline starting ===")
	logger.Info("Config — input: %s | chart: %s | png: %s | csv: %s",
		*inputPath, *chartKind, cfg.ChartOutputPath, cfg.CSVOutputPath)

	var sinks []storage.AggregateWriter
	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			os.Exit(1)
		}
		defer pgWriter.Close()
		sinks = append(sinks, pgWriter)
	}

	casts, err := services.ParseCasts(cfg.TypeCasts)
	if err != nil {
		logger.Error("Invalid TYPE_CASTS: %v", err)
		os.Exit(1)
	}

	renderer := plot.NewRenderer(logger, cfg.ChartOutputPath)
	pipeline := services.NewPipeline(logger, renderer, casts, *chartKind, cfg.CSVOutputPath, sinks...)

	run := func() error {
		agg, err := pipeline.Run(*inputPath)
		if err != nil {
			return err
		}
		for _, bucket := range agg {
			logger.Info("  month %2d → %.2f avg units sold", bucket.Month, bucket.AvgUnitsSold)
		}
		return nil
	}

	if *every <= 0 {
		if err := run(); err != nil {
			logger.Error("Pipeline failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Done. Chart → %s | Aggregate → %s", cfg.ChartOutputPath, cfg.CSVOutputPath)
		return
	}

	// Scheduled mode: the scheduler owns whole-run retries; stages never
	// retry on their own.
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond,
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(*every).Do(func() {
		if err := retry.Do(ctx, "pipeline run", run); err != nil {
			logger.Error("Scheduled run failed: %v", err)
		}
	}); err != nil {
		logger.Error("Failed to schedule pipeline: %v", err)
		os.Exit(1)
	}

	logger.Info("Scheduler started — running every %v (Ctrl+C to stop)", *every)
	scheduler.StartAsync()

	<-ctx.Done()
	logger.Info("Shutting down scheduler")
	scheduler.Stop()
}
