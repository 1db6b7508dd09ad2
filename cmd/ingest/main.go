// Command ingest reads a bounded batch of JSON messages from Kafka and writes
// them as CSV and Parquet files.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/welwishers/weldshop/internal/config"
	"github.com/welwishers/weldshop/internal/events"
	"github.com/welwishers/weldshop/internal/ingest"
	"github.com/welwishers/weldshop/internal/logging"
)

var errNoRecords = errors.New("no records received")

func main() {
	cfg, help, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Fprint(os.Stdout, help)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return errors.New("KAFKA_BROKERS is not set")
	}

	sub, err := events.NewKafkaSubscriber(brokers, cfg.IngestGroup, slog.Default())
	if err != nil {
		return fmt.Errorf("connecting to kafka: %w", err)
	}
	defer sub.Close()

	if cfg.IngestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.IngestTimeout)
		defer cancel()
	}

	slog.Info("collecting messages", "brokers", brokers, "topic", cfg.KafkaTopic, "limit", cfg.IngestBatchSize)
	batch, err := ingest.Collect(ctx, sub, cfg.KafkaTopic, cfg.IngestBatchSize)
	if err != nil {
		if batch == nil || len(batch.Records) == 0 {
			return fmt.Errorf("%w: %w", errNoRecords, err)
		}
		slog.Warn("writing partial batch", "records", len(batch.Records), "limit", cfg.IngestBatchSize, "error", err)
	}

	paths, err := ingest.WriteFiles(cfg.IngestOutputDir, batch)
	if err != nil {
		return err
	}
	slog.Info("batch written", "records", len(batch.Records), "skipped", batch.Skipped, "columns", len(batch.Columns()), "files", paths)
	return nil
}
