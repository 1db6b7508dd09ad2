package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/welwishers/weldshop/internal/api"
	"github.com/welwishers/weldshop/internal/config"
	"github.com/welwishers/weldshop/internal/db"
	"github.com/welwishers/weldshop/internal/events"
	"github.com/welwishers/weldshop/internal/httpx"
	"github.com/welwishers/weldshop/internal/imaging"
	"github.com/welwishers/weldshop/internal/invoicing"
	"github.com/welwishers/weldshop/internal/logging"
	"github.com/welwishers/weldshop/internal/pdflink"
	"github.com/welwishers/weldshop/internal/web"
)

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

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	database, err := db.Setup(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()
	slog.Info("database ready", "path", cfg.DBPath)

	secret := pdflink.SecretFromString(cfg.LinkSigningKey)
	if len(secret) == 0 {
		if secret, err = pdflink.NewSecret(); err != nil {
			return err
		}
		slog.Info("no link signing key configured, invoice links expire on restart")
	}

	pub, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	pages, err := web.NewServer(web.Options{
		DB:         database,
		Invoices:   invoicing.New(database, pub, cfg.DecrementOnInvoice),
		ShopName:   cfg.ShopName,
		Currency:   cfg.Currency,
		Logo:       loadLogo(cfg.LogoPath),
		LinkSecret: secret,
		LinkTTL:    cfg.LinkTTL,
	})
	if err != nil {
		return fmt.Errorf("setting up pages: %w", err)
	}

	handler := httpx.NewRouter(httpx.Config{
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestsPerMinute:  cfg.RateLimitPerMinute,
	}, database, pages.Routes(), api.NewRouter(database, pages.Invoices))

	server := httpx.NewServer(cfg.HTTPAddr, handler)

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.HTTPAddr, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}

// newPublisher returns a Kafka-backed invoice publisher, or a no-op one when
// no brokers are configured.
func newPublisher(cfg *config.Config) (events.InvoicePublisher, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return events.Nop{}, nil
	}
	pub, err := events.NewKafkaPublisher(brokers, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("connecting to kafka: %w", err)
	}
	slog.Info("publishing invoices", "brokers", brokers, "topic", cfg.KafkaTopic)
	return events.NewBus(pub, cfg.KafkaTopic), nil
}

// loadLogo reads the shop logo. A missing or broken logo only drops it from
// the PDF.
func loadLogo(path string) *imaging.Logo {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("failed to open logo", "path", path, "error", err)
		return nil
	}
	defer f.Close()

	logo, err := imaging.PrepareLogo(f)
	if err != nil {
		slog.Warn("failed to prepare logo", "path", path, "error", err)
		return nil
	}
	return logo
}
