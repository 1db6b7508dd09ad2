// Command snapshot renders the inventory page to a static HTML file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/welwishers/weldshop/internal/config"
	"github.com/welwishers/weldshop/internal/db"
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

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("snapshot failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	database, err := db.Setup(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	// The snapshot has no PDF links, but the page server needs a key.
	secret, err := pdflink.NewSecret()
	if err != nil {
		return err
	}

	pages, err := web.NewServer(web.Options{
		DB:         database,
		ShopName:   cfg.ShopName,
		Currency:   cfg.Currency,
		LinkSecret: secret,
		LinkTTL:    cfg.LinkTTL,
	})
	if err != nil {
		return fmt.Errorf("setting up pages: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	f, err := os.Create(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}

	if err := pages.RenderSnapshot(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}

	slog.Info("snapshot written", "path", cfg.SnapshotPath)
	return nil
}
