// Command importstores reads the venue workbook and writes an SQL script
// that inserts every store and its category link. With IMPORT_APPLY=true it
// also executes the script statement by statement.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/nightnice-admin/internal/config"
	"github.com/JonMunkholm/nightnice-admin/internal/importer"
	"github.com/JonMunkholm/nightnice-admin/internal/logging"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadImport()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, runID := logging.WithRunID(ctx)

	slog.Info("store import starting",
		"run_id", runID,
		"workbook", cfg.Workbook,
		"output", cfg.OutputSQL,
		"image_roots", len(cfg.ImageRoots),
		"apply", cfg.Apply,
	)
	slog.Debug("configuration", "config", cfg.String())

	summary, err := importer.Run(ctx, cfg)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		slog.Error("store import failed", "run_id", runID, "error", err)
		stop()
		os.Exit(1)
	}

	slog.Info("store import finished", "run_id", runID, "stores", summary.Records)
}

func printSummary(s *importer.Summary) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("Import summary")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Sheets:            %d\n", s.Sheets)
	fmt.Printf("Rows read:         %d (skipped %d without a name)\n", s.Rows, s.Skipped)
	fmt.Printf("Stores:            %d\n", s.Records)
	fmt.Printf("Categories:        %s\n", strings.Join(s.CategoryCounts(), ", "))
	fmt.Printf("Banners:           %d found, %d copied, %d unchanged, %d failed\n",
		s.BannersFound, s.BannersCopied, s.BannersUnchanged, s.BannerErrors)
	if len(s.UnknownProvinces) > 0 {
		fmt.Printf("Unknown provinces: %s (their stores will not be inserted)\n", strings.Join(s.UnknownProvinces, ", "))
	}
	if s.OutputPath != "" {
		fmt.Printf("Script:            %s\n", s.OutputPath)
	}

	if a := s.Apply; a != nil {
		fmt.Printf("Applied:           %d stores inserted, %d orphaned, %d links inserted, %d links skipped, %d failed\n",
			a.StoresInserted, a.StoresOrphaned, a.LinksInserted, a.LinksSkipped, len(a.Failures))
		for _, f := range a.Failures {
			fmt.Printf("  %s %s: %s\n      %s\n", f.Kind, f.RecordID, f.Hint, f.Reason)
		}
	} else if s.OutputPath != "" {
		fmt.Println("\nRun the script against the database, e.g.:")
		fmt.Printf("  psql \"$DATABASE_URL\" -f %s\n", s.OutputPath)
	}
}
