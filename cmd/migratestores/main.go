// Command migratestores copies the directory tables from a remote database
// into a local one, upserting row by row, then prints destination counts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/nightnice-admin/internal/config"
	"github.com/JonMunkholm/nightnice-admin/internal/database"
	"github.com/JonMunkholm/nightnice-admin/internal/logging"
	"github.com/JonMunkholm/nightnice-admin/internal/migrate"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadMigrate()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, runID := logging.WithRunID(ctx)

	slog.Info("migration starting",
		"run_id", runID,
		"remote", database.Describe(cfg.RemoteURL),
		"local", database.Describe(cfg.LocalURL),
		"events_limit", cfg.EventsLimit,
	)
	slog.Debug("configuration", "config", cfg.String())

	runner := &migrate.Runner{
		Connect: func(ctx context.Context, dsn string) (migrate.Conn, error) {
			pool, err := database.Open(ctx, dsn, cfg.Database)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", database.Describe(dsn), err)
			}
			return pool, nil
		},
		RemoteURL: cfg.RemoteURL,
		LocalURL:  cfg.LocalURL,
		Plan:      migrate.DefaultPlan(cfg.EventsLimit),
		Upserter:  migrate.Upserter{RowTimeout: cfg.RowTimeout},
		OnState: func(table string, s migrate.State) {
			slog.Debug("state", "run_id", runID, "table", table, "state", s.String())
		},
	}

	summary, err := runner.Run(ctx)
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		slog.Error("migration failed", "run_id", runID, "error", err)
		stop()
		os.Exit(1)
	}

	if summary.Partial() {
		slog.Warn("migration finished with failures",
			"run_id", runID,
			"failed_rows", summary.TotalFailed(),
		)
		return
	}
	slog.Info("migration finished", "run_id", runID, "records", summary.TotalFetched())
}

func printSummary(s *migrate.Summary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nTABLE\tFETCHED\tCOMMITTED\tFAILED\tNOTE")
	for _, t := range s.Tables {
		note := ""
		if t.Err != nil {
			note = "skipped: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", t.Table, t.Fetched, t.Committed, len(t.Failures), note)
	}
	w.Flush()

	for _, t := range s.Tables {
		for _, f := range t.Failures {
			fmt.Printf("  %s %s: %s\n      %s\n", t.Table, f.Key, f.Hint, f.Reason)
		}
	}

	if len(s.Counts) > 0 {
		fmt.Fprintln(w, "\nLOCAL TABLE\tROWS")
		for _, c := range s.Counts {
			if c.Err != nil {
				fmt.Fprintf(w, "%s\terror: %v\n", c.Table, c.Err)
				continue
			}
			fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Count)
		}
		w.Flush()
	}

	fmt.Printf("\nTotal records processed: %d (committed %d, failed %d) in %s\n",
		s.TotalFetched(), s.TotalCommitted(), s.TotalFailed(), s.Duration.Round(time.Millisecond))
}
