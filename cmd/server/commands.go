package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simplici0/costcalc/internal/config"
	"github.com/Simplici0/costcalc/internal/db"
	"github.com/Simplici0/costcalc/internal/export"
	"github.com/Simplici0/costcalc/internal/logging"
	"github.com/Simplici0/costcalc/internal/migrations"
	"github.com/Simplici0/costcalc/internal/report"
	"github.com/Simplici0/costcalc/internal/seed"
	"github.com/Simplici0/costcalc/internal/store"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	verbose bool
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "costcalc",
		Short: "Infrastructure cost calculator",
		Long: `costcalc estimates the monthly and annual running cost of an app's
third-party services and media storage across user-count scenarios.

Without a subcommand it starts the HTTP API.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logging.Init(opts.verbose || cfg.Verbose(), !cfg.IsDev())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newReportCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the default workspace as a spreadsheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				out = f.Filename()
			}

			if err := runExport(cmd.Context(), opts.cfg, f, out); err != nil {
				return err
			}
			slog.Info("export written", "path", out, "format", f)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatXLSX), "Output format: xlsx or csv")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default costi-servizi.<format>)")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print per-scenario totals of the default workspace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), opts.cfg, cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "costcalc %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func runReport(ctx context.Context, cfg config.Config, w io.Writer) error {
	return withWorkspace(ctx, cfg, func(s *store.Store) error {
		ws, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		return report.Generate(w, ws.Compute())
	})
}

// runExport renders the workspace before touching out, so a failed run
// leaves no partial file behind.
func runExport(ctx context.Context, cfg config.Config, format export.Format, out string) error {
	var buf bytes.Buffer
	if err := withWorkspace(ctx, cfg, func(s *store.Store) error {
		ws, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		return export.Write(&buf, format, ws.Compute())
	}); err != nil {
		return err
	}

	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// openStore opens the database, applies migrations and seeds defaults.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, func(), error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() { _ = database.Close() }

	if err := migrations.UpContext(ctx, database); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("run database migrations: %w", err)
	}

	seedCfg := cfg.Seed()
	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("seed workspace: %w", err)
	}
	slog.Debug("workspace seeded", "db_path", cfg.DBPath, "inserts", stats.Inserts)

	return store.New(database, seedCfg), closeDB, nil
}

func withWorkspace(ctx context.Context, cfg config.Config, fn func(*store.Store) error) error {
	s, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	return fn(s)
}

func runServe(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	srv := &server{store: s}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr, "env", cfg.AppEnv, "db_path", cfg.DBPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
