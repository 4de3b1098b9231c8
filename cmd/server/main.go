package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iudanet/masterdata/internal/catalog"
	"github.com/iudanet/masterdata/internal/config"
	"github.com/iudanet/masterdata/internal/history"
	"github.com/iudanet/masterdata/internal/server"
	"github.com/iudanet/masterdata/internal/server/handlers"
	"github.com/iudanet/masterdata/internal/storage"
	"github.com/iudanet/masterdata/internal/storage/file"
	"github.com/iudanet/masterdata/internal/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	sessionTTL      = 12 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("Masterdata server starting",
		"version", Version,
		"address", cfg.RunAddress,
		"backend", cfg.Backend(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hist, err := history.New(ctx, cfg.HistoryPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer hist.Close()

	var (
		store      storage.ProductStore
		audit      storage.ChangeLog
		workspaces storage.WorkspaceStore
		backups    storage.BackupStore
	)

	if cfg.DatabasePath != "" {
		db, err := sqlite.New(ctx, cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		defer db.Close()

		store = db
		audit = db
		workspaces = db
		backups = db
	} else {
		fs, err := file.New(cfg.DataFile, logger)
		if err != nil {
			return fmt.Errorf("open file store: %w", err)
		}
		ws, err := file.NewWorkspaces(filepath.Join(filepath.Dir(cfg.DataFile), "bases"))
		if err != nil {
			return fmt.Errorf("open workspace dir: %w", err)
		}

		store = fs
		audit = hist
		workspaces = ws
		// Whole-collection backups need the relational backend.
		backups = nil
	}

	svc := catalog.NewService(store, hist, audit, workspaces, backups, hist, cfg.PageLimits, logger)

	sessionCfg := handlers.SessionConfig{Secret: cfg.SessionSecret, TTL: sessionTTL}
	router := server.NewRouter(logger, svc, sessionCfg, cfg.Backend())

	srv := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", cfg.RunAddress, err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("Masterdata Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
