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

	"github.com/spf13/cobra"

	"github.com/alorle/epg-manager/config"
	"github.com/alorle/epg-manager/internal/adapter/driven"
	"github.com/alorle/epg-manager/internal/adapter/driver"
	"github.com/alorle/epg-manager/internal/application"
	"github.com/alorle/epg-manager/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "epg-manager",
		Short: "Electronic program guide backend",
		Long: `epg-manager keeps a registry of channels and a non-overlapping
program schedule per channel, and exposes both over an HTTP API.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  runServe,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply PostgreSQL schema migrations and exit",
		RunE:  runMigrate,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires storage driver %q, got %q", config.DriverPostgres, cfg.Storage.Driver)
	}

	if err := driven.RunMigrations(cfg.Storage.DatabaseURL); err != nil {
		return err
	}

	logger.Info("migrations applied")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("starting epg-manager",
		"addr", cfg.Addr(),
		"storage_driver", cfg.Storage.Driver,
		"log_level", cfg.Log.Level,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Error("error closing storage", "error", err)
		}
	}()

	services := driver.Services{
		Channels: application.NewChannelService(store.channels, store.locker, logger),
		Programs: application.NewProgramService(store.programs, store.channels, store.locker, logger),
		Guide:    application.NewGuideService(store.channels, store.programs),
		Health:   application.NewHealthService(store.channels, logger),
	}

	handler, err := driver.NewRouter(ctx, services, logger)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
