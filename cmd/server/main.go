package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/supplierdash/internal/config"
	"github.com/JonMunkholm/supplierdash/internal/core"
	_ "github.com/JonMunkholm/supplierdash/internal/core/sources" // Register source types and export writers
	"github.com/JonMunkholm/supplierdash/internal/logging"
	"github.com/JonMunkholm/supplierdash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	service, err := core.NewService(core.ServiceConfig{
		Source: core.SourceSpec{
			Location: cfg.Dataset.Source,
			Sheet:    cfg.Dataset.Sheet,
			Table:    cfg.Dataset.Table,
			Pool: core.PoolOptions{
				MaxConns:        int32(cfg.Database.MaxConns),
				MinConns:        int32(cfg.Database.MinConns),
				MaxConnLifetime: cfg.Database.MaxConnLifetime,
				MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			},
		},
		CacheEntries:         cfg.Cache.MaxEntries,
		CacheTTL:             cfg.Cache.TTL,
		LoadTimeout:          cfg.Dataset.LoadTimeout,
		Watch:                cfg.Dataset.Watch,
		SourceCloseGrace:     cfg.Dataset.CloseGrace,
		UploadDir:            cfg.Upload.Dir,
		MaxFileSize:          cfg.Upload.MaxFileSize,
		MaxConcurrentUploads: cfg.Upload.MaxConcurrent,
		MaxUploadWait:        cfg.Upload.MaxWaitTime,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	sources := core.AllSources()
	kinds := make([]string, len(sources))
	for i, def := range sources {
		kinds[i] = def.Kind
	}
	slog.Info("sources registered", "count", core.SourceCount(), "kinds", kinds)

	server := web.NewServer(service, cfg)

	// Background jobs stop with this context
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	// Load the dataset now so the first visitor does not wait for it. A
	// failure here is not fatal: the dashboard reports it and a reload or
	// upload can recover.
	go func() {
		if ds, err := service.Dataset(jobCtx); err != nil {
			slog.Warn("initial dataset load failed", "error", err)
		} else {
			slog.Info("initial dataset ready", "rows", ds.NumRows())
		}
	}()

	if cfg.Cache.WarmSchedule != "" {
		if err := service.StartWarmScheduler(jobCtx, cfg.Cache.WarmSchedule); err != nil {
			slog.Error("failed to start warm scheduler", "error", err)
			os.Exit(1)
		}
	}

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight dataset swaps finish before the listener closes
		if st := service.UploadLimiterStatus(); st.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", st.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if err := service.Close(); err != nil {
			slog.Error("close service", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
