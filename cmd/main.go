package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/artwork-curator/internal/artwork"
	"github.com/MimeLyc/artwork-curator/internal/config"
	"github.com/MimeLyc/artwork-curator/internal/fetcher"
	"github.com/MimeLyc/artwork-curator/internal/httpapi"
	"github.com/MimeLyc/artwork-curator/internal/jobs"
	"github.com/MimeLyc/artwork-curator/internal/langdetect"
	"github.com/MimeLyc/artwork-curator/internal/library"
	"github.com/MimeLyc/artwork-curator/internal/persistence"
	"github.com/MimeLyc/artwork-curator/internal/provider"
	"github.com/MimeLyc/artwork-curator/internal/service"
	"github.com/MimeLyc/artwork-curator/pkg/log"
)

func main() {
	// .env is optional; container deployments use real env vars.
	_ = godotenv.Load()

	settingsPath := config.RuntimeSettingsFilePath()
	opts := make([]config.Option, 0, 1)
	if settings, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		opts = append(opts, config.WithRuntimeSettings(settings))
	} else if !os.IsNotExist(err) {
		log.Warn("Ignoring settings file %s: %v", settingsPath, err)
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	store, err := persistence.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		log.Fatal("Failed to open database: %v", err)
	}
	defer func() { _ = store.Close() }()

	scanner := library.NewScanner(cfg.Library.Sources())
	queue := jobs.NewQueue(cfg.Refresh.Workers, store)
	cronRunner := cron.New()

	detectorOpts := make([]langdetect.Option, 0, 1)
	if cfg.Refresh.TextFallback {
		detectorOpts = append(detectorOpts, langdetect.WithTextFallback(true))
	}
	selector := artwork.NewSelector(
		langdetect.NewDetector(detectorOpts...),
		artwork.WithDefaultMetadataLanguage(cfg.Library.MetadataLanguage),
	)

	curator := service.NewCurator(*cfg, service.Deps{
		Scanner:    scanner,
		Gatherer:   buildRegistry(cfg.Providers),
		Selector:   selector,
		Downloader: fetcher.New(),
		Store:      store,
		Queue:      queue,
		Cron:       cronRunner,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(curator.ExecuteJob)
	if err := curator.Schedule(ctx); err != nil {
		log.Fatal("Failed to schedule library refresh: %v", err)
	}
	cronRunner.Start()

	settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		log.Fatal("Failed to initialize runtime settings: %v", err)
	}

	server := httpapi.NewServer(curator, queue,
		httpapi.WithRuntimeSettingsStore(settingsStore),
		httpapi.WithRuntimeSettingsApplier(func(next config.RuntimeSettings) error {
			return curator.ApplySettings(ctx, next)
		}),
	)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Listening on %s", cfg.HTTP.Addr)
		serverErr <- server.ListenAndServe(cfg.HTTP.Addr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed: %v", err)
	}
	<-cronRunner.Stop().Done()
	queue.Stop()
}

// buildRegistry wires every provider that has an API key configured.
func buildRegistry(cfg config.ProviderConfig) *provider.Registry {
	providers := make([]provider.Provider, 0, 2)
	if cfg.TMDBAPIKey != "" {
		providers = append(providers, provider.NewTMDBProvider(cfg.TMDBAPIKey))
	}
	if cfg.FanartAPIKey != "" {
		providers = append(providers, provider.NewFanartProvider(cfg.FanartAPIKey))
	}
	return provider.NewRegistry(providers, provider.WithConcurrency(cfg.Concurrency))
}
