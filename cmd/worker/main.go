// Package main provides the entrypoint for the content migration worker.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api/response"
	"github.com/danisampedro/locationapp/internal/config"
	"github.com/danisampedro/locationapp/internal/database"
	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/recce"
	"github.com/danisampedro/locationapp/internal/telemetry"
	"github.com/danisampedro/locationapp/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "locationapp-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg := config.Load()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting locationapp worker")

	if !cfg.UseDatabase {
		log.Fatal().Msg("worker requires DATABASE_URL or DB_HOST")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	migrationCfg := worker.DefaultMigrationConfig()
	migrationCfg.Interval = cfg.MigrationInterval
	job := worker.NewMigrationJob(worker.MigrationJobConfig{
		Config: migrationCfg,
		Logger: log,
		Recces: recce.NewPostgresRepository(pool),
		Maps:   mapping.NewPostgresRepository(pool),
	})

	// Worker also exposes health endpoints for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]any{"lastRun": job.LastRun()})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	if cfg.PubSubEnabled() {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			MigrationJob:     job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() { _ = handler.Close() }()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub receive stopped")
				cancel()
			}
		}()
	} else {
		log.Info().
			Dur("interval", migrationCfg.Interval).
			Msg("pubsub not configured - running migration on a ticker")
		go job.RunEvery(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
