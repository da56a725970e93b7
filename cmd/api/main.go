// Package main provides the entrypoint for the locationapp API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api"
	"github.com/danisampedro/locationapp/internal/api/handler"
	"github.com/danisampedro/locationapp/internal/api/middleware"
	"github.com/danisampedro/locationapp/internal/config"
	"github.com/danisampedro/locationapp/internal/database"
	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/provider/resilience"
	"github.com/danisampedro/locationapp/internal/recce"
	"github.com/danisampedro/locationapp/internal/routing"
	"github.com/danisampedro/locationapp/internal/routing/openrouteservice"
	"github.com/danisampedro/locationapp/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "locationapp-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg := config.Load()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting locationapp API")

	ctx := context.Background()

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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer stores.Close()

	registry := resilience.NewRegistry()
	var estimator recce.TravelEstimator
	if cfg.RoutingEnabled() {
		ors := openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   cfg.ORSAPIKey,
			BaseURL:  cfg.ORSBaseURL,
			Timeout:  cfg.ORSTimeout,
			Registry: registry,
			Logger:   log,
		})
		estimator = routing.NewService(routing.ServiceConfig{
			Provider: ors,
			Logger:   log,
		})
		log.Info().Str("provider", ors.Name()).Msg("travel-time suggestions enabled")
	} else {
		log.Warn().Msg("ORS_API_KEY not set - travel-time suggestions disabled")
	}

	projectService := project.NewService(stores.projects)
	recceService := recce.NewService(recce.ServiceConfig{
		Repo:     stores.recces,
		Projects: stores.projects,
		Routing:  estimator,
		Logger:   log,
	})
	mapService := mapping.NewService(mapping.ServiceConfig{
		Repo:     stores.maps,
		Projects: stores.projects,
		Logger:   log,
	})

	routerCfg := api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		Providers:      registry,
		ProjectService: projectService,
		RecceService:   recceService,
		MapService:     mapService,
	}
	if stores.pool != nil {
		routerCfg.DB = stores.pool
	}
	router := api.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// stores bundles the repositories behind the services.
type stores struct {
	pool     *pgxpool.Pool
	projects project.Repository
	recces   recce.Repository
	maps     mapping.Repository
}

func (s *stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var _ handler.Pinger = (*pgxpool.Pool)(nil)

// openStores connects to Postgres when configured and falls back to
// in-memory repositories otherwise.
func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*stores, error) {
	if !cfg.UseDatabase {
		log.Warn().Msg("no database configured - serving from memory")
		return &stores{
			projects: project.NewInMemoryRepository(),
			recces:   recce.NewInMemoryRepository(),
			maps:     mapping.NewInMemoryRepository(),
		}, nil
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	db, err := database.OpenGorm(cfg.Database, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	projects := project.NewGormRepository(db)
	if err := projects.AutoMigrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("database connected")

	return &stores{
		pool:     pool,
		projects: projects,
		recces:   recce.NewPostgresRepository(pool),
		maps:     mapping.NewPostgresRepository(pool),
	}, nil
}
