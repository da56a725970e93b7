// Package api provides the HTTP API for locationapp.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api/handler"
	"github.com/danisampedro/locationapp/internal/api/middleware"
	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/provider/resilience"
	"github.com/danisampedro/locationapp/internal/recce"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// AllowedOrigins enables CORS for the web frontend when non-empty.
	AllowedOrigins []string

	// RateLimit overrides the standard per-IP limit per minute.
	RateLimit int

	// DB backs the readiness probe; nil when serving from memory.
	DB        handler.Pinger
	Providers *resilience.Registry

	ProjectService *project.Service
	RecceService   *recce.Service
	MapService     *mapping.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "locationapp-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		DB:        cfg.DB,
		Providers: cfg.Providers,
	})
	projectHandler := handler.NewProjectHandler(cfg.ProjectService, cfg.Logger)
	recceHandler := handler.NewRecceHandler(cfg.RecceService, cfg.Logger)
	mapHandler := handler.NewMapHandler(cfg.MapService, cfg.Logger)

	standard := middleware.StandardRateLimit
	if cfg.RateLimit > 0 {
		standard = middleware.RateLimitConfig{RequestLimit: cfg.RateLimit, WindowLength: time.Minute}
	}
	standardRateLimit := middleware.RateLimitByIP(standard)
	routingRateLimit := middleware.RateLimitByIP(middleware.RoutingRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Probes are not rate limited
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.ListProjects)
				r.Post("/", projectHandler.CreateProject)
				r.Route("/{projectId}", func(r chi.Router) {
					r.Get("/", projectHandler.GetProject)
					r.Post("/locations", projectHandler.AddLocation)

					r.Get("/recces", recceHandler.ListRecces)
					r.Post("/recces", recceHandler.CreateRecce)

					r.Get("/maps", mapHandler.ListMaps)
					r.Post("/maps", mapHandler.CreateMap)
				})
			})

			r.Route("/recces/{recceId}", func(r chi.Router) {
				r.Get("/", recceHandler.GetRecce)
				r.Put("/", recceHandler.UpdateRecce)
				r.Delete("/", recceHandler.DeleteRecce)
				r.Post("/items:reorder", recceHandler.ReorderItems)
				r.Get("/itinerary", recceHandler.GetItinerary)

				// Calls the routing provider once per leg
				r.With(routingRateLimit).Post("/travel-times:suggest", recceHandler.SuggestTravelTimes)
			})

			r.Route("/maps/{mapId}", func(r chi.Router) {
				r.Get("/", mapHandler.GetMap)
				r.Put("/", mapHandler.UpdateMap)
				r.Delete("/", mapHandler.DeleteMap)
				r.Post("/calibration", mapHandler.Calibrate)
				r.Get("/metrics", mapHandler.GetMetrics)
			})
		})
	})

	return r
}
