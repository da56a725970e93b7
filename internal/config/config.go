// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/danisampedro/locationapp/internal/database"
)

// Config holds the settings shared by the API server and the worker.
type Config struct {
	Port        string
	Environment string

	// AllowedOrigins are the CORS origins of the web frontend.
	AllowedOrigins []string

	// RateLimit is the number of requests per minute allowed per client IP.
	RateLimit int

	OTelEnabled  bool
	OTLPEndpoint string

	// Database is left zero when DATABASE_URL and DB_HOST are both unset;
	// the API then serves from memory.
	Database    database.Config
	UseDatabase bool

	ORSAPIKey  string
	ORSBaseURL string
	ORSTimeout time.Duration

	PubSubProjectID    string
	PubSubSubscription string
	MigrationInterval  time.Duration
}

// Load reads .env files, if present, and then the environment. Variables
// already set in the environment win over the files.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() Config {
	cfg := Config{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		AllowedOrigins:     splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimit:          getIntOrDefault("RATE_LIMIT_PER_MINUTE", 120),
		OTelEnabled:        os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		ORSBaseURL:         os.Getenv("ORS_BASE_URL"),
		ORSTimeout:         getDurationOrDefault("ORS_TIMEOUT", 10*time.Second),
		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: os.Getenv("PUBSUB_SUBSCRIPTION"),
		MigrationInterval:  getDurationOrDefault("MIGRATION_INTERVAL", time.Hour),
	}

	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		cfg.Database = database.ConfigFromEnv()
		cfg.UseDatabase = true
	}

	return cfg
}

// RoutingEnabled reports whether travel-time estimation is configured.
func (c Config) RoutingEnabled() bool {
	return c.ORSAPIKey != ""
}

// PubSubEnabled reports whether the worker should consume a subscription.
func (c Config) PubSubEnabled() bool {
	return c.PubSubProjectID != "" && c.PubSubSubscription != ""
}

// IsProduction reports whether the process runs in production.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
