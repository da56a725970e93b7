package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the web frontend at the given origins to call the API.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, "Location", "Retry-After"},
		MaxAge:         600,
	}).Handler
}
