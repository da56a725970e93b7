package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/api/middleware"
	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/api/response"
	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/project"
	"github.com/danisampedro/locationapp/internal/recce"
	"github.com/danisampedro/locationapp/internal/routing"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// fieldErrorer is implemented by the validation errors of every service.
type fieldErrorer interface {
	FieldErrors() []models.FieldError
}

// writeError maps a service error to a problem response.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var fe fieldErrorer
	var routeErr *routing.Error

	switch {
	case errors.As(err, &fe):
		response.BadRequest(w, r, "request validation failed", fe.FieldErrors())
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrLocationNotFound),
		errors.Is(err, recce.ErrRecceNotFound),
		errors.Is(err, mapping.ErrMapNotFound):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, recce.ErrItemNotFound):
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "itemId", Message: "does not exist in this recce"}})
	case errors.Is(err, mapping.ErrUncalibrated):
		response.Uncalibrated(w, r)
	case errors.Is(err, recce.ErrRoutingUnavailable):
		response.ServiceUnavailable(w, r, "travel-time suggestions are not configured")
	case errors.As(err, &routeErr):
		if routeErr.IsRetryable() {
			response.ServiceUnavailable(w, r, routeErr.Message)
			return
		}
		response.BadGateway(w, r, routeErr.Message)
	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

// decodeBody decodes the JSON body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := response.Decode(w, r, dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body: "+err.Error(), nil)
		return false
	}
	return true
}

// pageParams reads the limit and cursor query parameters.
func pageParams(w http.ResponseWriter, r *http.Request) (limit int, cursor string, ok bool) {
	q := r.URL.Query()
	limit = DefaultPageLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxPageLimit {
			response.BadRequest(w, r, "invalid query parameters", []models.FieldError{{
				Field:   "limit",
				Message: "must be an integer between 1 and " + strconv.Itoa(MaxPageLimit),
			}})
			return 0, "", false
		}
		limit = n
	}
	return limit, q.Get("cursor"), true
}
