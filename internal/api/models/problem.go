package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem type URIs.
const (
	ProblemTypeValidation       = "https://api.locationapp.dev/problems/validation-error"
	ProblemTypeNotFound         = "https://api.locationapp.dev/problems/not-found"
	ProblemTypeConflict         = "https://api.locationapp.dev/problems/conflict"
	ProblemTypeUncalibrated     = "https://api.locationapp.dev/problems/map-uncalibrated"
	ProblemTypeTooManyRequests  = "https://api.locationapp.dev/problems/too-many-requests"
	ProblemTypeInternal         = "https://api.locationapp.dev/problems/internal-error"
	ProblemTypeBadGateway       = "https://api.locationapp.dev/problems/upstream-error"
	ProblemTypeUnavailable      = "https://api.locationapp.dev/problems/service-unavailable"
	ProblemTypeUnsupportedMedia = "https://api.locationapp.dev/problems/unsupported-media-type"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail adds a detail message to the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID).
		WithDetail(detail).
		WithErrors(errors)
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

// NewConflict creates a 409 Conflict problem.
func NewConflict(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeConflict, "Conflict", http.StatusConflict, traceID).WithDetail(detail)
}

// NewUncalibrated creates the 409 problem served for metrics on a map
// without a scale.
func NewUncalibrated(traceID string) *Problem {
	return NewProblem(ProblemTypeUncalibrated, "Map not calibrated", http.StatusConflict, traceID).
		WithDetail("calibrate the map to see metrics")
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewBadGateway creates a 502 problem for failing upstream providers.
func NewBadGateway(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeBadGateway, "Upstream provider error", http.StatusBadGateway, traceID).WithDetail(detail)
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}

// NewUnsupportedMediaType creates a 415 problem for non-JSON request bodies.
func NewUnsupportedMediaType(traceID string) *Problem {
	return NewProblem(ProblemTypeUnsupportedMedia, "Unsupported media type", http.StatusUnsupportedMediaType, traceID).
		WithDetail("Content-Type must be application/json")
}
