// Package routing estimates travel times between recce locations using an
// external directions provider.
package routing

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the provider is down or its breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the provider quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates coordinates out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Provider is a directions backend.
type Provider interface {
	// GetDirections computes a route between two points.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and status.
	Name() string
}

// Profile is a mode of transport.
type Profile string

const (
	// ProfileDrive is the default: crews move between locations by van.
	ProfileDrive Profile = "driving-car"
	// ProfileWalk covers locations within walking distance of each other.
	ProfileWalk Profile = "foot-walking"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is within WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DirectionsRequest asks for a route between two points.
type DirectionsRequest struct {
	Origin      Coordinate
	Destination Coordinate
	Profile     Profile
}

// DirectionsResponse carries the routes found, best first.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route is a single route option.
type Route struct {
	DistanceMeters  int
	DurationSeconds int
	Summary         string
}

// Estimate is a travel-time suggestion for one leg.
type Estimate struct {
	Minutes        int
	DistanceMeters int
	Provider       string
}

// Error carries provider-specific detail around a sentinel error.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is transient.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
