// Package openrouteservice implements routing.Provider on top of the
// OpenRouteService directions API.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/provider/resilience"
	"github.com/danisampedro/locationapp/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout bounds each attempt.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the resilient client built from Timeout and
	// Registry.
	HTTPClient HTTPDoer

	Timeout  time.Duration
	Registry *resilience.Registry
	Logger   zerolog.Logger
}

// Client is an OpenRouteService API client.
type Client struct {
	apiKey  string
	baseURL string
	http    HTTPDoer
	logger  zerolog.Logger
}

// NewClient creates a new OpenRouteService client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Timeout = DefaultTimeout
		if cfg.Timeout > 0 {
			rc.Timeout = cfg.Timeout
		}
		rc.Registry = cfg.Registry
		rc.Logger = cfg.Logger
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    httpClient,
		logger:  cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections computes a route between two points.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if !req.Origin.Valid() || !req.Destination.Valid() {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "INVALID_COORDINATES",
			Message:  "coordinates out of range",
			Err:      routing.ErrInvalidCoordinates,
		}
	}
	profile := req.Profile
	if profile == "" {
		profile = routing.ProfileDrive
	}

	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{
			{req.Origin.Lon, req.Origin.Lat},
			{req.Destination.Lon, req.Destination.Lat},
		},
		Instructions: true,
		Geometry:     false,
		Units:        "m",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		code := "REQUEST_FAILED"
		if errors.Is(err, resilience.ErrCircuitOpen) {
			code = "CIRCUIT_OPEN"
		}
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     code,
			Message:  "failed to reach routing provider",
			Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classify(resp.StatusCode, respBody)
	}

	var decoded directionsResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := &routing.DirectionsResponse{
		Routes:    make([]routing.Route, 0, len(decoded.Routes)),
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
	for _, r := range decoded.Routes {
		route := routing.Route{
			DistanceMeters:  int(r.Summary.Distance),
			DurationSeconds: int(r.Summary.Duration),
		}
		route.Summary = mainRoad(r.Segments)
		out.Routes = append(out.Routes, route)
	}

	c.logger.Debug().
		Str("profile", string(profile)).
		Int("route_count", len(out.Routes)).
		Msg("received directions")

	return out, nil
}

// mainRoad names the longest named step of a route.
func mainRoad(segments []routeSegment) string {
	var name string
	var longest float64
	for _, seg := range segments {
		for _, step := range seg.Steps {
			if step.Name != "" && step.Name != "-" && step.Distance > longest {
				name, longest = step.Name, step.Distance
			}
		}
	}
	return name
}

// classify maps a non-200 ORS response to a routing error.
func classify(status int, body []byte) error {
	var decoded errorResponse
	_ = json.Unmarshal(body, &decoded)
	msg := decoded.Error.Message

	e := &routing.Error{Provider: ProviderName, Code: fmt.Sprintf("HTTP_%d", status), Message: msg}
	switch {
	case status == http.StatusTooManyRequests:
		e.Code, e.Err = "RATE_LIMIT", routing.ErrRateLimitExceeded
	case status == http.StatusNotFound,
		decoded.Error.Code == codeRouteNotFound,
		decoded.Error.Code == codePointNotFound,
		decoded.Error.Code == codeDistanceTooLong:
		e.Code, e.Err = "NO_ROUTE", routing.ErrNoRouteFound
	case status == http.StatusBadRequest:
		e.Code, e.Err = "BAD_REQUEST", routing.ErrInvalidCoordinates
	default:
		e.Err = routing.ErrProviderUnavailable
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("routing provider returned status %d", status)
	}
	return e
}
