package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// Profile is used by TravelTime. Default: ProfileDrive.
	Profile Profile

	// CacheTTL is how long a fetched route is served fresh. Default: 30 minutes.
	CacheTTL time.Duration

	// StaleIfErrorTTL is how long a route may be served after a provider
	// failure. Default: 6 hours.
	StaleIfErrorTTL time.Duration

	// Precision is the number of coordinate decimals in cache keys.
	// Default: 4 (about 11 m).
	Precision int
}

// Service fronts a Provider with a route cache.
type Service struct {
	provider  Provider
	logger    zerolog.Logger
	profile   Profile
	ttl       time.Duration
	staleTTL  time.Duration
	precision int

	mu    sync.Mutex
	cache map[string]cachedRoute
}

type cachedRoute struct {
	resp      *DirectionsResponse
	fetchedAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		provider:  cfg.Provider,
		logger:    cfg.Logger,
		profile:   cfg.Profile,
		ttl:       cfg.CacheTTL,
		staleTTL:  cfg.StaleIfErrorTTL,
		precision: cfg.Precision,
		cache:     make(map[string]cachedRoute),
	}
	if s.profile == "" {
		s.profile = ProfileDrive
	}
	if s.ttl == 0 {
		s.ttl = 30 * time.Minute
	}
	if s.staleTTL == 0 {
		s.staleTTL = 6 * time.Hour
	}
	if s.precision == 0 {
		s.precision = 4
	}
	return s
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetDirections returns directions, serving cached routes while fresh and
// stale ones when the provider fails.
func (s *Service) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if !req.Origin.Valid() || !req.Destination.Valid() {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_COORDINATES",
			Message:  "coordinates out of range",
			Err:      ErrInvalidCoordinates,
		}
	}
	if req.Profile == "" {
		req.Profile = s.profile
	}

	key := s.cacheKey(req)
	now := time.Now()

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok && now.Sub(cached.fetchedAt) < s.ttl {
		return cached.resp, nil
	}

	resp, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		if ok && now.Sub(cached.fetchedAt) < s.staleTTL {
			s.logger.Warn().Err(err).
				Str("cache_key", key).
				Time("fetched_at", cached.fetchedAt).
				Msg("serving stale route after provider error")
			return cached.resp, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = cachedRoute{resp: resp, fetchedAt: now}
	s.evictLocked(now)
	s.mu.Unlock()

	return resp, nil
}

// TravelTime estimates the travel time between two points with the
// service's profile, rounded up to whole minutes.
func (s *Service) TravelTime(ctx context.Context, from, to Coordinate) (*Estimate, error) {
	resp, err := s.GetDirections(ctx, DirectionsRequest{Origin: from, Destination: to, Profile: s.profile})
	if err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, &Error{
			Provider: resp.Provider,
			Code:     "NO_ROUTE",
			Message:  "provider returned no routes",
			Err:      ErrNoRouteFound,
		}
	}

	best := resp.Routes[0]
	return &Estimate{
		Minutes:        int(math.Ceil(float64(best.DurationSeconds) / 60)),
		DistanceMeters: best.DistanceMeters,
		Provider:       resp.Provider,
	}, nil
}

// CacheSize returns the number of cached routes.
func (s *Service) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

func (s *Service) cacheKey(req DirectionsRequest) string {
	return fmt.Sprintf("%s:%.*f,%.*f:%.*f,%.*f",
		req.Profile,
		s.precision, req.Origin.Lat, s.precision, req.Origin.Lon,
		s.precision, req.Destination.Lat, s.precision, req.Destination.Lon,
	)
}

// evictLocked drops entries past the stale window. s.mu must be held.
func (s *Service) evictLocked(now time.Time) {
	for key, c := range s.cache {
		if now.Sub(c.fetchedAt) >= s.staleTTL {
			delete(s.cache, key)
		}
	}
}
