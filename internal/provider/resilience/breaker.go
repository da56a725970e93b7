// Package resilience wraps calls to external providers with circuit
// breaking and exponential-backoff retries, and tracks provider health for
// the ops status endpoint.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings configures a provider circuit breaker.
type BreakerSettings struct {
	// HalfOpenRequests is how many probes pass while half-open.
	HalfOpenRequests uint32

	// OpenFor is how long the breaker stays open before probing.
	OpenFor time.Duration

	// MinRequests and FailureRatio decide when a closed breaker trips.
	MinRequests  uint32
	FailureRatio float64

	// OnStateChange, if set, observes every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerSettings trips after five requests with half of them failing
// and probes again after thirty seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		HalfOpenRequests: 1,
		OpenFor:          30 * time.Second,
		MinRequests:      5,
		FailureRatio:     0.5,
	}
}

// ShouldTrip reports whether counts warrant opening the breaker.
func (s BreakerSettings) ShouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests < s.MinRequests || counts.Requests == 0 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	d := DefaultBreakerSettings()
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = d.HalfOpenRequests
	}
	if s.OpenFor == 0 {
		s.OpenFor = d.OpenFor
	}
	if s.MinRequests == 0 {
		s.MinRequests = d.MinRequests
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = d.FailureRatio
	}
	return s
}

func newBreaker[T any](name string, s BreakerSettings) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          name,
		MaxRequests:   s.HalfOpenRequests,
		Timeout:       s.OpenFor,
		ReadyToTrip:   s.ShouldTrip,
		OnStateChange: s.OnStateChange,
	})
}
