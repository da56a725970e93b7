package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Client errors.
var (
	// ErrCircuitOpen is returned without calling the provider while the
	// breaker is open or saturated in half-open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ServerError is a 5xx response. It counts as a breaker failure and is
// retried.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider in the breaker, the registry and logs.
	Name string

	// Timeout bounds each individual attempt. Default: 10 seconds.
	Timeout time.Duration

	Retry   RetryPolicy
	Breaker BreakerSettings

	// Registry, if set, receives the client and its call outcomes.
	Registry *Registry

	// Transport overrides the HTTP transport, mostly for tests.
	Transport http.RoundTripper

	Logger zerolog.Logger
}

// DefaultClientConfig returns defaults for a named provider.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:    name,
		Timeout: 10 * time.Second,
		Retry:   DefaultRetryPolicy(),
		Breaker: DefaultBreakerSettings(),
		Logger:  zerolog.Nop(),
	}
}

// Client is an HTTP client with circuit breaking and retries.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	retry    RetryPolicy
	registry *Registry
	logger   zerolog.Logger
}

// NewClient creates a resilient client and registers it when cfg.Registry
// is set.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	logger := cfg.Logger.With().Str("provider", cfg.Name).Logger()
	settings := cfg.Breaker.withDefaults()
	observe := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn().
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
		if observe != nil {
			observe(name, from, to)
		}
	}

	c := &Client{
		name: cfg.Name,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		breaker:  newBreaker[*http.Response](cfg.Name, settings),
		retry:    cfg.Retry,
		registry: cfg.Registry,
		logger:   logger,
	}

	if c.registry != nil {
		c.registry.Register(c)
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Do sends req through the breaker, retrying network errors and 5xx
// responses. A 5xx that survives every retry is returned as a response, not
// an error, so callers can read the provider's error body. Request bodies
// are replayed through req.GetBody.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var last *http.Response

	attempt := 0
	err := Retry(ctx, c.retry, func() error {
		attempt++
		if last != nil {
			_ = last.Body.Close()
			last = nil
		}

		try := req.Clone(ctx)
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return Permanent(fmt.Errorf("replay request body: %w", err))
			}
			try.Body = body
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, err := c.http.Do(try)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Permanent(ErrCircuitOpen)
		}
		last = resp
		if err != nil {
			c.logger.Debug().Err(err).Int("attempt", attempt).Msg("provider call failed")
		}
		return err
	})

	if err != nil {
		c.record(err)
		var serverErr *ServerError
		if last != nil && errors.As(err, &serverErr) {
			return last, nil
		}
		if last != nil {
			_ = last.Body.Close()
		}
		return nil, err
	}

	c.record(nil)
	return last, nil
}

func (c *Client) record(err error) {
	if c.registry == nil {
		return
	}
	if err != nil {
		c.registry.RecordFailure(c.name, err)
		return
	}
	c.registry.RecordSuccess(c.name)
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker's request counts.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
