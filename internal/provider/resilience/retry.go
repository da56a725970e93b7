package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds exponential-backoff retries.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first. Zero disables
	// retries.
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries three times, starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	if bo.InitialInterval == 0 {
		bo.InitialInterval = 100 * time.Millisecond
	}
	bo.MaxInterval = p.MaxInterval
	if bo.MaxInterval == 0 {
		bo.MaxInterval = 5 * time.Second
	}
	bo.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(bo, p.MaxRetries), ctx)
}

// Retry runs op until it succeeds, returns a Permanent error, the policy is
// exhausted, or ctx is done. The last error is returned.
func Retry(ctx context.Context, p RetryPolicy, op func() error) error {
	return backoff.Retry(op, p.backOff(ctx))
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
