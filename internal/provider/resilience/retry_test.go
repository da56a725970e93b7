package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danisampedro/locationapp/internal/provider/resilience"
)

var quick = resilience.RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := resilience.Retry(context.Background(), quick, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUp(t *testing.T) {
	calls := 0
	err := resilience.Retry(context.Background(), quick, func() error {
		calls++
		return errors.New("still failing")
	})

	assert.EqualError(t, err, "still failing")
	assert.Equal(t, 4, calls)
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	sentinel := errors.New("bad input")
	calls := 0
	err := resilience.Retry(context.Background(), quick, func() error {
		calls++
		return resilience.Permanent(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroRetries(t *testing.T) {
	calls := 0
	_ = resilience.Retry(context.Background(), resilience.RetryPolicy{}, func() error {
		calls++
		return errors.New("nope")
	})

	assert.Equal(t, 1, calls)
}
