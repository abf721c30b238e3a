package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errors.New("temporary"), Retryable: true}
			}
			return nil
		}, fastRetry())

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		sentinel := errors.New("unauthorized")
		err := WithRetry(context.Background(), func() error {
			calls++
			return Permanent(sentinel)
		}, fastRetry())

		require.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("still failing")
		}, fastRetry())

		require.ErrorIs(t, err, ErrMaxRetries)
		assert.Contains(t, err.Error(), "still failing")
		assert.Equal(t, 3, calls)
	})

	t.Run("honors cancellation between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		opts := fastRetry()
		opts.InitialDelay = time.Hour
		opts.MaxDelay = time.Hour

		err := WithRetry(ctx, func() error {
			calls++
			cancel()
			return errors.New("fail")
		}, opts)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
