// Package ratelimit paces calls to the classification service.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter blocks until the next call may proceed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// New picks a limiter from configuration. A positive requestsPerMinute wins
// over delay; with neither set the returned limiter never blocks.
func New(delay time.Duration, requestsPerMinute int) Limiter {
	switch {
	case requestsPerMinute > 0:
		return NewTokenBucket(requestsPerMinute)
	case delay > 0:
		return NewFixedInterval(delay)
	default:
		return Noop{}
	}
}

// Noop never waits.
type Noop struct{}

// Wait returns immediately unless ctx is already done.
func (Noop) Wait(ctx context.Context) error {
	return ctx.Err()
}

// FixedInterval sleeps a constant delay on every Wait.
type FixedInterval struct {
	Delay time.Duration
}

// NewFixedInterval creates a limiter pausing delay between calls.
func NewFixedInterval(delay time.Duration) *FixedInterval {
	return &FixedInterval{Delay: delay}
}

// Wait sleeps for the configured delay or until ctx is canceled.
func (f *FixedInterval) Wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// TokenBucket allows bursts up to its capacity and refills one token per
// minute/requestsPerMinute.
type TokenBucket struct {
	clock      func() time.Time
	lastRefill time.Time
	interval   time.Duration
	tokens     int
	capacity   int
	mu         sync.Mutex
}

// NewTokenBucket creates a bucket with the specified requests per minute.
func NewTokenBucket(requestsPerMinute int) *TokenBucket {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	return &TokenBucket{
		clock:      time.Now,
		tokens:     requestsPerMinute,
		capacity:   requestsPerMinute,
		interval:   time.Minute / time.Duration(requestsPerMinute),
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait, ok := tb.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// reserve takes a token if one is available, otherwise it reports how long
// until the next refill.
func (tb *TokenBucket) reserve() (time.Duration, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.clock()
	if elapsed := now.Sub(tb.lastRefill); elapsed >= tb.interval {
		added := int(elapsed / tb.interval)
		tb.tokens = min(tb.capacity, tb.tokens+added)
		tb.lastRefill = tb.lastRefill.Add(time.Duration(added) * tb.interval)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return 0, true
	}
	return tb.interval - now.Sub(tb.lastRefill), false
}
