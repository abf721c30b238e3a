package llm

import (
	"context"
	"errors"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
)

// Generation defaults favoring literal, parseable output.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 300
	DefaultTimeout     = 60 * time.Second
)

// ErrClassifierUnavailable wraps every failure to obtain a completion.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// Client is a remote text-generation service: one prompt in, raw text out.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for an LLM client. Zero values fall back to
// defaults except Temperature, where zero means greedy decoding.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	RetryDelay  time.Duration
	Temperature float64
	MaxTokens   int
	MaxRetries  int
}

func (c Config) withDefaults() Config {
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	return c
}

func (c Config) retryOptions() common.RetryOptions {
	return common.RetryOptions{
		MaxAttempts:  c.MaxRetries,
		InitialDelay: c.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}
