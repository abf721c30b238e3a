package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/sashabaranov/go-openai"
)

// openAIClient implements Client for any OpenAI-compatible chat completions API,
// including the Hugging Face router.
type openAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	retryOpts   common.RetryOptions
	maxTokens   int
	temperature float32
}

// newOpenAICompatibleClient creates a chat completions client. An empty
// defaultBaseURL keeps the library's OpenAI endpoint.
func newOpenAICompatibleClient(provider string, cfg Config, defaultBaseURL, defaultModel string) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", provider)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	case defaultBaseURL != "":
		clientCfg.BaseURL = defaultBaseURL
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		provider:    provider,
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		retryOpts:   cfg.retryOptions(),
	}, nil
}

// wireTemperature keeps a zero temperature on the wire. The request field is
// omitempty, so zero is sent as the smallest positive float32 instead.
func wireTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Complete sends one user message and returns the first choice's content.
func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: wireTemperature(c.temperature),
	}

	var content string
	err := common.WithRetry(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, request)
		if err != nil {
			return classifyOpenAIError(ctx, err)
		}
		if len(resp.Choices) == 0 {
			return common.Permanent(errors.New("no completion choices returned"))
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}, c.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrClassifierUnavailable, c.provider, err)
	}

	return content, nil
}

// classifyOpenAIError marks throttling and server errors as retryable.
func classifyOpenAIError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return common.Permanent(err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		// Transport failures (connection reset, timeout) are worth another try
		return &common.RetryableError{Err: err, Retryable: true}
	}

	return classifyStatus(status, err)
}

// classifyStatus maps an HTTP status to a retry decision.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return common.Permanent(err)
	}
}
