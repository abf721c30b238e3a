package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"google.golang.org/genai"
)

// geminiClient implements Client for the Gemini API.
type geminiClient struct {
	client    *genai.Client
	config    *genai.GenerateContentConfig
	model     string
	retryOpts common.RetryOptions
}

func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	temperature := float32(cfg.Temperature)
	return &geminiClient{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: int32(cfg.MaxTokens), //nolint:gosec // bounded by configuration
		},
		retryOpts: cfg.retryOptions(),
	}, nil
}

// Complete generates content for a single text prompt.
func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	var text string
	err := common.WithRetry(ctx, func() error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
		if err != nil {
			return classifyGeminiError(ctx, err)
		}
		text = strings.TrimSpace(resp.Text())
		if text == "" {
			return common.Permanent(errors.New("empty response from model"))
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrClassifierUnavailable, err)
	}

	return text, nil
}

// classifyGeminiError retries throttling, server errors and transport
// failures. Other API errors fail at once.
func classifyGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return common.Permanent(err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyStatus(apiErrPtr.Code, err)
	}

	return &common.RetryableError{Err: err, Retryable: true}
}
