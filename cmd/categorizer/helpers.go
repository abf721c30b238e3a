package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/spice-categorizer/internal/config"
	"github.com/Veraticus/spice-categorizer/internal/llm"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/pipeline"
	"github.com/Veraticus/spice-categorizer/internal/ratelimit"
	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys such as llm.api_key to SPICE_LLM_API_KEY.
var envKeyReplacer = strings.NewReplacer(".", "_")

// loadConfig resolves configuration and checks the provider credential
// before any work starts.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newOrchestrator wires the classifier client and limiter from cfg.
func newOrchestrator(ctx context.Context, cfg *config.Config) (*pipeline.Orchestrator, error) {
	client, err := llm.NewClient(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		RetryDelay:  cfg.LLM.RetryDelay,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		MaxRetries:  cfg.LLM.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	slog.Debug("Classifier configured",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"concurrency", cfg.Pipeline.Concurrency,
		"delay", cfg.Pipeline.Delay,
		"rate_limit", cfg.Pipeline.RateLimit)

	return pipeline.New(client, pipeline.Options{
		Categories:       model.DefaultCategories(),
		Limiter:          ratelimit.New(cfg.Pipeline.Delay, cfg.Pipeline.RateLimit),
		Concurrency:      cfg.Pipeline.Concurrency,
		StrictCategories: cfg.Pipeline.StrictCategories,
		Logger:           slog.Default(),
	}), nil
}
