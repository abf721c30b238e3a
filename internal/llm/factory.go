package llm

import (
	"context"
	"fmt"
	"strings"
)

// Hugging Face router endpoint speaking the OpenAI chat completions protocol.
const huggingFaceBaseURL = "https://router.huggingface.co/v1"

// Default models per provider.
const (
	defaultHuggingFaceModel = "mistralai/Mistral-7B-Instruct-v0.2"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultGeminiModel      = "gemini-2.0-flash"
	defaultOllamaModel      = "mistral"
)

// NewClient creates an LLM client based on the provided configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	cfg = cfg.withDefaults()

	switch strings.ToLower(cfg.Provider) {
	case "huggingface", "":
		return newOpenAICompatibleClient("huggingface", cfg, huggingFaceBaseURL, defaultHuggingFaceModel)
	case "openai":
		return newOpenAICompatibleClient("openai", cfg, "", defaultOpenAIModel)
	case "gemini":
		return newGeminiClient(ctx, cfg)
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
