package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/llm"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names accepted by llm.provider.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderOllama      = "ollama"
)

// credentialEnv lists the conventional environment variables per provider, in lookup order.
var credentialEnv = map[string][]string{
	ProviderHuggingFace: {"HUGGINGFACE_API_TOKEN", "HF_TOKEN"},
	ProviderOpenAI:      {"OPENAI_API_KEY"},
	ProviderGemini:      {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Config is the resolved application configuration.
type Config struct {
	Export   ExportConfig
	Server   ServerConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// LLMConfig describes the classifier backend.
type LLMConfig struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	RetryDelay  time.Duration
	Temperature float64
	MaxTokens   int
	MaxRetries  int
}

// PipelineConfig controls the orchestration loop.
type PipelineConfig struct {
	Delay            time.Duration // Fixed pause after each completed call
	RateLimit        int           // Requests per minute; switches to a token bucket when > 0
	Concurrency      int
	StrictCategories bool
}

// ExportConfig controls result export.
type ExportConfig struct {
	Dir string
}

// ServerConfig controls the HTTP front end.
type ServerConfig struct {
	Addr string
	TLS  bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderHuggingFace)
	v.SetDefault("llm.temperature", llm.DefaultTemperature)
	v.SetDefault("llm.max_tokens", llm.DefaultMaxTokens)
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)

	v.SetDefault("pipeline.delay", 300*time.Millisecond)
	v.SetDefault("pipeline.rate_limit", 0)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.strict_categories", false)

	v.SetDefault("export.dir", ".")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.tls", false)
}

// LoadEnvFiles loads .env style files into the process environment.
// With no paths it tries ./.env and silently ignores a missing file.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
		return nil
	}

	for _, path := range paths {
		if err := godotenv.Load(ExpandPath(path)); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// Load resolves the configuration from v. It does not check credentials;
// commands that classify call LLMConfig.Validate before doing any work.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LLM: LLMConfig{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     v.GetDuration("llm.timeout"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
		},
		Pipeline: PipelineConfig{
			Delay:            v.GetDuration("pipeline.delay"),
			RateLimit:        v.GetInt("pipeline.rate_limit"),
			Concurrency:      v.GetInt("pipeline.concurrency"),
			StrictCategories: v.GetBool("pipeline.strict_categories"),
		},
		Export: ExportConfig{
			Dir: ExpandPath(v.GetString("export.dir")),
		},
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
			TLS:  v.GetBool("server.tls"),
		},
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderHuggingFace
	}
	if _, ok := providerKnown(cfg.LLM.Provider); !ok {
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.LLM.Provider)
	}
	if cfg.Pipeline.Concurrency < 1 {
		return nil, fmt.Errorf("%w: pipeline.concurrency must be at least 1", common.ErrInvalidConfig)
	}
	if cfg.Pipeline.Delay < 0 {
		return nil, fmt.Errorf("%w: pipeline.delay cannot be negative", common.ErrInvalidConfig)
	}

	cfg.LLM.APIKey = v.GetString("llm.api_key")
	if cfg.LLM.APIKey == "" {
		for _, name := range credentialEnv[cfg.LLM.Provider] {
			if key := os.Getenv(name); key != "" {
				cfg.LLM.APIKey = key
				break
			}
		}
	}

	return cfg, nil
}

// Validate reports a missing credential for providers that need one.
func (c LLMConfig) Validate() error {
	envs, _ := providerKnown(c.Provider)
	if len(envs) == 0 || c.APIKey != "" {
		return nil
	}
	return common.NewUserError(
		fmt.Sprintf("Add %s to your environment or .env file (or set llm.api_key)", envs[0]),
		common.ErrMissingCredential,
	)
}

// ExpandPath resolves $VAR references and a leading ~ in user-supplied paths
// such as export.dir, --config, --env-file and sheets.service_account_path.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func providerKnown(provider string) ([]string, bool) {
	if provider == ProviderOllama {
		return nil, true
	}
	envs, ok := credentialEnv[provider]
	return envs, ok
}
