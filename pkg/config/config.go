// Package config provides configuration loading, validation, and management for the coach service.
// It handles YAML config files, environment overrides, and provider API key resolution.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider name constants.
const (
	ProviderGoogle       = "google"
	ProviderOpenAI       = "openai"
	ProviderOpenAICompat = "openai-compat"
	ProviderAnthropic    = "anthropic"
	ProviderOllama       = "ollama"
)

// Environment variable names for provider credentials.
const (
	EnvGoogleAPIKey    = "GEMINI_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// Default model per provider when the config file names none.
const (
	DefaultGoogleModel = "gemini-2.0-flash"
	DefaultOllamaModel = "llama3.2"
)

// ProviderPattern maps a model-name substring to its provider.
type ProviderPattern struct {
	Substring string
	Provider  string
}

// ProviderPatterns defines rules for inferring providers from model names.
var ProviderPatterns = []ProviderPattern{
	{"gemini", ProviderGoogle},
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"llama", ProviderOllama},
	{"phi", ProviderOllama},
	{"qwen", ProviderOllama},
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// ProviderConfig selects the LLM backend.
type ProviderConfig struct {
	// Name is one of the Provider constants. Empty means inferred from Model.
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
	// BaseURL switches the openai-compat provider to another
	// OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MaxEntries    int      `yaml:"max_entries"`
	TTL           Duration `yaml:"ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// RetryConfig holds retry middleware settings.
type RetryConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	BaseDelay  Duration `yaml:"base_delay"`
	MaxDelay   Duration `yaml:"max_delay"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	FailureThreshold int      `yaml:"failure_threshold"`
	SuccessThreshold int      `yaml:"success_threshold"`
	RecoveryTimeout  Duration `yaml:"recovery_timeout"`
}

// ResilienceConfig groups the remote-call protection settings.
type ResilienceConfig struct {
	Retry          RetryConfig          `yaml:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RequestTimeout Duration             `yaml:"request_timeout"`
}

// LimitsConfig bounds the coaching input.
type LimitsConfig struct {
	MaxInputTokens int `yaml:"max_input_tokens"`
}

// StorageConfig holds the interaction log settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// PrometheusURL is the server queried for the usage report. Empty
	// disables the report.
	PrometheusURL string `yaml:"prometheus_url"`
}

// Config represents the full coach service configuration.
type Config struct {
	Server          ServerConfig     `yaml:"server"`
	Provider        ProviderConfig   `yaml:"provider"`
	Cache           CacheConfig      `yaml:"cache"`
	Resilience      ResilienceConfig `yaml:"resilience"`
	Limits          LimitsConfig     `yaml:"limits"`
	Storage         StorageConfig    `yaml:"storage"`
	Metrics         MetricsConfig    `yaml:"metrics"`
	DefaultLanguage string           `yaml:"default_language"`
}

// Default returns the configuration used when no file or field is provided.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Provider: ProviderConfig{
			Name:  ProviderGoogle,
			Model: DefaultGoogleModel,
		},
		Cache: CacheConfig{
			MaxEntries:    256,
			TTL:           Duration(time.Hour),
			SweepInterval: Duration(5 * time.Minute),
		},
		Resilience: ResilienceConfig{
			Retry: RetryConfig{
				MaxRetries: 3,
				BaseDelay:  Duration(time.Second),
				MaxDelay:   Duration(30 * time.Second),
			},
			CircuitBreaker: CircuitBreakerConfig{
				FailureThreshold: 5,
				SuccessThreshold: 2,
				RecoveryTimeout:  Duration(60 * time.Second),
			},
			RequestTimeout: Duration(120 * time.Second),
		},
		Limits: LimitsConfig{
			MaxInputTokens: 4000,
		},
		Storage: StorageConfig{
			DBPath: "fiae_coach.db",
		},
		DefaultLanguage: "de",
	}
}

// GetModelProvider returns the provider for a model name, using the explicit
// provider name when set and the model-name patterns otherwise.
func GetModelProvider(cfg *ProviderConfig) (string, error) {
	if cfg.Name != "" {
		switch cfg.Name {
		case ProviderGoogle, ProviderOpenAI, ProviderOpenAICompat, ProviderAnthropic, ProviderOllama:
			return cfg.Name, nil
		default:
			return "", fmt.Errorf("unknown provider: %s", cfg.Name)
		}
	}

	lower := strings.ToLower(cfg.Model)
	for _, p := range ProviderPatterns {
		if strings.Contains(lower, p.Substring) {
			return p.Provider, nil
		}
	}
	return "", fmt.Errorf("cannot infer provider for model %q", cfg.Model)
}

// GetAPIKey resolves the credential for a provider from the environment.
func GetAPIKey(provider string) (string, error) {
	var envVar string
	switch provider {
	case ProviderGoogle, ProviderOpenAICompat:
		envVar = EnvGoogleAPIKey
	case ProviderOpenAI:
		envVar = EnvOpenAIAPIKey
	case ProviderAnthropic:
		envVar = EnvAnthropicAPIKey
	case ProviderOllama:
		// Ollama has no API key, the host URL stands in for it.
		host := os.Getenv(EnvOllamaHost)
		if host == "" {
			host = "http://localhost:11434"
		}
		return host, nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key not found: %s is not set", envVar)
}

// HasAPIKey reports whether the provider's credential is available without
// returning it.
func HasAPIKey(provider string) bool {
	key, err := GetAPIKey(provider)
	return err == nil && key != ""
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider model must not be empty")
	}
	if _, err := GetModelProvider(&c.Provider); err != nil {
		return err
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL.Std())
	}
	if c.Resilience.Retry.MaxRetries < 1 {
		return fmt.Errorf("retry max_retries must be at least 1, got %d", c.Resilience.Retry.MaxRetries)
	}
	if c.Resilience.CircuitBreaker.FailureThreshold < 1 {
		return fmt.Errorf("circuit breaker failure_threshold must be at least 1, got %d", c.Resilience.CircuitBreaker.FailureThreshold)
	}
	if c.Resilience.CircuitBreaker.SuccessThreshold < 1 {
		return fmt.Errorf("circuit breaker success_threshold must be at least 1, got %d", c.Resilience.CircuitBreaker.SuccessThreshold)
	}
	if c.Limits.MaxInputTokens <= 0 {
		return fmt.Errorf("max_input_tokens must be positive, got %d", c.Limits.MaxInputTokens)
	}
	switch c.DefaultLanguage {
	case "de", "en", "fa":
	default:
		return fmt.Errorf("unsupported default language: %s", c.DefaultLanguage)
	}
	return nil
}
