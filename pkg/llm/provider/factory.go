// Package provider constructs LLM clients with their middleware chains from
// service configuration.
package provider

import (
	"fmt"

	"fiaecoach/pkg/config"
	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/llm/middleware/circuit"
	"fiaecoach/pkg/llm/middleware/metrics"
	"fiaecoach/pkg/llm/middleware/retry"
	"fiaecoach/pkg/llm/provider/anthropic"
	"fiaecoach/pkg/llm/provider/gemini"
	"fiaecoach/pkg/llm/provider/ollama"
	"fiaecoach/pkg/llm/provider/openaicompat"
)

// NewBase creates the raw provider client selected by the configuration.
// The API key is resolved from the environment by provider.
func NewBase(cfg *config.Config) (llm.LLMClient, error) {
	providerName, err := config.GetModelProvider(&cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to determine provider: %w", err)
	}

	apiKey, err := config.GetAPIKey(providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for provider %s: %w", providerName, err)
	}

	model := cfg.Provider.Model
	switch providerName {
	case config.ProviderGoogle:
		return gemini.NewClient(apiKey, model), nil
	case config.ProviderAnthropic:
		return anthropic.NewClient(apiKey, model), nil
	case config.ProviderOpenAI:
		return openaicompat.NewClient(apiKey, model), nil
	case config.ProviderOpenAICompat:
		if cfg.Provider.BaseURL == "" {
			return nil, fmt.Errorf("provider %s requires base_url", providerName)
		}
		return openaicompat.NewClientWithBaseURL(apiKey, model, cfg.Provider.BaseURL), nil
	case config.ProviderOllama:
		// For Ollama the resolved "key" is the host URL.
		return ollama.NewClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// NewResilient wraps a base client with the full middleware chain:
// Metrics -> Retry -> CircuitBreaker -> RawClient. The breaker sits inside
// the retry loop so every attempt consults it.
func NewResilient(base llm.LLMClient, cfg *config.Config, recorder metrics.Recorder, usage metrics.UsageExtractor) (llm.LLMClient, circuit.Breaker) {
	breaker := circuit.New(circuit.Config{
		FailureThreshold: cfg.Resilience.CircuitBreaker.FailureThreshold,
		SuccessThreshold: cfg.Resilience.CircuitBreaker.SuccessThreshold,
		RecoveryTimeout:  cfg.Resilience.CircuitBreaker.RecoveryTimeout.Std(),
		HalfOpenMaxCalls: 1,
	})

	policy := retry.NewPolicy(retry.Config{
		MaxRetries: cfg.Resilience.Retry.MaxRetries,
		BaseDelay:  cfg.Resilience.Retry.BaseDelay.Std(),
		MaxDelay:   cfg.Resilience.Retry.MaxDelay.Std(),
	}, nil)

	client := llm.Chain(base,
		metrics.Middleware(recorder, usage),
		retry.Middleware(policy),
		circuit.Middleware(breaker),
	)
	return client, breaker
}
