// Package metrics provides a query service that aggregates the coach's
// request and token counters from a Prometheus server into usage reports.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// ModelUsage represents aggregated usage for one model.
type ModelUsage struct {
	Model            string `json:"model"`
	Requests         int64  `json:"requests"`
	Errors           int64  `json:"errors"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
	CacheHits        int64  `json:"cache_hits"`
	CacheMisses      int64  `json:"cache_misses"`
}

// QueryService queries usage metrics from Prometheus.
type QueryService struct {
	queryAPI v1.API
}

// NewQueryService creates a usage query service for the given Prometheus
// server address.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &QueryService{
		queryAPI: v1.NewAPI(client),
	}, nil
}

func (q *QueryService) scalar(ctx context.Context, query string) (int64, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	if vector, ok := result.(model.Vector); ok && len(vector) > 0 {
		return int64(vector[0].Value), nil
	}
	return 0, nil
}

// GetModelUsage aggregates request, token, and cache counters for one model.
func (q *QueryService) GetModelUsage(ctx context.Context, modelName string) (*ModelUsage, error) {
	usage := &ModelUsage{Model: modelName}

	queries := []struct {
		target *int64
		query  string
	}{
		{&usage.Requests, fmt.Sprintf(`sum(llm_requests_total{model=%q})`, modelName)},
		{&usage.Errors, fmt.Sprintf(`sum(llm_requests_total{model=%q, status="error"})`, modelName)},
		{&usage.PromptTokens, fmt.Sprintf(`sum(llm_tokens_total{model=%q, type="prompt"})`, modelName)},
		{&usage.CompletionTokens, fmt.Sprintf(`sum(llm_tokens_total{model=%q, type="completion"})`, modelName)},
		{&usage.CacheHits, fmt.Sprintf(`sum(answer_cache_lookups_total{model=%q, result="hit"})`, modelName)},
		{&usage.CacheMisses, fmt.Sprintf(`sum(answer_cache_lookups_total{model=%q, result="miss"})`, modelName)},
	}
	for _, item := range queries {
		value, err := q.scalar(ctx, item.query)
		if err != nil {
			return nil, fmt.Errorf("failed to query usage for model %s: %w", modelName, err)
		}
		*item.target = value
	}

	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage, nil
}

// GetUsageByModel breaks usage down per model seen by the Prometheus server.
func (q *QueryService) GetUsageByModel(ctx context.Context) (map[string]*ModelUsage, error) {
	modelsResult, _, err := q.queryAPI.Query(ctx, `group by (model) (llm_requests_total)`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}

	out := make(map[string]*ModelUsage)
	vector, ok := modelsResult.(model.Vector)
	if !ok {
		return out, nil
	}
	for _, sample := range vector {
		name, ok := sample.Metric["model"]
		if !ok {
			continue
		}
		usage, err := q.GetModelUsage(ctx, string(name))
		if err != nil {
			return nil, err
		}
		out[string(name)] = usage
	}
	return out, nil
}
