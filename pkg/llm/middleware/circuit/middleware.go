package circuit

import (
	"context"

	"fiaecoach/pkg/llm"
)

// Middleware returns a middleware that wraps a client with circuit breaker logic.
// If the circuit is OPEN, requests are rejected immediately without calling the
// underlying client. This prevents hammering a failing endpoint and gives it
// time to recover.
func Middleware(breaker Breaker) llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				if err := breaker.Allow(); err != nil {
					return llm.CompletionResponse{}, err
				}

				resp, err := next.Complete(ctx, req)
				breaker.Record(err == nil)

				return resp, err //nolint:wrapcheck // middleware passes errors through unchanged
			},
			func() string {
				return next.GetModelName()
			},
		)
	}
}
