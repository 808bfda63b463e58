package retry

import (
	"context"
	"time"

	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/llm/llmerrors"
	"fiaecoach/pkg/logx"
)

// timeAfter is swapped out in tests to avoid real backoff sleeps.
//
//nolint:gochecknoglobals // test seam
var timeAfter = time.After

// Middleware returns a middleware that retries failed completions per the policy.
// The backoff wait is a suspension point: it blocks only the calling goroutine
// and honors context cancellation.
func Middleware(policy *Policy) llm.Middleware {
	logger := logx.NewLogger("retry")

	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				var lastErr error

				for attempt := 0; attempt < policy.Config.MaxRetries; attempt++ {
					resp, err := next.Complete(ctx, req)
					if err == nil {
						return resp, nil
					}
					lastErr = llmerrors.Classify(err)

					if !policy.Classifier(lastErr) {
						break
					}
					if attempt == policy.Config.MaxRetries-1 {
						break
					}

					delay := policy.Delay(attempt, lastErr)
					logger.Debug("attempt %d failed (%v), retrying in %s",
						attempt+1, llmerrors.TypeOf(lastErr), delay)

					select {
					case <-ctx.Done():
						return llm.CompletionResponse{}, ctx.Err()
					case <-timeAfter(delay):
					}
				}

				return llm.CompletionResponse{}, lastErr
			},
			func() string {
				return next.GetModelName()
			},
		)
	}
}
