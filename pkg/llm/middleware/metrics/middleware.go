package metrics

import (
	"context"
	"time"

	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/llm/llmerrors"
	"fiaecoach/pkg/tokens"
)

// UsageExtractor extracts token usage from a request and response.
type UsageExtractor func(req llm.CompletionRequest, resp llm.CompletionResponse) (promptTokens, completionTokens int)

// DefaultUsageExtractor counts tokens with the tiktoken codec. The generic
// chat-completion protocol does not return usage structurally for every
// provider, so counting locally keeps the metric comparable across providers.
func DefaultUsageExtractor(counter *tokens.Counter) UsageExtractor {
	return func(req llm.CompletionRequest, resp llm.CompletionResponse) (int, int) {
		var promptText string
		for i := range req.Messages {
			promptText += req.Messages[i].Content + "\n"
		}
		return counter.Count(promptText), counter.Count(resp.Content)
	}
}

// RequestContext carries per-call labels the middleware cannot derive from the
// request itself.
type RequestContext struct {
	Mode     string
	Language string
}

type requestContextKey struct{}

// WithRequestContext attaches mode/language labels for the metrics middleware.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func requestContextFrom(ctx context.Context) RequestContext {
	if rc, ok := ctx.Value(requestContextKey{}).(RequestContext); ok {
		return rc
	}
	return RequestContext{Mode: "unknown", Language: "unknown"}
}

// Middleware returns a middleware that records request latency, token usage,
// and success/failure rates for every completion call.
func Middleware(recorder Recorder, usageExtractor UsageExtractor) llm.Middleware {
	if usageExtractor == nil {
		usageExtractor = func(req llm.CompletionRequest, resp llm.CompletionResponse) (int, int) {
			var promptText string
			for i := range req.Messages {
				promptText += req.Messages[i].Content + "\n"
			}
			return tokens.CountSimple(promptText), tokens.CountSimple(resp.Content)
		}
	}

	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				start := time.Now()
				resp, err := next.Complete(ctx, req)
				duration := time.Since(start)

				var promptTokens, completionTokens int
				if err == nil {
					promptTokens, completionTokens = usageExtractor(req, resp)
				}

				errorType := ""
				if err != nil {
					errorType = llmerrors.TypeOf(err).String()
				}

				rc := requestContextFrom(ctx)
				recorder.ObserveRequest(
					next.GetModelName(),
					rc.Mode,
					rc.Language,
					promptTokens,
					completionTokens,
					err == nil,
					errorType,
					duration,
				)

				return resp, err //nolint:wrapcheck // middleware passes errors through unchanged
			},
			func() string {
				return next.GetModelName()
			},
		)
	}
}
