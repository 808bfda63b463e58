// Package coach implements the analysis gateway: it composes the response
// cache, the resilient LLM client, and the output validator into a single
// call that always returns a StructuredAnswer, never an error.
package coach

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"fiaecoach/pkg/answer"
	"fiaecoach/pkg/cache"
	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/llm/llmerrors"
	"fiaecoach/pkg/llm/middleware/metrics"
	"fiaecoach/pkg/logx"
	"fiaecoach/pkg/tokens"
)

// InteractionSink receives (problem, serialized answer) pairs as a
// write-only log. Failures are logged and never affect the answer.
type InteractionSink interface {
	SaveInteraction(ctx context.Context, problem, answerJSON string) error
}

// Options configures a Gateway.
type Options struct {
	Client         llm.LLMClient
	CacheEntries   int
	CacheTTL       time.Duration
	SweepInterval  time.Duration
	MaxInputTokens int
	// Sink is optional.
	Sink InteractionSink
	// Recorder is optional; Nop when nil.
	Recorder metrics.Recorder
	// Counter is optional; a heuristic estimate is used when nil.
	Counter *tokens.Counter
}

// Gateway mediates between callers and the remote model. One instance
// serves any number of concurrent Analyze calls.
type Gateway struct {
	client         llm.LLMClient
	cache          *cache.Store[answer.StructuredAnswer]
	sink           InteractionSink
	recorder       metrics.Recorder
	counter        *tokens.Counter
	maxInputTokens int
	logger         *logx.Logger
	cancelSweep    context.CancelFunc
}

// New constructs a Gateway and starts its cache sweeper. Call Close to
// stop the sweeper.
func New(opts Options) *Gateway {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.Nop()
	}

	store := cache.New[answer.StructuredAnswer](opts.CacheEntries, opts.CacheTTL)

	ctx, cancel := context.WithCancel(context.Background())
	if opts.SweepInterval > 0 {
		go store.Sweep(ctx, opts.SweepInterval)
	}

	return &Gateway{
		client:         opts.Client,
		cache:          store,
		sink:           opts.Sink,
		recorder:       recorder,
		counter:        opts.Counter,
		maxInputTokens: opts.MaxInputTokens,
		logger:         logx.NewLogger("coach"),
		cancelSweep:    cancel,
	}
}

// Close stops the background cache sweeper.
func (g *Gateway) Close() {
	g.cancelSweep()
}

// CacheStats exposes the response cache counters for diagnostics.
func (g *Gateway) CacheStats() cache.Stats {
	return g.cache.Stats()
}

// EvictExpired sweeps the response cache on demand and returns the number
// of removed entries.
func (g *Gateway) EvictExpired() int {
	return g.cache.EvictExpired()
}

// ModelName returns the model identifier the gateway calls.
func (g *Gateway) ModelName() string {
	return g.client.GetModelName()
}

// Analyze turns free-form problem text into a validated structured answer.
// Every failure is mapped into meta.Status; errors never propagate.
func (g *Gateway) Analyze(ctx context.Context, problemText, language, mode string, temperature float32) answer.StructuredAnswer {
	text := strings.TrimSpace(problemText)
	lang := answer.NormalizeLang(language)
	normalizedMode := NormalizeMode(mode)
	model := g.client.GetModelName()

	g.logger.Debug("analyzing problem: lang=%s mode=%s len=%d", lang, normalizedMode, len(text))

	meta := answer.Meta{
		Status: answer.StatusOK,
		Lang:   lang,
		Mode:   normalizedMode,
		Model:  model,
	}

	if text == "" {
		return answer.Empty(answer.EmptyInputSummary(lang), meta)
	}

	if g.maxInputTokens > 0 && g.countTokens(text) > g.maxInputTokens {
		g.logger.Warn("problem text over token budget: lang=%s mode=%s", lang, normalizedMode)
		meta.Status = answer.StatusError
		return answer.Empty(answer.OverLengthSummary(lang), meta)
	}

	messages := []llm.CompletionMessage{
		llm.NewSystemMessage(buildSystemPrompt(lang, model, false)),
		llm.NewUserMessage(text),
	}
	key := cache.Fingerprint(messages, temperature, model)

	if hit, ok := g.cache.Get(key); ok {
		g.logger.Info("returning cached result")
		g.recorder.IncCacheHit(model, true)
		result := hit.Clone()
		result.Meta = meta
		result.Meta.Cached = true
		return result
	}
	g.recorder.IncCacheHit(model, false)

	ctx = metrics.WithRequestContext(ctx, metrics.RequestContext{Mode: normalizedMode, Language: lang})

	content, err := g.complete(ctx, messages, temperature)
	if err != nil {
		return g.failureAnswer(err, lang, meta)
	}

	result, validated := g.validate(ctx, content, text, lang, temperature, meta)

	g.store(ctx, key, text, result, validated)
	return result
}

// validate runs extraction, coercion, and the language check with its
// single repair call. The second return reports whether the result is
// fully validated and therefore cacheable.
func (g *Gateway) validate(ctx context.Context, content, text, lang string, temperature float32, meta answer.Meta) (answer.StructuredAnswer, bool) {
	parsed, ok := answer.ExtractJSON(content)
	if !ok {
		// Degrade to the raw text as the summary.
		summary := strings.TrimSpace(content)
		if summary == "" {
			summary = answer.FallbackSummary(lang)
		}
		return answer.Empty(summary, meta), false
	}

	result := answer.Coerce(parsed, answer.FallbackSummary(lang), meta)
	if answer.LanguageOK(&result, lang) {
		return result, true
	}

	g.logger.Warn("language check failed, issuing repair call: lang=%s", lang)
	repairMessages := []llm.CompletionMessage{
		llm.NewSystemMessage(buildSystemPrompt(lang, meta.Model, true)),
		llm.NewUserMessage(text),
	}
	repairContent, err := g.complete(ctx, repairMessages, temperature)
	if err == nil {
		if repairParsed, ok := answer.ExtractJSON(repairContent); ok {
			repaired := answer.Coerce(repairParsed, answer.FallbackSummary(lang), meta)
			if answer.LanguageOK(&repaired, lang) {
				return repaired, true
			}
		}
	}

	meta.Status = answer.StatusError
	return answer.Empty(answer.LanguageMismatchSummary(lang), meta), false
}

// store caches a fully validated result with the cached flag unset and
// feeds the interaction sink. A later cache hit sets its own flag on the
// copy.
func (g *Gateway) store(ctx context.Context, key, problem string, result answer.StructuredAnswer, validated bool) {
	if validated {
		// The cached entry owns its storage; callers may mutate theirs.
		g.cache.Put(key, result.Clone())
	}

	if g.sink == nil {
		return
	}
	serialized, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := g.sink.SaveInteraction(ctx, problem, string(serialized)); err != nil {
		g.logger.Warn("failed to persist interaction: %v", err)
	}
}

func (g *Gateway) complete(ctx context.Context, messages []llm.CompletionMessage, temperature float32) (string, error) {
	req := llm.NewCompletionRequest(messages, temperature)
	resp, err := g.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// failureAnswer maps a classified transport failure to a quota or error
// answer with a localized summary.
func (g *Gateway) failureAnswer(err error, lang string, meta answer.Meta) answer.StructuredAnswer {
	g.logger.Error("analysis failed: %v", err)
	meta.RetryAfterSeconds = llmerrors.RetryAfter(err)

	if llmerrors.Is(err, llmerrors.ErrorTypeQuota) {
		meta.Status = answer.StatusQuota
		return answer.Empty(answer.QuotaSummary(lang), meta)
	}

	meta.Status = answer.StatusError
	return answer.Empty(answer.ErrorSummary(lang), meta)
}

func (g *Gateway) countTokens(text string) int {
	if g.counter != nil {
		return g.counter.Count(text)
	}
	return tokens.CountSimple(text)
}
