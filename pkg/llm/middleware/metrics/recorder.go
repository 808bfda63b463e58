// Package metrics provides metrics recording middleware for completion clients.
package metrics

import (
	"time"
)

// Recorder defines the interface for recording completion call metrics.
type Recorder interface {
	// ObserveRequest records metrics for a completed call.
	ObserveRequest(
		model, mode, language string,
		promptTokens, completionTokens int,
		success bool,
		errorType string,
		duration time.Duration,
	)

	// IncCacheHit records a cache hit or miss for an answer lookup.
	IncCacheHit(model string, hit bool)
}

// NoopRecorder implements Recorder with no-op behavior for when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op metrics recorder that discards all metrics.
func Nop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveRequest(_, _, _ string, _, _ int, _ bool, _ string, _ time.Duration) {
}

// IncCacheHit does nothing in the no-op recorder.
func (n *NoopRecorder) IncCacheHit(_ string, _ bool) {
}
