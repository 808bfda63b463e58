// Package retry provides bounded retry with exponential backoff for completion calls.
package retry

import (
	"errors"
	"math"
	"time"

	"fiaecoach/pkg/llm/llmerrors"
	"fiaecoach/pkg/llm/middleware/circuit"
)

// Config defines configuration for retry behavior.
type Config struct {
	MaxRetries int           `json:"max_retries"` // Total attempts, including the first
	BaseDelay  time.Duration `json:"base_delay"`  // Unit for the 2^i backoff schedule
	MaxDelay   time.Duration `json:"max_delay"`   // Cap on any single wait
}

// DefaultConfig provides reasonable defaults for retry behavior.
//
//nolint:gochecknoglobals // Sensible default config pattern
var DefaultConfig = Config{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Classifier determines whether an error should be retried.
type Classifier func(error) bool

// ShouldRetry is the default classifier. Timeouts and transient remote errors
// are retried. Quota failures are surfaced to the caller with their retry-after
// hint rather than waited out here. Circuit rejections and unexpected errors
// are never retried.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var circuitErr *circuit.Error
	if errors.As(err, &circuitErr) {
		return false
	}

	switch llmerrors.TypeOf(err) {
	case llmerrors.ErrorTypeTimeout, llmerrors.ErrorTypeTransient:
		return true
	default:
		return false
	}
}

// Policy encapsulates retry configuration and logic.
type Policy struct {
	Config     Config
	Classifier Classifier
}

// NewPolicy creates a retry policy with the given configuration and classifier.
func NewPolicy(config Config, classifier Classifier) *Policy {
	if classifier == nil {
		classifier = ShouldRetry
	}
	return &Policy{Config: config, Classifier: classifier}
}

// Delay computes the wait after failed attempt i (0-indexed): BaseDelay * 2^i,
// unless the failure carried an explicit retry-after hint, which takes
// precedence over the schedule.
func (p *Policy) Delay(attempt int, err error) time.Duration {
	if hint := llmerrors.RetryAfter(err); hint != nil && *hint > 0 {
		return time.Duration(*hint) * time.Second
	}

	delay := time.Duration(float64(p.Config.BaseDelay) * math.Pow(2, float64(attempt)))
	if delay > p.Config.MaxDelay {
		delay = p.Config.MaxDelay
	}
	return delay
}
