// Package circuit provides circuit breaker functionality for resilient completion calls.
package circuit

import (
	"fmt"
	"sync"
	"time"
)

// State represents the current state of a circuit breaker.
type State int

// Circuit breaker states for managing endpoint failure patterns.
const (
	Closed   State = iota // Normal operation
	Open                  // Failing, reject requests
	HalfOpen              // Testing if the endpoint recovered
)

func (s State) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config defines configuration for circuit breaker behavior.
type Config struct {
	FailureThreshold int           `json:"failure_threshold"` // Consecutive failures before opening
	SuccessThreshold int           `json:"success_threshold"` // Successes to close from half-open
	RecoveryTimeout  time.Duration `json:"recovery_timeout"`  // Time to wait before trying half-open
	HalfOpenMaxCalls int           `json:"half_open_max_calls"` // Concurrent probes allowed in half-open
}

// DefaultConfig provides reasonable defaults for circuit breaker behavior.
//
//nolint:gochecknoglobals // Sensible default config pattern
var DefaultConfig = Config{
	FailureThreshold: 5,
	SuccessThreshold: 2,
	RecoveryTimeout:  60 * time.Second,
	HalfOpenMaxCalls: 1,
}

// Error represents a rejection because the circuit is not accepting calls.
type Error struct {
	State State
}

func (e *Error) Error() string {
	return fmt.Sprintf("circuit breaker is %s", e.State)
}

// Breaker defines the interface for circuit breaker implementations.
type Breaker interface {
	// Allow checks if a request should proceed; when it returns nil the
	// caller must later call Record with the outcome. A non-nil error is a
	// fast-fail rejection with no network attempt.
	Allow() error

	// Record records the result of a request admitted by Allow.
	Record(success bool)

	// GetState returns the current circuit breaker state.
	GetState() State

	// Stats returns a snapshot of breaker counters for diagnostics.
	Stats() Stats

	// Reset manually resets the circuit breaker to closed state.
	Reset()
}

// Stats is a point-in-time snapshot of breaker state.
type Stats struct {
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	HalfOpenSuccesses   int        `json:"half_open_successes"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
}

type breaker struct {
	config          Config
	mu              sync.Mutex
	state           State
	failureCount    int
	successCount    int
	halfOpenCalls   int
	lastFailureTime time.Time
}

// New creates a new circuit breaker with the given configuration.
func New(config Config) Breaker {
	return &breaker{
		config: config,
		state:  Closed,
	}
}

// Allow checks if a request should be admitted based on current state.
func (b *breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil

	case Open:
		// Transition to half-open once the recovery timeout has elapsed.
		if time.Since(b.lastFailureTime) >= b.config.RecoveryTimeout {
			b.state = HalfOpen
			b.successCount = 0
			b.halfOpenCalls = 1
			return nil
		}
		return &Error{State: Open}

	case HalfOpen:
		if b.halfOpenCalls >= b.config.HalfOpenMaxCalls {
			return &Error{State: HalfOpen}
		}
		b.halfOpenCalls++
		return nil

	default:
		return &Error{State: b.state}
	}
}

// Record records the success or failure of an admitted request.
func (b *breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen && b.halfOpenCalls > 0 {
		b.halfOpenCalls--
	}

	if success {
		b.onSuccess()
	} else {
		b.onFailure()
	}
}

// GetState returns the current circuit breaker state.
func (b *breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats returns a snapshot of breaker counters.
func (b *breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Stats{
		State:               b.state.String(),
		ConsecutiveFailures: b.failureCount,
		HalfOpenSuccesses:   b.successCount,
	}
	if !b.lastFailureTime.IsZero() {
		t := b.lastFailureTime
		s.LastFailureAt = &t
	}
	return s
}

// Reset manually resets the circuit breaker to closed state.
func (b *breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = Closed
	b.failureCount = 0
	b.successCount = 0
	b.halfOpenCalls = 0
}

// onSuccess handles a successful request. Any success clears the consecutive
// failure counter regardless of state.
func (b *breaker) onSuccess() {
	b.failureCount = 0

	if b.state == HalfOpen {
		b.successCount++
		if b.successCount >= b.config.SuccessThreshold {
			b.state = Closed
			b.successCount = 0
		}
	}
}

// onFailure handles a failed request.
func (b *breaker) onFailure() {
	b.failureCount++
	b.lastFailureTime = time.Now()

	switch b.state {
	case Closed:
		if b.failureCount >= b.config.FailureThreshold {
			b.state = Open
		}

	case HalfOpen:
		// Any failure in half-open immediately re-opens the circuit and
		// restarts the recovery window.
		b.state = Open
		b.successCount = 0
	}
}
