// Package llmerrors provides structured error classification for remote completion calls.
package llmerrors

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorType represents the failure class of a remote completion call.
// Classes are checked in declaration order: quota markers win over timeout,
// timeout over generic transient failures.
type ErrorType int8

const (
	// ErrorTypeQuota represents rate-limit or quota exhaustion (429,
	// resource_exhausted). Surfaced to the caller with the endpoint's
	// retry-after hint instead of being waited out internally.
	ErrorTypeQuota ErrorType = iota
	// ErrorTypeTimeout represents a call that exceeded its deadline. Retried.
	ErrorTypeTimeout
	// ErrorTypeTransient represents any other remote failure (5xx, connection
	// reset, EOF). Retried the same way as timeouts.
	ErrorTypeTransient
	// ErrorTypeUnexpected represents a programming or contract error.
	// Never retried, propagated immediately.
	ErrorTypeUnexpected
)

// String returns the string representation of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeQuota:
		return "quota"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeUnexpected:
		return "unexpected"
	default:
		return "invalid"
	}
}

// Error represents a classified remote completion error.
type Error struct {
	Err               error     // Wrapped underlying error
	Message           string    // Human-readable error message
	Type              ErrorType // Classified failure class
	StatusCode        int       // HTTP status code if applicable
	RetryAfterSeconds *int      // Endpoint-supplied backoff hint, quota errors only
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm error (%s): %s", e.Type.String(), e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm error (%s): %v", e.Type.String(), e.Err)
	}
	return fmt.Sprintf("llm error (%s): status %d", e.Type.String(), e.StatusCode)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether this failure class may be retried with backoff.
// Quota failures are surfaced to the caller with their retry-after hint rather
// than waited out here; unexpected errors are never retried.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeTransient:
		return true
	default:
		return false
	}
}

// Is checks if an error is of a specific type.
func Is(err error, errorType ErrorType) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type == errorType
	}
	return false
}

// TypeOf returns the error type of an error, classifying unrecognized errors
// on the fly.
func TypeOf(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return classifyRaw(err)
}

// RetryAfter returns the endpoint-supplied backoff hint, if any.
func RetryAfter(err error) *int {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.RetryAfterSeconds
	}
	return nil
}

// NewError creates a new classified error.
func NewError(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// NewErrorWithStatus creates a new classified error with HTTP status.
func NewErrorWithStatus(errorType ErrorType, statusCode int, message string) *Error {
	return &Error{Type: errorType, StatusCode: statusCode, Message: message}
}

// NewQuotaError creates a quota error carrying the endpoint's retry-after hint.
func NewQuotaError(message string, retryAfterSeconds *int) *Error {
	return &Error{Type: ErrorTypeQuota, Message: message, RetryAfterSeconds: retryAfterSeconds}
}

// Classify wraps an arbitrary error from a provider SDK into a classified
// *Error. Already-classified errors pass through unchanged. The chat-completion
// protocol does not distinguish failure kinds structurally, so classification
// relies on status codes embedded in the message and textual markers.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	errType := classifyRaw(err)
	classified := &Error{
		Type:    errType,
		Err:     err,
		Message: err.Error(),
	}
	if errType == ErrorTypeQuota {
		classified.RetryAfterSeconds = ExtractRetryAfter(err.Error())
	}
	return classified
}

func classifyRaw(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnexpected
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorTypeUnexpected
	}

	text := strings.ToLower(err.Error())

	if looksLikeQuota(text) {
		return ErrorTypeQuota
	}
	if strings.Contains(text, "timeout") || strings.Contains(text, "timed out") ||
		strings.Contains(text, "deadline exceeded") {
		return ErrorTypeTimeout
	}
	if strings.Contains(text, "connection") ||
		strings.Contains(text, "network") ||
		strings.Contains(text, "temporary") ||
		strings.Contains(text, "eof") ||
		strings.Contains(text, "500") ||
		strings.Contains(text, "502") ||
		strings.Contains(text, "503") ||
		strings.Contains(text, "504") {
		return ErrorTypeTransient
	}
	return ErrorTypeUnexpected
}

func looksLikeQuota(lowered string) bool {
	return strings.Contains(lowered, "resource_exhausted") ||
		strings.Contains(lowered, "quota") ||
		strings.Contains(lowered, "rate limit") ||
		strings.Contains(lowered, "429")
}

// Retry-after hints appear in failure text in a few shapes depending on which
// hop produced the failure.
var retryAfterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)retry[- ]after[:\s]+(\d+)`),
	regexp.MustCompile(`(?i)in\s+(\d+)\s*seconds`),
}

// ExtractRetryAfter pulls a retry-after hint in seconds out of failure text.
// Returns nil when no hint is found.
func ExtractRetryAfter(text string) *int {
	if text == "" {
		return nil
	}
	for _, pattern := range retryAfterPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			seconds, err := strconv.Atoi(m[1])
			if err != nil {
				return nil
			}
			return &seconds
		}
	}
	return nil
}
