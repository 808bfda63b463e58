// Package tokens provides tiktoken-based token counting utilities.
package tokens

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Counter provides token counting for prompt budgets and usage metrics.
// The exact encoding differs per model family; GPT-4 encoding is a close
// enough approximation for budget checks against Gemini and Claude too.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter creates a token counter using GPT-4 encoding.
func NewCounter() (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec: %w", err)
	}
	return &Counter{codec: codec}, nil
}

// Count returns the number of tokens in the given text.
func (c *Counter) Count(text string) int {
	if c == nil || c.codec == nil {
		return estimate(text)
	}
	count, err := c.codec.Count(text)
	if err != nil {
		return estimate(text)
	}
	return count
}

// CountSimple counts tokens without a Counter instance, falling back to a
// character-based estimate if the codec cannot be constructed.
func CountSimple(text string) int {
	counter, err := NewCounter()
	if err != nil {
		return estimate(text)
	}
	return counter.Count(text)
}

// estimate approximates 4 chars per token.
func estimate(text string) int {
	return len(text) / 4
}
