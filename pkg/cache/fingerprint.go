package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"fiaecoach/pkg/llm"
)

// fingerprintPayload fixes the field order of the hashed canonical form.
// Temperature is rendered with two decimal places so floating-point jitter
// does not fragment the cache.
type fingerprintPayload struct {
	Messages    []llm.CompletionMessage `json:"messages"`
	Temperature string                  `json:"temperature"`
	Model       string                  `json:"model"`
}

// Fingerprint returns the sha256 digest of the canonicalized request tuple.
// Equal conversations with the same model and a temperature equal after
// rounding to two decimals always produce equal fingerprints.
func Fingerprint(messages []llm.CompletionMessage, temperature float32, model string) string {
	rounded := math.Round(float64(temperature)*100) / 100
	payload := fingerprintPayload{
		Messages:    messages,
		Temperature: fmt.Sprintf("%.2f", rounded),
		Model:       model,
	}

	// Struct marshaling preserves declared field order, so the digest
	// input is stable across processes.
	data, err := json.Marshal(payload)
	if err != nil {
		// CompletionMessage contains only strings; marshal cannot fail.
		data = []byte(fmt.Sprintf("%v|%s|%s", messages, payload.Temperature, model))
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
