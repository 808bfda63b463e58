package answer

import (
	"fmt"
	"regexp"
	"strings"
)

// Coerce turns a loosely-typed parsed object into a StructuredAnswer.
// Summary falls back to fallbackSummary when missing or blank; steps keep
// their order with blank entries dropped; optional fields are trimmed and
// nil when empty.
func Coerce(parsed map[string]any, fallbackSummary string, meta Meta) StructuredAnswer {
	result := Empty(fallbackSummary, meta)
	if parsed == nil {
		return result
	}

	if summary, ok := parsed["summary"].(string); ok {
		if trimmed := strings.TrimSpace(summary); trimmed != "" {
			result.Summary = trimmed
		}
	}

	if rawSteps, ok := parsed["steps"].([]any); ok {
		steps := make([]string, 0, len(rawSteps))
		for _, item := range rawSteps {
			var text string
			if s, ok := item.(string); ok {
				text = strings.TrimSpace(s)
			} else {
				text = strings.TrimSpace(fmt.Sprint(item))
			}
			if text != "" {
				steps = append(steps, text)
			}
		}
		result.Steps = steps
	}

	result.Example = optionalField(parsed, "example")
	result.Pseudocode = optionalField(parsed, "pseudocode")
	result.Visual = optionalField(parsed, "visual")

	return result
}

func optionalField(parsed map[string]any, key string) *string {
	value, ok := parsed[key].(string)
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

var persianPattern = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)

// ContainsPersian reports whether text contains Arabic-script characters.
func ContainsPersian(text string) bool {
	return persianPattern.MatchString(text)
}

// CollectText concatenates all text fields of an answer for language
// inspection.
func CollectText(a *StructuredAnswer) string {
	parts := make([]string, 0, 4+len(a.Steps))
	for _, field := range []*string{&a.Summary, a.Example, a.Pseudocode, a.Visual} {
		if field != nil && strings.TrimSpace(*field) != "" {
			parts = append(parts, strings.TrimSpace(*field))
		}
	}
	for _, step := range a.Steps {
		if trimmed := strings.TrimSpace(step); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// LanguageOK checks target-language compliance. Persian answers may embed
// Latin technical terms ("Bubble Sort", "O(n^2)"), so any Persian script
// is accepted and so is substantial text without it. German and English
// answers must be free of Persian script.
func LanguageOK(a *StructuredAnswer, lang string) bool {
	text := CollectText(a)
	switch NormalizeLang(lang) {
	case LangPersian:
		return ContainsPersian(text) || len(strings.TrimSpace(text)) > 10
	case LangGerman, LangEnglish:
		return !ContainsPersian(text)
	default:
		return true
	}
}
