// Package answer defines the structured coaching answer, the tolerant JSON
// extractor for raw model output, and the output validator with its
// language-compliance check.
package answer

// Status classifies the outcome carried in an answer's meta block.
type Status string

const (
	// StatusOK marks a normal answer.
	StatusOK Status = "ok"
	// StatusError marks a failed analysis, including language mismatches.
	StatusError Status = "error"
	// StatusQuota marks a quota/rate-limit rejection by the remote endpoint.
	StatusQuota Status = "quota"
)

// Supported language tags. German is the default.
const (
	LangGerman  = "de"
	LangEnglish = "en"
	LangPersian = "fa"
)

// NormalizeLang maps arbitrary input to a supported language tag,
// defaulting to German.
func NormalizeLang(lang string) string {
	switch lang {
	case LangPersian:
		return LangPersian
	case LangEnglish:
		return LangEnglish
	default:
		return LangGerman
	}
}

// Meta annotates an answer with its delivery context.
type Meta struct {
	Status            Status `json:"type"`
	Lang              string `json:"lang"`
	Mode              string `json:"mode"`
	Model             string `json:"model"`
	Cached            bool   `json:"cached"`
	RetryAfterSeconds *int   `json:"retry_after_seconds"`
	RequestID         string `json:"request_id,omitempty"`
}

// StructuredAnswer is the fixed-schema result returned to callers.
// Optional fields are nil or non-empty trimmed text, never empty strings.
type StructuredAnswer struct {
	Summary    string   `json:"summary"`
	Steps      []string `json:"steps"`
	Example    *string  `json:"example"`
	Pseudocode *string  `json:"pseudocode"`
	Visual     *string  `json:"visual"`
	Meta       Meta     `json:"meta"`
}

// Clone returns a deep copy. Cached entries must never share backing
// storage with answers handed to callers.
func (a StructuredAnswer) Clone() StructuredAnswer {
	out := a
	out.Steps = make([]string, len(a.Steps))
	copy(out.Steps, a.Steps)
	out.Example = cloneString(a.Example)
	out.Pseudocode = cloneString(a.Pseudocode)
	out.Visual = cloneString(a.Visual)
	out.Meta.RetryAfterSeconds = cloneInt(a.Meta.RetryAfterSeconds)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Empty returns an answer carrying only a summary and the given meta.
func Empty(summary string, meta Meta) StructuredAnswer {
	return StructuredAnswer{
		Summary: summary,
		Steps:   []string{},
		Meta:    meta,
	}
}
