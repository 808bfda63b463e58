package coach

import "fmt"

// Analysis mode tags carried through to the answer meta.
const (
	ModeAlgorithms = "fiae_algorithms"
	ModeGeneralIT  = "general_it"
	ModeWiso       = "wiso"
	ModePlanner    = "planner"
	ModeUnknown    = "unknown"
)

// NormalizeMode maps arbitrary input to a known mode tag.
func NormalizeMode(mode string) string {
	switch mode {
	case ModeAlgorithms, ModeGeneralIT, ModeWiso, ModePlanner:
		return mode
	default:
		return ModeUnknown
	}
}

// languageNames spells out tags for the model; full names steer language
// compliance better than bare codes.
var languageNames = map[string]string{
	"de": "German (Deutsch)",
	"en": "English",
	"fa": "Persian (Farsi/فارسی)",
}

// buildSystemPrompt produces the coaching instruction with the JSON output
// contract. strong adds the single-language rules used for the repair call.
func buildSystemPrompt(lang, model string, strong bool) string {
	langName, ok := languageNames[lang]
	if !ok {
		langName = lang
	}

	extraRule := ""
	if strong {
		extraRule = fmt.Sprintf(`- The response MUST be in %s ONLY.
- Do NOT mix languages or use any other language.
- For Persian responses, use Persian script (فارسی) for all text.
- Output JSON ONLY with the exact schema.
`, langName)
	}

	return fmt.Sprintf(`You are a strict but helpful FIAE (Fachinformatiker Anwendungsentwicklung) exam coach.
Focus ONLY on:
- Algorithm thinking
- Problem analysis
- Step-by-step reasoning

Rules:
- No greetings and no filler sentences.
- Be concise; avoid long intros.
- Do NOT just give the final answer.
- Output JSON ONLY (no markdown, no code fences, no extra text).
- All strings must be in %s.
%s
Output format:
Return ONLY valid JSON with this exact schema:
{
  "summary": "string",
  "steps": ["string", ...],
  "example": "string or null",
  "pseudocode": "string or null",
  "visual": "string or null",
  "meta": {
    "type": "ok",
    "lang": "%s",
    "mode": "fiae_algorithms|general_it|wiso|planner|unknown",
    "model": "%s",
    "cached": false,
    "retry_after_seconds": null
  }
}

Guidelines:
- summary: 1-3 short sentences (short restatement + core idea) in %s.
- steps: ordered steps as short sentences in %s.
- example: short example if useful (in %s), otherwise null.
- pseudocode: short pseudocode if useful (in %s), otherwise null.
- visual: ASCII diagram or short description if useful (in %s), otherwise null.
`, langName, extraRule, lang, model, langName, langName, langName, langName, langName)
}
