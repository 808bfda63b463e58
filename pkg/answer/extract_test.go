package answer

import "testing"

func TestExtractJSON_PureObject(t *testing.T) {
	parsed, ok := ExtractJSON(`{"summary": "Bubble Sort vergleicht Nachbarn."}`)
	if !ok {
		t.Fatal("Expected pure JSON to parse")
	}
	if parsed["summary"] != "Bubble Sort vergleicht Nachbarn." {
		t.Errorf("Unexpected summary: %v", parsed["summary"])
	}
}

func TestExtractJSON_FencedWithProse(t *testing.T) {
	raw := "Here is the result: ```json\n{\"summary\":\"x\"}\n``` thanks"
	parsed, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("Expected fenced JSON to parse")
	}
	if parsed["summary"] != "x" {
		t.Errorf("Unexpected summary: %v", parsed["summary"])
	}
}

func TestExtractJSON_FenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"summary\": \"ohne Tag\"}\n```"
	parsed, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("Expected untagged fence to parse")
	}
	if parsed["summary"] != "ohne Tag" {
		t.Errorf("Unexpected summary: %v", parsed["summary"])
	}
}

func TestExtractJSON_ObjectEmbeddedInProse(t *testing.T) {
	raw := `Sure! The answer is {"summary": "eingebettet", "steps": []} as requested.`
	parsed, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("Expected embedded object to parse")
	}
	if parsed["summary"] != "eingebettet" {
		t.Errorf("Unexpected summary: %v", parsed["summary"])
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	raw := `prefix {"a": "{not a key}"} suffix`
	parsed, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("Expected object with braces inside strings to parse")
	}
	if parsed["a"] != "{not a key}" {
		t.Errorf("Unexpected value: %v", parsed["a"])
	}
}

func TestExtractJSON_EscapedQuotesInsideStrings(t *testing.T) {
	raw := `note: {"a": "say \"hi\" {ok}"} done`
	parsed, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("Expected object with escaped quotes to parse")
	}
	if parsed["a"] != `say "hi" {ok}` {
		t.Errorf("Unexpected value: %v", parsed["a"])
	}
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	raw := `{"outer": {"inner": "tief"}, "summary": "s"} trailing`
	parsed, ok := ExtractJSON(raw)
	if !ok {
		t.Fatal("Expected nested object to parse")
	}
	outer, ok := parsed["outer"].(map[string]any)
	if !ok {
		t.Fatalf("Expected nested map, got %T", parsed["outer"])
	}
	if outer["inner"] != "tief" {
		t.Errorf("Unexpected inner value: %v", outer["inner"])
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	for _, raw := range []string{"", "   ", "kein JSON hier", "{unbalanced"} {
		if _, ok := ExtractJSON(raw); ok {
			t.Errorf("Expected no object for %q", raw)
		}
	}
}

func TestExtractJSON_UnbalancedThenValid(t *testing.T) {
	// The scan starts at the first brace; if that candidate never closes,
	// extraction fails rather than guessing.
	if _, ok := ExtractJSON(`{"open": true`); ok {
		t.Error("Expected unterminated object to fail")
	}
}
