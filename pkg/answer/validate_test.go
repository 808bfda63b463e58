package answer

import "testing"

func testMeta(lang string) Meta {
	return Meta{Status: StatusOK, Lang: lang, Mode: "fiae_algorithms", Model: "test-model"}
}

// =============================================================================
// Coerce
// =============================================================================

func TestCoerce_NilFallsBackToSummary(t *testing.T) {
	result := Coerce(nil, "fallback", testMeta(LangGerman))
	if result.Summary != "fallback" {
		t.Errorf("Expected fallback summary, got %q", result.Summary)
	}
	if len(result.Steps) != 0 {
		t.Errorf("Expected no steps, got %v", result.Steps)
	}
}

func TestCoerce_FullObject(t *testing.T) {
	parsed := map[string]any{
		"summary":    "  Bubble Sort erklärt.  ",
		"steps":      []any{"Schritt 1", "  ", "Schritt 2", 3},
		"example":    " [5,2,4] ",
		"pseudocode": "FOR i ...",
		"visual":     "",
	}
	result := Coerce(parsed, "fallback", testMeta(LangGerman))

	if result.Summary != "Bubble Sort erklärt." {
		t.Errorf("Expected trimmed summary, got %q", result.Summary)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("Expected 3 steps, got %v", result.Steps)
	}
	if result.Steps[0] != "Schritt 1" || result.Steps[1] != "Schritt 2" || result.Steps[2] != "3" {
		t.Errorf("Unexpected steps: %v", result.Steps)
	}
	if result.Example == nil || *result.Example != "[5,2,4]" {
		t.Errorf("Expected trimmed example, got %v", result.Example)
	}
	if result.Pseudocode == nil || *result.Pseudocode != "FOR i ..." {
		t.Errorf("Unexpected pseudocode: %v", result.Pseudocode)
	}
	if result.Visual != nil {
		t.Errorf("Expected blank visual dropped, got %v", result.Visual)
	}
}

func TestCoerce_BlankSummaryUsesFallback(t *testing.T) {
	result := Coerce(map[string]any{"summary": "   "}, "fallback", testMeta(LangGerman))
	if result.Summary != "fallback" {
		t.Errorf("Expected fallback for blank summary, got %q", result.Summary)
	}
}

func TestCoerce_NonStringSummaryIgnored(t *testing.T) {
	result := Coerce(map[string]any{"summary": 42}, "fallback", testMeta(LangGerman))
	if result.Summary != "fallback" {
		t.Errorf("Expected fallback for non-string summary, got %q", result.Summary)
	}
}

func TestCoerce_MetaCarriedThrough(t *testing.T) {
	meta := testMeta(LangEnglish)
	meta.Cached = true
	result := Coerce(map[string]any{"summary": "s"}, "fallback", meta)
	if result.Meta.Lang != LangEnglish || !result.Meta.Cached {
		t.Errorf("Expected meta carried through, got %+v", result.Meta)
	}
}

// =============================================================================
// Language compliance
// =============================================================================

func TestContainsPersian(t *testing.T) {
	if !ContainsPersian("مرتب‌سازی حبابی") {
		t.Error("Expected Persian text to match")
	}
	if ContainsPersian("Bubble Sort vergleicht Nachbarn") {
		t.Error("Expected Latin text not to match")
	}
}

func TestLanguageOK_PersianWithScript(t *testing.T) {
	a := Empty("الگوریتم مرتب‌سازی", testMeta(LangPersian))
	if !LanguageOK(&a, LangPersian) {
		t.Error("Expected Persian script to pass for fa")
	}
}

func TestLanguageOK_PersianLongLatinAccepted(t *testing.T) {
	// Technical answers can be mostly Latin terms; substantial text passes.
	a := Empty("Bubble Sort with O(n^2) runtime", testMeta(LangPersian))
	if !LanguageOK(&a, LangPersian) {
		t.Error("Expected substantial Latin text to pass for fa")
	}
}

func TestLanguageOK_PersianShortLatinRejected(t *testing.T) {
	a := Empty("ok", testMeta(LangPersian))
	if LanguageOK(&a, LangPersian) {
		t.Error("Expected short non-Persian text to fail for fa")
	}
}

func TestLanguageOK_GermanRejectsPersianScript(t *testing.T) {
	a := Empty("Bubble Sort erklärt", testMeta(LangGerman))
	a.Steps = []string{"Schritt eins", "مرحله دوم"}
	if LanguageOK(&a, LangGerman) {
		t.Error("Expected Persian script in steps to fail for de")
	}
}

func TestLanguageOK_EnglishCleanPasses(t *testing.T) {
	a := Empty("Bubble sort compares neighbors", testMeta(LangEnglish))
	if !LanguageOK(&a, LangEnglish) {
		t.Error("Expected clean English to pass")
	}
}

func TestLanguageOK_UnknownLanguageUsesGermanRules(t *testing.T) {
	a := Empty("ein beliebiger Text", testMeta("tlh"))
	if !LanguageOK(&a, "tlh") {
		t.Error("Expected Persian-free text to pass under the German fallback")
	}
	b := Empty("متن فارسی", testMeta("tlh"))
	if LanguageOK(&b, "tlh") {
		t.Error("Expected Persian script to fail under the German fallback")
	}
}

func TestClone_SharesNoStorage(t *testing.T) {
	example := "Beispiel"
	retryAfter := 30
	a := Empty("Zusammenfassung", testMeta(LangGerman))
	a.Steps = []string{"eins", "zwei"}
	a.Example = &example
	a.Meta.RetryAfterSeconds = &retryAfter

	c := a.Clone()
	c.Steps[0] = "verändert"
	*c.Example = "verändert"
	*c.Meta.RetryAfterSeconds = 99

	if a.Steps[0] != "eins" {
		t.Errorf("Clone shares the steps backing array: %v", a.Steps)
	}
	if *a.Example != "Beispiel" {
		t.Errorf("Clone shares the example pointer: %q", *a.Example)
	}
	if *a.Meta.RetryAfterSeconds != 30 {
		t.Errorf("Clone shares the retry-after pointer: %d", *a.Meta.RetryAfterSeconds)
	}
}

func TestClone_EmptySliceStaysNonNil(t *testing.T) {
	c := Empty("x", testMeta(LangGerman)).Clone()
	if c.Steps == nil {
		t.Error("Expected steps to stay a non-nil slice after cloning")
	}
}

func TestCollectText_JoinsAllFields(t *testing.T) {
	example := "Beispiel"
	a := Empty("Zusammenfassung", testMeta(LangGerman))
	a.Steps = []string{"eins", " zwei "}
	a.Example = &example

	got := CollectText(&a)
	want := "Zusammenfassung Beispiel eins zwei"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
