package webapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fiaecoach/pkg/answer"
	"fiaecoach/pkg/career"
	"fiaecoach/pkg/coach"
	"fiaecoach/pkg/config"
	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/llm/llmtest"
)

const validAnswerJSON = `{"summary": "Bubble Sort vergleicht benachbarte Elemente.", "steps": ["Vergleiche", "Tausche"]}`

func newTestServer(t *testing.T, mock *llmtest.MockClient) *Server {
	t.Helper()
	cfg := config.Default()
	gateway := coach.New(coach.Options{
		Client:       mock,
		CacheEntries: 16,
		CacheTTL:     time.Hour,
	})
	t.Cleanup(gateway.Close)
	return NewServer(&cfg, gateway, nil, nil, career.New(mock))
}

func doRequest(t *testing.T, s *Server, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// =============================================================================
// Diagnostics routes
// =============================================================================

func TestHandleRoot(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" || body["message"] != "API is running" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestHandleRoot_UnknownPathIs404(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/no/such/route", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/api/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["model"] != "mock-model" {
		t.Errorf("Unexpected model: %v", body["model"])
	}
	if body["provider"] != config.ProviderGoogle {
		t.Errorf("Unexpected provider: %v", body["provider"])
	}
}

func TestHandleLanguages(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/languages", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Languages []string `json:"languages"`
		Default   string   `json:"default"`
	}
	decodeBody(t, rec, &body)
	if len(body.Languages) != 3 {
		t.Errorf("Expected 3 languages, got %v", body.Languages)
	}
	if body.Default != "de" {
		t.Errorf("Expected default de, got %q", body.Default)
	}
}

func TestHandleCacheStats(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/cache/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Stats struct {
			MaxEntries int `json:"max_entries"`
		} `json:"stats"`
	}
	decodeBody(t, rec, &body)
	if body.Stats.MaxEntries != 16 {
		t.Errorf("Unexpected stats: %+v", body)
	}
}

// =============================================================================
// Analyze
// =============================================================================

func TestHandleAnalyze_HappyPath(t *testing.T) {
	mock := llmtest.NewMockClient([]llm.CompletionResponse{{Content: validAnswerJSON}}, nil)
	s := newTestServer(t, mock)

	rec := doRequest(t, s, http.MethodPost, "/api/fiae/analyze",
		`{"problem": "Erkläre Bubble Sort", "lang": "de", "mode": "fiae_algorithms"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result answer.StructuredAnswer
	decodeBody(t, rec, &result)
	if result.Meta.Status != answer.StatusOK {
		t.Errorf("Expected status ok, got %s", result.Meta.Status)
	}
	if result.Summary != "Bubble Sort vergleicht benachbarte Elemente." {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
	if result.Meta.RequestID == "" {
		t.Error("Expected request ID in meta")
	}
}

func TestHandleAnalyze_DefaultsLanguage(t *testing.T) {
	mock := llmtest.NewMockClient([]llm.CompletionResponse{{Content: validAnswerJSON}}, nil)
	s := newTestServer(t, mock)

	rec := doRequest(t, s, http.MethodPost, "/analyze", `{"problem": "Erkläre Bubble Sort"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var result answer.StructuredAnswer
	decodeBody(t, rec, &result)
	if result.Meta.Lang != "de" {
		t.Errorf("Expected default language de, got %q", result.Meta.Lang)
	}
}

func TestHandleAnalyze_RequestIDEchoed(t *testing.T) {
	mock := llmtest.NewMockClient([]llm.CompletionResponse{{Content: validAnswerJSON}}, nil)
	s := newTestServer(t, mock)

	header := http.Header{}
	header.Set("X-Request-ID", "req-42")
	rec := doRequest(t, s, http.MethodPost, "/analyze", `{"problem": "Erkläre Bubble Sort"}`, header)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("Expected request ID echoed on response, got %q", got)
	}

	var result answer.StructuredAnswer
	decodeBody(t, rec, &result)
	if result.Meta.RequestID != "req-42" {
		t.Errorf("Expected request ID in meta, got %q", result.Meta.RequestID)
	}
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/analyze", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleAnalyze_InvalidBody(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodPost, "/analyze", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

// =============================================================================
// Optional collaborators
// =============================================================================

func TestHandleHistory_UnconfiguredStore(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/api/fiae/history", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

func TestHandleAnalysis_UnconfiguredAnalyzer(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodGet, "/api/fiae/analysis", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
}

// =============================================================================
// Planner and career
// =============================================================================

func TestHandlePrioritize(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	rec := doRequest(t, s, http.MethodPost, "/api/planner/prioritize",
		`{"tasks": [{"name": "GA2 lernen heute 30 min"}, {"name": "Netflix irgendwann"}]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		DoNow  []struct{ Name string } `json:"do_now"`
		Delete []struct{ Name string } `json:"delete"`
	}
	decodeBody(t, rec, &body)
	if len(body.DoNow) != 1 || body.DoNow[0].Name != "GA2 lernen heute 30 min" {
		t.Errorf("Unexpected do_now: %v", body.DoNow)
	}
	if len(body.Delete) != 1 {
		t.Errorf("Unexpected delete: %v", body.Delete)
	}
}

func TestHandleCareerSuggest(t *testing.T) {
	mock := llmtest.NewMockClient([]llm.CompletionResponse{{Content: "1. Junior-Entwickler werden"}}, nil)
	s := newTestServer(t, mock)

	rec := doRequest(t, s, http.MethodPost, "/api/career/suggest",
		`{"skills": ["Go", "SQL"], "goals": "Backend-Entwicklung"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if !strings.Contains(body["plan"], "Junior-Entwickler") {
		t.Errorf("Unexpected plan: %q", body["plan"])
	}
}

// =============================================================================
// CORS
// =============================================================================

func TestCORS_WildcardOrigin(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	header := http.Header{}
	header.Set("Origin", "https://coach.example")
	rec := doRequest(t, s, http.MethodGet, "/health", "", header)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard CORS header, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t, llmtest.NewMockClient(nil, nil))

	header := http.Header{}
	header.Set("Origin", "https://coach.example")
	rec := doRequest(t, s, http.MethodOptions, "/analyze", "", header)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
}
