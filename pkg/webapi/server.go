// Package webapi provides the HTTP surface of the coach service: problem
// analysis, history, weakness analysis, planner, career suggestions, and
// diagnostics.
package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fiaecoach/pkg/analysis"
	"fiaecoach/pkg/answer"
	"fiaecoach/pkg/career"
	"fiaecoach/pkg/coach"
	"fiaecoach/pkg/config"
	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/logx"
	"fiaecoach/pkg/persistence"
	"fiaecoach/pkg/planner"
)

// Server is the coach HTTP server.
type Server struct {
	gateway     *coach.Gateway
	store       *persistence.DB
	analyzer    *analysis.Analyzer
	career      *career.Coach
	provider    string
	defaultLang string
	corsOrigins []string
	addr        string
	logger      *logx.Logger
}

// NewServer creates the HTTP server around the assembled collaborators.
// store, analyzer, and careerCoach may be nil; their routes then return 503.
func NewServer(cfg *config.Config, gateway *coach.Gateway, store *persistence.DB, analyzer *analysis.Analyzer, careerCoach *career.Coach) *Server {
	providerName, _ := config.GetModelProvider(&cfg.Provider)
	return &Server{
		gateway:     gateway,
		store:       store,
		analyzer:    analyzer,
		career:      careerCoach,
		provider:    providerName,
		defaultLang: cfg.DefaultLanguage,
		corsOrigins: cfg.Server.CORSOrigins,
		addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		logger:      logx.NewLogger("webapi"),
	}
}

// Router builds the HTTP handler with all routes registered.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.wrap(s.handleRoot))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/api/status", s.wrap(s.handleStatus))
	mux.HandleFunc("/cache/stats", s.wrap(s.handleCacheStats))
	mux.HandleFunc("/languages", s.wrap(s.handleLanguages))
	mux.HandleFunc("/analyze", s.wrap(s.handleAnalyze))
	mux.HandleFunc("/api/fiae/analyze", s.wrap(s.handleAnalyze))
	mux.HandleFunc("/api/fiae/history", s.wrap(s.handleHistory))
	mux.HandleFunc("/api/fiae/analysis", s.wrap(s.handleAnalysis))
	mux.HandleFunc("/api/planner/prioritize", s.wrap(s.handlePrioritize))
	mux.HandleFunc("/api/career/suggest", s.wrap(s.handleCareerSuggest))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// handleRoot answers the catch-all "/" pattern; unknown paths get 404.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "API is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"model":          s.gateway.ModelName(),
		"provider":       s.provider,
		"key_configured": config.HasAPIKey(s.provider),
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	// Sweep on demand so the reported size reflects live entries.
	removed := s.gateway.EvictExpired()
	stats := s.gateway.CacheStats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"removed_expired": removed,
		"stats":           stats,
	})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"languages": []string{answer.LangGerman, answer.LangEnglish, answer.LangPersian},
		"default":   s.defaultLang,
	})
}

type analyzeRequest struct {
	Problem     string   `json:"problem"`
	Lang        string   `json:"lang"`
	Mode        string   `json:"mode"`
	Temperature *float32 `json:"temperature"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Lang == "" {
		req.Lang = s.defaultLang
	}
	temperature := float32(llm.TemperatureDeterministic)
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	result := s.gateway.Analyze(r.Context(), req.Problem, req.Lang, req.Mode, temperature)
	result.Meta.RequestID = RequestIDFrom(r.Context())
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "interaction log not configured")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	items, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to load history: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if items == nil {
		items = []persistence.Interaction{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "analysis not configured")
		return
	}

	report, err := s.analyzer.WeaknessReport(r.Context())
	if err != nil {
		s.logger.Error("weakness analysis failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "weakness analysis failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"report": report})
}

type prioritizeRequest struct {
	Tasks []struct {
		Name string `json:"name"`
	} `json:"tasks"`
}

func (s *Server) handlePrioritize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req prioritizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	names := make([]string, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		names = append(names, t.Name)
	}
	s.writeJSON(w, http.StatusOK, planner.Prioritize(names))
}

type careerRequest struct {
	Skills []string `json:"skills"`
	Goals  string   `json:"goals"`
}

func (s *Server) handleCareerSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.career == nil {
		s.writeError(w, http.StatusServiceUnavailable, "career coach not configured")
		return
	}

	var req careerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	plan, err := s.career.SuggestPath(r.Context(), req.Skills, req.Goals)
	if err != nil {
		s.logger.Error("career suggestion failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "career suggestion failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}
