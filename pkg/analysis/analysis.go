// Package analysis builds a weakness report from the interaction history.
// It condenses recent problems and answers into a transcript and asks the
// model for recurring topics, likely weaknesses, and a training plan.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"fiaecoach/pkg/llm"
	"fiaecoach/pkg/logx"
	"fiaecoach/pkg/persistence"
)

const systemPrompt = `You are a strict but supportive FIAE exam coach (Fachinformatiker Anwendungsentwicklung).

You receive a history of the student's FIAE exam questions and the AI's answers.
Your job:

1. Detect patterns:
   - Which topics appear often? (e.g. Schleifen, Arrays/Listen, Bedingungen, Sortieralgorithmen, Suchalgorithmen, Rekursion, Komplexität, Off-by-one-Fehler, etc.)
   - Where does the student likely struggle?

2. Output a compact report in SIMPLE German:
   - Section 1: Kurze Zusammenfassung der Themen (Bulletpoints)
   - Section 2: Vermutete Schwächen (Bulletpoints, sehr konkret)
   - Section 3: Konkreter 7-14 Tage Übungsplan
     - Für jeden Tag 1-3 konkrete Aufgaben-Typen (z.B. "Schreibe einen Algorithmus, der das Maximum in einer Liste findet und erkläre jede Zeile.")
   - Maximal ca. 400-500 Wörter.
`

const (
	historyLimit    = 20
	answerTruncateN = 500
	temperature     = 0.3
)

// HistorySource supplies the recent interactions the report is built from.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]persistence.Interaction, error)
}

// Analyzer generates weakness reports.
type Analyzer struct {
	client  llm.LLMClient
	history HistorySource
	logger  *logx.Logger
}

// New creates an Analyzer over the given model client and history source.
func New(client llm.LLMClient, history HistorySource) *Analyzer {
	return &Analyzer{
		client:  client,
		history: history,
		logger:  logx.NewLogger("analysis"),
	}
}

// WeaknessReport analyzes the recent history and returns the report text.
// With no history it returns a fixed German notice instead of calling the
// model.
func (a *Analyzer) WeaknessReport(ctx context.Context) (string, error) {
	historyText, err := a.buildHistoryText(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}
	if historyText == "" {
		return "Noch keine Daten vorhanden, um eine Analyse zu erstellen.", nil
	}

	req := llm.NewCompletionRequest([]llm.CompletionMessage{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(historyText),
	}, temperature)

	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("weakness analysis failed: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "Leere Antwort vom Analyse-Modell erhalten.", nil
	}
	return resp.Content, nil
}

func (a *Analyzer) buildHistoryText(ctx context.Context) (string, error) {
	logs, err := a.history.Recent(ctx, historyLimit)
	if err != nil {
		return "", err
	}
	if len(logs) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(logs))
	for i, it := range logs {
		answer := strings.ReplaceAll(it.Answer, "\n", " ")
		if len(answer) > answerTruncateN {
			answer = answer[:answerTruncateN] + " ..."
		}
		parts = append(parts, fmt.Sprintf("# %d | %s\nProblem: %s\nAntwort (gekürzt): %s\n",
			i+1, it.CreatedAt, it.Problem, answer))
	}
	return strings.Join(parts, "\n\n"), nil
}
