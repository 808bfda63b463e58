// Package career generates learning and career roadmaps from the user's
// skills and goals.
package career

import (
	"context"
	"fmt"
	"strings"

	"fiaecoach/pkg/llm"
)

const systemPrompt = `Du bist ein erfahrener Karriere- und Lerncoach für IT, speziell für
Fachinformatiker Anwendungsentwicklung (FIAE) in Deutschland.

Aufgabe:
- Du bekommst die aktuellen Skills, Interessen und Ziele des Nutzers.
- Erstelle einen realistischen Lern- und Karriereplan.

Regeln:
- Antworte in einfachem, klaren Deutsch.
- Keine leeren Motivationssätze, sondern konkrete Schritte.
- Struktur:

  1. Kurzprofil (2-3 Sätze, was du aus den Angaben ableitest)
  2. Nächste 30 Tage (konkrete Lernziele und Aktivitäten, Bulletpoints)
  3. Nächste 90 Tage (gröbere Ziele, z.B. Zertifikate, Bewerbungsstrategie)
  4. Konkrete Vorschläge für Projekte oder GitHub-Ideen
  5. Hinweise, welche Skills für Cloud/AI/DevOps/FIAE-Prüfung besonders wichtig sind

- Sei ehrlich: Wenn das Ziel zu groß ist für 90 Tage, sag es klar.
`

const temperature = 0.35

// Coach produces career roadmaps.
type Coach struct {
	client llm.LLMClient
}

// New creates a Coach over the given model client.
func New(client llm.LLMClient) *Coach {
	return &Coach{client: client}
}

// SuggestPath asks the model for a roadmap from skills and goals.
func (c *Coach) SuggestPath(ctx context.Context, skills []string, goals string) (string, error) {
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	skillsText := strings.Join(cleaned, ", ")
	if skillsText == "" {
		skillsText = "keine Angaben"
	}

	userContent := fmt.Sprintf("Aktuelle Skills: %s\nZiele / Situation: %s\n", skillsText, goals)

	req := llm.NewCompletionRequest([]llm.CompletionMessage{
		llm.NewSystemMessage(systemPrompt),
		llm.NewUserMessage(userContent),
	}, temperature)

	resp, err := c.client.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("career suggestion failed: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "Leere Antwort vom Karriere-Modell erhalten.", nil
	}
	return resp.Content, nil
}
