// coach is the interactive terminal front end. It runs the same gateway as
// the server in-process: problem analysis, history, weakness report, day
// planning, and career coaching from one menu.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"fiaecoach/pkg/analysis"
	"fiaecoach/pkg/career"
	"fiaecoach/pkg/coach"
	"fiaecoach/pkg/config"
	"fiaecoach/pkg/llm"
	llmmetrics "fiaecoach/pkg/llm/middleware/metrics"
	"fiaecoach/pkg/llm/provider"
	"fiaecoach/pkg/metrics"
	"fiaecoach/pkg/persistence"
	"fiaecoach/pkg/planner"
	"fiaecoach/pkg/tokens"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "coach: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	gateway  *coach.Gateway
	store    *persistence.DB
	analyzer *analysis.Analyzer
	career   *career.Coach
	usage    *metrics.QueryService
	cfg      config.Config
	in       *bufio.Reader
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if err := ensureAPIKey(&cfg); err != nil {
		return err
	}

	base, err := provider.NewBase(&cfg)
	if err != nil {
		return err
	}
	counter, _ := tokens.NewCounter()
	client, _ := provider.NewResilient(base, &cfg, llmmetrics.Nop(), nil)

	store, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gateway := coach.New(coach.Options{
		Client:         client,
		CacheEntries:   cfg.Cache.MaxEntries,
		CacheTTL:       cfg.Cache.TTL.Std(),
		SweepInterval:  cfg.Cache.SweepInterval.Std(),
		MaxInputTokens: cfg.Limits.MaxInputTokens,
		Sink:           store,
		Counter:        counter,
	})
	defer gateway.Close()

	a := &app{
		gateway:  gateway,
		store:    store,
		analyzer: analysis.New(client, store),
		career:   career.New(client),
		cfg:      cfg,
		in:       bufio.NewReader(os.Stdin),
	}
	if cfg.Metrics.PrometheusURL != "" {
		if usage, err := metrics.NewQueryService(cfg.Metrics.PrometheusURL); err == nil {
			a.usage = usage
		}
	}

	return a.menu()
}

// ensureAPIKey prompts for the provider credential when the environment
// does not supply it. The input stays hidden.
func ensureAPIKey(cfg *config.Config) error {
	providerName, err := config.GetModelProvider(&cfg.Provider)
	if err != nil {
		return err
	}
	if providerName == config.ProviderOllama || config.HasAPIKey(providerName) {
		return nil
	}

	fmt.Printf("API key for provider %s (input hidden): ", providerName)
	key, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	if len(key) == 0 {
		return fmt.Errorf("no API key provided")
	}

	var envVar string
	switch providerName {
	case config.ProviderGoogle, config.ProviderOpenAICompat:
		envVar = config.EnvGoogleAPIKey
	case config.ProviderOpenAI:
		envVar = config.EnvOpenAIAPIKey
	case config.ProviderAnthropic:
		envVar = config.EnvAnthropicAPIKey
	}
	return os.Setenv(envVar, string(key))
}

func (a *app) menu() error {
	fmt.Println("FIAE Coach")
	fmt.Println("Terminal-Modus aktiv.")
	fmt.Println()

	for {
		fmt.Println("===== Hauptmenü =====")
		fmt.Println("1) FIAE / Algorithmus-Hilfe")
		fmt.Println("2) Tagesplanung / Priorisierung")
		fmt.Println("3) Karriere- & Lernpfad-Beratung")
		fmt.Println("4) Verlauf: Letzte FIAE-Anfragen")
		fmt.Println("5) Analyse: FIAE-Schwächen & Übungsplan")
		if a.usage != nil {
			fmt.Println("6) Nutzungsstatistik")
		}
		fmt.Println("0) Beenden")

		choice := a.prompt("Auswahl: ")
		switch choice {
		case "0":
			fmt.Println("Beende Coach. Auf Wiedersehen.")
			return nil
		case "1":
			a.handleAnalyze()
		case "2":
			a.handlePlanner()
		case "3":
			a.handleCareer()
		case "4":
			a.handleHistory()
		case "5":
			a.handleWeaknesses()
		case "6":
			if a.usage != nil {
				a.handleUsage()
				continue
			}
			fallthrough
		default:
			fmt.Println("Ungültige Auswahl. Bitte nochmal.")
			fmt.Println()
		}
	}
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (a *app) handleAnalyze() {
	fmt.Println()
	fmt.Println("[ FIAE / Algorithmus-Hilfe ]")
	fmt.Println("Beschreibe deine Aufgabe oder das Problem.")
	fmt.Println("Gib 'q' ein, um zurück zum Hauptmenü zu gehen.")
	fmt.Println()

	problem := a.prompt("Problem: ")
	if problem == "" || strings.EqualFold(problem, "q") {
		return
	}

	result := a.gateway.Analyze(context.Background(), problem, a.cfg.DefaultLanguage, coach.ModeAlgorithms, llm.TemperatureDeterministic)
	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Println("Antwort konnte nicht dargestellt werden.")
		return
	}

	fmt.Println()
	fmt.Println("--- Antwort vom FIAE-Modul ---")
	fmt.Println(string(encoded))
	fmt.Println("------------------------------")
	fmt.Println()
}

func (a *app) handleHistory() {
	fmt.Println()
	fmt.Println("[ Verlauf FIAE / Letzte Anfragen ]")

	logs, err := a.store.Recent(context.Background(), 10)
	if err != nil {
		fmt.Printf("Verlauf konnte nicht geladen werden: %v\n\n", err)
		return
	}
	if len(logs) == 0 {
		fmt.Println("Noch keine gespeicherten Einträge.")
		fmt.Println()
		return
	}

	for i, it := range logs {
		fmt.Printf("\n#%d --- %s\n", i+1, it.CreatedAt)
		fmt.Printf("Problem: %s\n", it.Problem)
		fmt.Println("Antwort (gekürzt):")
		answerText := it.Answer
		if len(answerText) > 400 {
			answerText = answerText[:400] + "\n... [gekürzt]"
		}
		fmt.Println(answerText)
	}
	fmt.Println()
}

func (a *app) handleWeaknesses() {
	fmt.Println()
	fmt.Println("[ Analyse: FIAE-Schwächen & Übungsplan ]")
	fmt.Println("Analysiere die letzten FIAE-Anfragen und erstelle einen Übungsplan...")
	fmt.Println()

	report, err := a.analyzer.WeaknessReport(context.Background())
	if err != nil {
		fmt.Printf("Fehler bei der Schwächen-Analyse: %v\n\n", err)
		return
	}
	fmt.Println("--- Analyse & Trainingsplan ---")
	fmt.Println(report)
	fmt.Println("-------------------------------")
	fmt.Println()
}

func (a *app) handlePlanner() {
	fmt.Println()
	fmt.Println("[ Tagesplanung / Eisenhower-Priorisierung ]")
	fmt.Println("Gib deine Tasks ein, getrennt mit Komma (z.B. 'lernen 30 min, einkaufen, WISO 1h').")
	fmt.Println("Gib nichts ein und drücke Enter, um abzubrechen.")
	fmt.Println()

	raw := a.prompt("Tasks: ")
	if raw == "" {
		return
	}

	var names []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		fmt.Println("Keine gültigen Tasks erkannt.")
		fmt.Println()
		return
	}

	prioritized := planner.Prioritize(names)

	fmt.Println()
	fmt.Println("--- Ergebnis nach Eisenhower-Matrix ---")
	printGroup("A) SOFORT ERLEDIGEN (wichtig + dringend)", prioritized.DoNow)
	printGroup("B) EINPLANEN (wichtig + nicht dringend)", prioritized.Schedule)
	printGroup("C) DELEGIEREN / VEREINFACHEN (nicht wichtig + dringend)", prioritized.Delegate)
	printGroup("D) STREICHEN / IGNORIEREN (nicht wichtig + nicht dringend)", prioritized.Delete)

	if len(prioritized.DaySchedule) > 0 {
		fmt.Println("\nTagesplan ab 09:00:")
		for _, entry := range prioritized.DaySchedule {
			fmt.Printf("  %s-%s  %s [%s]\n", entry.Start, entry.End, entry.Name, entry.Category)
		}
	}
	fmt.Println("---------------------------------------")
	fmt.Println()
}

func printGroup(title string, group []planner.Task) {
	fmt.Printf("\n%s:\n", title)
	if len(group) == 0 {
		fmt.Println("  (leer)")
		return
	}
	for i, t := range group {
		fmt.Printf("  %d. %s  [wichtig=%s, dringend=%s]\n", i+1, t.Name, t.Importance, t.Urgency)
	}
}

func (a *app) handleCareer() {
	fmt.Println()
	fmt.Println("[ Karriere / Lernpfad ]")
	fmt.Println("Gib deine aktuellen Skills ein, getrennt mit Komma (z.B. 'Windows Server, Netzwerk, Python').")
	fmt.Println("Gib nichts ein und drücke Enter, um abzubrechen.")
	fmt.Println()

	raw := a.prompt("Skills: ")
	if raw == "" {
		return
	}
	goals := a.prompt("Ziele / Situation: ")

	plan, err := a.career.SuggestPath(context.Background(), strings.Split(raw, ","), goals)
	if err != nil {
		fmt.Printf("Fehler im Karriere-Modul: %v\n\n", err)
		return
	}

	fmt.Println()
	fmt.Println("--- Vorschlag Lern-/Karrierepfad ---")
	fmt.Println(plan)
	fmt.Println("------------------------------------")
	fmt.Println()
}

func (a *app) handleUsage() {
	fmt.Println()
	fmt.Println("[ Nutzungsstatistik ]")

	usage, err := a.usage.GetModelUsage(context.Background(), a.gateway.ModelName())
	if err != nil {
		fmt.Printf("Statistik konnte nicht geladen werden: %v\n\n", err)
		return
	}

	fmt.Printf("Modell:            %s\n", usage.Model)
	fmt.Printf("Anfragen:          %d (davon Fehler: %d)\n", usage.Requests, usage.Errors)
	fmt.Printf("Prompt-Tokens:     %d\n", usage.PromptTokens)
	fmt.Printf("Completion-Tokens: %d\n", usage.CompletionTokens)
	fmt.Printf("Cache-Treffer:     %d (Fehlschläge: %d)\n", usage.CacheHits, usage.CacheMisses)
	fmt.Println()
}
