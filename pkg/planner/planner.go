// Package planner implements rule-based Eisenhower task prioritization and
// a simple day-schedule builder. The heuristics are keyword matching over
// German and Persian task names plus duration extraction; no model call is
// involved.
package planner

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Importance and urgency levels.
const (
	High = "high"
	Low  = "low"
)

// Eisenhower categories.
const (
	CategoryDoNow    = "do_now"
	CategorySchedule = "schedule"
	CategoryDelegate = "delegate"
	CategoryDelete   = "delete"
	CategoryLater    = "later"
)

// Task is one classified task. Minutes is nil when no duration could be
// extracted from the name.
type Task struct {
	Name       string `json:"name"`
	Importance string `json:"importance"`
	Urgency    string `json:"urgency"`
	Minutes    *int   `json:"minutes"`
}

// ScheduleEntry is one slot of the generated day plan.
type ScheduleEntry struct {
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Category string `json:"category"`
}

// Prioritized groups tasks into the four Eisenhower quadrants plus the
// derived day schedule.
type Prioritized struct {
	DoNow       []Task          `json:"do_now"`
	Schedule    []Task          `json:"schedule"`
	Delegate    []Task          `json:"delegate"`
	Delete      []Task          `json:"delete"`
	DaySchedule []ScheduleEntry `json:"day_schedule"`
}

var examKeywordsDE = []string{
	"prüfung", "prüfungsvorbereitung", "klausur", "ihk", "abschluss",
	"ga2", "ga 2", "wiso", "wirtschaft", "wi.so", "sozialkunde",
	"projekt", "projektarbeit", "abschlussprojekt", "exam", "test",
}

var examKeywordsFA = []string{
	"امتحان", "آزمون", "پروژه", "آزمون نهایی", "فاینال",
	"ویزو", "کنترل", "درس", "آموزش",
}

var urgencyKeywordsDE = []string{"heute", "jetzt", "sofort", "today", "morgen", "bis morgen", "diese woche"}

var urgencyKeywordsFA = []string{"امروز", "الان", "فوری", "فردا", "این هفته"}

var deadlineKeywords = []string{"heute", "jetzt", "sofort", "today", "prüfung", "abgabe", "deadline", "امروز", "الان", "فوری"}

var importantTopicKeywords = []string{
	"lernen", "ga2", "ga 2", "wiso", "wirtschaft", "wi.so", "sozialkunde",
	"karriere", "portfolio", "bewerbung",
	"ویزو", "آزمون", "امتحان", "کنترل", "درس", "آموزش",
}

var deferKeywords = []string{"morgen", "später", "irgendwann", "فردا", "بعدا", "هر وقت"}

var someTimeKeywords = []string{"später", "irgendwann", "wenn ich zeit habe", "بعداً", "هر وقت وقت داشتم"}

var (
	minutesPattern    = regexp.MustCompile(`(\d+)\s*(min|minute|minuten|دقیقه)`)
	hoursPattern      = regexp.MustCompile(`(\d+)\s*h`)
	hoursExtraPattern = regexp.MustCompile(`\d+\s*h\s*(\d+)`)
	laterPattern      = regexp.MustCompile(`(?i)\bspäter\b|\blater\b`)
)

func hasAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ExtractMinutes parses a duration from a task name. It understands
// "30 min", "30 Minuten", Persian دقیقه, "1h", and "1h30".
func ExtractMinutes(text string) (int, bool) {
	t := strings.ToLower(text)
	if m := minutesPattern.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	if h := hoursPattern.FindStringSubmatch(t); h != nil {
		hours, err := strconv.Atoi(h[1])
		if err != nil {
			return 0, false
		}
		extra := 0
		if m2 := hoursExtraPattern.FindStringSubmatch(t); m2 != nil {
			extra, _ = strconv.Atoi(m2[1])
		}
		return hours*60 + extra, true
	}
	return 0, false
}

// Classify derives importance and urgency for a task name.
func Classify(name string) (importance, urgency string) {
	minutes, hasMinutes := ExtractMinutes(name)
	t := strings.ToLower(name)

	important := false
	hasExamKeyword := hasAny(t, examKeywordsDE) || hasAny(t, examKeywordsFA)
	if hasExamKeyword {
		important = true
	}
	if hasMinutes && minutes >= 60 {
		important = true
	}

	urgent := false
	if hasAny(t, urgencyKeywordsDE) || hasAny(t, urgencyKeywordsFA) {
		urgent = true
	}
	if hasMinutes && minutes <= 30 {
		urgent = true
	}

	// Rule-based overrides.
	if hasAny(t, deadlineKeywords) {
		urgent = true
	}
	if hasAny(t, importantTopicKeywords) {
		important = true
	}
	if hasAny(t, deferKeywords) && !important {
		urgent = false
	}
	if hasAny(t, []string{"vielleicht", "wenn ich zeit habe"}) {
		important = false
	}
	if hasAny(t, someTimeKeywords) && !hasExamKeyword && (!hasMinutes || minutes < 90) {
		important = false
	}

	importance, urgency = Low, Low
	if important {
		importance = High
	}
	if urgent {
		urgency = High
	}
	return importance, urgency
}

// Prioritize classifies the named tasks into Eisenhower quadrants. Tasks
// longer than 90 minutes are split into 45-minute blocks. With more than
// two do-now tasks, the shortest come first.
func Prioritize(names []string) Prioritized {
	result := Prioritized{
		DoNow:    []Task{},
		Schedule: []Task{},
		Delegate: []Task{},
		Delete:   []Task{},
	}

	for _, name := range names {
		importance, urgency := Classify(name)
		minutes, hasMinutes := ExtractMinutes(name)

		var tasks []Task
		if !hasMinutes || minutes <= 90 {
			var m *int
			if hasMinutes {
				v := minutes
				m = &v
			}
			tasks = []Task{{Name: name, Importance: importance, Urgency: urgency, Minutes: m}}
		} else {
			var chunks []int
			remaining := minutes
			for remaining > 90 {
				chunks = append(chunks, 45)
				remaining -= 45
			}
			chunks = append(chunks, remaining)
			for i, chunk := range chunks {
				v := chunk
				tasks = append(tasks, Task{
					Name:       fmt.Sprintf("%s (Block %d)", name, i+1),
					Importance: importance,
					Urgency:    urgency,
					Minutes:    &v,
				})
			}
		}

		for _, task := range tasks {
			switch {
			case importance == High && urgency == High:
				result.DoNow = append(result.DoNow, task)
			case importance == High:
				result.Schedule = append(result.Schedule, task)
			case urgency == High:
				result.Delegate = append(result.Delegate, task)
			default:
				result.Delete = append(result.Delete, task)
			}
		}
	}

	if len(result.DoNow) > 2 {
		sort.SliceStable(result.DoNow, func(i, j int) bool {
			a, b := result.DoNow[i], result.DoNow[j]
			switch {
			case a.Minutes != nil && b.Minutes != nil:
				return *a.Minutes < *b.Minutes
			case a.Minutes != nil:
				return true
			case b.Minutes != nil:
				return false
			default:
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		})
	}

	result.DaySchedule = BuildDaySchedule(&result)
	return result
}

func safeMinutes(t *Task) int {
	if t.Minutes != nil && *t.Minutes > 0 {
		return *t.Minutes
	}
	if extracted, ok := ExtractMinutes(t.Name); ok && extracted > 0 {
		return extracted
	}
	return 30
}

// BuildDaySchedule lays out do-now and scheduled tasks back to back from
// 09:00, then appends deleted tasks explicitly marked for later.
func BuildDaySchedule(p *Prioritized) []ScheduleEntry {
	cursor := 9 * 60
	entries := []ScheduleEntry{}

	appendTask := func(t *Task, category string) {
		duration := safeMinutes(t)
		end := cursor + duration
		entries = append(entries, ScheduleEntry{
			Name:     t.Name,
			Start:    fmt.Sprintf("%02d:%02d", cursor/60, cursor%60),
			End:      fmt.Sprintf("%02d:%02d", end/60, end%60),
			Category: category,
		})
		cursor = end
	}

	for i := range p.DoNow {
		appendTask(&p.DoNow[i], CategoryDoNow)
	}
	for i := range p.Schedule {
		appendTask(&p.Schedule[i], CategorySchedule)
	}
	for i := range p.Delete {
		if laterPattern.MatchString(p.Delete[i].Name) {
			appendTask(&p.Delete[i], CategoryLater)
		}
	}

	return entries
}
