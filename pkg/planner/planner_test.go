package planner

import "testing"

// =============================================================================
// Duration extraction
// =============================================================================

func TestExtractMinutes(t *testing.T) {
	cases := []struct {
		text string
		want int
		ok   bool
	}{
		{"GA2 lernen 30 min", 30, true},
		{"GA2 lernen 30 Minuten", 30, true},
		{"Lesen 45min", 45, true},
		{"مطالعه 45 دقیقه", 45, true},
		{"Wiso Wiederholung 1h", 60, true},
		{"Projektarbeit 2h", 120, true},
		{"Lernen 1h30", 90, true},
		{"Aufräumen", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := ExtractMinutes(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ExtractMinutes(%q) = %d, %v; want %d, %v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

// =============================================================================
// Classification
// =============================================================================

func TestClassify_ExamTodayIsDoNow(t *testing.T) {
	importance, urgency := Classify("GA2 lernen heute 30 min")
	if importance != High || urgency != High {
		t.Errorf("Expected high/high, got %s/%s", importance, urgency)
	}
}

func TestClassify_LongImportantWithoutDeadlineIsSchedule(t *testing.T) {
	importance, urgency := Classify("Wiso Wiederholung 2h")
	if importance != High {
		t.Errorf("Expected high importance, got %s", importance)
	}
	if urgency != Low {
		t.Errorf("Expected low urgency, got %s", urgency)
	}
}

func TestClassify_ShortUnimportantTodayIsDelegate(t *testing.T) {
	importance, urgency := Classify("E-Mails heute beantworten")
	if importance != Low {
		t.Errorf("Expected low importance, got %s", importance)
	}
	if urgency != High {
		t.Errorf("Expected high urgency, got %s", urgency)
	}
}

func TestClassify_SomeTimeTaskIsDelete(t *testing.T) {
	importance, urgency := Classify("Netflix irgendwann")
	if importance != Low || urgency != Low {
		t.Errorf("Expected low/low, got %s/%s", importance, urgency)
	}
}

func TestClassify_DeferredExamStaysImportant(t *testing.T) {
	// Exam topics keep importance even when deferred.
	importance, _ := Classify("Prüfung morgen vorbereiten")
	if importance != High {
		t.Errorf("Expected exam task to stay important, got %s", importance)
	}
}

func TestClassify_PersianExamToday(t *testing.T) {
	importance, urgency := Classify("امتحان امروز")
	if importance != High || urgency != High {
		t.Errorf("Expected high/high for Persian exam today, got %s/%s", importance, urgency)
	}
}

// =============================================================================
// Prioritization
// =============================================================================

func TestPrioritize_QuadrantAssignment(t *testing.T) {
	result := Prioritize([]string{
		"GA2 lernen heute 30 min",
		"Wiso Wiederholung 1h",
		"E-Mails heute beantworten",
		"Netflix irgendwann",
	})

	if len(result.DoNow) != 1 || result.DoNow[0].Name != "GA2 lernen heute 30 min" {
		t.Errorf("Unexpected do_now: %v", result.DoNow)
	}
	if len(result.Schedule) != 1 || result.Schedule[0].Name != "Wiso Wiederholung 1h" {
		t.Errorf("Unexpected schedule: %v", result.Schedule)
	}
	if len(result.Delegate) != 1 || result.Delegate[0].Name != "E-Mails heute beantworten" {
		t.Errorf("Unexpected delegate: %v", result.Delegate)
	}
	if len(result.Delete) != 1 || result.Delete[0].Name != "Netflix irgendwann" {
		t.Errorf("Unexpected delete: %v", result.Delete)
	}
}

func TestPrioritize_LongTaskSplitIntoBlocks(t *testing.T) {
	result := Prioritize([]string{"Projektarbeit 2h"})

	if len(result.Schedule) != 2 {
		t.Fatalf("Expected 2 blocks, got %v", result.Schedule)
	}
	first, second := result.Schedule[0], result.Schedule[1]
	if first.Name != "Projektarbeit 2h (Block 1)" || second.Name != "Projektarbeit 2h (Block 2)" {
		t.Errorf("Unexpected block names: %q, %q", first.Name, second.Name)
	}
	if first.Minutes == nil || *first.Minutes != 45 {
		t.Errorf("Expected first block 45 min, got %v", first.Minutes)
	}
	if second.Minutes == nil || *second.Minutes != 75 {
		t.Errorf("Expected remainder block 75 min, got %v", second.Minutes)
	}
}

func TestPrioritize_TaskAtNinetyMinutesNotSplit(t *testing.T) {
	result := Prioritize([]string{"Lernen 1h30"})
	if len(result.Schedule) != 1 {
		t.Fatalf("Expected single task, got %v", result.Schedule)
	}
	if result.Schedule[0].Minutes == nil || *result.Schedule[0].Minutes != 90 {
		t.Errorf("Expected 90 min, got %v", result.Schedule[0].Minutes)
	}
}

func TestPrioritize_DoNowSortedByDuration(t *testing.T) {
	result := Prioritize([]string{
		"Prüfung heute 40 min",
		"Prüfung heute 10 min",
		"Prüfung heute 25 min",
	})

	if len(result.DoNow) != 3 {
		t.Fatalf("Expected 3 do_now tasks, got %v", result.DoNow)
	}
	got := []int{*result.DoNow[0].Minutes, *result.DoNow[1].Minutes, *result.DoNow[2].Minutes}
	if got[0] != 10 || got[1] != 25 || got[2] != 40 {
		t.Errorf("Expected shortest first, got %v", got)
	}
}

func TestPrioritize_TwoDoNowTasksKeepInputOrder(t *testing.T) {
	result := Prioritize([]string{
		"Prüfung heute 40 min",
		"Prüfung heute 10 min",
	})

	if len(result.DoNow) != 2 {
		t.Fatalf("Expected 2 do_now tasks, got %v", result.DoNow)
	}
	if result.DoNow[0].Name != "Prüfung heute 40 min" {
		t.Errorf("Expected input order preserved, got %v", result.DoNow)
	}
}

// =============================================================================
// Day schedule
// =============================================================================

func TestBuildDaySchedule_StartsAtNine(t *testing.T) {
	result := Prioritize([]string{
		"GA2 lernen heute 30 min",
		"Wiso Wiederholung 1h",
	})

	if len(result.DaySchedule) != 2 {
		t.Fatalf("Expected 2 entries, got %v", result.DaySchedule)
	}
	first, second := result.DaySchedule[0], result.DaySchedule[1]
	if first.Start != "09:00" || first.End != "09:30" || first.Category != CategoryDoNow {
		t.Errorf("Unexpected first slot: %+v", first)
	}
	if second.Start != "09:30" || second.End != "10:30" || second.Category != CategorySchedule {
		t.Errorf("Unexpected second slot: %+v", second)
	}
}

func TestBuildDaySchedule_DefaultsToThirtyMinutes(t *testing.T) {
	result := Prioritize([]string{"Prüfung heute"})

	if len(result.DaySchedule) != 1 {
		t.Fatalf("Expected 1 entry, got %v", result.DaySchedule)
	}
	entry := result.DaySchedule[0]
	if entry.Start != "09:00" || entry.End != "09:30" {
		t.Errorf("Expected default 30-minute slot, got %+v", entry)
	}
}

func TestBuildDaySchedule_DeferredTaskAppendedAsLater(t *testing.T) {
	result := Prioritize([]string{
		"GA2 lernen heute 30 min",
		"später aufräumen",
	})

	if len(result.Delete) != 1 {
		t.Fatalf("Expected deferred task in delete quadrant, got %v", result.Delete)
	}
	if len(result.DaySchedule) != 2 {
		t.Fatalf("Expected 2 entries, got %v", result.DaySchedule)
	}
	last := result.DaySchedule[len(result.DaySchedule)-1]
	if last.Category != CategoryLater {
		t.Errorf("Expected later category, got %+v", last)
	}
	if last.Start != "09:30" || last.End != "10:00" {
		t.Errorf("Expected later slot after do_now, got %+v", last)
	}
}

func TestBuildDaySchedule_PlainDeletedTaskOmitted(t *testing.T) {
	result := Prioritize([]string{"Netflix irgendwann"})
	if len(result.DaySchedule) != 0 {
		t.Errorf("Expected empty schedule, got %v", result.DaySchedule)
	}
}
