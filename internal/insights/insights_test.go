package insights

import (
	"testing"
	"time"

	"github.com/rahul/pathwise/internal/goal"
)

func makeGoal(done, total int) goal.Goal {
	g := goal.Goal{ID: "g", Title: "Goal"}
	for i := 0; i < total; i++ {
		s := goal.Step{
			ID:       string(rune('a' + i)),
			Title:    "Step",
			Duration: "1 hour",
			Priority: goal.PriorityMedium,
			Order:    i + 1,
		}
		if i < done {
			now := time.Now()
			s.Completed = true
			s.CompletedAt = &now
		}
		g.Steps = append(g.Steps, s)
	}
	goal.Derive(&g, time.Now())
	return g
}

func TestSummarize_Scenario(t *testing.T) {
	goals := []goal.Goal{makeGoal(2, 2), makeGoal(3, 3), makeGoal(2, 4)}

	s := Summarize(goals)
	want := Stats{
		TotalTasks:            3,
		CompletedTasks:        2,
		ActiveTasks:           1,
		TotalSubtasks:         9,
		CompletedSubtasks:     7,
		CompletionRate:        67,
		SubtaskCompletionRate: 78,
	}
	if s != want {
		t.Errorf("Summarize() = %+v, want %+v", s, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", s)
	}

	s = Summarize([]goal.Goal{makeGoal(0, 0)})
	if s.TotalTasks != 1 || s.SubtaskCompletionRate != 0 || s.CompletionRate != 0 {
		t.Errorf("unexpected stats for a goal with no steps: %+v", s)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{1, 8, 13}, // 12.5 rounds up
		{2, 3, 67},
		{1, 3, 33},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.part, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	empty := makeGoal(0, 0)
	if got := Progress(&empty); got != 0 {
		t.Errorf("Progress(empty) = %v, want 0", got)
	}
	g := makeGoal(1, 3)
	if got := Progress(&g); got < 33.33 || got > 33.34 {
		t.Errorf("Progress() = %v, want unrounded 33.33..", got)
	}
}

func TestNextStep(t *testing.T) {
	g := goal.Goal{Steps: []goal.Step{
		{ID: "1", Priority: goal.PriorityLow, Order: 1},
		{ID: "2", Priority: goal.PriorityHigh, Order: 4},
		{ID: "3", Priority: goal.PriorityHigh, Order: 2, Completed: true},
		{ID: "4", Priority: goal.PriorityHigh, Order: 3},
		{ID: "5", Priority: goal.PriorityMedium, Order: 0},
	}}

	next := NextStep(&g)
	if next == nil || next.ID != "4" {
		t.Fatalf("expected step 4, got %+v", next)
	}

	for i := range g.Steps {
		g.Steps[i].Completed = true
	}
	if next := NextStep(&g); next != nil {
		t.Errorf("expected no next step, got %+v", next)
	}
}

func TestDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2 hours", 120},
		{"1 Hour", 60},
		{"1.5 hours", 90},
		{"30 minutes", 30},
		{"1 day", 480},
		{"2 days", 960},
		{"a week", 0},
		{"3 weeks", 0},
		{"hours", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := DurationMinutes(tt.in); got != tt.want {
			t.Errorf("DurationMinutes(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRemainingAndFormat(t *testing.T) {
	g := goal.Goal{Steps: []goal.Step{
		{Duration: "1 hour"},
		{Duration: "30 minutes"},
		{Duration: "1 day", Completed: true},
		{Duration: "someday soon"},
	}}
	// "someday soon" contains "day" but has no quantity.
	if got := RemainingMinutes(&g); got != 90 {
		t.Errorf("RemainingMinutes() = %v, want 90", got)
	}

	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "Complete!"},
		{45, "45 minutes"},
		{90, "2 hours"},
		{479, "8 hours"},
		{480, "1 days"},
		{1200, "3 days"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.minutes); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestFor(t *testing.T) {
	g := goal.Goal{Steps: []goal.Step{
		{ID: "1", Priority: goal.PriorityHigh, Order: 1, Duration: "2 hours", Completed: true},
		{ID: "2", Priority: goal.PriorityMedium, Order: 2, Duration: "30 minutes"},
		{ID: "3", Priority: goal.PriorityMedium, Order: 3, Duration: "1 hour"},
		{ID: "4", Priority: goal.PriorityLow, Order: 4, Duration: "15 minutes"},
	}}

	in := For(&g)
	if in.StepsRemaining != 3 {
		t.Errorf("StepsRemaining = %d, want 3", in.StepsRemaining)
	}
	if in.RemainingMinutes != 105 || in.TimeRemaining != "2 hours" {
		t.Errorf("remaining = %v (%q)", in.RemainingMinutes, in.TimeRemaining)
	}
	if in.PriorityBreakdown[goal.PriorityMedium] != 2 || in.PriorityBreakdown[goal.PriorityLow] != 1 {
		t.Errorf("unexpected breakdown %v", in.PriorityBreakdown)
	}
	if _, ok := in.PriorityBreakdown[goal.PriorityHigh]; ok {
		t.Error("completed priorities must not appear in the breakdown")
	}
	if in.NextStep == nil || in.NextStep.ID != "2" {
		t.Errorf("NextStep = %+v, want step 2", in.NextStep)
	}
}
