package goal

import (
	"strings"
	"time"
)

// Priority ranks how urgent a step is.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities so that High sorts before Medium before Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// StepDraft is a step as produced by the planner, before it is stored.
type StepDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Priority    Priority `json:"priority"`
	Order       int      `json:"order"`
}

// Step is one actionable item within a Goal's plan.
type Step struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Priority    Priority   `json:"priority"`
	Order       int        `json:"order"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Goal is a user's learning objective with its generated plan.
type Goal struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	OwnerID     string     `json:"userId"`
	Steps       []Step     `json:"subtasks"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	AIGenerated bool       `json:"aiGenerated"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// New builds an incomplete goal owning one pending step per draft. The caller
// assigns identifiers through newID.
func New(ownerID, title, description string, drafts []StepDraft, newID func() string, now time.Time) (*Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "Task title is required"}
	}

	g := &Goal{
		ID:          newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		Steps:       make([]Step, 0, len(drafts)),
		AIGenerated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, d := range drafts {
		g.Steps = append(g.Steps, Step{
			ID:          newID(),
			Title:       strings.TrimSpace(d.Title),
			Description: strings.TrimSpace(d.Description),
			Duration:    d.Duration,
			Priority:    d.Priority,
			Order:       d.Order,
		})
	}
	Derive(g, now)
	return g, nil
}

// Step returns the step with the given id, or nil.
func (g *Goal) Step(id string) *Step {
	for i := range g.Steps {
		if g.Steps[i].ID == id {
			return &g.Steps[i]
		}
	}
	return nil
}

// CompletedSteps counts the steps marked done.
func (g *Goal) CompletedSteps() int {
	n := 0
	for _, s := range g.Steps {
		if s.Completed {
			n++
		}
	}
	return n
}
