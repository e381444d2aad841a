package goal

import (
	"strings"
	"time"
)

// Derive recomputes the goal's completion from its steps. A goal is complete
// only when it has at least one step and every step is done. An existing
// completion stamp survives recomputation; it is cleared as soon as the goal
// is no longer complete.
func Derive(g *Goal, now time.Time) {
	done := len(g.Steps) > 0
	for _, s := range g.Steps {
		if !s.Completed {
			done = false
			break
		}
	}

	g.Completed = done
	switch {
	case done && g.CompletedAt == nil:
		t := now
		g.CompletedAt = &t
	case !done:
		g.CompletedAt = nil
	}
}

// ToggleStep flips the completion of a step and rederives the goal. It
// returns the step's new state.
func ToggleStep(g *Goal, stepID string, now time.Time) (bool, error) {
	s := g.Step(stepID)
	if s == nil {
		return false, &NotFoundError{Kind: "Subtask", ID: stepID}
	}

	s.Completed = !s.Completed
	if s.Completed {
		t := now
		s.CompletedAt = &t
	} else {
		s.CompletedAt = nil
	}

	Derive(g, now)
	g.UpdatedAt = now
	return s.Completed, nil
}

// Edit replaces the goal's title and description. Steps and completion are
// left alone.
func Edit(g *Goal, title, description string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &ValidationError{Field: "title", Message: "Task title is required"}
	}
	g.Title = title
	g.Description = strings.TrimSpace(description)
	g.UpdatedAt = now
	return nil
}
