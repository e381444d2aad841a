// Package tracker exposes the goal operations to the gateways. Every call
// takes an explicit Session; ownership is enforced by scoping each store
// lookup to the session owner.
package tracker

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/governance"
	"github.com/rahul/pathwise/internal/insights"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/rahul/pathwise/internal/planner"
)

// ErrUnauthenticated is returned for calls without an owner.
var ErrUnauthenticated = errors.New("authentication required")

// Session identifies the owner a call acts for.
type Session struct {
	OwnerID string
}

// Store is the persistence the tracker needs.
type Store interface {
	Create(ctx context.Context, g *goal.Goal) error
	Get(ctx context.Context, ownerID, id string) (*goal.Goal, error)
	List(ctx context.Context, ownerID string) ([]goal.Goal, error)
	Update(ctx context.Context, ownerID, id string, fn func(*goal.Goal) error) (*goal.Goal, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Planner produces the plan for a new goal. It must not fail.
type Planner interface {
	Generate(ctx context.Context, goalText string) ([]goal.StepDraft, planner.Source)
}

type Tracker struct {
	Store   Store
	Planner Planner
	Policy  governance.PolicyEngine
	Logger  *observability.Logger
	Now     func() time.Time
	NewID   func() string

	sanitizer *bluemonday.Policy
}

func New(store Store, p Planner, policy governance.PolicyEngine, logger *observability.Logger, newID func() string) *Tracker {
	return &Tracker{
		Store:     store,
		Planner:   p,
		Policy:    policy,
		Logger:    logger,
		Now:       time.Now,
		NewID:     newID,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// clean strips markup from user text and trims it.
func (t *Tracker) clean(s string) string {
	if t.sanitizer != nil {
		s = html.UnescapeString(t.sanitizer.Sanitize(s))
	}
	return strings.TrimSpace(s)
}

func (s Session) check() error {
	if s.OwnerID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// Create plans and stores a new goal. Plan generation never fails; the only
// errors are invalid input, policy refusal and storage failures.
func (t *Tracker) Create(ctx context.Context, sess Session, title, description string) (*goal.Goal, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	title = t.clean(title)
	description = t.clean(description)
	if title == "" {
		return nil, &goal.ValidationError{Field: "title", Message: "Task title is required"}
	}

	if t.Policy != nil {
		res, err := t.Policy.Evaluate(ctx, governance.Request{
			Action:  governance.ActionCreateGoal,
			OwnerID: sess.OwnerID,
			Text:    title,
		})
		if err != nil {
			return nil, err
		}
		if res.Effect != governance.EffectAllow {
			t.Logger.LogPolicy(sess.OwnerID, string(governance.ActionCreateGoal), string(res.Effect), res.Reason)
			return nil, &goal.ValidationError{Field: "title", Message: res.Reason}
		}
	}

	drafts, source := t.Planner.Generate(ctx, title)
	g, err := goal.New(sess.OwnerID, title, description, drafts, t.NewID, t.Now())
	if err != nil {
		return nil, err
	}
	if err := t.Store.Create(ctx, g); err != nil {
		return nil, err
	}

	observability.Incr(observability.CounterGoalsCreated)
	log.Printf("Created goal %s for %s with %d %s steps", g.ID, sess.OwnerID, len(g.Steps), source)
	return g, nil
}

func (t *Tracker) Get(ctx context.Context, sess Session, id string) (*goal.Goal, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	return t.Store.Get(ctx, sess.OwnerID, id)
}

// List returns the owner's goals, newest first.
func (t *Tracker) List(ctx context.Context, sess Session) ([]goal.Goal, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	goals, err := t.Store.List(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []goal.Goal{}
	}
	return goals, nil
}

// ToggleStep flips one step and returns the saved goal with the step's new
// state.
func (t *Tracker) ToggleStep(ctx context.Context, sess Session, goalID, stepID string) (*goal.Goal, bool, error) {
	if err := sess.check(); err != nil {
		return nil, false, err
	}

	var done, wasComplete bool
	g, err := t.Store.Update(ctx, sess.OwnerID, goalID, func(g *goal.Goal) error {
		wasComplete = g.Completed
		var err error
		done, err = goal.ToggleStep(g, stepID, t.Now())
		return err
	})
	if err != nil {
		return nil, false, err
	}

	observability.Incr(observability.CounterStepToggles)
	t.Logger.LogStep(sess.OwnerID, g.ID, stepID, done)
	if g.Completed && !wasComplete {
		observability.Incr(observability.CounterGoalsDone)
		t.Logger.LogGoalCompleted(sess.OwnerID, g.ID, len(g.Steps))
	}
	return g, done, nil
}

// Edit changes title and description only.
func (t *Tracker) Edit(ctx context.Context, sess Session, id, title, description string) (*goal.Goal, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	title = t.clean(title)
	description = t.clean(description)
	if title == "" {
		return nil, &goal.ValidationError{Field: "title", Message: "Task title is required"}
	}
	return t.Store.Update(ctx, sess.OwnerID, id, func(g *goal.Goal) error {
		return goal.Edit(g, title, description, t.Now())
	})
}

func (t *Tracker) Delete(ctx context.Context, sess Session, id string) error {
	if err := sess.check(); err != nil {
		return err
	}
	if err := t.Store.Delete(ctx, sess.OwnerID, id); err != nil {
		return err
	}
	log.Printf("Deleted goal %s for %s", id, sess.OwnerID)
	return nil
}

// Stats aggregates over every goal of the owner at call time.
func (t *Tracker) Stats(ctx context.Context, sess Session) (insights.Stats, error) {
	goals, err := t.List(ctx, sess)
	if err != nil {
		return insights.Stats{}, err
	}
	return insights.Summarize(goals), nil
}

func (t *Tracker) Insights(ctx context.Context, sess Session, id string) (insights.Insights, error) {
	g, err := t.Get(ctx, sess, id)
	if err != nil {
		return insights.Insights{}, err
	}
	return insights.For(g), nil
}
