package governance

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
	// EffectThrottle means the owner exhausted its request window.
	EffectThrottle Effect = "throttle"
)

// Action names what the owner is trying to do.
type Action string

const (
	ActionRequest    Action = "request"
	ActionCreateGoal Action = "create_goal"
)

// Request contains the context of an owner action to be evaluated.
type Request struct {
	Action  Action
	OwnerID string
	// Text is the goal statement for ActionCreateGoal.
	Text string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates owner actions against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine denies goal statements matching configured patterns
// and applies a fixed-window request limit per owner.
type DefaultPolicyEngine struct {
	DeniedRegex []*regexp.Regexp

	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedRegex: make([]*regexp.Regexp, 0),
		windows:     make(map[string]*window),
		now:         time.Now,
	}
}

// DenyPattern refuses goal statements matching pattern.
func (e *DefaultPolicyEngine) DenyPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

// RateLimit allows at most requests per owner in each window. A zero limit
// disables throttling.
func (e *DefaultPolicyEngine) RateLimit(requests int, per time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.limit = requests
	e.window = per
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	switch req.Action {
	case ActionCreateGoal:
		for _, re := range e.DeniedRegex {
			if re.MatchString(req.Text) {
				return Result{
					Effect: EffectDeny,
					Reason: fmt.Sprintf("Goal matches restricted pattern: %s", re.String()),
				}, nil
			}
		}
	case ActionRequest:
		if !e.take(req.OwnerID) {
			return Result{
				Effect: EffectThrottle,
				Reason: "Too many requests, please try again later",
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}

func (e *DefaultPolicyEngine) take(owner string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.limit <= 0 || e.window <= 0 {
		return true
	}

	now := e.now()
	w, ok := e.windows[owner]
	if !ok || now.Sub(w.start) >= e.window {
		e.windows[owner] = &window{start: now, count: 1}
		return true
	}
	if w.count >= e.limit {
		return false
	}
	w.count++
	return true
}
