// Package reminders periodically nudges owners about the recommended next
// step of each active goal. It only reads goals.
package reminders

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/insights"
	"github.com/rahul/pathwise/internal/tracker"
)

type Messenger interface {
	Send(ownerID string, text string) error
}

// OwnerSource lists owners that still have incomplete goals.
type OwnerSource interface {
	Owners(ctx context.Context) ([]string, error)
}

type GoalLister interface {
	List(ctx context.Context, sess tracker.Session) ([]goal.Goal, error)
}

type Scheduler struct {
	Owners   OwnerSource
	Goals    GoalLister
	Gateway  Messenger
	Interval time.Duration
	// Reachable filters owners the gateway can message.
	Reachable func(ownerID string) bool
}

func NewScheduler(owners OwnerSource, goals GoalLister, gateway Messenger, interval time.Duration) *Scheduler {
	return &Scheduler{
		Owners:   owners,
		Goals:    goals,
		Gateway:  gateway,
		Interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Printf("Reminder scheduler started, every %v", s.Interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAndSend(ctx)
		}
	}
}

// pollAndSend sends one nudge per active goal and returns how many were
// delivered.
func (s *Scheduler) pollAndSend(ctx context.Context) int {
	owners, err := s.Owners.Owners(ctx)
	if err != nil {
		log.Printf("Error polling owners: %v", err)
		return 0
	}

	sent := 0
	for _, owner := range owners {
		if s.Reachable != nil && !s.Reachable(owner) {
			continue
		}
		goals, err := s.Goals.List(ctx, tracker.Session{OwnerID: owner})
		if err != nil {
			log.Printf("Error listing goals for %s: %v", owner, err)
			continue
		}
		for i := range goals {
			text := Nudge(&goals[i])
			if text == "" {
				continue
			}
			if err := s.Gateway.Send(owner, "⏰ "+text); err != nil {
				log.Printf("Error sending reminder to %s: %v", owner, err)
				continue
			}
			sent++
		}
	}
	return sent
}

// Nudge names the recommended next step of g, or returns "" when nothing is
// left to do.
func Nudge(g *goal.Goal) string {
	if g.Completed {
		return ""
	}
	next := insights.NextStep(g)
	if next == nil {
		return ""
	}
	return fmt.Sprintf("Next up for \"%s\": %s (%s). Time remaining: %s.",
		g.Title, next.Title, next.Duration, insights.FormatRemaining(insights.RemainingMinutes(g)))
}
