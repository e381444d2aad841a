package gateway

import (
	"context"

	"github.com/rahul/pathwise/internal/goal"
	"github.com/rahul/pathwise/internal/insights"
	"github.com/rahul/pathwise/internal/tracker"
)

// Gateway is a front end that serves tracker operations.
type Gateway interface {
	// Start blocks serving requests until Stop is called or it fails
	Start() error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Messenger is a gateway able to push messages to an owner.
type Messenger interface {
	Gateway
	// Send sends a message to a specific owner
	Send(ownerID string, text string) error
}

// Tracker is the set of operations a gateway exposes.
type Tracker interface {
	Create(ctx context.Context, sess tracker.Session, title, description string) (*goal.Goal, error)
	Get(ctx context.Context, sess tracker.Session, id string) (*goal.Goal, error)
	List(ctx context.Context, sess tracker.Session) ([]goal.Goal, error)
	ToggleStep(ctx context.Context, sess tracker.Session, goalID, stepID string) (*goal.Goal, bool, error)
	Edit(ctx context.Context, sess tracker.Session, id, title, description string) (*goal.Goal, error)
	Delete(ctx context.Context, sess tracker.Session, id string) error
	Stats(ctx context.Context, sess tracker.Session) (insights.Stats, error)
	Insights(ctx context.Context, sess tracker.Session, id string) (insights.Insights, error)
}
