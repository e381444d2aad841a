package gateway

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/rahul/pathwise/internal/governance"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/rahul/pathwise/internal/planner"
	"github.com/rahul/pathwise/internal/store"
	"github.com/rahul/pathwise/internal/tracker"
)

// newTestTracker wires a real tracker over a temporary database. Plans come
// from the fallback since no model is configured.
func newTestTracker(t *testing.T, policy governance.PolicyEngine) *tracker.Tracker {
	t.Helper()
	s, err := store.NewGoalStore(filepath.Join(t.TempDir(), "gateway.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	logger := observability.NewWriterLogger(io.Discard)
	gen := planner.NewGenerator(nil, planner.NewPromptManager(""), logger)
	return tracker.New(s, gen, policy, logger, store.NewID)
}
