package planner

import (
	"errors"
	"fmt"
)

// ErrNoProvider is wrapped by UpstreamUnavailableError when no model is
// configured.
var ErrNoProvider = errors.New("no AI provider configured")

// MalformedPlanError reports a provider response that could not be turned
// into steps. Index is -1 when the response as a whole was unusable.
type MalformedPlanError struct {
	Index  int
	Reason string
}

func (e *MalformedPlanError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed plan: %s", e.Reason)
	}
	return fmt.Sprintf("malformed plan: invalid subtask format at index %d: %s", e.Index, e.Reason)
}

// UpstreamUnavailableError wraps a failed or missing provider call.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("plan provider unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}
