package goal

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError through errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports user-correctable input, naming the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// NotFoundError is returned for ids that do not resolve under the requesting
// owner. Foreign and missing ids are indistinguishable.
type NotFoundError struct {
	Kind string // Task or Subtask
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
