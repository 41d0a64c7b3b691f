package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrScheduleNotFound indicates a schedule was not found by the given identifier.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrScheduleAlreadyExists indicates a schedule with the same identifier already exists.
	ErrScheduleAlreadyExists = errors.New("schedule already exists")

	// ErrFeedbackNotFound indicates no feedback exists for the given user.
	ErrFeedbackNotFound = errors.New("feedback not found")
)

// StoreError wraps storage errors with operation context.
type StoreError struct {
	Op         string // Operation being performed (e.g., "ScheduleByID", "Save")
	ScheduleID string // Schedule ID if applicable
	Err        error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.ScheduleID != "" {
		return fmt.Sprintf("%s operation failed for schedule %s: %v", e.Op, e.ScheduleID, e.Err)
	}

	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
