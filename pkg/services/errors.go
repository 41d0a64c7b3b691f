// Package services provides the application layer between the HTTP surface
// and the engines plus persistence.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors indicating client mistakes (4xx responses).
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrNoTasks          = errors.New("request must carry at least one task")
	ErrScheduleNil      = errors.New("schedule cannot be nil")
	ErrInvalidPlacement = errors.New("invalid placement document")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyUserID) ||
		errors.Is(err, ErrNoTasks) ||
		errors.Is(err, ErrScheduleNil) ||
		errors.Is(err, ErrInvalidPlacement)
}
