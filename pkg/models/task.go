package models

import "time"

// TaskStatus represents the scheduling lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusUnscheduled TaskStatus = "unscheduled" // Not yet placed
	TaskStatusScheduled   TaskStatus = "scheduled"   // Placed into a time window
	TaskStatusConflicted  TaskStatus = "conflicted"  // No fitting slot found
	TaskStatusCompleted   TaskStatus = "completed"   // Done, no longer allocated
)

// Task is a unit of work to be placed on the calendar. Status and placement
// are mutated only by the allocation engine; creation and edits belong to the
// caller.
type Task struct {
	ID              string     `json:"id"               validate:"required"`
	Title           string     `json:"title"            validate:"required,min=1"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,gt=0"`
	Priority        int        `json:"priority"         validate:"min=1,max=10"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	EarliestStart   *time.Time `json:"earliest_start,omitempty"`
	Category        string     `json:"category,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Movable         bool       `json:"movable,omitempty"` // May be displaced during rescheduling
	Status          TaskStatus `json:"status"`
}

// Duration returns the task length as a time.Duration.
func (t *Task) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}
