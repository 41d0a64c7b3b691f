package models

import "time"

// Schedule is a persisted allocation outcome. Persistence serializes this
// shape verbatim; the engines themselves never touch storage.
type Schedule struct {
	ID        string            `json:"id"      validate:"required"`
	UserID    string            `json:"user_id" validate:"required"`
	Title     string            `json:"title"`
	Tasks     []Task            `json:"tasks"`
	Placement Placement         `json:"placement"`
	Issues    []AllocationIssue `json:"issues,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
