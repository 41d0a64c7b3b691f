// Package web provides HTTP request and response types for the scheduling API.
package web

import "github.com/plandyhq/plandy/pkg/models"

// RunRequest is the request body for starting a workflow graph run.
type RunRequest struct {
	UserID      string                  `json:"user_id"     validate:"required"`
	Intent      string                  `json:"intent"`
	Tasks       []models.Task           `json:"tasks"       validate:"dive"`
	Constraints models.Constraints      `json:"constraints"`
	Existing    models.Placement        `json:"existing,omitempty"`
	Feedback    []models.FeedbackRecord `json:"feedback,omitempty"`
}

// RunResponse is the terminal state of a completed run, trimmed to what
// API clients consume.
type RunResponse struct {
	RunID          string                `json:"run_id"`
	Steps          int                   `json:"steps"`
	RoutingHistory []models.StageName    `json:"routing_history"`
	Message        string                `json:"message"`
	PlanReport     *models.PlanReport    `json:"plan_report,omitempty"`
	HealthReport   *models.HealthReport  `json:"health_report,omitempty"`
	Analytics      *models.Analytics     `json:"analytics,omitempty"`
	BalanceReport  *models.BalanceReport `json:"balance_report,omitempty"`
}

// AllocateRequest is the request body for a direct allocation, bypassing
// the graph.
type AllocateRequest struct {
	UserID      string             `json:"user_id"     validate:"required"`
	Title       string             `json:"title"`
	Tasks       []models.Task      `json:"tasks"       validate:"required,min=1,dive"`
	Constraints models.Constraints `json:"constraints"`
	Existing    models.Placement   `json:"existing,omitempty"`
}

// RescheduleRequest names the tasks whose placements must be recomputed.
type RescheduleRequest struct {
	Changed     []string           `json:"changed"`
	Constraints models.Constraints `json:"constraints"`
}

// ConflictsRequest carries an arbitrary placement document, possibly
// imported from an external calendar, to check for overlaps.
type ConflictsRequest struct {
	Placement map[string]any `json:"placement" validate:"required"`
}

// SuggestRequest asks for free windows able to hold a task.
type SuggestRequest struct {
	DurationMinutes int                `json:"duration_minutes" validate:"required,gt=0"`
	Constraints     models.Constraints `json:"constraints"`
	Existing        models.Placement   `json:"existing,omitempty"`
	Limit           int                `json:"limit"            validate:"omitempty,min=1,max=50"`
}

// FeedbackRequest is the request body for submitting user feedback.
type FeedbackRequest struct {
	UserID string  `json:"user_id" validate:"required"`
	Text   string  `json:"text"    validate:"required,min=1"`
	Rating float64 `json:"rating"  validate:"omitempty,min=1,max=5"`
}
