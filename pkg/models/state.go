package models

import (
	"slices"
	"time"
)

// StageName identifies a node of the workflow graph.
type StageName string

const (
	StageSupervisor      StageName = "supervisor"
	StageHealth          StageName = "health"
	StagePlan            StageName = "plan"
	StageData            StageName = "data"
	StageWorkLifeBalance StageName = "worklife_balance"
	StageCommunication   StageName = "communication"

	// StageTerminal is the single exit of every run.
	StageTerminal StageName = "terminal"
)

// RoutingDecision is a stage's hint about which stage should run next. The
// engine validates it against the fixed topology; an unreachable target is a
// contract violation.
type RoutingDecision struct {
	Next StageName `json:"next"`
}

// Terminate is the routing decision that ends the run.
func Terminate() RoutingDecision {
	return RoutingDecision{Next: StageTerminal}
}

// RouteTo names the next stage.
func RouteTo(next StageName) RoutingDecision {
	return RoutingDecision{Next: next}
}

// ScheduleRequest is the typed inbound request the core consumes. Free-text
// understanding happens outside the core; Intent and Feedback arrive already
// structured.
type ScheduleRequest struct {
	UserID      string           `json:"user_id"    validate:"required"`
	Intent      string           `json:"intent"`
	Tasks       []Task           `json:"tasks"      validate:"dive"`
	Constraints Constraints      `json:"constraints"`
	Existing    Placement        `json:"existing,omitempty"`
	Feedback    []FeedbackRecord `json:"feedback,omitempty"`
}

// HealthReport is the Health stage's output.
type HealthReport struct {
	HealthScore     float64  `json:"health_score"`
	StressLevel     float64  `json:"stress_level"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// PlanReport is the Plan stage's output: the placement produced by the
// allocation engine plus its quality metrics.
type PlanReport struct {
	Placement       Placement         `json:"placement"`
	Issues          []AllocationIssue `json:"issues,omitempty"`
	Tasks           []Task            `json:"tasks"`
	EfficiencyScore float64           `json:"efficiency_score"`
}

// Analytics is the Data stage's output.
type Analytics struct {
	TasksByStatus      map[TaskStatus]int `json:"tasks_by_status"`
	TasksByCategory    map[string]int     `json:"tasks_by_category"`
	AverageRating      float64            `json:"average_rating"`
	FeedbackByCategory map[string]int     `json:"feedback_by_category,omitempty"`
}

// BalanceReport is the WorkLifeBalance stage's output.
type BalanceReport struct {
	BalanceScore     float64  `json:"balance_score"`
	WorkMinutes      int      `json:"work_minutes"`
	LeisureMinutes   int      `json:"leisure_minutes"`
	StressIndicators []string `json:"stress_indicators,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
}

// StateUpdate is the partial update a stage returns. Each stage owns a fixed
// subset of fields; the engine rejects writes outside that subset.
type StateUpdate struct {
	HealthReport  *HealthReport  `json:"health_report,omitempty"`
	PlanReport    *PlanReport    `json:"plan_report,omitempty"`
	Analytics     *Analytics     `json:"analytics,omitempty"`
	BalanceReport *BalanceReport `json:"balance_report,omitempty"`
	Message       *string        `json:"message,omitempty"`
}

// Fields lists the non-nil fields of the update, used for ownership checks.
func (u *StateUpdate) Fields() []string {
	if u == nil {
		return nil
	}

	var fields []string

	if u.HealthReport != nil {
		fields = append(fields, "health_report")
	}

	if u.PlanReport != nil {
		fields = append(fields, "plan_report")
	}

	if u.Analytics != nil {
		fields = append(fields, "analytics")
	}

	if u.BalanceReport != nil {
		fields = append(fields, "balance_report")
	}

	if u.Message != nil {
		fields = append(fields, "message")
	}

	return fields
}

// WorkflowState is the versioned, exclusively-owned state of one run. Stages
// receive a read view and return a StateUpdate; the engine is the single
// writer.
type WorkflowState struct {
	RunID          string           `json:"run_id"`
	Version        int              `json:"version"`
	Request        ScheduleRequest  `json:"request"`
	HealthReport   *HealthReport    `json:"health_report,omitempty"`
	PlanReport     *PlanReport      `json:"plan_report,omitempty"`
	Analytics      *Analytics       `json:"analytics,omitempty"`
	BalanceReport  *BalanceReport   `json:"balance_report,omitempty"`
	Message        string           `json:"message,omitempty"`
	RoutingHistory []StageName      `json:"routing_history"`
	Steps          int              `json:"steps"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Visited reports whether a stage appears in the routing history.
func (s *WorkflowState) Visited(stage StageName) bool {
	return slices.Contains(s.RoutingHistory, stage)
}
