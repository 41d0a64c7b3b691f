package models

import (
	"maps"
	"slices"
)

// Placement maps task identifiers to their assigned time windows.
type Placement map[string]TimeWindow

// Clone returns an independent copy.
func (p Placement) Clone() Placement {
	out := make(Placement, len(p))
	maps.Copy(out, p)

	return out
}

// TaskIDs returns the placed task identifiers in sorted order.
func (p Placement) TaskIDs() []string {
	ids := slices.Collect(maps.Keys(p))
	slices.Sort(ids)

	return ids
}

// IssueReason classifies why a task could not be placed.
type IssueReason string

const (
	// IssueNoFittingSlot means no free interval of sufficient length exists
	// within the task's allowed span.
	IssueNoFittingSlot IssueReason = "no_fitting_slot"
)

// AllocationIssue records a per-task, non-fatal allocation failure. Issues
// never abort the allocation call; partial success is reported.
type AllocationIssue struct {
	TaskID         string      `json:"task_id"`
	Reason         IssueReason `json:"reason"`
	ConsideredSpan TimeWindow  `json:"considered_span"`
}

// AllocationResult is the outcome of one allocation call: the placement, the
// per-task issues, and the task list with statuses updated.
type AllocationResult struct {
	Placement Placement         `json:"placement"`
	Issues    []AllocationIssue `json:"issues,omitempty"`
	Tasks     []Task            `json:"tasks"`
}

// ConflictPair identifies two placements whose windows overlap.
type ConflictPair struct {
	TaskA   string     `json:"task_a"`
	TaskB   string     `json:"task_b"`
	Overlap TimeWindow `json:"overlap"`
}

// PlacementDiff summarizes the outcome of a rescheduling run for the caller
// to present to the user.
type PlacementDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Moved   []string `json:"moved,omitempty"`
}

// Empty reports whether the diff carries no changes.
func (d PlacementDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Moved) == 0
}

// RescheduleResult pairs the new placement with the diff against the old one.
type RescheduleResult struct {
	AllocationResult

	Diff PlacementDiff `json:"diff"`
}
