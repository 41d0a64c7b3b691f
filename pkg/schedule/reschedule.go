package schedule

import (
	"fmt"
	"slices"

	"github.com/plandyhq/plandy/pkg/models"
)

// Reschedule re-runs allocation after a set of tasks changed. Placements the
// change does not touch stay frozen in place and act as busy time. Released
// tasks, meaning the changed ones plus anything marked movable, go back into
// the free pool and are fitted again by the normal ordering. The diff tells
// the caller what moved.
//
// With no changed tasks the current placement is returned untouched, so
// rescheduling is idempotent.
func Reschedule(tasks []models.Task, current models.Placement, changed []string, constraints models.Constraints) (*models.RescheduleResult, error) {
	if err := constraints.Validate(); err != nil {
		return nil, fmt.Errorf("reschedule: %w", err)
	}

	if len(changed) == 0 {
		result := &models.RescheduleResult{}
		result.Placement = current.Clone()
		result.Tasks = make([]models.Task, len(tasks))
		copy(result.Tasks, tasks)

		for i := range result.Tasks {
			if _, ok := result.Placement[result.Tasks[i].ID]; ok {
				result.Tasks[i].Status = models.TaskStatusScheduled
			}
		}

		return result, nil
	}

	released := make(map[string]bool, len(changed))
	for _, id := range changed {
		released[id] = true
	}

	for _, task := range tasks {
		if task.Movable {
			released[task.ID] = true
		}
	}

	frozen := models.Placement{}

	for id, window := range current {
		if !released[id] {
			frozen[id] = window
		}
	}

	allocated, err := Allocate(tasks, constraints, frozen)
	if err != nil {
		return nil, err
	}

	return &models.RescheduleResult{
		AllocationResult: *allocated,
		Diff:             diffPlacements(current, allocated.Placement),
	}, nil
}

func diffPlacements(old, new models.Placement) models.PlacementDiff {
	var diff models.PlacementDiff

	for id, window := range new {
		previous, ok := old[id]

		switch {
		case !ok:
			diff.Added = append(diff.Added, id)
		case !previous.Start.Equal(window.Start) || !previous.End.Equal(window.End):
			diff.Moved = append(diff.Moved, id)
		}
	}

	for id := range old {
		if _, ok := new[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}

	slices.Sort(diff.Added)
	slices.Sort(diff.Removed)
	slices.Sort(diff.Moved)

	return diff
}
