package schedule

import (
	"fmt"
	"slices"
	"time"

	"github.com/plandyhq/plandy/pkg/models"
)

// Allocate places tasks into free time under the given constraints. Tasks
// already present in existing keep their windows and act as busy time.
//
// Ordering policy: deadline ascending with missing deadlines last, then
// priority descending, then duration ascending, stable on input order.
// Urgency wins first choice of slots, then importance, then quick wins;
// starving low-priority tasks is the intended trade-off.
//
// Per-task failures never abort the call: an unplaceable task is marked
// conflicted and reported as an AllocationIssue. Only malformed constraints
// fail the whole call.
func Allocate(tasks []models.Task, constraints models.Constraints, existing models.Placement) (*models.AllocationResult, error) {
	if err := constraints.Validate(); err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}

	placement := existing.Clone()
	if placement == nil {
		placement = models.Placement{}
	}

	occupied := make([]models.TimeWindow, 0, len(placement))
	for _, window := range placement {
		occupied = append(occupied, window)
	}

	free := freeIntervals(constraints, occupied)
	gap := constraints.MinGap()
	horizonEnd := constraints.HorizonEnd()

	result := &models.AllocationResult{
		Placement: placement,
		Tasks:     make([]models.Task, len(tasks)),
	}
	copy(result.Tasks, tasks)

	order := sortOrder(result.Tasks)

	for _, idx := range order {
		task := &result.Tasks[idx]

		if task.Status == models.TaskStatusCompleted {
			continue
		}

		if _, ok := placement[task.ID]; ok {
			task.Status = models.TaskStatusScheduled

			continue
		}

		span := allowedSpan(task, constraints.PlanningStart, horizonEnd)

		window, ok := earliestFit(free, span, task.Duration())
		if !ok {
			task.Status = models.TaskStatusConflicted
			result.Issues = append(result.Issues, models.AllocationIssue{
				TaskID:         task.ID,
				Reason:         models.IssueNoFittingSlot,
				ConsideredSpan: span,
			})

			continue
		}

		placement[task.ID] = window
		task.Status = models.TaskStatusScheduled

		// Greedy consumption: placing a task shrinks the free set for
		// every later (lower-ranked) task.
		free = carve(free, window, gap)
	}

	return result, nil
}

// SuggestWindows returns up to n free windows of the requested duration,
// earliest first, without placing anything.
func SuggestWindows(durationMinutes int, constraints models.Constraints, existing models.Placement, n int) ([]models.TimeWindow, error) {
	if err := constraints.Validate(); err != nil {
		return nil, fmt.Errorf("suggest windows: %w", err)
	}

	if durationMinutes <= 0 {
		return nil, fmt.Errorf("suggest windows: %w: duration must be positive", models.ErrInvalidConstraint)
	}

	occupied := make([]models.TimeWindow, 0, len(existing))
	for _, window := range existing {
		occupied = append(occupied, window)
	}

	duration := time.Duration(durationMinutes) * time.Minute

	var out []models.TimeWindow

	for _, interval := range freeIntervals(constraints, occupied) {
		if len(out) == n {
			break
		}

		if interval.Duration() >= duration {
			out = append(out, models.TimeWindow{Start: interval.Start, End: interval.Start.Add(duration)})
		}
	}

	return out, nil
}

// EfficiencyScore is the fraction of working time covered by placements,
// counted over the days that received at least one placement.
func EfficiencyScore(placement models.Placement, constraints models.Constraints) float64 {
	if len(placement) == 0 {
		return 0
	}

	days := map[string]bool{}

	var placedMinutes float64

	for _, window := range placement {
		placedMinutes += window.Duration().Minutes()
		days[window.Start.Format("2006-01-02")] = true
	}

	var workingMinutes float64

	for _, span := range constraints.WorkingHours {
		workingMinutes += float64(span.EndMinute - span.StartMinute)
	}

	workingMinutes *= float64(len(days))
	if workingMinutes == 0 {
		return 0
	}

	score := placedMinutes / workingMinutes
	if score > 1 {
		score = 1
	}

	return score
}

// sortOrder returns task indexes in allocation order without reordering the
// caller's slice, so re-running with identical inputs is deterministic and
// issue reporting preserves input identity.
func sortOrder(tasks []models.Task) []int {
	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		ta, tb := tasks[a], tasks[b]

		if c := compareDeadlines(ta.Deadline, tb.Deadline); c != 0 {
			return c
		}

		if ta.Priority != tb.Priority {
			return tb.Priority - ta.Priority
		}

		return ta.DurationMinutes - tb.DurationMinutes
	})

	return order
}

// compareDeadlines orders earlier deadlines first and missing deadlines last.
func compareDeadlines(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// allowedSpan is the interval a task may occupy: from the later of its
// earliest start and the planning start, to its deadline or the horizon end.
func allowedSpan(task *models.Task, planningStart, horizonEnd time.Time) models.TimeWindow {
	start := planningStart
	if task.EarliestStart != nil {
		start = maxTime(start, *task.EarliestStart)
	}

	end := horizonEnd
	if task.Deadline != nil {
		end = minTime(end, *task.Deadline)
	}

	return models.TimeWindow{Start: start, End: end}
}

// earliestFit scans the sorted free intervals for the first one that can hold
// duration inside span.
func earliestFit(free []models.TimeWindow, span models.TimeWindow, duration time.Duration) (models.TimeWindow, bool) {
	if !span.Start.Before(span.End) {
		return models.TimeWindow{}, false
	}

	for _, interval := range free {
		clipped, ok := interval.Intersect(span)
		if !ok {
			continue
		}

		if clipped.Duration() >= duration {
			return models.TimeWindow{Start: clipped.Start, End: clipped.Start.Add(duration)}, true
		}
	}

	return models.TimeWindow{}, false
}
