// Package schedule implements the allocation engine: deterministic greedy
// placement of tasks into free time, rescheduling, and conflict detection.
// Everything here is pure computation; it never blocks and never touches
// storage.
package schedule

import (
	"slices"
	"time"

	"github.com/plandyhq/plandy/pkg/models"
)

// freeIntervals expands the recurring working-hours windows across the
// planning horizon and removes breaks, busy blocks, and the occupied windows
// (padded by the minimum gap). The result is sorted by start.
func freeIntervals(c models.Constraints, occupied []models.TimeWindow) []models.TimeWindow {
	start := c.PlanningStart
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var free []models.TimeWindow

	for day := range c.HorizonDays {
		date := midnight.AddDate(0, 0, day)

		for _, span := range c.WorkingHours {
			window := span.On(date)

			// Nothing can be placed before the planning start.
			if window.End.Compare(start) <= 0 {
				continue
			}

			if window.Start.Before(start) {
				window.Start = start
			}

			free = append(free, window)
		}
	}

	for day := range c.HorizonDays {
		date := midnight.AddDate(0, 0, day)

		for _, span := range c.Breaks {
			free = subtractAll(free, span.On(date))
		}
	}

	for _, block := range c.BusyBlocks {
		free = subtractAll(free, block)
	}

	gap := c.MinGap()
	for _, window := range occupied {
		free = subtractAll(free, pad(window, gap))
	}

	slices.SortFunc(free, func(a, b models.TimeWindow) int {
		return a.Start.Compare(b.Start)
	})

	return free
}

// subtractAll removes block from every window, keeping the leftovers in order.
func subtractAll(windows []models.TimeWindow, block models.TimeWindow) []models.TimeWindow {
	out := make([]models.TimeWindow, 0, len(windows))

	for _, window := range windows {
		out = append(out, window.Subtract(block)...)
	}

	return out
}

// pad widens a window by gap on each side so that subtracting it from the
// free set enforces the minimum spacing around a placed task.
func pad(w models.TimeWindow, gap time.Duration) models.TimeWindow {
	if gap == 0 {
		return w
	}

	return models.TimeWindow{Start: w.Start.Add(-gap), End: w.End.Add(gap)}
}

// carve removes a freshly placed (padded) window from the free set in place.
func carve(free []models.TimeWindow, placed models.TimeWindow, gap time.Duration) []models.TimeWindow {
	return subtractAll(free, pad(placed, gap))
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}

	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}

	return b
}
