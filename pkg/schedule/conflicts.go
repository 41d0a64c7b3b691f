package schedule

import (
	"slices"
	"strings"

	"github.com/plandyhq/plandy/pkg/models"
)

// FindConflicts returns every pair of placements whose windows overlap.
// Placements produced by Allocate never conflict; non-empty output means an
// externally supplied or imported placement violated the invariant.
//
// Runs as an interval sweep: sort by start, keep the still-active set, evict
// intervals that ended before the current start. O(n log n) plus output.
func FindConflicts(placement models.Placement) []models.ConflictPair {
	type entry struct {
		id     string
		window models.TimeWindow
	}

	entries := make([]entry, 0, len(placement))
	for id, window := range placement {
		entries = append(entries, entry{id: id, window: window})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if c := a.window.Start.Compare(b.window.Start); c != 0 {
			return c
		}

		return strings.Compare(a.id, b.id)
	})

	var (
		active []entry
		pairs  []models.ConflictPair
	)

	for _, current := range entries {
		live := active[:0]

		for _, candidate := range active {
			if candidate.window.End.After(current.window.Start) {
				live = append(live, candidate)
			}
		}

		active = live

		for _, candidate := range active {
			overlap, ok := candidate.window.Intersect(current.window)
			if !ok {
				continue
			}

			pairs = append(pairs, models.ConflictPair{
				TaskA:   candidate.id,
				TaskB:   current.id,
				Overlap: overlap,
			})
		}

		active = append(active, current)
	}

	return pairs
}
