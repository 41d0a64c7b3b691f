// Package models defines the core domain models shared by the graph engine
// and the schedule allocation engine.
package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow indicates a time window whose start is not before its end.
var ErrInvalidWindow = errors.New("invalid time window")

// TimeWindow is a half-open interval [Start, End) in a single
// timezone-normalized representation.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeWindow builds a validated window.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	w := TimeWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}

	return w, nil
}

// Validate enforces the start < end invariant.
func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow, w.Start, w.End)
	}

	return nil
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Intersect returns the overlapping region of two windows. The second return
// value is false when the windows do not overlap.
func (w TimeWindow) Intersect(o TimeWindow) (TimeWindow, bool) {
	if !w.Overlaps(o) {
		return TimeWindow{}, false
	}

	out := w
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}

	if o.End.Before(out.End) {
		out.End = o.End
	}

	return out, true
}

// Contains reports whether t falls inside the half-open interval.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Subtract removes o from w, returning the zero, one or two remaining pieces.
func (w TimeWindow) Subtract(o TimeWindow) []TimeWindow {
	if !w.Overlaps(o) {
		return []TimeWindow{w}
	}

	var out []TimeWindow

	if w.Start.Before(o.Start) {
		out = append(out, TimeWindow{Start: w.Start, End: o.Start})
	}

	if o.End.Before(w.End) {
		out = append(out, TimeWindow{Start: o.End, End: w.End})
	}

	return out
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}
