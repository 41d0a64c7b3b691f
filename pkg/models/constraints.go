package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConstraint indicates a malformed constraint set. Allocation
// rejects the whole call at entry rather than silently ignoring bad input.
var ErrInvalidConstraint = errors.New("invalid constraint")

const minutesPerDay = 24 * 60

// DaySpan is a recurring daily half-open interval expressed in minutes since
// midnight, used for working hours and break windows.
type DaySpan struct {
	StartMinute int `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute   int `json:"end_minute"   validate:"min=1,max=1440"`
}

// Validate enforces start < end within a single day.
func (s DaySpan) Validate() error {
	if s.StartMinute < 0 || s.EndMinute > minutesPerDay || s.StartMinute >= s.EndMinute {
		return fmt.Errorf("%w: day span %d-%d", ErrInvalidConstraint, s.StartMinute, s.EndMinute)
	}

	return nil
}

// On projects the recurring span onto a concrete day.
func (s DaySpan) On(day time.Time) TimeWindow {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	return TimeWindow{
		Start: midnight.Add(time.Duration(s.StartMinute) * time.Minute),
		End:   midnight.Add(time.Duration(s.EndMinute) * time.Minute),
	}
}

// Constraints is the read-only input to one allocation call. The engine never
// mutates it. PlanningStart is injected explicitly so allocation stays pure
// and deterministic.
type Constraints struct {
	WorkingHours  []DaySpan    `json:"working_hours" validate:"required,min=1"`
	Breaks        []DaySpan    `json:"breaks,omitempty"`
	BusyBlocks    []TimeWindow `json:"busy_blocks,omitempty"`
	MinGapMinutes int          `json:"min_gap_minutes" validate:"min=0"`
	PlanningStart time.Time    `json:"planning_start"`
	HorizonDays   int          `json:"horizon_days" validate:"min=1"`
}

// Validate checks every window invariant up front.
func (c Constraints) Validate() error {
	if len(c.WorkingHours) == 0 {
		return fmt.Errorf("%w: no working hours", ErrInvalidConstraint)
	}

	for _, span := range c.WorkingHours {
		if err := span.Validate(); err != nil {
			return fmt.Errorf("working hours: %w", err)
		}
	}

	for _, span := range c.Breaks {
		if err := span.Validate(); err != nil {
			return fmt.Errorf("breaks: %w", err)
		}
	}

	for _, block := range c.BusyBlocks {
		if err := block.Validate(); err != nil {
			return fmt.Errorf("%w: busy block %s", ErrInvalidConstraint, block)
		}
	}

	if c.MinGapMinutes < 0 {
		return fmt.Errorf("%w: negative min gap", ErrInvalidConstraint)
	}

	if c.HorizonDays < 1 {
		return fmt.Errorf("%w: horizon must cover at least one day", ErrInvalidConstraint)
	}

	if c.PlanningStart.IsZero() {
		return fmt.Errorf("%w: planning start not set", ErrInvalidConstraint)
	}

	return nil
}

// MinGap returns the configured padding around placed tasks.
func (c Constraints) MinGap() time.Duration {
	return time.Duration(c.MinGapMinutes) * time.Minute
}

// HorizonEnd returns the exclusive end of the planning horizon.
func (c Constraints) HorizonEnd() time.Time {
	start := c.PlanningStart
	midnight := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	return midnight.AddDate(0, 0, c.HorizonDays)
}
