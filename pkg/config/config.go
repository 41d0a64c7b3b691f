// Package config holds the process-wide engine settings. The set is read-only
// after initialization and safe for concurrent reads.
package config

import "time"

const (
	DefaultStepBudget          = 20
	DefaultStageTimeout        = 30 * time.Second
	DefaultPlanningHorizonDays = 7
	DefaultMinGapMinutes       = 0
)

// Config carries the recognized engine options.
type Config struct {
	// StepBudget is the maximum number of stage invocations per run; it
	// guards against cyclic routing bugs.
	StepBudget int

	// StageTimeout is the per-stage wall-clock limit.
	StageTimeout time.Duration

	// PlanningHorizonDays bounds how far ahead allocation searches for free
	// slots when a request does not say otherwise.
	PlanningHorizonDays int

	// MinGapMinutes is the default padding enforced around placed tasks.
	MinGapMinutes int
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		StepBudget:          DefaultStepBudget,
		StageTimeout:        DefaultStageTimeout,
		PlanningHorizonDays: DefaultPlanningHorizonDays,
		MinGapMinutes:       DefaultMinGapMinutes,
	}
}
