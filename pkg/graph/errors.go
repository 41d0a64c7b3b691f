// Package graph executes the fixed agent topology: dynamic Supervisor
// dispatch, the WorkLifeBalance join, step budgeting, per-stage timeouts,
// and single-writer state merging.
package graph

import (
	"errors"
	"fmt"

	"github.com/plandyhq/plandy/pkg/models"
)

// Structural failures always abort the run and surface verbatim to the
// caller. Per-task allocation issues never arrive here; they ride inside the
// Plan stage's output.
var (
	// ErrStepBudgetExceeded means the routing-loop guard tripped.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")

	// ErrStageTimeout means a stage did not return within its wall-clock
	// limit. The core never retries; retries belong to the collaborator
	// behind the stage.
	ErrStageTimeout = errors.New("stage timeout")

	// ErrContractViolation means a stage wrote outside its owned fields or
	// named an unreachable stage. It indicates a programming defect.
	ErrContractViolation = errors.New("stage contract violation")

	// ErrUnknownStage means the topology routed to a stage the engine has no
	// implementation for.
	ErrUnknownStage = errors.New("unknown stage")
)

// RunError wraps a fatal run failure with the stage it happened in and a
// snapshot of the state for diagnosis, routing history included.
type RunError struct {
	Stage   models.StageName
	History []models.StageName
	State   *models.WorkflowState
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed at stage %q after %v: %v", e.Stage, e.History, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
