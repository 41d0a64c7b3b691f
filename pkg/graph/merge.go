package graph

import (
	"fmt"
	"slices"

	"github.com/plandyhq/plandy/pkg/models"
)

// ownedFields maps each stage to the update fields it may write. The
// Supervisor owns nothing; it only routes.
var ownedFields = map[models.StageName][]string{
	models.StageSupervisor:      {},
	models.StageHealth:          {"health_report"},
	models.StagePlan:            {"plan_report"},
	models.StageData:            {"analytics"},
	models.StageWorkLifeBalance: {"balance_report"},
	models.StageCommunication:   {"message"},
}

// checkOwnership rejects updates that touch fields outside the stage's owned
// subset.
func checkOwnership(stage models.StageName, update *models.StateUpdate) error {
	owned, ok := ownedFields[stage]
	if !ok {
		return fmt.Errorf("%w: no ownership defined for stage %q", ErrContractViolation, stage)
	}

	for _, field := range update.Fields() {
		if !slices.Contains(owned, field) {
			return fmt.Errorf("%w: stage %q wrote field %q it does not own",
				ErrContractViolation, stage, field)
		}
	}

	return nil
}

// merge applies the partial update under the single-writer rule:
// last-writer-wins per field, nil fields left untouched.
func merge(state *models.WorkflowState, update *models.StateUpdate) {
	if update == nil {
		return
	}

	if update.HealthReport != nil {
		state.HealthReport = update.HealthReport
	}

	if update.PlanReport != nil {
		state.PlanReport = update.PlanReport
	}

	if update.Analytics != nil {
		state.Analytics = update.Analytics
	}

	if update.BalanceReport != nil {
		state.BalanceReport = update.BalanceReport
	}

	if update.Message != nil {
		state.Message = *update.Message
	}
}
