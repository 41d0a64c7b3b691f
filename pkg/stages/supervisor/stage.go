// Package supervisor implements the central router of the workflow graph.
package supervisor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/plandyhq/plandy/pkg/models"
)

// Stage decides which specialist runs next. It owns no state fields; its
// whole output is the routing decision.
type Stage struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Stage {
	return &Stage{logger: logger.With("stage", models.StageSupervisor)}
}

func (s *Stage) Name() models.StageName {
	return models.StageSupervisor
}

func (s *Stage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	next := s.decide(state)

	s.logger.InfoContext(ctx, "Supervisor dispatch",
		"run_id", state.RunID, "next", next, "step", state.Steps)

	return nil, models.RouteTo(next), nil
}

// decide picks the first specialist whose output is still missing. Health is
// consulted only when the request carries feedback or asks about health; the
// Plan/Data pair is filled before the balance join can pass.
func (s *Stage) decide(state *models.WorkflowState) models.StageName {
	switch {
	case s.wantsHealth(state) && state.HealthReport == nil:
		return models.StageHealth
	case state.PlanReport == nil:
		return models.StagePlan
	case state.Analytics == nil:
		return models.StageData
	case state.BalanceReport == nil:
		return models.StageWorkLifeBalance
	default:
		return models.StageCommunication
	}
}

func (s *Stage) wantsHealth(state *models.WorkflowState) bool {
	if len(state.Request.Feedback) > 0 {
		return true
	}

	intent := strings.ToLower(state.Request.Intent)

	return strings.Contains(intent, "health") || strings.Contains(intent, "stress")
}
