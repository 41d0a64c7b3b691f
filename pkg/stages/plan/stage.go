// Package plan invokes the allocation engine and owns the plan_report field.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/schedule"
)

// Default working day applied when a request carries no working hours.
var defaultWorkingHours = []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 18 * 60}}

// Stage bridges the graph to the pure allocation engine.
type Stage struct {
	logger *slog.Logger
	cfg    config.Config
	now    func() time.Time
}

func New(logger *slog.Logger, cfg config.Config) *Stage {
	return &Stage{
		logger: logger.With("stage", models.StagePlan),
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock overrides the time source; allocation itself stays pure, the
// clock only fills a missing planning start.
func (s *Stage) WithClock(now func() time.Time) *Stage {
	s.now = now

	return s
}

func (s *Stage) Name() models.StageName {
	return models.StagePlan
}

func (s *Stage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	constraints := s.withDefaults(state.Request.Constraints)

	result, err := schedule.Allocate(state.Request.Tasks, constraints, state.Request.Existing)
	if err != nil {
		return nil, models.RoutingDecision{}, fmt.Errorf("allocation failed: %w", err)
	}

	report := &models.PlanReport{
		Placement:       result.Placement,
		Issues:          result.Issues,
		Tasks:           result.Tasks,
		EfficiencyScore: schedule.EfficiencyScore(result.Placement, constraints),
	}

	s.logger.InfoContext(ctx, "Plan computed",
		"run_id", state.RunID,
		"placed", len(report.Placement),
		"issues", len(report.Issues),
		"efficiency", report.EfficiencyScore)

	update := &models.StateUpdate{PlanReport: report}

	return update, models.RouteTo(models.StageWorkLifeBalance), nil
}

// withDefaults fills unset constraint fields from the engine configuration
// without touching the caller's value.
func (s *Stage) withDefaults(c models.Constraints) models.Constraints {
	if len(c.WorkingHours) == 0 {
		c.WorkingHours = defaultWorkingHours
	}

	if c.HorizonDays == 0 {
		c.HorizonDays = s.cfg.PlanningHorizonDays
	}

	if c.MinGapMinutes == 0 {
		c.MinGapMinutes = s.cfg.MinGapMinutes
	}

	if c.PlanningStart.IsZero() {
		c.PlanningStart = s.now()
	}

	return c
}
