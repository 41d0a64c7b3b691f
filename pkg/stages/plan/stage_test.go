package plan_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/stages/plan"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestPlanStage_PlacesTasks(t *testing.T) {
	t.Parallel()

	stage := plan.New(slog.Default(), config.Default())

	state := &models.WorkflowState{
		RunID: "run-test",
		Request: models.ScheduleRequest{
			UserID: "u1",
			Tasks: []models.Task{
				{ID: "t1", Title: "one", DurationMinutes: 60, Priority: 8},
				{ID: "t2", Title: "two", DurationMinutes: 30, Priority: 3},
			},
			Constraints: models.Constraints{
				WorkingHours:  []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 18 * 60}},
				PlanningStart: monday,
				HorizonDays:   7,
			},
		},
	}

	update, decision, err := stage.Invoke(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, models.StageWorkLifeBalance, decision.Next)

	report := update.PlanReport
	require.NotNil(t, report)
	assert.Len(t, report.Placement, 2)
	assert.Empty(t, report.Issues)
	assert.Positive(t, report.EfficiencyScore)

	// Higher priority goes first.
	assert.Equal(t, monday, report.Placement["t1"].Start)
}

func TestPlanStage_FillsMissingConstraintDefaults(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return monday }
	stage := plan.New(slog.Default(), config.Default()).WithClock(clock)

	// Constraints left entirely empty: working hours, horizon, and planning
	// start all come from the stage defaults.
	state := &models.WorkflowState{
		RunID: "run-test",
		Request: models.ScheduleRequest{
			UserID: "u1",
			Tasks:  []models.Task{{ID: "t1", Title: "one", DurationMinutes: 60, Priority: 5}},
		},
	}

	update, _, err := stage.Invoke(context.Background(), state)
	require.NoError(t, err)

	require.Contains(t, update.PlanReport.Placement, "t1")
	assert.Equal(t, monday, update.PlanReport.Placement["t1"].Start)
}

func TestPlanStage_AllocationFailureIsFatal(t *testing.T) {
	t.Parallel()

	stage := plan.New(slog.Default(), config.Default())

	state := &models.WorkflowState{
		RunID: "run-test",
		Request: models.ScheduleRequest{
			UserID: "u1",
			Constraints: models.Constraints{
				WorkingHours:  []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 18 * 60}},
				PlanningStart: monday,
				HorizonDays:   -1,
			},
		},
	}

	_, _, err := stage.Invoke(context.Background(), state)
	require.ErrorIs(t, err, models.ErrInvalidConstraint)
}

func TestPlanStage_UnplaceableTaskIsAnIssueNotAnError(t *testing.T) {
	t.Parallel()

	stage := plan.New(slog.Default(), config.Default())

	state := &models.WorkflowState{
		RunID: "run-test",
		Request: models.ScheduleRequest{
			UserID: "u1",
			Tasks: []models.Task{
				{ID: "huge", Title: "huge", DurationMinutes: 600, Priority: 5},
			},
			Constraints: models.Constraints{
				WorkingHours:  []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 18 * 60}},
				PlanningStart: monday,
				HorizonDays:   1,
			},
		},
	}

	update, _, err := stage.Invoke(context.Background(), state)
	require.NoError(t, err)

	require.Len(t, update.PlanReport.Issues, 1)
	assert.Equal(t, "huge", update.PlanReport.Issues[0].TaskID)
}
