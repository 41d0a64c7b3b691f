package worklife_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/stages/worklife"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func windowAt(start time.Time, minutes int) models.TimeWindow {
	return models.TimeWindow{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

func invoke(t *testing.T, state *models.WorkflowState) *models.BalanceReport {
	t.Helper()

	update, decision, err := worklife.New(slog.Default()).Invoke(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, update.BalanceReport)
	assert.Equal(t, models.StageCommunication, decision.Next)

	return update.BalanceReport
}

func TestWorklifeStage_EmptyPlanScoresFull(t *testing.T) {
	t.Parallel()

	report := invoke(t, &models.WorkflowState{})

	assert.InDelta(t, 100, report.BalanceScore, 1e-9)
	assert.Zero(t, report.WorkMinutes)
}

func TestWorklifeStage_HalfLoad(t *testing.T) {
	t.Parallel()

	state := &models.WorkflowState{
		Request: models.ScheduleRequest{
			Constraints: models.Constraints{
				WorkingHours: []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 17 * 60}},
			},
		},
		PlanReport: &models.PlanReport{
			Placement: models.Placement{
				"a": windowAt(monday, 120),
				"b": windowAt(monday.Add(3*time.Hour), 120),
			},
		},
	}

	report := invoke(t, state)

	// 240 of 480 available minutes booked.
	assert.Equal(t, 240, report.WorkMinutes)
	assert.Equal(t, 240, report.LeisureMinutes)
	assert.InDelta(t, 70, report.BalanceScore, 1e-9)
	assert.Empty(t, report.StressIndicators)
}

func TestWorklifeStage_OverloadedDayFlagsStress(t *testing.T) {
	t.Parallel()

	state := &models.WorkflowState{
		Request: models.ScheduleRequest{
			Constraints: models.Constraints{
				WorkingHours: []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 17 * 60}},
			},
		},
		PlanReport: &models.PlanReport{
			Placement: models.Placement{"a": windowAt(monday, 480)},
			Issues:    []models.AllocationIssue{{TaskID: "b", Reason: models.IssueNoFittingSlot}},
		},
		HealthReport: &models.HealthReport{StressLevel: 0.9},
	}

	report := invoke(t, state)

	assert.InDelta(t, 40, report.BalanceScore, 1e-9)
	assert.Contains(t, report.StressIndicators, "working hours nearly fully booked")
	assert.Contains(t, report.StressIndicators, "elevated stress reported in feedback")
	assert.Contains(t, report.Suggestions, "revisit conflicted tasks or widen working hours")
}
