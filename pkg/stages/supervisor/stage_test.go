package supervisor_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/stages/supervisor"
)

func decide(t *testing.T, state *models.WorkflowState) models.StageName {
	t.Helper()

	update, decision, err := supervisor.New(slog.Default()).Invoke(context.Background(), state)
	require.NoError(t, err)
	assert.Nil(t, update) // The supervisor owns no state fields.

	return decision.Next
}

func TestSupervisor_Routing(t *testing.T) {
	t.Parallel()

	plan := &models.PlanReport{}
	analytics := &models.Analytics{}
	balance := &models.BalanceReport{}
	healthReport := &models.HealthReport{}

	tests := []struct {
		name  string
		state *models.WorkflowState
		want  models.StageName
	}{
		{
			name:  "plan first on a plain request",
			state: &models.WorkflowState{},
			want:  models.StagePlan,
		},
		{
			name: "health first when feedback is present",
			state: &models.WorkflowState{
				Request: models.ScheduleRequest{Feedback: []models.FeedbackRecord{{ID: "f1"}}},
			},
			want: models.StageHealth,
		},
		{
			name: "health first when the intent mentions stress",
			state: &models.WorkflowState{
				Request: models.ScheduleRequest{Intent: "I feel Stressed out"},
			},
			want: models.StageHealth,
		},
		{
			name: "health not revisited once reported",
			state: &models.WorkflowState{
				Request:      models.ScheduleRequest{Intent: "health check"},
				HealthReport: healthReport,
			},
			want: models.StagePlan,
		},
		{
			name:  "data after plan",
			state: &models.WorkflowState{PlanReport: plan},
			want:  models.StageData,
		},
		{
			name:  "balance after plan and data",
			state: &models.WorkflowState{PlanReport: plan, Analytics: analytics},
			want:  models.StageWorkLifeBalance,
		},
		{
			name: "communication when everything is filled",
			state: &models.WorkflowState{
				PlanReport:    plan,
				Analytics:     analytics,
				BalanceReport: balance,
			},
			want: models.StageCommunication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, decide(t, tt.state))
		})
	}
}
