// Package data aggregates task and feedback analytics; it owns the analytics
// field.
package data

import (
	"context"
	"log/slog"

	"github.com/plandyhq/plandy/pkg/models"
)

type Stage struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Stage {
	return &Stage{logger: logger.With("stage", models.StageData)}
}

func (s *Stage) Name() models.StageName {
	return models.StageData
}

func (s *Stage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	// Prefer the allocation outcome when the Plan stage already ran; the
	// request's raw task list otherwise.
	tasks := state.Request.Tasks
	if state.PlanReport != nil {
		tasks = state.PlanReport.Tasks
	}

	analytics := &models.Analytics{
		TasksByStatus:   map[models.TaskStatus]int{},
		TasksByCategory: map[string]int{},
	}

	for _, task := range tasks {
		analytics.TasksByStatus[task.Status]++

		if task.Category != "" {
			analytics.TasksByCategory[task.Category]++
		}
	}

	if feedback := state.Request.Feedback; len(feedback) > 0 {
		analytics.FeedbackByCategory = map[string]int{}

		var totalRating float64

		for _, record := range feedback {
			analytics.FeedbackByCategory[string(record.Category)]++
			totalRating += record.Rating
		}

		analytics.AverageRating = totalRating / float64(len(feedback))
	}

	s.logger.InfoContext(ctx, "Analytics aggregated",
		"run_id", state.RunID, "tasks", len(tasks), "feedback", len(state.Request.Feedback))

	update := &models.StateUpdate{Analytics: analytics}

	return update, models.RouteTo(models.StageWorkLifeBalance), nil
}
