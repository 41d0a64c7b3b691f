// Package health derives health metrics and recommendations from the typed
// feedback records carried on the request.
package health

import (
	"context"
	"log/slog"

	"github.com/plandyhq/plandy/pkg/models"
)

const (
	neutralScore  = 70.0
	neutralStress = 0.3
)

// Stage owns the health_report field.
type Stage struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Stage {
	return &Stage{logger: logger.With("stage", models.StageHealth)}
}

func (s *Stage) Name() models.StageName {
	return models.StageHealth
}

func (s *Stage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	report := buildReport(state.Request.Feedback)

	s.logger.InfoContext(ctx, "Health assessment complete",
		"run_id", state.RunID, "health_score", report.HealthScore, "stress_level", report.StressLevel)

	update := &models.StateUpdate{HealthReport: report}

	return update, models.RouteTo(models.StagePlan), nil
}

func buildReport(feedback []models.FeedbackRecord) *models.HealthReport {
	if len(feedback) == 0 {
		return &models.HealthReport{
			HealthScore: neutralScore,
			StressLevel: neutralStress,
		}
	}

	var total float64
	for _, record := range feedback {
		total += record.Sentiment
	}

	average := total / float64(len(feedback))

	report := &models.HealthReport{
		HealthScore: clamp(neutralScore+30*average, 0, 100),
		StressLevel: clamp((1-average)/2, 0, 1),
	}

	if report.StressLevel > 0.6 {
		report.Recommendations = append(report.Recommendations,
			"schedule recovery time between demanding tasks")
	}

	for _, record := range feedback {
		if record.Category == models.FeedbackCategoryBalance && record.Sentiment < 0 {
			report.Recommendations = append(report.Recommendations,
				"reduce planned work hours this week")

			break
		}
	}

	return report
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
