// Package worklife scores the work/life balance of the computed plan; it owns
// the balance_report field.
package worklife

import (
	"context"
	"log/slog"

	"github.com/plandyhq/plandy/pkg/models"
)

// The balance score falls linearly from 100 (empty calendar) to 40 (every
// working minute booked).
const fullLoadPenalty = 60.0

type Stage struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Stage {
	return &Stage{logger: logger.With("stage", models.StageWorkLifeBalance)}
}

func (s *Stage) Name() models.StageName {
	return models.StageWorkLifeBalance
}

func (s *Stage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	report := buildReport(state)

	s.logger.InfoContext(ctx, "Balance scored",
		"run_id", state.RunID,
		"balance_score", report.BalanceScore,
		"work_minutes", report.WorkMinutes)

	update := &models.StateUpdate{BalanceReport: report}

	return update, models.RouteTo(models.StageCommunication), nil
}

func buildReport(state *models.WorkflowState) *models.BalanceReport {
	report := &models.BalanceReport{BalanceScore: 100}

	plan := state.PlanReport
	if plan == nil || len(plan.Placement) == 0 {
		return report
	}

	days := map[string]bool{}

	for _, window := range plan.Placement {
		report.WorkMinutes += int(window.Duration().Minutes())
		days[window.Start.Format("2006-01-02")] = true
	}

	var dailyMinutes int
	for _, span := range state.Request.Constraints.WorkingHours {
		dailyMinutes += span.EndMinute - span.StartMinute
	}

	available := dailyMinutes * len(days)
	if available <= 0 {
		return report
	}

	if leisure := available - report.WorkMinutes; leisure > 0 {
		report.LeisureMinutes = leisure
	}

	ratio := float64(report.WorkMinutes) / float64(available)
	if ratio > 1 {
		ratio = 1
	}

	report.BalanceScore = 100 - fullLoadPenalty*ratio

	if ratio > 0.8 {
		report.StressIndicators = append(report.StressIndicators, "working hours nearly fully booked")
	}

	if state.HealthReport != nil && state.HealthReport.StressLevel > 0.6 {
		report.StressIndicators = append(report.StressIndicators, "elevated stress reported in feedback")
	}

	if len(plan.Issues) > 0 {
		report.Suggestions = append(report.Suggestions, "revisit conflicted tasks or widen working hours")
	}

	return report
}
