// Package communication renders the outward message from the final state and
// owns the message field. Language generation is pluggable through
// protocol.Renderer; the default renderer is deterministic text.
package communication

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/protocol"
)

type Stage struct {
	logger   *slog.Logger
	renderer protocol.Renderer
}

func New(logger *slog.Logger, renderer protocol.Renderer) *Stage {
	if renderer == nil {
		renderer = TextRenderer{}
	}

	return &Stage{
		logger:   logger.With("stage", models.StageCommunication),
		renderer: renderer,
	}
}

func (s *Stage) Name() models.StageName {
	return models.StageCommunication
}

func (s *Stage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	message, err := s.renderer.Render(ctx, state)
	if err != nil {
		return nil, models.RoutingDecision{}, fmt.Errorf("render failed: %w", err)
	}

	s.logger.InfoContext(ctx, "Message rendered", "run_id", state.RunID, "length", len(message))

	update := &models.StateUpdate{Message: &message}

	return update, models.Terminate(), nil
}

// TextRenderer is the built-in deterministic renderer.
type TextRenderer struct{}

func (TextRenderer) Render(_ context.Context, state *models.WorkflowState) (string, error) {
	var b strings.Builder

	if plan := state.PlanReport; plan != nil {
		fmt.Fprintf(&b, "Scheduled %d of %d tasks.", len(plan.Placement), len(plan.Tasks))

		for _, id := range plan.Placement.TaskIDs() {
			window := plan.Placement[id]
			fmt.Fprintf(&b, "\n- %s: %s to %s", id,
				window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
		}

		for _, issue := range plan.Issues {
			fmt.Fprintf(&b, "\n! %s could not be placed (%s)", issue.TaskID, issue.Reason)
		}
	}

	if balance := state.BalanceReport; balance != nil {
		fmt.Fprintf(&b, "\nBalance score: %.0f.", balance.BalanceScore)

		for _, suggestion := range balance.Suggestions {
			fmt.Fprintf(&b, "\nSuggestion: %s", suggestion)
		}
	}

	if health := state.HealthReport; health != nil {
		for _, recommendation := range health.Recommendations {
			fmt.Fprintf(&b, "\nRecommendation: %s", recommendation)
		}
	}

	if b.Len() == 0 {
		return "Nothing to report.", nil
	}

	return b.String(), nil
}
