// Package protocol defines the contracts between the graph engine and the
// stages it runs.
package protocol

import (
	"context"

	"github.com/plandyhq/plandy/pkg/models"
)

// Stage is one unit of the workflow graph. Given a read view of the run
// state it returns a partial update touching only the fields it owns plus a
// routing hint. Side effects such as calls to an external generation service
// are the stage's private concern; the engine only requires that Invoke
// returns within the caller-supplied timeout and honors ctx cancellation.
type Stage interface {
	// Name returns the stage's node name in the topology.
	Name() models.StageName

	// Invoke processes the current state. The returned update may be nil when
	// the stage has nothing to contribute.
	Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error)
}

// Renderer turns the final state into the outward message. The default
// implementation is deterministic text; a language-generation service plugs
// in here without the core depending on it.
type Renderer interface {
	Render(ctx context.Context, state *models.WorkflowState) (string, error)
}
