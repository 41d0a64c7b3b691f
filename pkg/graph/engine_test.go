package graph_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/eventbus"
	"github.com/plandyhq/plandy/pkg/events"
	"github.com/plandyhq/plandy/pkg/graph"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/protocol"
	"github.com/plandyhq/plandy/pkg/registry"
)

type stubStage struct {
	name models.StageName
	fn   func(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error)
}

func (s *stubStage) Name() models.StageName {
	return s.name
}

func (s *stubStage) Invoke(ctx context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	return s.fn(ctx, state)
}

// capturingPublisher records every published event for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.GetType())
	}

	return out
}

func testRequest() models.ScheduleRequest {
	return models.ScheduleRequest{
		UserID: "user-1",
		Intent: "plan my week",
		Tasks: []models.Task{
			{ID: "t1", Title: "write report", DurationMinutes: 120, Priority: 8},
			{ID: "t2", Title: "review code", DurationMinutes: 60, Priority: 5},
		},
		Constraints: models.Constraints{
			WorkingHours:  []models.DaySpan{{StartMinute: 9 * 60, EndMinute: 18 * 60}},
			PlanningStart: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			HorizonDays:   7,
		},
	}
}

func defaultEngine(t *testing.T, opts ...graph.Option) *graph.Engine {
	t.Helper()

	logger := slog.Default()
	cfg := config.Default()
	stages := registry.Default(logger, cfg, nil)

	return graph.NewEngine(cfg, logger, stages.Stages(), opts...)
}

func TestEngine_RunCompletes(t *testing.T) {
	t.Parallel()

	publisher := &capturingPublisher{}
	engine := defaultEngine(t, graph.WithPublisher(publisher))

	state, err := engine.Run(context.Background(), testRequest())
	require.NoError(t, err)

	// Plan routes toward the balance join before Data has run; the engine
	// sends it back through the Supervisor.
	assert.Equal(t, []models.StageName{
		models.StageSupervisor,
		models.StagePlan,
		models.StageSupervisor,
		models.StageData,
		models.StageWorkLifeBalance,
		models.StageCommunication,
	}, state.RoutingHistory)

	assert.Equal(t, 6, state.Steps)
	assert.Equal(t, 6, state.Version)

	require.NotNil(t, state.PlanReport)
	require.NotNil(t, state.Analytics)
	require.NotNil(t, state.BalanceReport)
	assert.Nil(t, state.HealthReport)
	assert.NotEmpty(t, state.Message)

	assert.Len(t, state.PlanReport.Placement, 2)

	types := publisher.types()
	require.NotEmpty(t, types)
	assert.Equal(t, events.RunStartedEvent, types[0])
	assert.Equal(t, events.RunCompletedEvent, types[len(types)-1])
}

func TestEngine_HealthConsultedWhenRequested(t *testing.T) {
	t.Parallel()

	engine := defaultEngine(t)

	req := testRequest()
	req.Intent = "I am stressed, help me plan"

	state, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, state.HealthReport)
	assert.Equal(t, models.StageHealth, state.RoutingHistory[1])
}

func TestEngine_StepBudgetExceeded(t *testing.T) {
	t.Parallel()

	// A supervisor that never makes progress: routing to itself is legal in
	// the topology, so only the budget stops it.
	selfRouter := &stubStage{
		name: models.StageSupervisor,
		fn: func(_ context.Context, _ *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
			return nil, models.RouteTo(models.StageSupervisor), nil
		},
	}

	cfg := config.Default()
	cfg.StepBudget = 5

	engine := graph.NewEngine(cfg, slog.Default(), []protocol.Stage{selfRouter})

	state, err := engine.Run(context.Background(), testRequest())
	require.ErrorIs(t, err, graph.ErrStepBudgetExceeded)

	var runErr *graph.RunError
	require.ErrorAs(t, err, &runErr)

	assert.Equal(t, models.StageSupervisor, runErr.Stage)
	assert.Len(t, runErr.History, 5)
	assert.Equal(t, 5, state.Steps)
}

func TestEngine_StageTimeout(t *testing.T) {
	t.Parallel()

	slow := &stubStage{
		name: models.StageSupervisor,
		fn: func(ctx context.Context, _ *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}

			return nil, models.RouteTo(models.StageCommunication), nil
		},
	}

	cfg := config.Default()
	cfg.StageTimeout = 20 * time.Millisecond

	engine := graph.NewEngine(cfg, slog.Default(), []protocol.Stage{slow})

	_, err := engine.Run(context.Background(), testRequest())
	require.ErrorIs(t, err, graph.ErrStageTimeout)
}

func TestEngine_OwnershipViolation(t *testing.T) {
	t.Parallel()

	message := "not mine to write"
	rogue := &stubStage{
		name: models.StageSupervisor,
		fn: func(_ context.Context, _ *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
			return &models.StateUpdate{Message: &message}, models.RouteTo(models.StageCommunication), nil
		},
	}

	engine := graph.NewEngine(config.Default(), slog.Default(), []protocol.Stage{rogue})

	state, err := engine.Run(context.Background(), testRequest())
	require.ErrorIs(t, err, graph.ErrContractViolation)

	// The rejected update never reached the state.
	assert.Empty(t, state.Message)
	assert.Equal(t, 0, state.Version)
}

func TestEngine_UnreachableRouteIsContractViolation(t *testing.T) {
	t.Parallel()

	toHealth := &stubStage{
		name: models.StageSupervisor,
		fn: func(_ context.Context, _ *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
			return nil, models.RouteTo(models.StageHealth), nil
		},
	}

	// Health may only route to Plan; Data is unreachable from it.
	rebel := &stubStage{
		name: models.StageHealth,
		fn: func(_ context.Context, _ *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
			return &models.StateUpdate{HealthReport: &models.HealthReport{HealthScore: 70}},
				models.RouteTo(models.StageData), nil
		},
	}

	engine := graph.NewEngine(config.Default(), slog.Default(), []protocol.Stage{toHealth, rebel})

	_, err := engine.Run(context.Background(), testRequest())
	require.ErrorIs(t, err, graph.ErrContractViolation)

	var runErr *graph.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, models.StageHealth, runErr.Stage)
}

func TestEngine_StageErrorAbortsRun(t *testing.T) {
	t.Parallel()

	publisher := &capturingPublisher{}
	engine := defaultEngine(t, graph.WithPublisher(publisher))

	req := testRequest()
	req.Constraints.HorizonDays = -1 // Malformed constraints fail the Plan stage.

	_, err := engine.Run(context.Background(), req)
	require.ErrorIs(t, err, models.ErrInvalidConstraint)

	types := publisher.types()
	require.NotEmpty(t, types)
	assert.Equal(t, events.RunFailedEvent, types[len(types)-1])
}

func TestEngine_Cancellation(t *testing.T) {
	t.Parallel()

	engine := defaultEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, testRequest())
	require.ErrorIs(t, err, context.Canceled)

	var runErr *graph.RunError
	require.ErrorAs(t, err, &runErr)
}

func TestEngine_UnknownStage(t *testing.T) {
	t.Parallel()

	// No supervisor registered at all.
	engine := graph.NewEngine(config.Default(), slog.Default(), nil)

	_, err := engine.Run(context.Background(), testRequest())
	require.ErrorIs(t, err, graph.ErrUnknownStage)
}

func TestEngine_JoinRerouteFromSupervisorHint(t *testing.T) {
	t.Parallel()

	// A supervisor that insists on the balance stage immediately. The engine
	// must bounce it back until Plan and Data have both run, and the bounce
	// consumes budget, so the run eventually completes or trips the guard.
	var supervisorCalls int

	impatient := &stubStage{
		name: models.StageSupervisor,
		fn: func(_ context.Context, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
			supervisorCalls++

			switch {
			case supervisorCalls == 1:
				return nil, models.RouteTo(models.StageWorkLifeBalance), nil
			case state.PlanReport == nil:
				return nil, models.RouteTo(models.StagePlan), nil
			case state.Analytics == nil:
				return nil, models.RouteTo(models.StageData), nil
			default:
				return nil, models.RouteTo(models.StageCommunication), nil
			}
		},
	}

	logger := slog.Default()
	cfg := config.Default()
	stages := registry.Default(logger, cfg, nil)

	replaced := []protocol.Stage{impatient}

	for _, stage := range stages.Stages() {
		if stage.Name() != models.StageSupervisor {
			replaced = append(replaced, stage)
		}
	}

	engine := graph.NewEngine(cfg, logger, replaced)

	state, err := engine.Run(context.Background(), testRequest())
	require.NoError(t, err)

	// The first hint toward the join was rerouted to the supervisor, never
	// reaching the balance stage early.
	assert.Equal(t, []models.StageName{
		models.StageSupervisor,
		models.StageSupervisor,
		models.StagePlan,
		models.StageSupervisor,
		models.StageData,
		models.StageWorkLifeBalance,
		models.StageCommunication,
	}, state.RoutingHistory)
}
