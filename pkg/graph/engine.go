package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/plandyhq/plandy/pkg/config"
	"github.com/plandyhq/plandy/pkg/eventbus"
	"github.com/plandyhq/plandy/pkg/events"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/otelhelper"
	"github.com/plandyhq/plandy/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Engine drives one request through the fixed topology. It is the single
// writer of the run state; stages only return partial updates. The engine is
// sequential per run while independent runs execute fully in parallel, each
// owning its own WorkflowState.
type Engine struct {
	stages    map[models.StageName]protocol.Stage
	cfg       config.Config
	logger    *slog.Logger
	publisher eventbus.EventPublisher
	tracer    trace.Tracer
}

type Option func(*Engine)

// WithPublisher attaches an event bus for run lifecycle events.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

// WithTracer enables spans around the run and each stage invocation.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// NewEngine builds an engine over the given stages.
func NewEngine(cfg config.Config, logger *slog.Logger, stages []protocol.Stage, opts ...Option) *Engine {
	byName := make(map[models.StageName]protocol.Stage, len(stages))
	for _, stage := range stages {
		byName[stage.Name()] = stage
	}

	engine := &Engine{
		stages: byName,
		cfg:    cfg,
		logger: logger,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Run traverses the graph for one request and returns the final state. Fatal
// stage failures, timeouts, budget exhaustion, and contract violations abort
// the run with a RunError carrying the state snapshot; per-task allocation
// issues do not.
func (e *Engine) Run(ctx context.Context, req models.ScheduleRequest) (*models.WorkflowState, error) {
	startedAt := time.Now()

	state := &models.WorkflowState{
		RunID:     "run-" + uuid.New().String()[:8],
		Request:   req,
		CreatedAt: startedAt,
	}

	logger := e.logger.With("run_id", state.RunID, "user_id", req.UserID)
	logger.InfoContext(ctx, "Starting graph run", "intent", req.Intent, "tasks", len(req.Tasks))

	if e.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, e.tracer, "graph.run",
			attribute.String(otelhelper.RunIDKey, state.RunID),
			attribute.String(otelhelper.UserIDKey, req.UserID),
		)
		defer span.End()
	}

	e.publish(ctx, state, events.RunStarted{
		BaseEvent: e.baseEvent(events.RunStartedEvent, state),
		Intent:    req.Intent,
		TaskCount: len(req.Tasks),
	})

	var planDone, dataDone bool

	current := models.StageSupervisor

	for {
		// Cooperative cancellation: checked between stage invocations only,
		// never by interrupting a stage in flight.
		if err := ctx.Err(); err != nil {
			return state, e.fail(ctx, state, current, err)
		}

		stage, ok := e.stages[current]
		if !ok {
			return state, e.fail(ctx, state, current, fmt.Errorf("%w: %q", ErrUnknownStage, current))
		}

		update, decision, err := e.invokeStage(ctx, stage, state)
		if err != nil {
			return state, e.fail(ctx, state, current, err)
		}

		if err := checkOwnership(current, update); err != nil {
			return state, e.fail(ctx, state, current, err)
		}

		merge(state, update)
		state.RoutingHistory = append(state.RoutingHistory, current)
		state.Steps++
		state.Version++

		switch current {
		case models.StagePlan:
			planDone = true
		case models.StageData:
			dataDone = true
		}

		e.publish(ctx, state, events.StageCompleted{
			BaseEvent: e.baseEvent(events.StageCompletedEvent, state),
			Stage:     current,
			Next:      decision.Next,
			Step:      state.Steps,
		})

		if !reachable(current, decision.Next) {
			return state, e.fail(ctx, state, current,
				fmt.Errorf("%w: stage %q routed to unreachable %q", ErrContractViolation, current, decision.Next))
		}

		if decision.Next == models.StageTerminal {
			logger.InfoContext(ctx, "Graph run completed", "steps", state.Steps)
			e.publish(ctx, state, events.RunCompleted{
				BaseEvent: e.baseEvent(events.RunCompletedEvent, state),
				Steps:     state.Steps,
				Duration:  time.Since(startedAt),
			})

			return state, nil
		}

		if state.Steps >= e.cfg.StepBudget {
			return state, e.fail(ctx, state, current,
				fmt.Errorf("%w: %d stage invocations", ErrStepBudgetExceeded, state.Steps))
		}

		next := decision.Next

		// Join enforcement: WorkLifeBalance needs both Plan and Data output.
		// A premature entry attempt is silently rerouted to the Supervisor,
		// protecting against misbehaving routing decisions.
		if next == models.StageWorkLifeBalance && !(planDone && dataDone) {
			logger.DebugContext(ctx, "Rerouting premature join entry to supervisor",
				"from", current, "plan_done", planDone, "data_done", dataDone)

			next = models.StageSupervisor
		}

		current = next
	}
}

// invokeStage runs one stage under the per-stage timeout. A stage that misses
// the deadline is treated as a fatal failure; the in-flight goroutine is left
// to finish on its own rather than being interrupted mid side effect.
func (e *Engine) invokeStage(ctx context.Context, stage protocol.Stage, state *models.WorkflowState) (*models.StateUpdate, models.RoutingDecision, error) {
	stageCtx, cancel := context.WithTimeout(ctx, e.cfg.StageTimeout)
	defer cancel()

	if e.tracer != nil {
		var span trace.Span

		stageCtx, span = otelhelper.StartSpan(stageCtx, e.tracer, "graph.stage",
			attribute.String(otelhelper.RunIDKey, state.RunID),
			attribute.String(otelhelper.StageNameKey, string(stage.Name())),
			attribute.Int(otelhelper.StepKey, state.Steps),
		)
		defer span.End()
	}

	type outcome struct {
		update   *models.StateUpdate
		decision models.RoutingDecision
		err      error
	}

	done := make(chan outcome, 1)

	go func() {
		update, decision, err := stage.Invoke(stageCtx, state)
		done <- outcome{update: update, decision: decision, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, models.RoutingDecision{}, fmt.Errorf("stage %q: %w", stage.Name(), out.err)
		}

		return out.update, out.decision, nil
	case <-stageCtx.Done():
		if errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
			return nil, models.RoutingDecision{}, fmt.Errorf("%w: stage %q exceeded %s",
				ErrStageTimeout, stage.Name(), e.cfg.StageTimeout)
		}

		return nil, models.RoutingDecision{}, stageCtx.Err()
	}
}

func (e *Engine) fail(ctx context.Context, state *models.WorkflowState, stage models.StageName, err error) error {
	e.logger.ErrorContext(ctx, "Graph run failed",
		"run_id", state.RunID, "stage", stage, "history", state.RoutingHistory, "error", err)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		otelhelper.SetError(span, err,
			attribute.String(otelhelper.StageNameKey, string(stage)),
			attribute.Int(otelhelper.StepKey, state.Steps),
		)
	}

	e.publish(ctx, state, events.RunFailed{
		BaseEvent: e.baseEvent(events.RunFailedEvent, state),
		Stage:     stage,
		Error:     err.Error(),
	})

	return &RunError{
		Stage:   stage,
		History: state.RoutingHistory,
		State:   state,
		Err:     err,
	}
}

func (e *Engine) baseEvent(eventType events.EventType, state *models.WorkflowState) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     state.RunID,
		UserID:    state.Request.UserID,
	}
}

// publish is best effort; a broken bus must not break the run.
func (e *Engine) publish(ctx context.Context, state *models.WorkflowState, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, state.RunID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish run event",
			"run_id", state.RunID, "event_type", event.GetType(), "error", err)
	}
}
