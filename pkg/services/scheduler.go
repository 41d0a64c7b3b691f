package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/plandyhq/plandy/pkg/eventbus"
	"github.com/plandyhq/plandy/pkg/events"
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
	"github.com/plandyhq/plandy/pkg/schedule"
)

// Scheduler allocates schedules, persists the results and publishes the
// lifecycle events. Handlers and CLI commands go through it instead of
// calling the schedule package directly.
type Scheduler struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

// AllocateParams carries everything a fresh allocation needs.
type AllocateParams struct {
	UserID      string
	Title       string
	Tasks       []models.Task
	Constraints models.Constraints
	Existing    models.Placement
}

func NewScheduler(store persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		persistence: store,
		publisher:   publisher,
		logger:      logger.With("module", "scheduler_service"),
	}
}

// Allocate runs the allocation engine over params, stores the resulting
// schedule and announces it on the bus.
func (s *Scheduler) Allocate(ctx context.Context, params AllocateParams) (*models.Schedule, *models.AllocationResult, error) {
	if params.UserID == "" {
		return nil, nil, ErrEmptyUserID
	}

	if len(params.Tasks) == 0 {
		return nil, nil, ErrNoTasks
	}

	result, err := schedule.Allocate(params.Tasks, params.Constraints, params.Existing)
	if err != nil {
		return nil, nil, &ServiceError{Op: "scheduler.Allocate", Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}

	now := time.Now().UTC()
	sched := &models.Schedule{
		ID:        "sched-" + uuid.New().String()[:8],
		UserID:    params.UserID,
		Title:     params.Title,
		Tasks:     result.Tasks,
		Placement: result.Placement,
		Issues:    result.Issues,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persistence.SaveSchedule(ctx, sched); err != nil {
		return nil, nil, &ServiceError{Op: "scheduler.Allocate", Message: "persisting schedule", Err: err}
	}

	s.publish(ctx, sched, result)

	s.logger.InfoContext(ctx, "Schedule allocated",
		"schedule_id", sched.ID,
		"user_id", sched.UserID,
		"placed", len(result.Placement),
		"issues", len(result.Issues))

	return sched, result, nil
}

// Reschedule reloads a stored schedule, re-allocates around the changed
// tasks and persists the new placement.
func (s *Scheduler) Reschedule(ctx context.Context, scheduleID string, changed []string, constraints models.Constraints) (*models.Schedule, *models.RescheduleResult, error) {
	sched, err := s.persistence.ScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, nil, err
	}

	result, err := schedule.Reschedule(sched.Tasks, sched.Placement, changed, constraints)
	if err != nil {
		return nil, nil, &ServiceError{Op: "scheduler.Reschedule", Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}

	sched.Tasks = result.Tasks
	sched.Placement = result.Placement
	sched.Issues = result.Issues
	sched.UpdatedAt = time.Now().UTC()

	if err := s.persistence.SaveSchedule(ctx, sched); err != nil {
		return nil, nil, &ServiceError{Op: "scheduler.Reschedule", Message: "persisting schedule", Err: err}
	}

	s.publish(ctx, sched, &result.AllocationResult)

	s.logger.InfoContext(ctx, "Schedule updated",
		"schedule_id", sched.ID,
		"changed", len(changed),
		"moved", len(result.Diff.Moved))

	return sched, result, nil
}

// Conflicts reports overlapping placements in an arbitrary placement
// document, stored or imported.
func (s *Scheduler) Conflicts(_ context.Context, placement models.Placement) []models.ConflictPair {
	return schedule.FindConflicts(placement)
}

// SuggestTimes returns up to n free windows able to hold a task of the
// given duration.
func (s *Scheduler) SuggestTimes(_ context.Context, durationMinutes int, constraints models.Constraints, existing models.Placement, n int) ([]models.TimeWindow, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidRequest)
	}

	return schedule.SuggestWindows(durationMinutes, constraints, existing, n)
}

func (s *Scheduler) Schedule(ctx context.Context, id string) (*models.Schedule, error) {
	return s.persistence.ScheduleByID(ctx, id)
}

func (s *Scheduler) Schedules(ctx context.Context, userID string) ([]*models.Schedule, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	return s.persistence.Schedules(ctx, userID)
}

func (s *Scheduler) Delete(ctx context.Context, id string) error {
	return s.persistence.DeleteSchedule(ctx, id)
}

func (s *Scheduler) publish(ctx context.Context, sched *models.Schedule, result *models.AllocationResult) {
	if s.publisher == nil {
		return
	}

	event := events.ScheduleAllocated{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      events.ScheduleAllocatedEvent,
			Timestamp: time.Now().UTC(),
			UserID:    sched.UserID,
		},
		ScheduleID: sched.ID,
		Placed:     len(result.Placement),
		Issues:     len(result.Issues),
	}

	if err := s.publisher.Publish(ctx, sched.ID, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish schedule event", "error", err, "schedule_id", sched.ID)
	}
}
