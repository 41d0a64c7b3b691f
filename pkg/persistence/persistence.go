// Package persistence provides the storage abstraction for schedules and
// feedback. The engines never touch it; only the service layer does.
package persistence

import (
	"context"

	"github.com/plandyhq/plandy/pkg/models"
)

type Persistence interface {
	Schedules(ctx context.Context, userID string) ([]*models.Schedule, error)
	SaveSchedule(ctx context.Context, schedule *models.Schedule) error
	ScheduleByID(ctx context.Context, id string) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	SaveFeedback(ctx context.Context, record *models.FeedbackRecord) error
	FeedbackByUser(ctx context.Context, userID string) ([]*models.FeedbackRecord, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
