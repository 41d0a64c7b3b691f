// Package redis provides Redis persistence for schedules and feedback.
// Schedules live under plandy:schedule:<id> with per-user index sets;
// feedback is kept in per-user lists.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const (
	scheduleKeyPrefix = "plandy:schedule:"
	scheduleIndexKey  = "plandy:schedules"
	userIndexPrefix   = "plandy:schedules:user:"
	feedbackKeyPrefix = "plandy:feedback:user:"
)

// Persistence implements the persistence layer on Redis.
type Persistence struct {
	client goredis.UniversalClient
	logger *slog.Logger
}

// NewPersistence connects and pings the Redis server named by the URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Persistence{client: client, logger: logger}, nil
}

func (p *Persistence) SaveSchedule(ctx context.Context, schedule *models.Schedule) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, scheduleKeyPrefix+schedule.ID, payload, 0)
	pipe.SAdd(ctx, scheduleIndexKey, schedule.ID)
	pipe.SAdd(ctx, userIndexPrefix+schedule.UserID, schedule.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	return nil
}

func (p *Persistence) ScheduleByID(ctx context.Context, id string) (*models.Schedule, error) {
	payload, err := p.client.Get(ctx, scheduleKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", persistence.ErrScheduleNotFound, id)
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "ScheduleByID", ScheduleID: id, Err: err}
	}

	var schedule models.Schedule
	if err := json.Unmarshal(payload, &schedule); err != nil {
		return nil, &persistence.StoreError{Op: "ScheduleByID", ScheduleID: id, Err: err}
	}

	return &schedule, nil
}

func (p *Persistence) Schedules(ctx context.Context, userID string) ([]*models.Schedule, error) {
	indexKey := scheduleIndexKey
	if userID != "" {
		indexKey = userIndexPrefix + userID
	}

	ids, err := p.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, &persistence.StoreError{Op: "Schedules", Err: err}
	}

	var schedules []*models.Schedule

	for _, id := range ids {
		schedule, err := p.ScheduleByID(ctx, id)
		if errors.Is(err, persistence.ErrScheduleNotFound) {
			continue // index can lag a delete
		}

		if err != nil {
			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	return schedules, nil
}

func (p *Persistence) DeleteSchedule(ctx context.Context, id string) error {
	schedule, err := p.ScheduleByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := p.client.TxPipeline()
	pipe.Del(ctx, scheduleKeyPrefix+id)
	pipe.SRem(ctx, scheduleIndexKey, id)
	pipe.SRem(ctx, userIndexPrefix+schedule.UserID, id)

	if _, err := pipe.Exec(ctx); err != nil {
		return &persistence.StoreError{Op: "DeleteSchedule", ScheduleID: id, Err: err}
	}

	return nil
}

func (p *Persistence) SaveFeedback(ctx context.Context, record *models.FeedbackRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	if err := p.client.RPush(ctx, feedbackKeyPrefix+record.UserID, payload).Err(); err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	return nil
}

func (p *Persistence) FeedbackByUser(ctx context.Context, userID string) ([]*models.FeedbackRecord, error) {
	payloads, err := p.client.LRange(ctx, feedbackKeyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
	}

	var records []*models.FeedbackRecord

	for _, payload := range payloads {
		var record models.FeedbackRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
		}

		records = append(records, &record)
	}

	return records, nil
}

// HealthCheck pings the Redis server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the client connection pool.
func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}
