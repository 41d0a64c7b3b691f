// Package postgres provides PostgreSQL persistence for schedules and
// feedback. Documents are stored as JSONB alongside the columns queries
// filter on.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence connects, pings, and runs migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Persistence{db: database, logger: logger}

	if err := p.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return p, nil
}

func (p *Persistence) migrate(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Running database migrations")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS schedules (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			document   JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_user_id ON schedules (user_id)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			document   JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_user_id ON feedback (user_id)`,
	}

	for _, statement := range statements {
		if _, err := p.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func (p *Persistence) SaveSchedule(ctx context.Context, schedule *models.Schedule) error {
	document, err := json.Marshal(schedule)
	if err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	query := `
		INSERT INTO schedules (id, user_id, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET document = $3, updated_at = $5
	`

	_, err = p.db.ExecContext(ctx, query,
		schedule.ID, schedule.UserID, document, schedule.CreatedAt, schedule.UpdatedAt)
	if err != nil {
		return &persistence.StoreError{Op: "SaveSchedule", ScheduleID: schedule.ID, Err: err}
	}

	return nil
}

func (p *Persistence) ScheduleByID(ctx context.Context, id string) (*models.Schedule, error) {
	var document []byte

	err := p.db.QueryRowContext(ctx,
		`SELECT document FROM schedules WHERE id = $1`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", persistence.ErrScheduleNotFound, id)
	}

	if err != nil {
		return nil, &persistence.StoreError{Op: "ScheduleByID", ScheduleID: id, Err: err}
	}

	var schedule models.Schedule
	if err := json.Unmarshal(document, &schedule); err != nil {
		return nil, &persistence.StoreError{Op: "ScheduleByID", ScheduleID: id, Err: err}
	}

	return &schedule, nil
}

func (p *Persistence) Schedules(ctx context.Context, userID string) ([]*models.Schedule, error) {
	query := `SELECT document FROM schedules ORDER BY created_at`
	args := []any{}

	if userID != "" {
		query = `SELECT document FROM schedules WHERE user_id = $1 ORDER BY created_at`
		args = append(args, userID)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &persistence.StoreError{Op: "Schedules", Err: err}
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			p.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var schedules []*models.Schedule

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, &persistence.StoreError{Op: "Schedules", Err: err}
		}

		var schedule models.Schedule
		if err := json.Unmarshal(document, &schedule); err != nil {
			return nil, &persistence.StoreError{Op: "Schedules", Err: err}
		}

		schedules = append(schedules, &schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.StoreError{Op: "Schedules", Err: err}
	}

	return schedules, nil
}

func (p *Persistence) DeleteSchedule(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return &persistence.StoreError{Op: "DeleteSchedule", ScheduleID: id, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &persistence.StoreError{Op: "DeleteSchedule", ScheduleID: id, Err: err}
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", persistence.ErrScheduleNotFound, id)
	}

	return nil
}

func (p *Persistence) SaveFeedback(ctx context.Context, record *models.FeedbackRecord) error {
	document, err := json.Marshal(record)
	if err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	query := `
		INSERT INTO feedback (id, user_id, document, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET document = $3
	`

	if _, err := p.db.ExecContext(ctx, query,
		record.ID, record.UserID, document, record.CreatedAt); err != nil {
		return &persistence.StoreError{Op: "SaveFeedback", Err: err}
	}

	return nil
}

func (p *Persistence) FeedbackByUser(ctx context.Context, userID string) ([]*models.FeedbackRecord, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT document FROM feedback WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			p.logger.ErrorContext(ctx, "failed to close rows", "error", closeErr)
		}
	}()

	var records []*models.FeedbackRecord

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
		}

		var record models.FeedbackRecord
		if err := json.Unmarshal(document, &record); err != nil {
			return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, &persistence.StoreError{Op: "FeedbackByUser", Err: err}
	}

	return records, nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
