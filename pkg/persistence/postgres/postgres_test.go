//go:build integration
// +build integration

package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
)

var postgresContainer *pgcontainer.PostgresContainer

func TestMain(m *testing.M) {
	code := m.Run()

	if postgresContainer != nil {
		_ = testcontainers.TerminateContainer(postgresContainer)
	}

	os.Exit(code)
}

func setupTestDB(t *testing.T) (*Persistence, context.Context) {
	ctx := context.Background()

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error
		postgresContainer, err = pgcontainer.Run(ctx,
			"postgres:16-alpine",
			pgcontainer.WithDatabase("plandy_test"),
			pgcontainer.WithUsername("plandy"),
			pgcontainer.WithPassword("plandy"),
			pgcontainer.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store, err := NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	cleanupDB(t, databaseURL)

	return store, ctx
}

func cleanupDB(t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(context.Background(), "TRUNCATE TABLE schedules, feedback")
	require.NoError(t, err)
}

func testSchedule(id, userID string) *models.Schedule {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	return &models.Schedule{
		ID:     id,
		UserID: userID,
		Title:  "week plan",
		Tasks: []models.Task{
			{ID: "t1", Title: "one", DurationMinutes: 60, Priority: 5, Status: models.TaskStatusScheduled},
		},
		Placement: models.Placement{
			"t1": {Start: start, End: start.Add(time.Hour)},
		},
		CreatedAt: start,
		UpdatedAt: start,
	}
}

func TestPostgresPersistence_ScheduleRoundTrip(t *testing.T) {
	store, ctx := setupTestDB(t)

	sched := testSchedule("sched-1", "u1")
	require.NoError(t, store.SaveSchedule(ctx, sched))

	loaded, err := store.ScheduleByID(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, sched.Placement, loaded.Placement)
	assert.Equal(t, sched.Tasks, loaded.Tasks)

	// Upsert replaces the document.
	sched.Title = "revised"
	require.NoError(t, store.SaveSchedule(ctx, sched))

	loaded, err = store.ScheduleByID(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "revised", loaded.Title)
}

func TestPostgresPersistence_ScheduleNotFound(t *testing.T) {
	store, ctx := setupTestDB(t)

	_, err := store.ScheduleByID(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrScheduleNotFound)

	err = store.DeleteSchedule(ctx, "missing")
	require.ErrorIs(t, err, persistence.ErrScheduleNotFound)
}

func TestPostgresPersistence_SchedulesByUser(t *testing.T) {
	store, ctx := setupTestDB(t)

	require.NoError(t, store.SaveSchedule(ctx, testSchedule("sched-1", "u1")))
	require.NoError(t, store.SaveSchedule(ctx, testSchedule("sched-2", "u2")))

	schedules, err := store.Schedules(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "sched-1", schedules[0].ID)
}

func TestPostgresPersistence_Feedback(t *testing.T) {
	store, ctx := setupTestDB(t)

	record := &models.FeedbackRecord{
		ID:        "fb-1",
		UserID:    "u1",
		Text:      "too many meetings",
		Category:  models.FeedbackCategorySchedule,
		Sentiment: -0.5,
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.SaveFeedback(ctx, record))

	records, err := store.FeedbackByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.Text, records[0].Text)
}

func TestPostgresPersistence_HealthCheck(t *testing.T) {
	store, ctx := setupTestDB(t)

	require.NoError(t, store.HealthCheck(ctx))
}
