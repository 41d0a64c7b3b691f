package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/persistence"
	"github.com/plandyhq/plandy/pkg/persistence/file"
)

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

func TestFilePersistence_ScheduleRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	sched := testSchedule("sched-1", "u1")
	require.NoError(t, store.SaveSchedule(ctx, sched))

	loaded, err := store.ScheduleByID(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, sched, loaded)

	// Overwriting updates in place.
	sched.Title = "revised plan"
	require.NoError(t, store.SaveSchedule(ctx, sched))

	loaded, err = store.ScheduleByID(ctx, "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "revised plan", loaded.Title)
}

func TestFilePersistence_ScheduleNotFound(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	_, err := store.ScheduleByID(context.Background(), "missing")
	require.ErrorIs(t, err, persistence.ErrScheduleNotFound)
}

func TestFilePersistence_SchedulesFiltersByUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	require.NoError(t, store.SaveSchedule(ctx, testSchedule("sched-1", "u1")))
	require.NoError(t, store.SaveSchedule(ctx, testSchedule("sched-2", "u1")))
	require.NoError(t, store.SaveSchedule(ctx, testSchedule("sched-3", "u2")))

	schedules, err := store.Schedules(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, schedules, 2)

	schedules, err = store.Schedules(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestFilePersistence_DeleteSchedule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	require.NoError(t, store.SaveSchedule(ctx, testSchedule("sched-1", "u1")))
	require.NoError(t, store.DeleteSchedule(ctx, "sched-1"))

	_, err := store.ScheduleByID(ctx, "sched-1")
	require.ErrorIs(t, err, persistence.ErrScheduleNotFound)

	err = store.DeleteSchedule(ctx, "sched-1")
	require.ErrorIs(t, err, persistence.ErrScheduleNotFound)
}

func TestFilePersistence_FeedbackRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

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
	assert.Equal(t, record, records[0])

	records, err = store.FeedbackByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFilePersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	require.NoError(t, store.HealthCheck(context.Background()))

	missing := file.NewPersistence("/nonexistent/plandy-test")
	require.Error(t, missing.HealthCheck(context.Background()))
}
