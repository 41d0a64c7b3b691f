package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plandyhq/plandy/pkg/models"
	"github.com/plandyhq/plandy/pkg/schedule"
)

func TestReschedule_NoChangesIsIdempotent(t *testing.T) {
	t.Parallel()

	tasks := []models.Task{task("a", 60, 5), task("b", 60, 5)}
	current := models.Placement{
		"a": window(0, 9, 0, 60),
		"b": window(0, 11, 0, 60),
	}

	result, err := schedule.Reschedule(tasks, current, nil, baseConstraints())
	require.NoError(t, err)

	assert.Equal(t, current, result.Placement)
	assert.True(t, result.Diff.Empty())
	assert.Empty(t, result.Issues)
}

func TestReschedule_ReleasesChangedTasks(t *testing.T) {
	t.Parallel()

	changed := task("changed", 120, 5)
	frozen := task("frozen", 60, 5)

	current := models.Placement{
		"changed": window(0, 9, 0, 60),
		"frozen":  window(0, 10, 0, 60),
	}

	result, err := schedule.Reschedule([]models.Task{changed, frozen}, current, []string{"changed"}, baseConstraints())
	require.NoError(t, err)
	require.Empty(t, result.Issues)

	// The frozen placement did not move.
	assert.Equal(t, window(0, 10, 0, 60), result.Placement["frozen"])

	// The changed task grew to 120 minutes and was refitted around it.
	assert.Equal(t, window(0, 11, 0, 120), result.Placement["changed"])

	assert.Equal(t, []string{"changed"}, result.Diff.Moved)
	assert.Empty(t, result.Diff.Added)
	assert.Empty(t, result.Diff.Removed)
}

func TestReschedule_MovableTasksAreReleasedToo(t *testing.T) {
	t.Parallel()

	movable := task("movable", 60, 9)
	movable.Movable = true

	changed := task("changed", 60, 1)

	current := models.Placement{
		"movable": window(0, 16, 0, 60),
		"changed": window(0, 9, 0, 60),
	}

	result, err := schedule.Reschedule([]models.Task{movable, changed}, current, []string{"changed"}, baseConstraints())
	require.NoError(t, err)
	require.Empty(t, result.Issues)

	// Both were released; the movable higher-priority task took the first
	// slot and the changed task follows.
	assert.Equal(t, window(0, 9, 0, 60), result.Placement["movable"])
	assert.Equal(t, window(0, 10, 0, 60), result.Placement["changed"])

	assert.ElementsMatch(t, []string{"changed", "movable"}, result.Diff.Moved)
}

func TestReschedule_AddsNewTasksToDiff(t *testing.T) {
	t.Parallel()

	existing := task("existing", 60, 5)
	fresh := task("fresh", 60, 5)

	current := models.Placement{"existing": window(0, 9, 0, 60)}

	result, err := schedule.Reschedule([]models.Task{existing, fresh}, current, []string{"fresh"}, baseConstraints())
	require.NoError(t, err)

	assert.Equal(t, window(0, 9, 0, 60), result.Placement["existing"])
	assert.Equal(t, window(0, 10, 0, 60), result.Placement["fresh"])

	assert.Equal(t, []string{"fresh"}, result.Diff.Added)
	assert.Empty(t, result.Diff.Moved)
}

func TestReschedule_InvalidConstraints(t *testing.T) {
	t.Parallel()

	_, err := schedule.Reschedule(nil, nil, []string{"a"}, models.Constraints{})
	require.ErrorIs(t, err, models.ErrInvalidConstraint)
}
