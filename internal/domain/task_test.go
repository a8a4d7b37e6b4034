package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	t.Run("defaults status and priority", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("Write report", "quarterly numbers", "", "")
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusTodo, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Nil(t, task.CompletedAt)
		assert.False(t, task.ReminderSent)
	})

	t.Run("explicit status and priority kept", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("Deploy", "", domain.TaskStatusInProgress, domain.TaskPriorityHigh)
		require.NoError(t, err)

		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
		assert.Equal(t, domain.TaskPriorityHigh, task.Priority)
	})

	t.Run("created completed stamps completedAt", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("Done already", "", domain.TaskStatusCompleted, "")
		require.NoError(t, err)
		require.NotNil(t, task.CompletedAt)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask("", "", "", "")
		assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewTask("t", "", "SHIPPED", "")
		assert.ErrorIs(t, err, domain.ErrTaskStatusInvalid)
	})
}

func TestTaskValidateCompletedAtInvariant(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask("t", "", "", "")
	require.NoError(t, err)

	// Completed without a timestamp is inconsistent.
	task.Status = domain.TaskStatusCompleted
	assert.ErrorIs(t, task.Validate(), domain.ErrTaskCompletedAtMismatch)

	// Non-completed with a timestamp is equally inconsistent.
	now := time.Now().UTC()
	task.Status = domain.TaskStatusTodo
	task.CompletedAt = &now
	assert.ErrorIs(t, task.Validate(), domain.ErrTaskCompletedAtMismatch)

	task.CompletedAt = nil
	assert.NoError(t, task.Validate())
}

func TestTaskChangeStatus(t *testing.T) {
	t.Parallel()

	t.Run("to completed stamps completedAt", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("t", "", "", "")
		require.NoError(t, err)

		require.NoError(t, task.ChangeStatus(domain.TaskStatusCompleted))
		require.NotNil(t, task.CompletedAt)
		assert.NoError(t, task.Validate())
	})

	t.Run("away from completed clears completedAt", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("t", "", domain.TaskStatusCompleted, "")
		require.NoError(t, err)

		require.NoError(t, task.ChangeStatus(domain.TaskStatusInProgress))
		assert.Nil(t, task.CompletedAt)
		assert.NoError(t, task.Validate())
	})

	t.Run("completed to completed keeps original timestamp", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("t", "", domain.TaskStatusCompleted, "")
		require.NoError(t, err)
		stamped := *task.CompletedAt

		require.NoError(t, task.ChangeStatus(domain.TaskStatusCompleted))
		assert.Equal(t, stamped, *task.CompletedAt)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("t", "", "", "")
		require.NoError(t, err)

		assert.ErrorIs(t, task.ChangeStatus("SHIPPED"), domain.ErrTaskStatusInvalid)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
	})
}

func TestTaskMarkReminderSentIdempotent(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask("t", "", "", "")
	require.NoError(t, err)

	task.MarkReminderSent()
	require.True(t, task.ReminderSent)
	first := task.UpdatedAt

	task.MarkReminderSent()
	assert.True(t, task.ReminderSent)
	assert.Equal(t, first, task.UpdatedAt)
}

func TestTaskStatusIsTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.TaskStatusCompleted.IsTerminal())
	assert.True(t, domain.TaskStatusCancelled.IsTerminal())
	assert.False(t, domain.TaskStatusTodo.IsTerminal())
	assert.False(t, domain.TaskStatusInProgress.IsTerminal())
	assert.False(t, domain.TaskStatusInReview.IsTerminal())
}

func TestTaskSnapshotIsDetached(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask("original", "", "", "")
	require.NoError(t, err)

	snapshot := task.Snapshot()
	task.Title = "mutated"

	assert.Equal(t, "original", snapshot.Title)
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	user := &domain.User{ID: uuid.New(), Username: "jdoe", Email: "jdoe@example.com"}
	assert.Equal(t, "jdoe", user.DisplayName())

	user.FirstName = "Jamie"
	assert.Equal(t, "Jamie", user.DisplayName())
}
