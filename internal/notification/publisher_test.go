package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/events"
	"github.com/taskpulse/taskpulse/internal/mocks"
	"github.com/taskpulse/taskpulse/internal/notification"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assignedTask(t *testing.T, assigneeID uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("Review PR", "please review", "", domain.TaskPriorityHigh)
	require.NoError(t, err)
	task.AssigneeID = &assigneeID
	return task
}

func TestPublisherAssignedEvent(t *testing.T) {
	t.Parallel()

	users := mocks.NewUserStore()
	user, err := domain.NewUser("jdoe", "Jamie", "jdoe@example.com")
	require.NoError(t, err)
	users.Add(user)

	producer := mocks.NewProducer()
	pub := notification.NewPublisher(users, producer, "notifications", true, discardLogger())

	task := assignedTask(t, user.ID)
	event := events.NewTaskEvent(events.EventTypeAssigned, task)

	require.NoError(t, pub.HandleEvent(context.Background(), event))

	published := producer.Messages()
	require.Len(t, published, 1)
	assert.Equal(t, "notifications", published[0].Topic)

	msg, err := notification.UnmarshalMessage(published[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, notification.TypeTaskAssigned, msg.Type)
	assert.Equal(t, "jdoe@example.com", msg.Recipient)
	assert.Equal(t, "New Task Assigned: Review PR", msg.Subject)
	assert.Equal(t, task.ID, msg.TaskID)
	assert.Contains(t, msg.Body, "Hello Jamie,")
	assert.Contains(t, msg.Body, "Title: Review PR")
	assert.Contains(t, msg.Body, "Priority: HIGH")
	assert.Contains(t, msg.Body, "Best regards,\nTask Management System")
}

func TestPublisherMessageContentByType(t *testing.T) {
	t.Parallel()

	users := mocks.NewUserStore()
	// No first name: the username addresses the recipient.
	user, err := domain.NewUser("sam", "", "sam@example.com")
	require.NoError(t, err)
	users.Add(user)

	producer := mocks.NewProducer()
	pub := notification.NewPublisher(users, producer, "notifications", true, discardLogger())

	due := time.Date(2026, 9, 15, 17, 30, 0, 0, time.UTC)
	task, err := domain.NewTask("Ship release", "", domain.TaskStatusInProgress, "")
	require.NoError(t, err)
	task.AssigneeID = &user.ID
	task.DueDate = &due

	require.NoError(t, pub.HandleEvent(context.Background(),
		events.NewTaskEvent(events.EventTypeStatusChanged, task)))
	require.NoError(t, pub.HandleEvent(context.Background(),
		events.NewTaskEvent(events.EventTypeReminder, task)))

	published := producer.Messages()
	require.Len(t, published, 2)

	statusMsg, err := notification.UnmarshalMessage(published[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, notification.TypeTaskStatusChanged, statusMsg.Type)
	assert.Equal(t, "Task Status Updated: Ship release", statusMsg.Subject)
	assert.Contains(t, statusMsg.Body, "Hello sam,")
	assert.Contains(t, statusMsg.Body, "New Status: IN_PROGRESS")

	reminderMsg, err := notification.UnmarshalMessage(published[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, notification.TypeTaskReminder, reminderMsg.Type)
	assert.Equal(t, "Task Reminder: Ship release", reminderMsg.Subject)
	// An empty description renders as N/A; the due date uses a fixed layout.
	assert.Contains(t, reminderMsg.Body, "Description: N/A")
	assert.Contains(t, reminderMsg.Body, "Due Date: 2026-09-15 17:30")
}

func TestPublisherDisabledSuppressesMessages(t *testing.T) {
	t.Parallel()

	users := mocks.NewUserStore()
	user, err := domain.NewUser("jdoe", "", "jdoe@example.com")
	require.NoError(t, err)
	users.Add(user)

	producer := mocks.NewProducer()
	pub := notification.NewPublisher(users, producer, "notifications", false, discardLogger())

	event := events.NewTaskEvent(events.EventTypeAssigned, assignedTask(t, user.ID))
	require.NoError(t, pub.HandleEvent(context.Background(), event))

	assert.Empty(t, producer.Messages())
}

func TestPublisherDropsUnmappedEventTypes(t *testing.T) {
	t.Parallel()

	producer := mocks.NewProducer()
	pub := notification.NewPublisher(mocks.NewUserStore(), producer, "notifications", true, discardLogger())

	task, err := domain.NewTask("t", "", "", "")
	require.NoError(t, err)

	require.NoError(t, pub.HandleEvent(context.Background(),
		events.NewTaskEvent(events.EventTypeCreated, task)))
	require.NoError(t, pub.HandleEvent(context.Background(),
		events.NewTaskDeletedEvent(task.ID)))

	assert.Empty(t, producer.Messages())
}

func TestPublisherDropsTaskWithoutAssignee(t *testing.T) {
	t.Parallel()

	producer := mocks.NewProducer()
	pub := notification.NewPublisher(mocks.NewUserStore(), producer, "notifications", true, discardLogger())

	task, err := domain.NewTask("unassigned", "", "", "")
	require.NoError(t, err)

	event := events.NewTaskEvent(events.EventTypeReminder, task)
	require.NoError(t, pub.HandleEvent(context.Background(), event))

	assert.Empty(t, producer.Messages())
}

func TestPublisherDropsMissingAssignee(t *testing.T) {
	t.Parallel()

	producer := mocks.NewProducer()
	pub := notification.NewPublisher(mocks.NewUserStore(), producer, "notifications", true, discardLogger())

	event := events.NewTaskEvent(events.EventTypeAssigned, assignedTask(t, uuid.New()))
	require.NoError(t, pub.HandleEvent(context.Background(), event))

	assert.Empty(t, producer.Messages())
}

func TestPublisherSwallowsProducerFailure(t *testing.T) {
	t.Parallel()

	users := mocks.NewUserStore()
	user, err := domain.NewUser("jdoe", "", "jdoe@example.com")
	require.NoError(t, err)
	users.Add(user)

	producer := mocks.NewProducer()
	producer.AppendErr = errors.New("broker unreachable")
	pub := notification.NewPublisher(users, producer, "notifications", true, discardLogger())

	event := events.NewTaskEvent(events.EventTypeAssigned, assignedTask(t, user.ID))

	// The mutation behind the event has already committed, so publish
	// failures must never surface as subscriber errors.
	assert.NoError(t, pub.HandleEvent(context.Background(), event))
}
