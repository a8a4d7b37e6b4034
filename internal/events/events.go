package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse/internal/domain"
)

// EventType identifies the kind of task state transition an event describes.
type EventType string

// Possible task event types.
const (
	EventTypeCreated       EventType = "CREATED"
	EventTypeStatusChanged EventType = "STATUS_CHANGED"
	EventTypeAssigned      EventType = "ASSIGNED"
	EventTypeReminder      EventType = "REMINDER"
	EventTypeDeleted       EventType = "DELETED"
)

// TaskEvent is a fact describing a state transition of a task. Events are
// raised inside the transaction that performs the mutation and released to
// subscribers only after that transaction commits. The event carries a
// detached snapshot of the task taken at the moment of emission, never a live
// reference; Deleted events carry only the task id.
//
// Events are transient: they are not persisted and are lost if the process
// crashes between commit and dispatch.
type TaskEvent struct {
	ID         uuid.UUID
	Type       EventType
	TaskID     uuid.UUID
	Task       domain.Task
	OccurredAt time.Time
}

// NewTaskEvent creates an event of the given type carrying a snapshot of the
// task at the moment of emission.
func NewTaskEvent(eventType EventType, task *domain.Task) *TaskEvent {
	return &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     task.ID,
		Task:       task.Snapshot(),
		OccurredAt: time.Now().UTC(),
	}
}

// NewTaskDeletedEvent creates a Deleted event. The task no longer exists, so
// the event carries only its id.
func NewTaskDeletedEvent(taskID uuid.UUID) *TaskEvent {
	return &TaskEvent{
		ID:         uuid.New(),
		Type:       EventTypeDeleted,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}
}

// Subscriber defines an interface for components that react to committed task
// events. Subscriber errors are logged by the dispatcher and never affect the
// transaction that produced the event, which has already committed.
type Subscriber interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}
