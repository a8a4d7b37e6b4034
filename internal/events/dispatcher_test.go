package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSubscriber captures events in arrival order.
type recordingSubscriber struct {
	mu       sync.Mutex
	received []*events.TaskEvent
	err      error
}

func (s *recordingSubscriber) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, event)
	return s.err
}

func (s *recordingSubscriber) events() []*events.TaskEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*events.TaskEvent, len(s.received))
	copy(out, s.received)
	return out
}

func newTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask("test task", "", "", "")
	require.NoError(t, err)
	return task
}

func TestBufferPreservesEmissionOrder(t *testing.T) {
	t.Parallel()

	task := newTask(t)
	buffer := events.NewBuffer()
	buffer.Raise(events.NewTaskEvent(events.EventTypeCreated, task))
	buffer.Raise(events.NewTaskEvent(events.EventTypeAssigned, task))
	buffer.Raise(events.NewTaskEvent(events.EventTypeStatusChanged, task))

	require.Equal(t, 3, buffer.Len())
	got := buffer.Events()
	assert.Equal(t, events.EventTypeCreated, got[0].Type)
	assert.Equal(t, events.EventTypeAssigned, got[1].Type)
	assert.Equal(t, events.EventTypeStatusChanged, got[2].Type)
}

func TestDispatcherFlushDeliversInOrder(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewDispatcher(discardLogger())
	sub := &recordingSubscriber{}
	dispatcher.Subscribe(sub)

	task := newTask(t)
	buffer := events.NewBuffer()
	buffer.Raise(events.NewTaskEvent(events.EventTypeCreated, task))
	buffer.Raise(events.NewTaskEvent(events.EventTypeAssigned, task))

	dispatcher.FlushAsync(context.Background(), buffer)
	dispatcher.Close()

	received := sub.events()
	require.Len(t, received, 2)
	assert.Equal(t, events.EventTypeCreated, received[0].Type)
	assert.Equal(t, events.EventTypeAssigned, received[1].Type)
}

func TestDispatcherUnflushedBufferNeverDelivered(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewDispatcher(discardLogger())
	sub := &recordingSubscriber{}
	dispatcher.Subscribe(sub)

	// Simulates a rollback: the buffer is filled but never flushed.
	buffer := events.NewBuffer()
	buffer.Raise(events.NewTaskEvent(events.EventTypeCreated, newTask(t)))

	dispatcher.Close()
	assert.Empty(t, sub.events())
}

func TestDispatcherSubscriberErrorDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewDispatcher(discardLogger())
	failing := &recordingSubscriber{err: errors.New("boom")}
	healthy := &recordingSubscriber{}
	dispatcher.Subscribe(failing)
	dispatcher.Subscribe(healthy)

	task := newTask(t)
	buffer := events.NewBuffer()
	buffer.Raise(events.NewTaskEvent(events.EventTypeCreated, task))
	buffer.Raise(events.NewTaskEvent(events.EventTypeStatusChanged, task))

	dispatcher.FlushAsync(context.Background(), buffer)
	dispatcher.Close()

	// The failing subscriber saw both events and the healthy one was not
	// affected by its errors.
	assert.Len(t, failing.events(), 2)
	assert.Len(t, healthy.events(), 2)
}

func TestDispatcherFlushAfterCloseDropsEvents(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewDispatcher(discardLogger())
	sub := &recordingSubscriber{}
	dispatcher.Subscribe(sub)
	dispatcher.Close()

	buffer := events.NewBuffer()
	buffer.Raise(events.NewTaskEvent(events.EventTypeCreated, newTask(t)))
	dispatcher.FlushAsync(context.Background(), buffer)

	assert.Empty(t, sub.events())
}

func TestDispatcherEmptyBufferIsNoOp(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewDispatcher(discardLogger())
	sub := &recordingSubscriber{}
	dispatcher.Subscribe(sub)

	dispatcher.FlushAsync(context.Background(), events.NewBuffer())
	dispatcher.FlushAsync(context.Background(), nil)
	dispatcher.Close()

	assert.Empty(t, sub.events())
}

func TestTaskEventCarriesDetachedSnapshot(t *testing.T) {
	t.Parallel()

	task := newTask(t)
	event := events.NewTaskEvent(events.EventTypeCreated, task)

	task.Title = "mutated after emission"

	assert.Equal(t, "test task", event.Task.Title)
	assert.Equal(t, task.ID, event.TaskID)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestTaskDeletedEventCarriesOnlyID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	event := events.NewTaskDeletedEvent(id)

	assert.Equal(t, events.EventTypeDeleted, event.Type)
	assert.Equal(t, id, event.TaskID)
	assert.Equal(t, uuid.Nil, event.Task.ID)
}
