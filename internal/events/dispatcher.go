package events

import (
	"context"
	"log/slog"
	"sync"
)

// Buffer accumulates events raised during a single database transaction. It
// is exclusively owned by the transaction that created it and must not be
// shared across concurrent transactions. If the transaction rolls back, the
// buffer is simply discarded and its events are never seen by subscribers.
type Buffer struct {
	events []*TaskEvent
}

// NewBuffer creates an empty event buffer for one transaction.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Raise appends an event to the buffer in emission order.
func (b *Buffer) Raise(event *TaskEvent) {
	b.events = append(b.events, event)
}

// Events returns the buffered events in emission order.
func (b *Buffer) Events() []*TaskEvent {
	return b.events
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Dispatcher releases committed event buffers to subscribers. It implements
// the commit gate: callers flush a buffer only after the transaction that
// filled it has durably committed, and drop the buffer on rollback by never
// flushing it.
//
// Flushes run on their own goroutine, never on the caller's thread, so broker
// latency is not added to the request path. Events from one buffer are
// dispatched in emission order; no ordering is guaranteed across buffers.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	closed      bool
	wg          sync.WaitGroup
	logger      *slog.Logger
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger.With("component", "event_dispatcher"),
	}
}

// Subscribe registers a subscriber to receive committed events.
func (d *Dispatcher) Subscribe(subscriber Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, subscriber)
	d.logger.Debug("registered event subscriber", "subscriber_count", len(d.subscribers))
}

// FlushAsync releases the buffer's events to subscribers on a background
// goroutine. It must be called only after the producing transaction has
// committed. The caller's context is detached from cancellation so an already
// committed mutation cannot have its notifications cut short by the request
// ending, but context values (such as a scoped logger) are preserved.
func (d *Dispatcher) FlushAsync(ctx context.Context, buffer *Buffer) {
	if buffer == nil || buffer.Len() == 0 {
		return
	}

	// Copy out the events so the dispatch goroutine owns them outright.
	events := make([]*TaskEvent, buffer.Len())
	copy(events, buffer.Events())

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher closed, dropping committed events",
			"event_count", len(events))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.dispatch(context.WithoutCancel(ctx), events)
	}()
}

// dispatch delivers the events to every subscriber in emission order. Each
// event is delivered at most once per subscriber; subscriber errors are
// logged and swallowed.
func (d *Dispatcher) dispatch(ctx context.Context, eventList []*TaskEvent) {
	d.mu.RLock()
	subscribers := make([]Subscriber, len(d.subscribers))
	copy(subscribers, d.subscribers)
	d.mu.RUnlock()

	if len(subscribers) == 0 {
		d.logger.Warn("no subscribers registered for committed events",
			"event_count", len(eventList))
		return
	}

	for _, event := range eventList {
		for _, subscriber := range subscribers {
			if err := subscriber.HandleEvent(ctx, event); err != nil {
				d.logger.Error("subscriber failed to process event",
					"error", err,
					"event_id", event.ID,
					"event_type", event.Type,
					"task_id", event.TaskID)
			}
		}
	}
}

// Close waits for all in-flight flushes to finish and stops accepting new
// ones. Used for graceful shutdown so committed events already handed to the
// dispatcher are drained rather than abandoned mid-dispatch.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
