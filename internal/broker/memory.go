package broker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryBroker is an in-process Broker implementation backed by per-topic
// buffered channels. It exists for tests and local development; production
// deployments use the Redis Streams broker.
type MemoryBroker struct {
	mu     sync.Mutex
	topics map[string]chan Message
	nextID int
}

// NewMemoryBroker creates an empty in-memory broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		topics: make(map[string]chan Message),
	}
}

// topic returns the channel for the named topic, creating it on first use.
func (b *MemoryBroker) topic(name string) chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.topics[name]
	if !ok {
		ch = make(chan Message, 1024)
		b.topics[name] = ch
	}
	return ch
}

// Append implements Producer.
func (b *MemoryBroker) Append(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	b.nextID++
	id := fmt.Sprintf("%d", b.nextID)
	b.mu.Unlock()

	select {
	case b.topic(topic) <- Message{ID: id, Payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("topic %q is full", topic)
	}
}

// Subscribe implements Broker. The in-memory broker has a single implicit
// consumer group per topic; groupID is accepted for interface parity.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic, groupID string) (Subscription, error) {
	return &memorySubscription{ch: b.topic(topic)}, nil
}

// memorySubscription reads from the topic channel. Delivery through a shared
// channel already guarantees at most one active delivery per message, so Ack
// is a no-op.
type memorySubscription struct {
	ch <-chan Message
}

// Fetch implements Subscription, waiting briefly for a message.
func (s *memorySubscription) Fetch(ctx context.Context) ([]Message, error) {
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil, nil
		}
		return []Message{msg}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return nil, nil
	}
}

// Ack implements Subscription.
func (s *memorySubscription) Ack(ctx context.Context, messageID string) error {
	return nil
}

// Close implements Subscription.
func (s *memorySubscription) Close() error {
	return nil
}

// Ensure MemoryBroker implements Broker.
var _ Broker = (*MemoryBroker)(nil)
