// Package broker defines the durable message channel that decouples the
// notification publisher from the notification consumer in time and process.
// Delivery semantics are at-least-once: a message may be redelivered if a
// consumer crashes between fetch and ack, and consumers must tolerate
// duplicates.
package broker

import "context"

// Message is a single payload carried by a topic.
type Message struct {
	// ID is the broker-assigned identity of the message, used to ack it.
	ID string

	// Payload is the serialized message body.
	Payload []byte
}

// Producer appends messages to a named topic.
type Producer interface {
	// Append adds the payload to the topic. The payload is durable once
	// Append returns nil.
	Append(ctx context.Context, topic string, payload []byte) error
}

// Subscription is a consumer-group cursor over one topic. At most one active
// delivery of a given message occurs across the group at any instant. The
// subscription owns the group offset; producers must never manipulate it.
type Subscription interface {
	// Fetch returns the next batch of messages, blocking up to the
	// implementation's configured wait when the topic is empty. An empty
	// slice with a nil error means no messages arrived within the wait.
	Fetch(ctx context.Context) ([]Message, error)

	// Ack marks a fetched message as processed so the group does not
	// redeliver it.
	Ack(ctx context.Context, messageID string) error

	// Close releases the subscription.
	Close() error
}

// Broker combines producing and subscribing on named topics.
type Broker interface {
	Producer

	// Subscribe joins the consumer group identified by groupID on the topic,
	// creating topic and group as needed.
	Subscribe(ctx context.Context, topic, groupID string) (Subscription, error)
}
