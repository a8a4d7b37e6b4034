// Package redisbroker implements the broker interfaces on Redis Streams.
// Consumer groups provide the at-least-once, shared-cursor subscription the
// notification consumer relies on: each message is delivered to exactly one
// member of the group at a time and redelivered only if never acked.
package redisbroker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/taskpulse/taskpulse/internal/broker"
)

// payloadField is the stream entry field carrying the serialized message.
const payloadField = "payload"

// defaultBlock is how long a Fetch waits for new messages before returning
// an empty batch.
const defaultBlock = 5 * time.Second

// defaultBatchSize is the maximum number of messages returned per Fetch.
const defaultBatchSize = 16

// Broker implements broker.Broker on a Redis client.
type Broker struct {
	client *redis.Client
	block  time.Duration
	logger *slog.Logger
}

// Option configures a Broker.
type Option func(*Broker)

// WithBlock overrides how long Fetch blocks waiting for messages.
func WithBlock(d time.Duration) Option {
	return func(b *Broker) {
		b.block = d
	}
}

// New creates a Redis Streams broker using the given client.
func New(client *redis.Client, logger *slog.Logger, opts ...Option) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Broker{
		client: client,
		block:  defaultBlock,
		logger: logger.With("component", "redis_broker"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append implements broker.Producer by adding an entry to the topic stream.
func (b *Broker) Append(ctx context.Context, topic string, payload []byte) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{payloadField: payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to stream %q: %w", topic, err)
	}
	return nil
}

// Subscribe implements broker.Broker. The consumer group is created from the
// beginning of the stream if it does not exist yet, so messages appended
// before the first subscriber are still delivered.
func (b *Broker) Subscribe(ctx context.Context, topic, groupID string) (broker.Subscription, error) {
	err := b.client.XGroupCreateMkStream(ctx, topic, groupID, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return nil, fmt.Errorf("failed to create consumer group %q on %q: %w", groupID, topic, err)
	}

	return &subscription{
		client:   b.client,
		topic:    topic,
		groupID:  groupID,
		consumer: consumerName(),
		block:    b.block,
		logger: b.logger.With(
			"topic", topic,
			"group_id", groupID,
		),
	}, nil
}

// isBusyGroup reports whether err is the BUSYGROUP reply Redis returns when
// the consumer group already exists. Group creation is idempotent from the
// subscriber's point of view.
func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// consumerName builds a name unique to this worker instance so parallel
// workers in the same group get distinct pending-entry lists.
func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%s", host, uuid.New().String()[:8])
}

// subscription is a consumer-group cursor over one stream.
type subscription struct {
	client   *redis.Client
	topic    string
	groupID  string
	consumer string
	block    time.Duration
	logger   *slog.Logger
}

// Fetch implements broker.Subscription.
func (s *subscription) Fetch(ctx context.Context) ([]broker.Message, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.groupID,
		Consumer: s.consumer,
		Streams:  []string{s.topic, ">"},
		Count:    defaultBatchSize,
		Block:    s.block,
	}).Result()
	if err != nil {
		// redis.Nil means the block timed out with nothing to read.
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream %q: %w", s.topic, err)
	}

	var messages []broker.Message
	for _, stream := range streams {
		for _, entry := range stream.Messages {
			payload, ok := entry.Values[payloadField].(string)
			if !ok {
				// Malformed entry: ack it so the group does not redeliver it forever.
				s.logger.Warn("dropping stream entry without payload field",
					"message_id", entry.ID)
				if ackErr := s.Ack(ctx, entry.ID); ackErr != nil {
					s.logger.Error("failed to ack malformed entry",
						"error", ackErr,
						"message_id", entry.ID)
				}
				continue
			}
			messages = append(messages, broker.Message{
				ID:      entry.ID,
				Payload: []byte(payload),
			})
		}
	}

	return messages, nil
}

// Ack implements broker.Subscription.
func (s *subscription) Ack(ctx context.Context, messageID string) error {
	if err := s.client.XAck(ctx, s.topic, s.groupID, messageID).Err(); err != nil {
		return fmt.Errorf("failed to ack message %q: %w", messageID, err)
	}
	return nil
}

// Close implements broker.Subscription.
func (s *subscription) Close() error {
	return nil
}

// Ensure Broker implements broker.Broker.
var _ broker.Broker = (*Broker)(nil)
