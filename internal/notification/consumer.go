package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskpulse/taskpulse/internal/broker"
)

// fetchRetryDelay is how long the consumer waits after a broker read error
// before trying again.
const fetchRetryDelay = time.Second

// Consumer is a long-lived worker that reads notification messages from the
// broker topic and dispatches each to the channels registered for its type.
// Many consumer instances may run in parallel under the same consumer-group
// identity; the broker guarantees at most one active delivery of a message
// across the group.
//
// Delivery is best effort: a message with no registered channel, a malformed
// payload, or a channel send failure is logged and acked. There is no retry
// and no dead-letter queue; sending a recipient the same message twice after
// a redelivery is acceptable.
type Consumer struct {
	brk      broker.Broker
	topic    string
	groupID  string
	registry *Registry
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer creates a Consumer for the given topic and consumer group.
func NewConsumer(
	brk broker.Broker,
	topic, groupID string,
	registry *Registry,
	logger *slog.Logger,
) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		brk:      brk,
		topic:    topic,
		groupID:  groupID,
		registry: registry,
		logger: logger.With(
			"component", "notification_consumer",
			"topic", topic,
			"group_id", groupID,
		),
	}
}

// Start subscribes to the topic and begins consuming on a background
// goroutine. It returns once the subscription is established.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel

	sub, err := c.brk.Subscribe(ctx, c.topic, c.groupID)
	if err != nil {
		cancel()
		return err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if err := sub.Close(); err != nil {
				c.logger.Error("failed to close subscription", "error", err)
			}
		}()
		c.run(ctx, sub)
	}()

	c.logger.Info("notification consumer started")
	return nil
}

// Stop shuts the consumer down, letting an in-flight dispatch finish rather
// than abandoning it mid-send.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("notification consumer stopped")
}

// run is the consume loop: fetch a batch, process and ack each message,
// repeat until the context is cancelled.
func (c *Consumer) run(ctx context.Context, sub broker.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := sub.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to fetch messages", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		for _, raw := range messages {
			// Process before checking for shutdown so an already fetched
			// message is drained, not abandoned.
			c.process(ctx, raw)

			if err := sub.Ack(context.WithoutCancel(ctx), raw.ID); err != nil {
				c.logger.Error("failed to ack message",
					"error", err,
					"message_id", raw.ID)
			}
		}
	}
}

// process dispatches one broker message to the channels registered for its
// type. All failure modes complete the message: nothing here is a poison
// message.
func (c *Consumer) process(ctx context.Context, raw broker.Message) {
	msg, err := UnmarshalMessage(raw.Payload)
	if err != nil {
		c.logger.Error("dropping malformed notification message",
			"error", err,
			"message_id", raw.ID)
		return
	}

	log := c.logger.With(
		"notification_type", msg.Type,
		"task_id", msg.TaskID,
		"recipient", msg.Recipient,
	)

	if !msg.Type.IsValid() {
		log.Warn("unknown notification type, completing message anyway")
		return
	}

	channels := c.registry.ChannelsFor(msg.Type)
	if len(channels) == 0 {
		log.Warn("no delivery channel registered, completing message anyway")
		return
	}

	log.Info("processing notification message")

	for _, channel := range channels {
		if err := channel.Send(ctx, msg.Recipient, msg.Subject, msg.Body); err != nil {
			log.Error("channel delivery failed",
				"error", err,
				"channel", channel.Name())
			continue
		}
		log.Debug("channel delivery succeeded", "channel", channel.Name())
	}
}
