package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taskpulse/taskpulse/internal/broker"
	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/events"
	"github.com/taskpulse/taskpulse/internal/store"
)

// Publisher subscribes to committed task events and translates them into
// notification messages on the broker.
//
// It runs strictly past the commit gate: every failure here (unresolvable
// recipient, serialization error, broker unreachable) is logged and swallowed,
// because the mutation that produced the event has already committed and must
// never appear to have failed.
type Publisher struct {
	users    store.UserStore
	producer broker.Producer
	topic    string
	enabled  bool
	logger   *slog.Logger
}

// NewPublisher creates a Publisher appending to the given topic.
// The enabled flag is the global notification switch: when false, committed
// events are suppressed with a log line instead of being published.
func NewPublisher(
	users store.UserStore,
	producer broker.Producer,
	topic string,
	enabled bool,
	logger *slog.Logger,
) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		users:    users,
		producer: producer,
		topic:    topic,
		enabled:  enabled,
		logger:   logger.With("component", "notification_publisher"),
	}
}

// Ensure Publisher implements events.Subscriber.
var _ events.Subscriber = (*Publisher)(nil)

// HandleEvent implements events.Subscriber. Events without a notification
// mapping (Created, Deleted) are dropped; a mapped event whose task has no
// assignee is dropped silently, since "no one to notify" is not a failure.
func (p *Publisher) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	notificationType, ok := mapEventType(event.Type)
	if !ok {
		p.logger.Debug("no notification mapping for event type",
			"event_type", event.Type,
			"task_id", event.TaskID)
		return nil
	}

	if !p.enabled {
		p.logger.Info("notifications are disabled, suppressing message",
			"event_type", event.Type,
			"task_id", event.TaskID)
		return nil
	}

	task := event.Task
	if task.AssigneeID == nil {
		p.logger.Debug("task has no assignee, nothing to notify",
			"event_type", event.Type,
			"task_id", event.TaskID)
		return nil
	}

	assignee, err := p.users.GetByID(ctx, *task.AssigneeID)
	if err != nil {
		// The assignee may have been deleted since the event was emitted.
		if errors.Is(err, store.ErrUserNotFound) {
			p.logger.Warn("assignee no longer exists, dropping notification",
				"task_id", event.TaskID,
				"assignee_id", *task.AssigneeID)
			return nil
		}
		p.logger.Error("failed to resolve notification recipient",
			"error", err,
			"task_id", event.TaskID,
			"assignee_id", *task.AssigneeID)
		return nil
	}

	msg := buildMessage(notificationType, &task, assignee)

	payload, err := msg.Marshal()
	if err != nil {
		p.logger.Error("failed to serialize notification message",
			"error", err,
			"notification_type", msg.Type,
			"task_id", msg.TaskID)
		return nil
	}

	if err := p.producer.Append(ctx, p.topic, payload); err != nil {
		p.logger.Error("failed to publish notification message",
			"error", err,
			"notification_type", msg.Type,
			"task_id", msg.TaskID,
			"recipient", msg.Recipient,
			"topic", p.topic)
		return nil
	}

	p.logger.Info("notification message published",
		"notification_type", msg.Type,
		"task_id", msg.TaskID,
		"recipient", msg.Recipient,
		"topic", p.topic)
	return nil
}

// mapEventType returns the notification type for a task event type, or false
// when the event has no notification mapping.
func mapEventType(eventType events.EventType) (Type, bool) {
	switch eventType {
	case events.EventTypeAssigned:
		return TypeTaskAssigned, true
	case events.EventTypeStatusChanged:
		return TypeTaskStatusChanged, true
	case events.EventTypeReminder:
		return TypeTaskReminder, true
	default:
		return "", false
	}
}

// buildMessage renders the notification message for the given type.
func buildMessage(notificationType Type, task *domain.Task, assignee *domain.User) *Message {
	var subject, body string
	switch notificationType {
	case TypeTaskStatusChanged:
		subject, body = buildStatusChangeMessage(task, assignee)
	case TypeTaskReminder:
		subject, body = buildReminderMessage(task, assignee)
	default:
		subject, body = buildAssignmentMessage(task, assignee)
	}

	return &Message{
		Recipient: assignee.Email,
		Subject:   subject,
		Body:      body,
		Type:      notificationType,
		TaskID:    task.ID,
		Timestamp: time.Now().UTC(),
	}
}
