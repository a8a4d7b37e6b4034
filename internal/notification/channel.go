package notification

import (
	"context"
	"log/slog"
	"sync"
)

// Channel is a concrete delivery mechanism for a notification message.
// Email is implemented today; SMS, push and chat are extension points.
type Channel interface {
	// Name identifies the channel in logs (e.g. "email", "sms").
	Name() string

	// Send delivers the subject/body pair to the recipient.
	Send(ctx context.Context, recipient, subject, body string) error
}

// Registry maps notification types to the channels that deliver them. A type
// may have zero or more channels; registering a new channel never requires
// editing the dispatch code.
type Registry struct {
	mu       sync.RWMutex
	channels map[Type][]Channel
}

// NewRegistry creates an empty channel registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[Type][]Channel),
	}
}

// Register adds a channel for the given notification types.
func (r *Registry) Register(channel Channel, types ...Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		r.channels[t] = append(r.channels[t], channel)
	}
}

// ChannelsFor returns the channels registered for the given type.
func (r *Registry) ChannelsFor(t Type) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	channels := make([]Channel, len(r.channels[t]))
	copy(channels, r.channels[t])
	return channels
}

// SMSChannel is a named extension point. It is not implemented yet and only
// logs the intent to send.
type SMSChannel struct {
	logger *slog.Logger
}

// NewSMSChannel creates the SMS stub channel.
func NewSMSChannel(logger *slog.Logger) *SMSChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMSChannel{logger: logger.With("component", "sms_channel")}
}

// Name implements Channel.
func (c *SMSChannel) Name() string { return "sms" }

// Send implements Channel as a no-op that logs intent.
func (c *SMSChannel) Send(ctx context.Context, recipient, subject, body string) error {
	c.logger.Info("sms delivery not implemented, skipping",
		"recipient", recipient,
		"subject", subject)
	return nil
}

// PushChannel is a named extension point. It is not implemented yet and only
// logs the intent to send.
type PushChannel struct {
	logger *slog.Logger
}

// NewPushChannel creates the push-notification stub channel.
func NewPushChannel(logger *slog.Logger) *PushChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushChannel{logger: logger.With("component", "push_channel")}
}

// Name implements Channel.
func (c *PushChannel) Name() string { return "push" }

// Send implements Channel as a no-op that logs intent.
func (c *PushChannel) Send(ctx context.Context, recipient, subject, body string) error {
	c.logger.Info("push delivery not implemented, skipping",
		"recipient", recipient,
		"subject", subject)
	return nil
}

// ChatChannel is a named extension point. It is not implemented yet and only
// logs the intent to send.
type ChatChannel struct {
	logger *slog.Logger
}

// NewChatChannel creates the chat stub channel.
func NewChatChannel(logger *slog.Logger) *ChatChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatChannel{logger: logger.With("component", "chat_channel")}
}

// Name implements Channel.
func (c *ChatChannel) Name() string { return "chat" }

// Send implements Channel as a no-op that logs intent.
func (c *ChatChannel) Send(ctx context.Context, recipient, subject, body string) error {
	c.logger.Info("chat delivery not implemented, skipping",
		"recipient", recipient,
		"subject", subject)
	return nil
}
