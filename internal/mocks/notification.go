package mocks

import (
	"context"
	"sync"

	"github.com/taskpulse/taskpulse/internal/broker"
	"github.com/taskpulse/taskpulse/internal/events"
)

// Subscriber records every event it receives, in order.
type Subscriber struct {
	mu     sync.Mutex
	events []*events.TaskEvent

	HandleErr error
}

// NewSubscriber creates an event-recording subscriber.
func NewSubscriber() *Subscriber {
	return &Subscriber{}
}

// HandleEvent implements events.Subscriber.
func (s *Subscriber) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.HandleErr
}

// Events returns a copy of the events received so far.
func (s *Subscriber) Events() []*events.TaskEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	received := make([]*events.TaskEvent, len(s.events))
	copy(received, s.events)
	return received
}

// Ensure Subscriber implements events.Subscriber.
var _ events.Subscriber = (*Subscriber)(nil)

// AppendedMessage is one payload captured by Producer.
type AppendedMessage struct {
	Topic   string
	Payload []byte
}

// Producer records every payload appended to it.
type Producer struct {
	mu       sync.Mutex
	messages []AppendedMessage

	AppendErr error
}

// NewProducer creates a payload-recording producer.
func NewProducer() *Producer {
	return &Producer{}
}

// Append implements broker.Producer.
func (p *Producer) Append(ctx context.Context, topic string, payload []byte) error {
	if p.AppendErr != nil {
		return p.AppendErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := make([]byte, len(payload))
	copy(copied, payload)
	p.messages = append(p.messages, AppendedMessage{Topic: topic, Payload: copied})
	return nil
}

// Messages returns a copy of everything appended so far.
func (p *Producer) Messages() []AppendedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	messages := make([]AppendedMessage, len(p.messages))
	copy(messages, p.messages)
	return messages
}

// Ensure Producer implements broker.Producer.
var _ broker.Producer = (*Producer)(nil)

// SentMessage is one delivery captured by Channel.
type SentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

// Channel records every message sent through it.
type Channel struct {
	mu       sync.Mutex
	sent     []SentMessage
	nameFunc string

	SendErr error
}

// NewChannel creates a delivery-recording channel with the given name.
func NewChannel(name string) *Channel {
	return &Channel{nameFunc: name}
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.nameFunc }

// Send records the delivery.
func (c *Channel) Send(ctx context.Context, recipient, subject, body string) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, SentMessage{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of the deliveries recorded so far.
func (c *Channel) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	sent := make([]SentMessage, len(c.sent))
	copy(sent, c.sent)
	return sent
}
