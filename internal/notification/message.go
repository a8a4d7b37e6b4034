// Package notification translates committed task events into messages on the
// broker and delivers consumed messages through concrete channels.
package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type tags a notification message with the kind of event it describes.
type Type string

// Possible notification types.
const (
	TypeTaskAssigned      Type = "TASK_ASSIGNED"
	TypeTaskStatusChanged Type = "TASK_STATUS_CHANGED"
	TypeTaskReminder      Type = "TASK_REMINDER"
	TypeTaskOverdue       Type = "TASK_OVERDUE"
)

// IsValid reports whether t is a known notification type.
func (t Type) IsValid() bool {
	switch t {
	case TypeTaskAssigned, TypeTaskStatusChanged, TypeTaskReminder, TypeTaskOverdue:
		return true
	}
	return false
}

// Message is a channel-agnostic notification. It is created by the publisher
// from a committed task event, serialized onto the broker, and deserialized
// by the consumer. Messages are immutable once created.
type Message struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Type      Type      `json:"type"`
	TaskID    uuid.UUID `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Marshal serializes the message for the broker.
func (m *Message) Marshal() ([]byte, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification message: %w", err)
	}
	return payload, nil
}

// UnmarshalMessage deserializes a broker payload into a Message.
func UnmarshalMessage(payload []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification message: %w", err)
	}
	return &msg, nil
}
