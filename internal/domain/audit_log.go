package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies the kind of mutation an audit record describes.
type AuditAction string

// Possible audit action values.
const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
	AuditActionAssign       AuditAction = "ASSIGN"
	AuditActionUnassign     AuditAction = "UNASSIGN"
	AuditActionFileUpload   AuditAction = "FILE_UPLOAD"
	AuditActionFileDelete   AuditAction = "FILE_DELETE"
	AuditActionBulkImport   AuditAction = "BULK_IMPORT"
)

// AuditLog validation errors
var (
	// ErrAuditEntityTypeEmpty is returned when an audit record has no entity type.
	ErrAuditEntityTypeEmpty = errors.New("audit entity type cannot be empty")

	// ErrAuditActionInvalid is returned when an audit action is not a known value.
	ErrAuditActionInvalid = errors.New("invalid audit action")
)

// IsValid reports whether a is a known audit action.
func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete,
		AuditActionStatusChange, AuditActionAssign, AuditActionUnassign,
		AuditActionFileUpload, AuditActionFileDelete, AuditActionBulkImport:
		return true
	}
	return false
}

// AuditLog is an immutable fact describing who did what to which entity and
// when. Records reference entities by type and id rather than by live object,
// so they survive deletion of the entity they describe. Audit records are
// append-only and never updated or deleted.
type AuditLog struct {
	ID         uuid.UUID   `json:"id"`
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Action     AuditAction `json:"action"`
	Actor      string      `json:"actor"`
	OldValue   *string     `json:"old_value,omitempty"`
	NewValue   *string     `json:"new_value,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewAuditLog creates a new AuditLog record. oldValue and newValue may be nil
// when the mutation has no meaningful before or after snapshot.
// Returns an error if validation fails.
func NewAuditLog(
	entityType, entityID string,
	action AuditAction,
	actor string,
	oldValue, newValue *string,
	detail string,
) (*AuditLog, error) {
	record := &AuditLog{
		ID:         uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      actor,
		OldValue:   oldValue,
		NewValue:   newValue,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the AuditLog has valid data.
func (l *AuditLog) Validate() error {
	if l.EntityType == "" {
		return ErrAuditEntityTypeEmpty
	}

	if !l.Action.IsValid() {
		return ErrAuditActionInvalid
	}

	return nil
}
