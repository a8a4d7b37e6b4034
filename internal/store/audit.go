package store

import (
	"context"
	"database/sql"

	"github.com/taskpulse/taskpulse/internal/domain"
)

// AuditLogStore defines the interface for the append-only audit trail.
// Records are never updated or deleted.
type AuditLogStore interface {
	// Append persists a new audit record.
	Append(ctx context.Context, record *domain.AuditLog) error

	// ListByEntity retrieves all audit records for the given entity, newest
	// first. Records survive deletion of the entity they describe.
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*domain.AuditLog, error)

	// WithTx returns a new AuditLogStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AuditLogStore
}
