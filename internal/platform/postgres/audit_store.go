package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/platform/logger"
	"github.com/taskpulse/taskpulse/internal/store"
)

// PostgresAuditLogStore implements the store.AuditLogStore interface
// using a PostgreSQL database as the storage backend. The audit_logs table is
// append-only; this store intentionally exposes no update or delete.
type PostgresAuditLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditLogStore creates a new PostgreSQL implementation of the
// AuditLogStore interface. If logger is nil, a default logger will be used.
func NewPostgresAuditLogStore(db store.DBTX, logger *slog.Logger) *PostgresAuditLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAuditLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_log_store")),
	}
}

// Ensure PostgresAuditLogStore implements store.AuditLogStore interface
var _ store.AuditLogStore = (*PostgresAuditLogStore)(nil)

// Append implements store.AuditLogStore.Append.
func (s *PostgresAuditLogStore) Append(ctx context.Context, record *domain.AuditLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("audit record validation failed",
			slog.String("error", err.Error()),
			slog.String("entity_type", record.EntityType),
			slog.String("entity_id", record.EntityID))
		return err
	}

	query := `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, actor,
			old_value, new_value, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.EntityType,
		record.EntityID,
		record.Action,
		record.Actor,
		record.OldValue,
		record.NewValue,
		record.Detail,
		record.CreatedAt,
	)

	if err != nil {
		log.Error("failed to append audit record",
			slog.String("error", err.Error()),
			slog.String("entity_type", record.EntityType),
			slog.String("entity_id", record.EntityID),
			slog.String("action", string(record.Action)))
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

// ListByEntity implements store.AuditLogStore.ListByEntity.
func (s *PostgresAuditLogStore) ListByEntity(
	ctx context.Context,
	entityType, entityID string,
) ([]*domain.AuditLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.
		Select("id", "entity_type", "entity_id", "action", "actor",
			"old_value", "new_value", "detail", "created_at").
		From("audit_logs").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query audit records",
			slog.String("error", err.Error()),
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID))
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.AuditLog
	for rows.Next() {
		var record domain.AuditLog
		err := rows.Scan(
			&record.ID,
			&record.EntityType,
			&record.EntityID,
			&record.Action,
			&record.Actor,
			&record.OldValue,
			&record.NewValue,
			&record.Detail,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit records: %w", err)
	}

	return records, nil
}

// WithTx implements store.AuditLogStore.WithTx.
func (s *PostgresAuditLogStore) WithTx(tx *sql.Tx) store.AuditLogStore {
	return &PostgresAuditLogStore{
		db:     tx,
		logger: s.logger,
	}
}
