package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/store"
)

// AuditRecorder records immutable facts about entity mutations. Recording is
// fire-and-forget from the caller's perspective: failures are logged and
// swallowed, and must never block or abort the mutation being audited.
type AuditRecorder interface {
	Record(
		ctx context.Context,
		entityType, entityID string,
		action domain.AuditAction,
		actor string,
		oldValue, newValue *string,
		detail string,
	)
}

// AuditLogService implements AuditRecorder on top of an AuditLogStore. The
// append runs asynchronously relative to the mutation that triggered it, so a
// request can return before its audit write has completed.
type AuditLogService struct {
	auditStore store.AuditLogStore
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewAuditLogService creates a new AuditLogService.
func NewAuditLogService(auditStore store.AuditLogStore, logger *slog.Logger) *AuditLogService {
	if auditStore == nil {
		panic("auditStore cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogService{
		auditStore: auditStore,
		logger:     logger.With("component", "audit_log_service"),
	}
}

// Ensure AuditLogService implements AuditRecorder.
var _ AuditRecorder = (*AuditLogService)(nil)

// Record implements AuditRecorder. The record is appended on a background
// goroutine; the caller's context is detached from cancellation so the write
// is not cut short by the originating request ending.
func (s *AuditLogService) Record(
	ctx context.Context,
	entityType, entityID string,
	action domain.AuditAction,
	actor string,
	oldValue, newValue *string,
	detail string,
) {
	record, err := domain.NewAuditLog(entityType, entityID, action, actor, oldValue, newValue, detail)
	if err != nil {
		s.logger.Error("failed to build audit record",
			"error", err,
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action)
		return
	}

	appendCtx := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.auditStore.Append(appendCtx, record); err != nil {
			s.logger.Error("failed to append audit record",
				"error", err,
				"entity_type", entityType,
				"entity_id", entityID,
				"action", action)
		}
	}()
}

// Wait blocks until all in-flight audit writes have finished. Used for
// graceful shutdown.
func (s *AuditLogService) Wait() {
	s.wg.Wait()
}
