package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/mocks"
	"github.com/taskpulse/taskpulse/internal/service"
)

func TestAuditLogServiceRecord(t *testing.T) {
	t.Parallel()

	auditStore := mocks.NewAuditLogStore()
	svc := service.NewAuditLogService(auditStore, discardLogger())

	old := "TODO"
	updated := "IN_PROGRESS"
	svc.Record(context.Background(), "TASK", "task-1", domain.AuditActionStatusChange,
		"tester", &old, &updated, "Task status changed")
	svc.Wait()

	records := auditStore.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "TASK", records[0].EntityType)
	assert.Equal(t, "task-1", records[0].EntityID)
	assert.Equal(t, domain.AuditActionStatusChange, records[0].Action)
	assert.Equal(t, "tester", records[0].Actor)
	require.NotNil(t, records[0].OldValue)
	assert.Equal(t, "TODO", *records[0].OldValue)
	require.NotNil(t, records[0].NewValue)
	assert.Equal(t, "IN_PROGRESS", *records[0].NewValue)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestAuditLogServiceSwallowsStoreFailure(t *testing.T) {
	t.Parallel()

	auditStore := mocks.NewAuditLogStore()
	auditStore.AppendErr = errors.New("disk full")
	svc := service.NewAuditLogService(auditStore, discardLogger())

	// Record never surfaces the failure to the caller.
	svc.Record(context.Background(), "TASK", "task-1", domain.AuditActionCreate,
		"tester", nil, nil, "Task created")
	svc.Wait()

	assert.Empty(t, auditStore.Records())
}

func TestAuditLogServiceRejectsInvalidRecord(t *testing.T) {
	t.Parallel()

	auditStore := mocks.NewAuditLogStore()
	svc := service.NewAuditLogService(auditStore, discardLogger())

	// Unknown action: the record fails validation and nothing is appended.
	svc.Record(context.Background(), "TASK", "task-1", domain.AuditAction("EXPLODED"),
		"tester", nil, nil, "")
	svc.Wait()

	assert.Empty(t, auditStore.Records())
}

func TestAuditLogStoreListByEntityNewestFirst(t *testing.T) {
	t.Parallel()

	auditStore := mocks.NewAuditLogStore()
	svc := service.NewAuditLogService(auditStore, discardLogger())

	svc.Record(context.Background(), "TASK", "task-1", domain.AuditActionCreate, "a", nil, nil, "")
	svc.Wait()
	svc.Record(context.Background(), "TASK", "task-1", domain.AuditActionUpdate, "a", nil, nil, "")
	svc.Record(context.Background(), "TASK", "task-2", domain.AuditActionCreate, "a", nil, nil, "")
	svc.Wait()

	records, err := auditStore.ListByEntity(context.Background(), "TASK", "task-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
}
