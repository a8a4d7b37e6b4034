package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/events"
	"github.com/taskpulse/taskpulse/internal/store"
)

// auditEntityTask is the entity type tag stamped on task audit records.
const auditEntityTask = "TASK"

// defaultActor is recorded when a mutation has no acting user.
const defaultActor = "SYSTEM"

// CreateTaskInput carries the fields for creating a task. Status defaults to
// TODO and priority to MEDIUM when left as their zero values.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uuid.UUID
	CreatedByID *uuid.UUID
}

// UpdateTaskInput is a partial patch: only non-nil fields are applied.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	AssigneeID  *uuid.UUID
}

// TaskService owns task state transitions. Every mutating operation runs
// inside one transaction boundary; domain events raised during the mutation
// are released to subscribers only after the transaction commits, and are
// discarded if it rolls back. Each mutation also records an audit trail entry
// as a fire-and-forget side effect.
type TaskService interface {
	// CreateTask creates a task. A create with a non-nil assignee raises an
	// Assigned event. Returns ErrInvalidReference if the assignee or creator
	// ID does not resolve.
	CreateTask(ctx context.Context, input CreateTaskInput, actor string) (*domain.Task, error)

	// GetTask retrieves a task by ID. Returns ErrTaskNotFound if absent.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial patch. A status change raises a
	// StatusChanged event; an assignee change raises an Assigned event.
	UpdateTask(ctx context.Context, id uuid.UUID, patch UpdateTaskInput, actor string) (*domain.Task, error)

	// UpdateStatus transitions the task to the given status. Changing the
	// status to COMPLETED stamps CompletedAt. A no-op if the status is
	// unchanged.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus, actor string) (*domain.Task, error)

	// UpdateAssignee changes the task's assignee; nil unassigns. A no-op if
	// the assignee is unchanged.
	UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID, actor string) (*domain.Task, error)

	// DeleteTask removes the task and raises a Deleted event.
	DeleteTask(ctx context.Context, id uuid.UUID, actor string) error

	// MarkReminderSent sets the task's reminder-sent flag. Idempotent:
	// marking an already-marked task succeeds and leaves the flag true.
	MarkReminderSent(ctx context.Context, id uuid.UUID) error

	// RaiseReminder raises a Reminder event for the task through the same
	// commit-gated dispatch path as interactive mutations.
	RaiseReminder(ctx context.Context, id uuid.UUID) error

	// FindDueForReminder returns tasks whose due date is at or before the
	// threshold, not yet reminded, and not in a terminal status.
	FindDueForReminder(ctx context.Context, threshold time.Time) ([]*domain.Task, error)
}

// auditEntry is an audit record deferred until after the transaction commits.
type auditEntry struct {
	action   domain.AuditAction
	oldValue *string
	newValue *string
	detail   string
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tx         store.TxManager
	taskStore  store.TaskStore
	userStore  store.UserStore
	audit      AuditRecorder
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tx store.TxManager,
	taskStore store.TaskStore,
	userStore store.UserStore,
	audit AuditRecorder,
	dispatcher *events.Dispatcher,
	logger *slog.Logger,
) (TaskService, error) {
	if tx == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "tx manager cannot be nil"}
	}
	if taskStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "taskStore cannot be nil"}
	}
	if userStore == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if audit == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "audit recorder cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tx:         tx,
		taskStore:  taskStore,
		userStore:  userStore,
		audit:      audit,
		dispatcher: dispatcher,
		logger:     logger.With("component", "task_service"),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
	actor string,
) (*domain.Task, error) {
	task, err := domain.NewTask(input.Title, input.Description, input.Status, input.Priority)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "invalid task data", err)
	}
	task.DueDate = input.DueDate

	buffer := events.NewBuffer()

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.userStore.WithTx(tx)

		if input.AssigneeID != nil {
			if err := s.resolveUser(ctx, txUsers, *input.AssigneeID); err != nil {
				return err
			}
			task.AssigneeID = input.AssigneeID
		}
		if input.CreatedByID != nil {
			if err := s.resolveUser(ctx, txUsers, *input.CreatedByID); err != nil {
				return err
			}
			task.CreatedByID = input.CreatedByID
		}

		if err := s.taskStore.WithTx(tx).Create(ctx, task); err != nil {
			return NewTaskServiceError("create_task", "failed to save task", err)
		}

		buffer.Raise(events.NewTaskEvent(events.EventTypeCreated, task))
		if task.AssigneeID != nil {
			buffer.Raise(events.NewTaskEvent(events.EventTypeAssigned, task))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.FlushAsync(ctx, buffer)
	s.audit.Record(ctx, auditEntityTask, task.ID.String(), domain.AuditActionCreate,
		orDefaultActor(actor), nil, strPtr(task.Title), "Task created")

	s.logger.Info("task created",
		"task_id", task.ID,
		"title", task.Title,
		"assignee_set", task.AssigneeID != nil)
	return task, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask. Only non-nil patch fields are
// applied.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	patch UpdateTaskInput,
	actor string,
) (*domain.Task, error) {
	var updated *domain.Task
	buffer := events.NewBuffer()
	var deferred []auditEntry

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.getForUpdate(ctx, txTasks, id, "update_task")
		if err != nil {
			return err
		}

		if patch.Title != nil {
			task.Title = *patch.Title
		}
		if patch.Description != nil {
			task.Description = *patch.Description
		}
		if patch.Priority != nil {
			task.Priority = *patch.Priority
		}
		if patch.DueDate != nil {
			task.DueDate = patch.DueDate
		}

		if patch.Status != nil && *patch.Status != task.Status {
			oldStatus := task.Status
			if err := task.ChangeStatus(*patch.Status); err != nil {
				return NewTaskServiceError("update_task", "invalid status", err)
			}
			deferred = append(deferred, auditEntry{
				action:   domain.AuditActionStatusChange,
				oldValue: strPtr(string(oldStatus)),
				newValue: strPtr(string(task.Status)),
				detail:   "Task status changed",
			})
			buffer.Raise(events.NewTaskEvent(events.EventTypeStatusChanged, task))
		}

		if patch.AssigneeID != nil && !sameAssignee(task.AssigneeID, patch.AssigneeID) {
			if err := s.resolveUser(ctx, s.userStore.WithTx(tx), *patch.AssigneeID); err != nil {
				return err
			}
			oldAssignee := task.AssigneeID
			task.Assign(patch.AssigneeID)
			deferred = append(deferred, auditEntry{
				action:   domain.AuditActionAssign,
				oldValue: uuidStrPtr(oldAssignee),
				newValue: uuidStrPtr(task.AssigneeID),
				detail:   "Task assigned",
			})
			buffer.Raise(events.NewTaskEvent(events.EventTypeAssigned, task))
		}

		task.UpdatedAt = time.Now().UTC()

		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("update_task", "failed to save task", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.FlushAsync(ctx, buffer)
	for _, entry := range deferred {
		s.audit.Record(ctx, auditEntityTask, id.String(), entry.action,
			orDefaultActor(actor), entry.oldValue, entry.newValue, entry.detail)
	}
	s.audit.Record(ctx, auditEntityTask, id.String(), domain.AuditActionUpdate,
		orDefaultActor(actor), nil, nil, "Task updated")

	s.logger.Info("task updated", "task_id", id)
	return updated, nil
}

// UpdateStatus implements TaskService.UpdateStatus.
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TaskStatus,
	actor string,
) (*domain.Task, error) {
	var updated *domain.Task
	var oldStatus domain.TaskStatus
	buffer := events.NewBuffer()

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.getForUpdate(ctx, txTasks, id, "update_status")
		if err != nil {
			return err
		}

		if task.Status == status {
			updated = task
			return nil
		}

		oldStatus = task.Status
		if err := task.ChangeStatus(status); err != nil {
			return NewTaskServiceError("update_status", "invalid status", err)
		}

		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("update_status", "failed to save task", err)
		}

		buffer.Raise(events.NewTaskEvent(events.EventTypeStatusChanged, task))
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	if buffer.Len() > 0 {
		s.dispatcher.FlushAsync(ctx, buffer)
		s.audit.Record(ctx, auditEntityTask, id.String(), domain.AuditActionStatusChange,
			orDefaultActor(actor), strPtr(string(oldStatus)), strPtr(string(updated.Status)),
			"Task status changed")
		s.logger.Info("task status changed",
			"task_id", id,
			"old_status", oldStatus,
			"new_status", updated.Status)
	}
	return updated, nil
}

// UpdateAssignee implements TaskService.UpdateAssignee.
func (s *taskServiceImpl) UpdateAssignee(
	ctx context.Context,
	id uuid.UUID,
	assigneeID *uuid.UUID,
	actor string,
) (*domain.Task, error) {
	var updated *domain.Task
	var oldAssignee *uuid.UUID
	buffer := events.NewBuffer()

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.getForUpdate(ctx, txTasks, id, "update_assignee")
		if err != nil {
			return err
		}

		if sameAssignee(task.AssigneeID, assigneeID) {
			updated = task
			return nil
		}

		if assigneeID != nil {
			if err := s.resolveUser(ctx, s.userStore.WithTx(tx), *assigneeID); err != nil {
				return err
			}
		}

		oldAssignee = task.AssigneeID
		task.Assign(assigneeID)

		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("update_assignee", "failed to save task", err)
		}

		buffer.Raise(events.NewTaskEvent(events.EventTypeAssigned, task))
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	if buffer.Len() > 0 {
		s.dispatcher.FlushAsync(ctx, buffer)

		action := domain.AuditActionAssign
		detail := "Task assigned"
		if assigneeID == nil {
			action = domain.AuditActionUnassign
			detail = "Task unassigned"
		}
		s.audit.Record(ctx, auditEntityTask, id.String(), action,
			orDefaultActor(actor), uuidStrPtr(oldAssignee), uuidStrPtr(assigneeID), detail)

		s.logger.Info("task assignee changed",
			"task_id", id,
			"assignee_set", assigneeID != nil)
	}
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID, actor string) error {
	var title string
	buffer := events.NewBuffer()

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.getForUpdate(ctx, txTasks, id, "delete_task")
		if err != nil {
			return err
		}
		title = task.Title

		if err := txTasks.Delete(ctx, id); err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				return ErrTaskNotFound
			}
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}

		buffer.Raise(events.NewTaskDeletedEvent(id))
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatcher.FlushAsync(ctx, buffer)
	s.audit.Record(ctx, auditEntityTask, id.String(), domain.AuditActionDelete,
		orDefaultActor(actor), strPtr(title), nil, "Task deleted")

	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// MarkReminderSent implements TaskService.MarkReminderSent.
func (s *taskServiceImpl) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.getForUpdate(ctx, txTasks, id, "mark_reminder_sent")
		if err != nil {
			return err
		}

		if task.ReminderSent {
			return nil
		}
		task.MarkReminderSent()

		if err := txTasks.Update(ctx, task); err != nil {
			return NewTaskServiceError("mark_reminder_sent", "failed to save task", err)
		}
		return nil
	})
}

// RaiseReminder implements TaskService.RaiseReminder. The event goes through
// the same commit-gated path as interactive mutations even though nothing is
// written: a reminder is only released once the read transaction completes.
func (s *taskServiceImpl) RaiseReminder(ctx context.Context, id uuid.UUID) error {
	buffer := events.NewBuffer()

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		task, err := s.getForUpdate(ctx, s.taskStore.WithTx(tx), id, "raise_reminder")
		if err != nil {
			return err
		}
		buffer.Raise(events.NewTaskEvent(events.EventTypeReminder, task))
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatcher.FlushAsync(ctx, buffer)
	return nil
}

// FindDueForReminder implements TaskService.FindDueForReminder.
func (s *taskServiceImpl) FindDueForReminder(
	ctx context.Context,
	threshold time.Time,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.FindDueForReminder(ctx, threshold)
	if err != nil {
		return nil, NewTaskServiceError("find_due_for_reminder", "failed to query tasks", err)
	}
	return tasks, nil
}

// getForUpdate loads a task inside the transaction, mapping the store's
// not-found sentinel to the service-level one.
func (s *taskServiceImpl) getForUpdate(
	ctx context.Context,
	txTasks store.TaskStore,
	id uuid.UUID,
	operation string,
) (*domain.Task, error) {
	task, err := txTasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, NewTaskServiceError(operation, "failed to retrieve task", err)
	}
	return task, nil
}

// resolveUser verifies a user reference exists, mapping absence to
// ErrInvalidReference.
func (s *taskServiceImpl) resolveUser(
	ctx context.Context,
	txUsers store.UserStore,
	id uuid.UUID,
) error {
	if _, err := txUsers.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrInvalidReference
		}
		return NewTaskServiceError("resolve_user", "failed to look up user", err)
	}
	return nil
}

// sameAssignee reports whether two assignee references point at the same user
// (or are both unset).
func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// orDefaultActor substitutes the system actor when none was supplied.
func orDefaultActor(actor string) string {
	if actor == "" {
		return defaultActor
	}
	return actor
}

// strPtr returns a pointer to s.
func strPtr(s string) *string {
	return &s
}

// uuidStrPtr renders an optional UUID as an optional string.
func uuidStrPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
