package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow      TaskPriority = "LOW"
	TaskPriorityMedium   TaskPriority = "MEDIUM"
	TaskPriorityHigh     TaskPriority = "HIGH"
	TaskPriorityCritical TaskPriority = "CRITICAL"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskStatusInvalid is returned when a task's status is not a known value.
	ErrTaskStatusInvalid = errors.New("invalid task status")

	// ErrTaskPriorityInvalid is returned when a task's priority is not a known value.
	ErrTaskPriorityInvalid = errors.New("invalid task priority")

	// ErrTaskCompletedAtMismatch is returned when completedAt disagrees with
	// the task status: it must be set when the status is COMPLETED and unset
	// otherwise.
	ErrTaskCompletedAtMismatch = errors.New("completedAt must be set if and only if status is COMPLETED")
)

// IsValid reports whether s is a known task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview,
		TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether a task in this status is done with its lifecycle
// and should no longer receive reminders.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// IsValid reports whether p is a known task priority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// Task represents a unit of work tracked by the system. A task is mutated only
// inside a database transaction owned by the task service.
type Task struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *time.Time   `json:"due_date,omitempty"`
	AssigneeID   *uuid.UUID   `json:"assignee_id,omitempty"`
	CreatedByID  *uuid.UUID   `json:"created_by_id,omitempty"`
	ReminderSent bool         `json:"reminder_sent"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// NewTask creates a new Task with the given title and description.
// Status defaults to TODO and priority to MEDIUM when the zero value is given.
// Returns an error if validation fails.
func NewTask(title, description string, status TaskStatus, priority TaskPriority) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if status == TaskStatusCompleted {
		task.CompletedAt = &now
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Status.IsValid() {
		return ErrTaskStatusInvalid
	}

	if !t.Priority.IsValid() {
		return ErrTaskPriorityInvalid
	}

	if (t.Status == TaskStatusCompleted) != (t.CompletedAt != nil) {
		return ErrTaskCompletedAtMismatch
	}

	return nil
}

// ChangeStatus transitions the task to the given status and updates the
// UpdatedAt timestamp. A transition to COMPLETED stamps CompletedAt with the
// current time; a transition away from COMPLETED clears it.
// Returns an error if the target status is invalid.
func (t *Task) ChangeStatus(status TaskStatus) error {
	if !status.IsValid() {
		return ErrTaskStatusInvalid
	}

	now := time.Now().UTC()
	if status == TaskStatusCompleted && t.Status != TaskStatusCompleted {
		t.CompletedAt = &now
	} else if status != TaskStatusCompleted {
		t.CompletedAt = nil
	}

	t.Status = status
	t.UpdatedAt = now
	return nil
}

// Assign sets the task's assignee and updates the UpdatedAt timestamp.
// A nil assigneeID unassigns the task.
func (t *Task) Assign(assigneeID *uuid.UUID) {
	t.AssigneeID = assigneeID
	t.UpdatedAt = time.Now().UTC()
}

// MarkReminderSent records that a due-date reminder has been emitted for this
// task. The flag is never reset by the notification pipeline, so calling this
// on an already-marked task is a no-op.
func (t *Task) MarkReminderSent() {
	if t.ReminderSent {
		return
	}
	t.ReminderSent = true
	t.UpdatedAt = time.Now().UTC()
}

// Snapshot returns a copy of the task detached from the original, used when an
// event needs to carry task state across goroutine boundaries.
func (t *Task) Snapshot() Task {
	return *t
}
