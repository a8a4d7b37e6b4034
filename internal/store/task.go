package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/taskpulse/taskpulse/internal/domain"
)

// TaskStore defines the interface for task data persistence. The notification
// pipeline treats it as a transactional unit-of-work boundary: mutating calls
// are issued through a WithTx instance inside store.RunInTransaction.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if an assignee or creator reference does not
	// resolve to an existing user.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist and ErrInvalidEntity
	// if an assignee or creator reference does not resolve.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindDueForReminder returns tasks whose due date is at or before the
	// threshold, whose reminder has not been sent, and whose status is not
	// terminal (COMPLETED or CANCELLED).
	FindDueForReminder(ctx context.Context, threshold time.Time) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TaskStore
}

// UserStore defines the interface for user lookups. The pipeline only needs
// to resolve assignee/creator references and read a user's notification
// address and display name.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email address is already in use.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
