// Package mocks provides hand-written fakes for tests.
package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskpulse/taskpulse/internal/domain"
	"github.com/taskpulse/taskpulse/internal/store"
)

// TaskStore is an in-memory implementation of store.TaskStore. Error fields
// allow injecting failures per operation.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task

	CreateErr error
	GetErr    error
	UpdateErr error
	DeleteErr error
	FindErr   error
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uuid.UUID]domain.Task)}
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := task
	return &copied, nil
}

// Update implements store.TaskStore.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// FindDueForReminder implements store.TaskStore.
func (s *TaskStore) FindDueForReminder(
	ctx context.Context,
	threshold time.Time,
) ([]*domain.Task, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*domain.Task
	for _, task := range s.tasks {
		if task.DueDate == nil || task.DueDate.After(threshold) {
			continue
		}
		if task.ReminderSent || task.Status.IsTerminal() {
			continue
		}
		copied := task
		due = append(due, &copied)
	}
	return due, nil
}

// WithTx implements store.TaskStore; the in-memory store has no real
// transactions, so it returns itself.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return s
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// UserStore is an in-memory implementation of store.UserStore.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User

	GetErr error
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]domain.User)}
}

// Add puts a user in the store, bypassing validation.
func (s *UserStore) Add(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

// WithTx implements store.UserStore.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return s
}

// Ensure UserStore implements store.UserStore.
var _ store.UserStore = (*UserStore)(nil)

// AuditLogStore is an in-memory implementation of store.AuditLogStore.
type AuditLogStore struct {
	mu      sync.Mutex
	records []domain.AuditLog

	AppendErr error
}

// NewAuditLogStore creates an empty in-memory audit store.
func NewAuditLogStore() *AuditLogStore {
	return &AuditLogStore{}
}

// Append implements store.AuditLogStore.
func (s *AuditLogStore) Append(ctx context.Context, record *domain.AuditLog) error {
	if s.AppendErr != nil {
		return s.AppendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

// ListByEntity implements store.AuditLogStore.
func (s *AuditLogStore) ListByEntity(
	ctx context.Context,
	entityType, entityID string,
) ([]*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []*domain.AuditLog
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if record.EntityType == entityType && record.EntityID == entityID {
			copied := record
			matches = append(matches, &copied)
		}
	}
	return matches, nil
}

// Records returns a copy of everything appended so far.
func (s *AuditLogStore) Records() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]domain.AuditLog, len(s.records))
	copy(records, s.records)
	return records
}

// WithTx implements store.AuditLogStore.
func (s *AuditLogStore) WithTx(tx *sql.Tx) store.AuditLogStore {
	return s
}

// Ensure AuditLogStore implements store.AuditLogStore.
var _ store.AuditLogStore = (*AuditLogStore)(nil)
