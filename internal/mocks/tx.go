package mocks

import (
	"context"

	"github.com/taskpulse/taskpulse/internal/store"
)

// TxManager implements store.TxManager without a database. The function runs
// with a nil transaction; the in-memory stores ignore it.
//
// BeginErr makes RunInTransaction fail before the function runs. CommitErr
// makes it fail after the function returns nil, simulating a commit failure
// where the work inside the transaction must be treated as discarded.
type TxManager struct {
	BeginErr  error
	CommitErr error

	// Calls counts how many times RunInTransaction was invoked.
	Calls int
}

// NewTxManager creates a TxManager that commits successfully.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTransaction implements store.TxManager.
func (m *TxManager) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.Calls++
	if m.BeginErr != nil {
		return m.BeginErr
	}
	if err := fn(ctx, nil); err != nil {
		return err
	}
	return m.CommitErr
}

// Ensure TxManager implements store.TxManager.
var _ store.TxManager = (*TxManager)(nil)
