// Package session tracks the single current account of the process:
// hydrated from persisted state on start, set on login or registration,
// cleared on logout.
package session

import (
	"context"
	"sync"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

type keeper interface {
	SaveSession(ctx context.Context, account *models.Account) error
	LoadSession(ctx context.Context) (*models.Account, bool, error)
	ClearSession(ctx context.Context) error
}

// Manager holds at most one current account.
type Manager struct {
	mu      sync.RWMutex
	keeper  keeper
	current *models.Account
}

// New returns a Manager persisting through the given session keeper.
func New(keeper keeper) *Manager {
	return &Manager{keeper: keeper}
}

// Restore hydrates the session from persisted state. Absent or malformed
// state degrades to an empty session; Restore never fails.
func (m *Manager) Restore(ctx context.Context) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, found, err := m.keeper.LoadSession(ctx)
	if err != nil || !found {
		m.current = nil
		return nil
	}
	m.current = account

	return account.Clone()
}

// Set stores the account as the current session and persists it.
// The in-memory session is untouched when persisting fails.
func (m *Manager) Set(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.keeper.SaveSession(ctx, account); err != nil {
		return err
	}
	m.current = account.Clone()

	return nil
}

// Clear empties the session and removes the persisted state.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.keeper.ClearSession(ctx); err != nil {
		return err
	}
	m.current = nil

	return nil
}

// Current returns the current account, or nil when the session is empty.
func (m *Manager) Current() *models.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current.Clone()
}

// Holds reports whether the session currently refers to the given account id.
func (m *Manager) Holds(accountID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current != nil && m.current.ID == accountID
}
