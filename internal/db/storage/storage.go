// Package storage declares the persistence contract shared by all account
// store backends.
package storage

import (
	"context"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

// AccountKeeper persists registered accounts. The whole store is durable
// after every mutation; a failed persist leaves the store unchanged.
type AccountKeeper interface {
	// CreateAccount assigns a fresh unique id and stores the account.
	// Returns models.ErrDuplicateEmail when the email is already taken.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	FindAccountByEmail(ctx context.Context, email string) (*models.Account, bool, error)

	FindAccountByID(ctx context.Context, id int64) (*models.Account, bool, error)

	// UpdateAccount replaces the stored record with the same id.
	// Returns models.ErrAccountNotFound when no such record exists.
	UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	CountAccounts(ctx context.Context) (int64, error)

	CountApplications(ctx context.Context) (int64, error)
}

// SessionKeeper persists the single current session: at most one account,
// or none. Malformed persisted state loads as empty, never as an error.
type SessionKeeper interface {
	SaveSession(ctx context.Context, account *models.Account) error

	LoadSession(ctx context.Context) (*models.Account, bool, error)

	ClearSession(ctx context.Context) error
}

// Storage is the full backend contract the application composes against.
type Storage interface {
	AccountKeeper
	SessionKeeper

	Ping(ctx context.Context) error

	Close() error
}
