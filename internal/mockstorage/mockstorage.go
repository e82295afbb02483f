// Package mockstorage provides a testify-based mock implementation
// of the internal storage interfaces used by the service and router
// packages. It is used for unit testing by simulating storage behavior.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

// StorageMock is a testify mock that implements all interfaces
// used by the service layer for storage operations.
//
// Use it to simulate backend behavior, including failures the real
// backends are awkward to force into.
type StorageMock struct {
	mock.Mock

	// OnCountAccounts is an optional function field that can be assigned
	// to define custom mock behavior for CountAccounts in tests.
	//
	// If set, CountAccounts will delegate to this function instead of
	// using testify's generic mock handler.
	OnCountAccounts func(ctx context.Context) (int64, error)

	// OnCountApplications is an optional function field that can be used
	// to customize the return values of CountApplications in tests.
	//
	// If non-nil, the mock implementation will call this function directly.
	OnCountApplications func(ctx context.Context) (int64, error)
}

// Ping mocks the pinger interface to simulate a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// CreateAccount mocks account creation and returns the stored account.
func (m *StorageMock) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	args := m.Called(ctx, account)
	created, _ := args.Get(0).(*models.Account)
	return created, args.Error(1)
}

// FindAccountByEmail mocks the credential lookup.
func (m *StorageMock) FindAccountByEmail(ctx context.Context, email string) (*models.Account, bool, error) {
	args := m.Called(ctx, email)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Bool(1), args.Error(2)
}

// FindAccountByID mocks fetching an account by its ID.
func (m *StorageMock) FindAccountByID(ctx context.Context, id int64) (*models.Account, bool, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Bool(1), args.Error(2)
}

// UpdateAccount mocks replacing a stored account.
func (m *StorageMock) UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	args := m.Called(ctx, account)
	updated, _ := args.Get(0).(*models.Account)
	return updated, args.Error(1)
}

// SaveSession mocks persisting the session slot.
func (m *StorageMock) SaveSession(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// LoadSession mocks reading the session slot.
func (m *StorageMock) LoadSession(ctx context.Context) (*models.Account, bool, error) {
	args := m.Called(ctx)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Bool(1), args.Error(2)
}

// ClearSession mocks emptying the session slot.
func (m *StorageMock) ClearSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// CountAccounts returns the number of accounts as defined by the mock.
//
// If OnCountAccounts is non-nil, it will be called to produce the result.
// Otherwise, the method returns 0 and no error by default.
func (m *StorageMock) CountAccounts(ctx context.Context) (int64, error) {
	if m.OnCountAccounts != nil {
		return m.OnCountAccounts(ctx)
	}
	return 0, nil
}

// CountApplications returns the number of submitted applications.
//
// If OnCountApplications is defined, the method will call it and return
// its result. Otherwise, it defaults to returning 0 and no error.
func (m *StorageMock) CountApplications(ctx context.Context) (int64, error) {
	if m.OnCountApplications != nil {
		return m.OnCountApplications(ctx)
	}
	return 0, nil
}
