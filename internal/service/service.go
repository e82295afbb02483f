// Package service implements the portal core: registration, authentication,
// the application ledger and the administrator catalog operations, wired over
// a pluggable storage backend, the internship catalog and the session holder.
package service

import (
	"context"

	"github.com/patric-chuzhbe/internhub/internal/models"
	"github.com/patric-chuzhbe/internhub/internal/password"
)

type accountKeeper interface {
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	FindAccountByEmail(ctx context.Context, email string) (*models.Account, bool, error)

	FindAccountByID(ctx context.Context, id int64) (*models.Account, bool, error)

	UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	CountAccounts(ctx context.Context) (int64, error)

	CountApplications(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	accountKeeper
	pinger
}

type listingKeeper interface {
	List() []*models.Listing

	Find(id int64) (*models.Listing, bool)

	Exists(id int64) bool

	Count() int64

	Create(payload models.ListingPayload) *models.Listing

	Edit(id int64, payload models.ListingPayload) (*models.Listing, error)

	Delete(id int64) error
}

type sessionHolder interface {
	Restore(ctx context.Context) *models.Account

	Set(ctx context.Context, account *models.Account) error

	Clear(ctx context.Context) error

	Current() *models.Account

	Holds(accountID int64) bool
}

// Service is the application core shared by the HTTP handlers and the
// terminal client.
type Service struct {
	db       storage
	catalog  listingKeeper
	sessions sessionHolder
}

// New wires a Service over its collaborators.
func New(db storage, catalog listingKeeper, sessions sessionHolder) *Service {
	return &Service{
		db:       db,
		catalog:  catalog,
		sessions: sessions,
	}
}

// RestoreSession hydrates the session holder from persisted state.
// Absent or malformed state leaves the session empty.
func (s *Service) RestoreSession(ctx context.Context) *models.Account {
	return s.sessions.Restore(ctx)
}

// CurrentAccount returns the account the session currently holds, or nil.
func (s *Service) CurrentAccount() *models.Account {
	return s.sessions.Current()
}

// Register creates an account for the email with the standard role and an
// empty application list, stores only a digest of the secret, persists the
// store and sets the new account as the current session.
func (s *Service) Register(ctx context.Context, email, secret string) (*models.Account, error) {
	digest, err := password.Hash(secret)
	if err != nil {
		return nil, err
	}

	created, err := s.db.CreateAccount(ctx, &models.Account{
		Email:              email,
		SecretDigest:       digest,
		Role:               models.RoleUser,
		AppliedInternships: []int64{},
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}

// RegisterConfirmed is Register guarded by a password confirmation check.
func (s *Service) RegisterConfirmed(ctx context.Context, email, secret, confirmation string) (*models.Account, error) {
	if secret != confirmation {
		return nil, models.ErrPasswordMismatch
	}

	return s.Register(ctx, email, secret)
}

// Authenticate verifies the credential pair against the store and, on
// success, sets the account as the current session.
func (s *Service) Authenticate(ctx context.Context, email, secret string) (*models.Account, error) {
	account, found, err := s.db.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !found || !password.Verify(account.SecretDigest, secret) {
		return nil, models.ErrInvalidCredentials
	}

	if err := s.sessions.Set(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Logout clears the current session.
func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// GetAccountByID returns the account with the given id.
func (s *Service) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account, found, err := s.db.FindAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrAccountNotFound
	}

	return account, nil
}

// Apply appends the listing id to the account's application list. The
// operation is idempotent: applying twice leaves a single entry. Unknown
// listing ids are rejected. The updated record is persisted through the
// store, and the session holder is refreshed when it holds the same account.
func (s *Service) Apply(ctx context.Context, accountID, listingID int64) (*models.Account, error) {
	if !s.catalog.Exists(listingID) {
		return nil, models.ErrListingNotFound
	}

	account, found, err := s.db.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrAccountNotFound
	}

	if account.HasApplied(listingID) {
		return account, nil
	}

	account.AppliedInternships = append(account.AppliedInternships, listingID)

	updated, err := s.db.UpdateAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	if s.sessions.Holds(updated.ID) {
		if err := s.sessions.Set(ctx, updated); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Listings returns the catalog in collection order.
func (s *Service) Listings() []*models.Listing {
	return s.catalog.List()
}

// GetListing returns the listing with the given id.
func (s *Service) GetListing(id int64) (*models.Listing, error) {
	listing, found := s.catalog.Find(id)
	if !found {
		return nil, models.ErrListingNotFound
	}

	return listing, nil
}

// CreateListing adds a listing to the catalog under a fresh id.
func (s *Service) CreateListing(payload models.ListingPayload) *models.Listing {
	return s.catalog.Create(payload)
}

// UpdateListing replaces the mutable fields of the listing.
func (s *Service) UpdateListing(id int64, payload models.ListingPayload) (*models.Listing, error) {
	return s.catalog.Edit(id, payload)
}

// DeleteListing removes the listing from the catalog.
func (s *Service) DeleteListing(id int64) error {
	return s.catalog.Delete(id)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns account, listing and application counters.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	users, err := s.db.CountAccounts(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	applications, err := s.db.CountApplications(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Users:        users,
		Internships:  s.catalog.Count(),
		Applications: applications,
	}, nil
}
