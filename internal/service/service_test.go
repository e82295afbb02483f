package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/internhub/internal/catalog"
	"github.com/patric-chuzhbe/internhub/internal/db/memorystorage"
	"github.com/patric-chuzhbe/internhub/internal/mockstorage"
	"github.com/patric-chuzhbe/internhub/internal/models"
	"github.com/patric-chuzhbe/internhub/internal/session"
)

func newTestService(t *testing.T) (*Service, *memorystorage.MemoryStorage) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db, catalog.New(), session.New(db)), db
}

func TestRegisterSetsSessionAndStoresDigest(t *testing.T) {
	svc, db := newTestService(t)

	created, err := svc.Register(context.Background(), "newcomer@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.Equal(t, []int64{}, created.AppliedInternships)
	assert.NotEqual(t, "secret", created.SecretDigest, "the raw secret must never be stored")

	current := svc.CurrentAccount()
	require.NotNil(t, current)
	assert.Equal(t, created.ID, current.ID)

	stored, found, err := db.FindAccountByEmail(context.Background(), "newcomer@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, stored.ID)
}

func TestRegisterDuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	svc, db := newTestService(t)

	before, err := db.CountAccounts(context.Background())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "user@example.com", "whatever")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	after, err := db.CountAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Nil(t, svc.CurrentAccount(), "a failed registration must not open a session")
}

func TestRegisterConfirmed(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterConfirmed(context.Background(), "newcomer@example.com", "secret", "different")
	assert.ErrorIs(t, err, models.ErrPasswordMismatch)

	created, err := svc.RegisterConfirmed(context.Background(), "newcomer@example.com", "secret", "secret")
	require.NoError(t, err)
	assert.Equal(t, "newcomer@example.com", created.Email)
}

func TestAuthenticate(t *testing.T) {
	type tTestCase struct {
		name        string
		email       string
		secret      string
		expectedErr error
	}
	testCases := []tTestCase{
		{name: "seeded_admin", email: "admin@example.com", secret: "adminpassword"},
		{name: "seeded_user", email: "user@example.com", secret: "userpassword"},
		{name: "wrong_secret", email: "user@example.com", secret: "adminpassword", expectedErr: models.ErrInvalidCredentials},
		{name: "unknown_email", email: "nobody@example.com", secret: "userpassword", expectedErr: models.ErrInvalidCredentials},
		{name: "empty_secret", email: "user@example.com", secret: "", expectedErr: models.ErrInvalidCredentials},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc, _ := newTestService(t)

			account, err := svc.Authenticate(context.Background(), testCase.email, testCase.secret)
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
				assert.Nil(t, svc.CurrentAccount())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.email, account.Email)
			require.NotNil(t, svc.CurrentAccount())
			assert.Equal(t, account.ID, svc.CurrentAccount().ID)
		})
	}
}

func TestLogout(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, svc.CurrentAccount())
}

func TestApplyAppendsAndPersists(t *testing.T) {
	svc, db := newTestService(t)

	account, err := svc.Authenticate(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 4}, account.AppliedInternships)

	updated, err := svc.Apply(context.Background(), account.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2}, updated.AppliedInternships)

	stored, found, err := db.FindAccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []int64{1, 4, 2}, stored.AppliedInternships)

	current := svc.CurrentAccount()
	require.NotNil(t, current)
	assert.Equal(t, []int64{1, 4, 2}, current.AppliedInternships, "the session must see the fresh application")
}

func TestApplyIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.Authenticate(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	updated, err := svc.Apply(context.Background(), account.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, updated.AppliedInternships, "a repeated application must not duplicate the entry")
}

func TestApplyUnknownListing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), 2, 42)
	assert.ErrorIs(t, err, models.ErrListingNotFound)
}

func TestApplyUnknownAccount(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Apply(context.Background(), 424242, 1)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestApplyPersistFailure(t *testing.T) {
	db := &mockstorage.StorageMock{}
	svc := New(db, catalog.New(), session.New(db))

	account := &models.Account{ID: 2, Email: "user@example.com", AppliedInternships: []int64{1, 4}}

	db.On("FindAccountByID", mock.Anything, int64(2)).Return(account, true, nil)
	db.On("UpdateAccount", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	_, err := svc.Apply(context.Background(), 2, 2)
	assert.Error(t, err)
	db.AssertExpectations(t)
}

func TestRestoreSession(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)

	account, _, err := db.FindAccountByID(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, db.SaveSession(context.Background(), account))

	svc := New(db, catalog.New(), session.New(db))

	restored := svc.RestoreSession(context.Background())
	require.NotNil(t, restored)
	assert.Equal(t, int64(2), restored.ID)
}

func TestGetAccountByID(t *testing.T) {
	svc, _ := newTestService(t)

	account, err := svc.GetAccountByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", account.Email)

	_, err = svc.GetAccountByID(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestCatalogOperations(t *testing.T) {
	svc, _ := newTestService(t)

	require.Len(t, svc.Listings(), 6)

	created := svc.CreateListing(models.ListingPayload{
		Title:  "Security Intern",
		Domain: "Security",
	})
	assert.Equal(t, created.ID, svc.Listings()[0].ID)

	updated, err := svc.UpdateListing(created.ID, models.ListingPayload{
		Title:  "Security Engineering Intern",
		Domain: "Security",
	})
	require.NoError(t, err)
	assert.Equal(t, "Security Engineering Intern", updated.Title)

	listing, err := svc.GetListing(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, listing)

	require.NoError(t, svc.DeleteListing(created.ID))
	_, err = svc.GetListing(created.ID)
	assert.ErrorIs(t, err, models.ErrListingNotFound)
}

func TestGetInternalStats(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.GetInternalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.InternalStatsResponse{
		Users:        2,
		Internships:  6,
		Applications: 2,
	}, stats)
}

func TestPing(t *testing.T) {
	svc, _ := newTestService(t)

	assert.NoError(t, svc.Ping(context.Background()))
}
