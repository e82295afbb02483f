package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/internhub/internal/models"
	"github.com/patric-chuzhbe/internhub/internal/password"
)

func testDBFileName(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "db_test.json")
}

func TestNewSeedsDemoAccounts(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)
	require.NotNil(t, theStorage)
	defer func() {
		require.NoError(t, theStorage.Close())
	}()

	admin, found, err := theStorage.FindAccountByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, password.Verify(admin.SecretDigest, "adminpassword"))

	user, found, err := theStorage.FindAccountByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, []int64{1, 4}, user.AppliedInternships)
}

func TestCreateAccount(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)

	created, err := theStorage.CreateAccount(context.Background(), &models.Account{
		Email:        "newcomer@example.com",
		SecretDigest: "digest",
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(2), "fresh ids must not collide with the seeded ones")
	assert.Equal(t, []int64{}, created.AppliedInternships)

	count, err := theStorage.CountAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCreateAccountDuplicateEmailLeavesStoreUnchanged(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)

	_, err = theStorage.CreateAccount(context.Background(), &models.Account{
		Email: "user@example.com",
	})
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	count, err := theStorage.CountAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUpdateAccount(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)

	account, found, err := theStorage.FindAccountByID(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, found)

	account.AppliedInternships = append(account.AppliedInternships, 2)
	updated, err := theStorage.UpdateAccount(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2}, updated.AppliedInternships)

	reloaded, found, err := theStorage.FindAccountByID(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []int64{1, 4, 2}, reloaded.AppliedInternships)
}

func TestUpdateAccountUnknownID(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)

	_, err = theStorage.UpdateAccount(context.Background(), &models.Account{ID: 42})
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestStateSurvivesReopen(t *testing.T) {
	fileName := testDBFileName(t)

	theStorage, err := New(fileName)
	require.NoError(t, err)

	created, err := theStorage.CreateAccount(context.Background(), &models.Account{
		Email:        "persistent@example.com",
		SecretDigest: "digest",
		Role:         models.RoleUser,
	})
	require.NoError(t, err)

	err = theStorage.SaveSession(context.Background(), created)
	require.NoError(t, err)
	require.NoError(t, theStorage.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	account, found, err := reopened.FindAccountByEmail(context.Background(), "persistent@example.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, account.ID)

	session, found, err := reopened.LoadSession(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, session.ID)
}

func TestSessionLifecycle(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)

	_, found, err := theStorage.LoadSession(context.Background())
	require.NoError(t, err)
	assert.False(t, found)

	account, _, err := theStorage.FindAccountByID(context.Background(), 2)
	require.NoError(t, err)

	require.NoError(t, theStorage.SaveSession(context.Background(), account))

	session, found, err := theStorage.LoadSession(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, account.ID, session.ID)

	require.NoError(t, theStorage.ClearSession(context.Background()))

	_, found, err = theStorage.LoadSession(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMalformedFileDegradesToSeededState(t *testing.T) {
	fileName := testDBFileName(t)
	require.NoError(t, os.WriteFile(fileName, []byte(`{not json`), 0644))

	theStorage, err := New(fileName)
	require.NoError(t, err)

	count, err := theStorage.CountAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEmptyFileNameKeepsEverythingInMemory(t *testing.T) {
	theStorage, err := New("")
	require.NoError(t, err)

	_, err = theStorage.CreateAccount(context.Background(), &models.Account{
		Email: "ephemeral@example.com",
	})
	require.NoError(t, err)

	err = theStorage.Ping(context.Background())
	assert.NoError(t, err, "The jsondb.Ping() should not return error")

	err = theStorage.Close()
	assert.NoError(t, err, "The jsondb.Close() should not return error")
}

func TestCountApplications(t *testing.T) {
	theStorage, err := New(testDBFileName(t))
	require.NoError(t, err)

	total, err := theStorage.CountApplications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "the seeded user arrives with two applications")
}
