package remote

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/internhub/internal/auth"
	"github.com/patric-chuzhbe/internhub/internal/catalog"
	"github.com/patric-chuzhbe/internhub/internal/config"
	"github.com/patric-chuzhbe/internhub/internal/db/memorystorage"
	"github.com/patric-chuzhbe/internhub/internal/ipchecker"
	"github.com/patric-chuzhbe/internhub/internal/logger"
	"github.com/patric-chuzhbe/internhub/internal/models"
	"github.com/patric-chuzhbe/internhub/internal/router"
	"github.com/patric-chuzhbe/internhub/internal/service"
	"github.com/patric-chuzhbe/internhub/internal/session"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := config.New(config.WithDisableFlagsParsing(true))
	require.NoError(t, err)

	db, err := memorystorage.New()
	require.NoError(t, err)

	authKey, err := base64.URLEncoding.DecodeString(cfg.AuthTokenSigningSecretKey)
	require.NoError(t, err)

	ipChecker, err := ipchecker.New(cfg.TrustedSubnet)
	require.NoError(t, err)

	err = logger.Init("debug")
	require.NoError(t, err)

	server := httptest.NewServer(router.New(
		service.New(db, catalog.New(), session.New(db)),
		auth.New(db, authKey, cfg.AuthTokenTTL),
		ipChecker,
	))
	t.Cleanup(server.Close)

	return server
}

func TestLogin(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	account, err := client.Login(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", account.Email)
	assert.NotEmpty(t, client.token)

	_, err = client.Login(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	account, err := client.Register(context.Background(), "newcomer@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, account.Role)
	assert.NotEmpty(t, client.token, "registration behaves as a login")

	_, err = client.Register(context.Background(), "newcomer@example.com", "secret")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestCheckSession(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	account, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, account, "no token means no session, not an error")

	_, err = client.Login(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	account, err = client.CheckSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "user@example.com", account.Email)
}

func TestCheckSessionDropsRejectedToken(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")
	client.token = "not.a.token"

	account, err := client.CheckSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.Empty(t, client.token, "a rejected token is forgotten")
}

func TestTokenSurvivesClientRestart(t *testing.T) {
	server := setupTestServer(t)
	tokenFile := filepath.Join(t.TempDir(), "token")

	client := New(server.URL, tokenFile)
	_, err := client.Login(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	restarted := New(server.URL, tokenFile)
	account, err := restarted.CheckSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "user@example.com", account.Email)
}

func TestLogoutForgetsToken(t *testing.T) {
	server := setupTestServer(t)
	tokenFile := filepath.Join(t.TempDir(), "token")

	client := New(server.URL, tokenFile)
	_, err := client.Login(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	require.NoError(t, client.Logout(context.Background()))
	assert.Empty(t, client.token)

	_, err = os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(err), "the token file is removed on logout")
}

func TestListings(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	listings, err := client.Listings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 6)
	assert.Equal(t, "Frontend Web Developer", listings[0].Title)
	assert.Equal(t, models.SkillList{"HTML", "CSS", "JavaScript", "React"}, listings[0].Skills)
}

func TestApply(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	account, err := client.Login(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	updated, err := client.Apply(context.Background(), account.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4, 2}, updated.AppliedInternships)

	_, err = client.Apply(context.Background(), account.ID, 424242)
	assert.ErrorIs(t, err, models.ErrListingNotFound)
}

func TestListingLifecycle(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	_, err := client.Login(context.Background(), "admin@example.com", "adminpassword")
	require.NoError(t, err)

	created, err := client.CreateListing(context.Background(), models.ListingPayload{
		Title:  "Security Intern",
		Domain: "Security",
		Skills: models.ParseSkills("Linux, Networking"),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.SkillList{"Linux", "Networking"}, created.Skills, "comma-joined wire skills are normalized back")

	updated, err := client.UpdateListing(context.Background(), created.ID, models.ListingPayload{
		Title:  "Security Engineering Intern",
		Domain: "Security",
	})
	require.NoError(t, err)
	assert.Equal(t, "Security Engineering Intern", updated.Title)

	require.NoError(t, client.DeleteListing(context.Background(), created.ID))
	assert.ErrorIs(t, client.DeleteListing(context.Background(), created.ID), models.ErrListingNotFound)
}

func TestCreateListingForbiddenForUser(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	_, err := client.Login(context.Background(), "user@example.com", "userpassword")
	require.NoError(t, err)

	_, err = client.CreateListing(context.Background(), models.ListingPayload{
		Title:  "Ghost",
		Domain: "Nowhere",
	})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	server := setupTestServer(t)
	client := New(server.URL, "")

	assert.NoError(t, client.Ping(context.Background()))
}
