package examples

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

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

func setupTestRouter(t *testing.T) *httptest.Server {
	cfg, err := config.New(config.WithDisableFlagsParsing(true))
	if t != nil {
		require.NoError(t, err)
	}

	db, err := memorystorage.New()
	if t != nil {
		require.NoError(t, err)
	}

	authKey, err := base64.URLEncoding.DecodeString(cfg.AuthTokenSigningSecretKey)
	if t != nil {
		require.NoError(t, err)
	}

	ipChecker, err := ipchecker.New(cfg.TrustedSubnet)
	if t != nil {
		require.NoError(t, err)
	}

	s := service.New(db, catalog.New(), session.New(db))

	theRouter := router.New(
		s,
		auth.New(db, authKey, cfg.AuthTokenTTL),
		ipChecker,
	)

	err = logger.Init("debug")
	if t != nil {
		require.NoError(t, err)
	}

	return httptest.NewServer(theRouter)
}

func login(server *httptest.Server, email, secret string) (models.AuthResponse, error) {
	body, err := json.Marshal(models.LoginRequest{Email: email, Password: secret})
	if err != nil {
		return models.AuthResponse{}, err
	}

	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return models.AuthResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AuthResponse{}, fmt.Errorf("unexpected login status: %d", resp.StatusCode)
	}

	var authResponse models.AuthResponse
	err = json.NewDecoder(resp.Body).Decode(&authResponse)

	return authResponse, err
}

func ExampleRouter_GetPing() {
	server := setupTestRouter(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/ping")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostAuthLogin() {
	server := setupTestRouter(nil)
	defer server.Close()

	authResponse, err := login(server, "user@example.com", "userpassword")
	if err != nil {
		panic(err)
	}

	fmt.Println("Email:", authResponse.User.Email)
	fmt.Println("Role:", authResponse.User.Role)
	fmt.Println("Token issued:", authResponse.Token != "")

	// Output:
	// Email: user@example.com
	// Role: user
	// Token issued: true
}

func ExampleRouter_GetInternships() {
	server := setupTestRouter(nil)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/internships")
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var listings []*models.Listing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Listings:", len(listings))
	fmt.Println("First:", listings[0].Title)

	// Output:
	// Status Code: 200
	// Listings: 6
	// First: Frontend Web Developer
}

func ExampleRouter_PostUserApply() {
	server := setupTestRouter(nil)
	defer server.Close()

	authResponse, err := login(server, "user@example.com", "userpassword")
	if err != nil {
		panic(err)
	}

	body, err := json.Marshal(models.ApplyRequest{InternshipID: 2})
	if err != nil {
		panic(err)
	}

	url := fmt.Sprintf("%s/api/users/%d/apply", server.URL, authResponse.User.ID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authResponse.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var account models.Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Applied:", account.AppliedInternships)

	// Output:
	// Status Code: 200
	// Applied: [1 4 2]
}
