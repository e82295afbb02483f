// Package remote implements the portal contracts against a running
// internhub server over its HTTP API: the networked counterpart of the
// local JSON-file backend. The bearer token survives restarts in a local
// file slot, mirroring the original client's authToken storage.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

// Client talks to a remote internhub server.
type Client struct {
	http      *resty.Client
	tokenFile string
	token     string
}

// New creates a Client for the server at baseURL. When tokenFile is
// non-empty the bearer token is persisted there across runs.
func New(baseURL, tokenFile string) *Client {
	client := &Client{
		http:      resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")),
		tokenFile: tokenFile,
	}
	client.token = client.loadToken()

	return client
}

func (c *Client) loadToken() string {
	if c.tokenFile == "" {
		return ""
	}

	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func (c *Client) saveToken(token string) {
	c.token = token
	if c.tokenFile == "" {
		return
	}
	_ = os.WriteFile(c.tokenFile, []byte(token), 0600)
}

func (c *Client) clearToken() {
	c.token = ""
	if c.tokenFile == "" {
		return
	}
	_ = os.Remove(c.tokenFile)
}

func responseDetail(errorResponse *models.ErrorResponse, response *resty.Response) error {
	if errorResponse != nil && errorResponse.Detail != "" {
		return errors.New(errorResponse.Detail)
	}

	return fmt.Errorf("unexpected response status: %s", response.Status())
}

// Login authenticates against the server and stores the received token.
func (c *Client) Login(ctx context.Context, email, secret string) (*models.Account, error) {
	var authResponse models.AuthResponse
	var errorResponse models.ErrorResponse

	response, err := c.http.R().
		SetContext(ctx).
		SetBody(models.LoginRequest{Email: email, Password: secret}).
		SetResult(&authResponse).
		SetError(&errorResponse).
		Post("/api/auth/login")
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	if response.StatusCode() == http.StatusUnauthorized {
		return nil, models.ErrInvalidCredentials
	}
	if response.IsError() {
		return nil, responseDetail(&errorResponse, response)
	}

	c.saveToken(authResponse.Token)

	return authResponse.User, nil
}

// Register creates an account on the server. The server behaves as a
// register-then-login, so the response already carries a token.
func (c *Client) Register(ctx context.Context, email, secret string) (*models.Account, error) {
	var authResponse models.AuthResponse
	var errorResponse models.ErrorResponse

	response, err := c.http.R().
		SetContext(ctx).
		SetBody(models.RegisterRequest{Email: email, Username: email, Password: secret}).
		SetResult(&authResponse).
		SetError(&errorResponse).
		Post("/api/auth/register")
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}

	if response.StatusCode() == http.StatusConflict {
		return nil, models.ErrDuplicateEmail
	}
	if response.IsError() {
		return nil, responseDetail(&errorResponse, response)
	}

	c.saveToken(authResponse.Token)

	return authResponse.User, nil
}

// CheckSession resolves the stored token to the current account. An absent
// or rejected token yields an empty session, not an error.
func (c *Client) CheckSession(ctx context.Context) (*models.Account, error) {
	if c.token == "" {
		return nil, nil
	}

	var account models.Account

	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetResult(&account).
		Get("/api/auth/user")
	if err != nil {
		return nil, fmt.Errorf("session check failed: %w", err)
	}

	if response.StatusCode() == http.StatusUnauthorized {
		c.clearToken()
		return nil, nil
	}
	if response.IsError() {
		return nil, responseDetail(nil, response)
	}

	return &account, nil
}

// Logout drops the session on the server and forgets the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if c.token == "" {
		return nil
	}

	_, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		Post("/api/auth/logout")

	c.clearToken()

	return err
}

// Listings fetches the catalog. Skills arrive either as an array or as a
// comma-separated string and are normalized to the array form.
func (c *Client) Listings(ctx context.Context) ([]*models.Listing, error) {
	var listings []*models.Listing

	response, err := c.http.R().
		SetContext(ctx).
		SetResult(&listings).
		Get("/api/internships")
	if err != nil {
		return nil, fmt.Errorf("internships request failed: %w", err)
	}
	if response.IsError() {
		return nil, responseDetail(nil, response)
	}

	return listings, nil
}

// Apply submits an application and returns the updated account.
func (c *Client) Apply(ctx context.Context, accountID, internshipID int64) (*models.Account, error) {
	var account models.Account
	var errorResponse models.ErrorResponse

	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(models.ApplyRequest{InternshipID: internshipID}).
		SetResult(&account).
		SetError(&errorResponse).
		Post(fmt.Sprintf("/api/users/%d/apply", accountID))
	if err != nil {
		return nil, fmt.Errorf("apply request failed: %w", err)
	}

	if response.StatusCode() == http.StatusNotFound {
		return nil, models.ErrListingNotFound
	}
	if response.IsError() {
		return nil, responseDetail(&errorResponse, response)
	}

	return &account, nil
}

// listingWirePayload is the create/update body with skills serialized as a
// comma-joined string, the form the original backend expected.
type listingWirePayload struct {
	Title       string `json:"title"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Stipend     string `json:"stipend"`
	Skills      string `json:"skills"`
}

func toWirePayload(payload models.ListingPayload) listingWirePayload {
	return listingWirePayload{
		Title:       payload.Title,
		Domain:      payload.Domain,
		Description: payload.Description,
		Duration:    payload.Duration,
		Stipend:     payload.Stipend,
		Skills:      payload.Skills.Joined(),
	}
}

// CreateListing creates a listing (administrator only).
func (c *Client) CreateListing(ctx context.Context, payload models.ListingPayload) (*models.Listing, error) {
	var listing models.Listing
	var errorResponse models.ErrorResponse

	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(toWirePayload(payload)).
		SetResult(&listing).
		SetError(&errorResponse).
		Post("/api/internships")
	if err != nil {
		return nil, fmt.Errorf("create internship request failed: %w", err)
	}
	if response.IsError() {
		return nil, responseDetail(&errorResponse, response)
	}

	return &listing, nil
}

// UpdateListing replaces the mutable fields of a listing (administrator only).
func (c *Client) UpdateListing(ctx context.Context, id int64, payload models.ListingPayload) (*models.Listing, error) {
	var listing models.Listing
	var errorResponse models.ErrorResponse

	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(toWirePayload(payload)).
		SetResult(&listing).
		SetError(&errorResponse).
		Put(fmt.Sprintf("/api/internships/%d", id))
	if err != nil {
		return nil, fmt.Errorf("update internship request failed: %w", err)
	}

	if response.StatusCode() == http.StatusNotFound {
		return nil, models.ErrListingNotFound
	}
	if response.IsError() {
		return nil, responseDetail(&errorResponse, response)
	}

	return &listing, nil
}

// DeleteListing removes a listing (administrator only).
func (c *Client) DeleteListing(ctx context.Context, id int64) error {
	response, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		Delete(fmt.Sprintf("/api/internships/%d", id))
	if err != nil {
		return fmt.Errorf("delete internship request failed: %w", err)
	}

	if response.StatusCode() == http.StatusNotFound {
		return models.ErrListingNotFound
	}
	if response.IsError() {
		return responseDetail(nil, response)
	}

	return nil
}

// Ping probes the server health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	response, err := c.http.R().SetContext(ctx).Get("/api/ping")
	if err != nil {
		return fmt.Errorf("ping request failed: %w", err)
	}
	if response.IsError() {
		return responseDetail(nil, response)
	}

	return nil
}
