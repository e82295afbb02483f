// Package authenticator declares the authentication boundary the router
// composes against, so that tests can substitute the middleware.
package authenticator

import (
	"net/http"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

// Authenticator issues bearer tokens and guards HTTP routes.
type Authenticator interface {
	BuildToken(account *models.Account) (string, error)

	AuthenticateUser(h http.Handler) http.Handler

	RequireAdmin(h http.Handler) http.Handler
}
