// Package auth provides JWT-based bearer authentication for HTTP requests:
// token issuance on login, and middleware that resolves the token to an
// account in the request context.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/internhub/internal/logger"
	"github.com/patric-chuzhbe/internhub/internal/models"
)

type accountFinder interface {
	FindAccountByID(ctx context.Context, id int64) (*models.Account, bool, error)
}

// Auth issues and verifies bearer tokens.
type Auth struct {
	db               accountFinder
	signingSecretKey []byte
	tokenTTL         time.Duration
}

// Claims are the JWT claims used by the system: the standard set plus the
// account identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// AccountKey is the context key under which the authenticated account is stored.
const AccountKey ContextKey = "account"

// New creates an Auth handler with the given account lookup, signing secret
// and token lifetime.
func New(db accountFinder, signingSecretKey []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		db:               db,
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
	}
}

// BuildToken issues a signed token for the account.
func (a *Auth) BuildToken(account *models.Account) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
		},
		UserID: account.ID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (a *Auth) parseToken(tokenString string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("the token is not valid")
	}

	return claims.UserID, nil
}

func tokenStringFromRequest(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	return strings.TrimSpace(tokenString)
}

func unauthorized(response http.ResponseWriter) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{Detail: "authentication required"})
}

// AuthenticateUser is an HTTP middleware that resolves the bearer token from
// the Authorization header to an account and stores it in the request
// context. Requests without a valid token receive 401.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := tokenStringFromRequest(request)
		if tokenString == "" {
			unauthorized(response)
			return
		}

		userID, err := a.parseToken(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.parseToken()`: ", zap.Error(err))
			unauthorized(response)
			return
		}

		account, found, err := a.db.FindAccountByID(request.Context(), userID)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.db.FindAccountByID()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		if !found {
			unauthorized(response)
			return
		}

		ctx := context.WithValue(request.Context(), AccountKey, account)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// RequireAdmin is an HTTP middleware restricting the route to administrator
// accounts. It must run after AuthenticateUser.
func (a *Auth) RequireAdmin(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		account := AccountFromContext(request.Context())
		if !account.IsAdmin() {
			response.Header().Set("Content-Type", "application/json")
			response.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(response).Encode(models.ErrorResponse{Detail: "administrator role required"})
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// AccountFromContext returns the authenticated account stored by
// AuthenticateUser, or nil.
func AccountFromContext(ctx context.Context) *models.Account {
	account, ok := ctx.Value(AccountKey).(*models.Account)
	if !ok {
		return nil
	}

	return account
}
