// Package router wires the HTTP API of the portal: authentication,
// account and application endpoints, internship catalog CRUD, and the
// internal stats endpoint restricted to a trusted subnet.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/internhub/internal/auth"
	"github.com/patric-chuzhbe/internhub/internal/authenticator"
	"github.com/patric-chuzhbe/internhub/internal/gzippedhttp"
	"github.com/patric-chuzhbe/internhub/internal/ipchecker"
	"github.com/patric-chuzhbe/internhub/internal/logger"
	"github.com/patric-chuzhbe/internhub/internal/models"
)

type portal interface {
	Register(ctx context.Context, email, secret string) (*models.Account, error)

	Authenticate(ctx context.Context, email, secret string) (*models.Account, error)

	Logout(ctx context.Context) error

	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)

	Apply(ctx context.Context, accountID, listingID int64) (*models.Account, error)

	Listings() []*models.Listing

	CreateListing(payload models.ListingPayload) *models.Listing

	UpdateListing(id int64, payload models.ListingPayload) (*models.Listing, error)

	DeleteListing(id int64) error

	Ping(ctx context.Context) error

	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

// Router holds the HTTP handlers of the portal API.
type Router struct {
	service  portal
	auth     authenticator.Authenticator
	validate *validator.Validate
}

// New assembles the chi router with logging, gzip and authentication
// middleware around the API handlers.
func New(
	service portal,
	theAuth authenticator.Authenticator,
	ipChecker *ipchecker.IPChecker,
) http.Handler {
	rtr := &Router{
		service:  service,
		auth:     theAuth,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
	)

	router.Route(`/api`, func(r chi.Router) {
		r.Post(`/auth/login`, rtr.PostAuthLogin)
		r.Post(`/auth/register`, rtr.PostAuthRegister)
		r.With(gzippedhttp.GzipResponse).Get(`/internships`, rtr.GetInternships)
		r.Get(`/ping`, rtr.GetPing)
		r.With(ipChecker.Middleware).Get(`/internal/stats`, rtr.GetInternalStats)

		r.Group(func(r chi.Router) {
			r.Use(theAuth.AuthenticateUser)

			r.Post(`/auth/logout`, rtr.PostAuthLogout)
			r.Get(`/auth/user`, rtr.GetAuthUser)
			r.Get(`/users/{id}`, rtr.GetUserByID)
			r.Post(`/users/{id}/apply`, rtr.PostUserApply)

			r.Group(func(r chi.Router) {
				r.Use(theAuth.RequireAdmin)

				r.Post(`/internships`, rtr.PostInternships)
				r.Put(`/internships/{id}`, rtr.PutInternship)
				r.Delete(`/internships/{id}`, rtr.DeleteInternship)
			})
		})
	})

	return router
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, statusCode int, detail string) {
	writeJSON(response, statusCode, models.ErrorResponse{Detail: detail})
}

// decodeAndValidate decodes the request body into target and validates it.
// A malformed body yields 400, a body failing validation yields 422; in both
// cases the response is already written and false is returned.
func (rtr *Router) decodeAndValidate(
	response http.ResponseWriter,
	request *http.Request,
	target interface{},
) bool {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		writeError(response, http.StatusBadRequest, "malformed request body")
		return false
	}

	if err := rtr.validate.Struct(target); err != nil {
		writeError(response, http.StatusUnprocessableEntity, err.Error())
		return false
	}

	return true
}

func idFromURL(request *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
}

// requesterMayAccess reports whether the authenticated account may act on
// the account with the given id: itself, or anyone when it is an admin.
func requesterMayAccess(request *http.Request, accountID int64) bool {
	requester := auth.AccountFromContext(request.Context())

	return requester != nil && (requester.ID == accountID || requester.IsAdmin())
}

// PostAuthLogin handles `POST /api/auth/login`.
func (rtr *Router) PostAuthLogin(response http.ResponseWriter, request *http.Request) {
	var loginRequest models.LoginRequest
	if !rtr.decodeAndValidate(response, request, &loginRequest) {
		return
	}

	account, err := rtr.service.Authenticate(request.Context(), loginRequest.Email, loginRequest.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			writeError(response, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		logger.Log.Debugln("Error calling the `rtr.service.Authenticate()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	rtr.writeAuthResponse(response, account)
}

// PostAuthRegister handles `POST /api/auth/register`. A successful
// registration behaves as a login: the response carries a fresh token.
func (rtr *Router) PostAuthRegister(response http.ResponseWriter, request *http.Request) {
	var registerRequest models.RegisterRequest
	if !rtr.decodeAndValidate(response, request, &registerRequest) {
		return
	}

	account, err := rtr.service.Register(request.Context(), registerRequest.Email, registerRequest.Password)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			writeError(response, http.StatusConflict, "An account with this email already exists.")
			return
		}
		logger.Log.Debugln("Error calling the `rtr.service.Register()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	rtr.writeAuthResponse(response, account)
}

func (rtr *Router) writeAuthResponse(response http.ResponseWriter, account *models.Account) {
	token, err := rtr.auth.BuildToken(account)
	if err != nil {
		logger.Log.Debugln("Error calling the `rtr.auth.BuildToken()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, models.AuthResponse{
		Token: token,
		User:  account.Sanitized(),
	})
}

// PostAuthLogout handles `POST /api/auth/logout`.
func (rtr *Router) PostAuthLogout(response http.ResponseWriter, request *http.Request) {
	if err := rtr.service.Logout(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `rtr.service.Logout()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// GetAuthUser handles `GET /api/auth/user`: it returns the account resolved
// from the bearer token.
func (rtr *Router) GetAuthUser(response http.ResponseWriter, request *http.Request) {
	account := auth.AccountFromContext(request.Context())
	if account == nil {
		response.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(response, http.StatusOK, account.Sanitized())
}

// GetUserByID handles `GET /api/users/{id}`.
func (rtr *Router) GetUserByID(response http.ResponseWriter, request *http.Request) {
	accountID, err := idFromURL(request)
	if err != nil {
		writeError(response, http.StatusBadRequest, "malformed account id")
		return
	}

	if !requesterMayAccess(request, accountID) {
		writeError(response, http.StatusForbidden, "access denied")
		return
	}

	account, err := rtr.service.GetAccountByID(request.Context(), accountID)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			writeError(response, http.StatusNotFound, "Account not found.")
			return
		}
		logger.Log.Debugln("Error calling the `rtr.service.GetAccountByID()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, account.Sanitized())
}

// PostUserApply handles `POST /api/users/{id}/apply` and returns the
// updated account.
func (rtr *Router) PostUserApply(response http.ResponseWriter, request *http.Request) {
	accountID, err := idFromURL(request)
	if err != nil {
		writeError(response, http.StatusBadRequest, "malformed account id")
		return
	}

	if !requesterMayAccess(request, accountID) {
		writeError(response, http.StatusForbidden, "access denied")
		return
	}

	var applyRequest models.ApplyRequest
	if !rtr.decodeAndValidate(response, request, &applyRequest) {
		return
	}

	account, err := rtr.service.Apply(request.Context(), accountID, applyRequest.InternshipID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrListingNotFound):
			writeError(response, http.StatusNotFound, "Internship not found.")
		case errors.Is(err, models.ErrAccountNotFound):
			writeError(response, http.StatusNotFound, "Account not found.")
		default:
			logger.Log.Debugln("Error calling the `rtr.service.Apply()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	writeJSON(response, http.StatusOK, account.Sanitized())
}

// GetInternships handles `GET /api/internships`. Skills are always emitted
// as an array.
func (rtr *Router) GetInternships(response http.ResponseWriter, request *http.Request) {
	writeJSON(response, http.StatusOK, rtr.service.Listings())
}

// PostInternships handles `POST /api/internships` (admin only).
func (rtr *Router) PostInternships(response http.ResponseWriter, request *http.Request) {
	var payload models.ListingPayload
	if !rtr.decodeAndValidate(response, request, &payload) {
		return
	}

	writeJSON(response, http.StatusCreated, rtr.service.CreateListing(payload))
}

// PutInternship handles `PUT /api/internships/{id}` (admin only).
func (rtr *Router) PutInternship(response http.ResponseWriter, request *http.Request) {
	listingID, err := idFromURL(request)
	if err != nil {
		writeError(response, http.StatusBadRequest, "malformed internship id")
		return
	}

	var payload models.ListingPayload
	if !rtr.decodeAndValidate(response, request, &payload) {
		return
	}

	listing, err := rtr.service.UpdateListing(listingID, payload)
	if err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			writeError(response, http.StatusNotFound, "Internship not found.")
			return
		}
		logger.Log.Debugln("Error calling the `rtr.service.UpdateListing()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, listing)
}

// DeleteInternship handles `DELETE /api/internships/{id}` (admin only).
// The removal is unconditional; confirmation belongs to the client.
func (rtr *Router) DeleteInternship(response http.ResponseWriter, request *http.Request) {
	listingID, err := idFromURL(request)
	if err != nil {
		writeError(response, http.StatusBadRequest, "malformed internship id")
		return
	}

	if err := rtr.service.DeleteListing(listingID); err != nil {
		if errors.Is(err, models.ErrListingNotFound) {
			writeError(response, http.StatusNotFound, "Internship not found.")
			return
		}
		logger.Log.Debugln("Error calling the `rtr.service.DeleteListing()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusNoContent)
}

// GetPing handles `GET /api/ping`: a storage health probe.
func (rtr *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := rtr.service.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `rtr.service.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetInternalStats handles `GET /api/internal/stats`.
func (rtr *Router) GetInternalStats(response http.ResponseWriter, request *http.Request) {
	stats, err := rtr.service.GetInternalStats(request.Context())
	if err != nil {
		logger.Log.Debugln("Error calling the `rtr.service.GetInternalStats()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}
