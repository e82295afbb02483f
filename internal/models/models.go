// Package models defines the domain records shared across the application —
// accounts, internship listings — together with the request and response
// shapes of the HTTP API and the domain error taxonomy.
package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/thoas/go-funk"
)

// Account roles. The wire values follow the original portal data.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Storage backend kinds, in selection precedence order.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

var (
	// ErrDuplicateEmail is returned on registration when the email is already taken.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	// ErrInvalidCredentials is returned when no account matches the login pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountNotFound is returned when no account has the requested id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrListingNotFound is returned when no internship listing has the requested id.
	ErrListingNotFound = errors.New("internship not found")

	// ErrPasswordMismatch is returned when the registration confirmation differs
	// from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Account is a registered identity: role, credential digest and the history
// of internship applications.
type Account struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`

	// SecretDigest holds the bcrypt digest of the account password.
	// The JSON name keeps the persisted layout of the original portal;
	// API responses strip it via Sanitized.
	SecretDigest string `json:"password,omitempty"`

	Role string `json:"role"`

	// AppliedInternships lists the listing ids the account applied to,
	// in application order, without duplicates.
	AppliedInternships []int64 `json:"appliedInternships"`
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.AppliedInternships = append([]int64(nil), a.AppliedInternships...)
	return &clone
}

// Sanitized returns a copy of the account safe to expose over the API:
// the credential digest is stripped.
func (a *Account) Sanitized() *Account {
	clone := a.Clone()
	if clone != nil {
		clone.SecretDigest = ""
	}
	return clone
}

// IsAdmin reports whether the account carries the administrator role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// HasApplied reports whether the account already applied to the listing.
func (a *Account) HasApplied(listingID int64) bool {
	return a != nil && funk.ContainsInt64(a.AppliedInternships, listingID)
}

// SkillList is an ordered sequence of short skill labels. JSON boundaries
// accept it both as an array and as a single comma-separated string and
// normalize to the array form.
type SkillList []string

// UnmarshalJSON normalizes either representation to a trimmed, non-empty list.
func (s *SkillList) UnmarshalJSON(data []byte) error {
	var asArray []string
	if err := json.Unmarshal(data, &asArray); err == nil {
		*s = NormalizeSkills(asArray)
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	*s = ParseSkills(asString)

	return nil
}

// Joined renders the list in the single-string boundary form.
func (s SkillList) Joined() string {
	return strings.Join(s, ", ")
}

// ParseSkills splits a comma-separated skills string into trimmed, non-empty
// entries. It is the inverse of Joined for skills that contain no comma.
func ParseSkills(joined string) SkillList {
	parts := strings.Split(joined, ",")
	result := make(SkillList, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		result = append(result, part)
	}

	return result
}

// NormalizeSkills trims every entry and drops the empty ones.
func NormalizeSkills(raw []string) SkillList {
	result := make(SkillList, 0, len(raw))
	for _, skill := range raw {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		result = append(result, skill)
	}

	return result
}

// Listing is an internship record available for browsing and application.
type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Domain      string    `json:"domain"`
	Description string    `json:"description"`
	Duration    string    `json:"duration"`
	Stipend     string    `json:"stipend"`
	Skills      SkillList `json:"skills"`
}

// Clone returns a deep copy of the listing.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	clone := *l
	clone.Skills = append(SkillList(nil), l.Skills...)
	return &clone
}

// LoginRequest is the body of `POST /api/auth/login`.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of `POST /api/auth/register`. Username mirrors
// the email for compatibility with the original client, which always sends both.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by successful login and registration.
type AuthResponse struct {
	Token string   `json:"token"`
	User  *Account `json:"user"`
}

// ApplyRequest is the body of `POST /api/users/{id}/apply`.
type ApplyRequest struct {
	InternshipID int64 `json:"internship_id" validate:"required"`
}

// ListingPayload carries the mutable listing fields for create and update.
type ListingPayload struct {
	Title       string    `json:"title" validate:"required"`
	Domain      string    `json:"domain" validate:"required"`
	Description string    `json:"description"`
	Duration    string    `json:"duration"`
	Stipend     string    `json:"stipend"`
	Skills      SkillList `json:"skills"`
}

// ErrorResponse is the uniform error body of the API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// InternalStatsResponse is returned by the trusted-subnet stats endpoint.
type InternalStatsResponse struct {
	Users        int64 `json:"users"`
	Internships  int64 `json:"internships"`
	Applications int64 `json:"applications"`
}
