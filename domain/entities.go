package domain

import (
	"strings"
	"time"
)

// Role is the single authorization role held by a user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStore Role = "store"
)

// DefaultRole is assigned when registration does not name a role
const DefaultRole = RoleStore

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStore
}

func (r Role) String() string { return string(r) }

// ParseRole converts user input to a Role. Empty input yields DefaultRole.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", NewValidationError("role", "role must be one of: admin, store")
	}
	return r, nil
}

// NormalizeEmail is applied at every entry point before an email is used as a key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User represents a user in the system
type User struct {
	ID           uint
	Email        string
	PasswordHash string
	Role         Role
	TOTPSecret   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasTOTP reports whether a second factor has been confirmed for the user
func (u *User) HasTOTP() bool {
	return u != nil && u.TOTPSecret != ""
}

// Summary returns the admin-facing view of a user. It never carries the secret.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Email:  u.Email,
		Role:   u.Role,
		Has2FA: u.HasTOTP(),
	}
}

// UserSummary is one row of the admin user list
type UserSummary struct {
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Has2FA bool   `json:"has2FA"`
}

// AuthResult represents authentication outcome
type AuthResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// TOTPKey is a freshly generated shared secret and its provisioning forms
type TOTPKey struct {
	Secret     string
	OTPAuthURL string
	QRCodeURL  string
}

// TOTPSetupResult is returned by the setup step. When AlreadyConfigured is
// true no secret is generated and the remaining fields are empty.
type TOTPSetupResult struct {
	AlreadyConfigured bool
	Secret            string
	OTPAuthURL        string
	QRCodeURL         string
}
