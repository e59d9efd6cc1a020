package domain

import "context"

// UserRepository is the credential store. Every method touches one user record.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	// SetTOTPSecret stores secret for the user; an empty secret clears it
	SetTOTPSecret(ctx context.Context, email, secret string) error
	CountByRole(ctx context.Context, role Role) (int64, error)
}

// PendingSecretStore holds TOTP secrets generated but not yet confirmed,
// keyed by normalized email. Concurrent Set calls for one email are
// last-write-wins.
type PendingSecretStore interface {
	Get(ctx context.Context, email string) (string, error)
	Set(ctx context.Context, email, secret string) error
	Delete(ctx context.Context, email string) error
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService issues and verifies stateless bearer tokens.
// The role is captured at issue time; a later role change is only
// visible after the next login.
type TokenService interface {
	Issue(user *User) (token string, claims *TokenClaims, err error)
	Verify(token string) (*TokenClaims, error)
}

// TOTPProvider generates shared secrets and checks codes against them
type TOTPProvider interface {
	Generate(account string) (*TOTPKey, error)
	Validate(code, secret string) (bool, error)
}

// TOTPService drives the per-user NoSecret -> PendingSetup -> Confirmed flow
type TOTPService interface {
	BeginSetup(ctx context.Context, email string) (*TOTPSetupResult, error)
	Verify(ctx context.Context, email, code string) (*User, error)
	Revoke(ctx context.Context, email string) error
}

// AuthService defines authentication and user management business logic
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password, role string) (*User, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
	ChangePassword(ctx context.Context, email, newPassword string) error
	RevokeTOTP(ctx context.Context, email string) error
	SetupTOTP(ctx context.Context, email string) (*TOTPSetupResult, error)
	VerifyTOTP(ctx context.Context, email, code string) (*AuthResult, error)
}

// PolicyService maps roles to named gates
type PolicyService interface {
	AllowRoles(gate string, roles ...Role) error
	CheckPermission(role Role, gate string) (bool, error)
	GetPolicies() [][]string
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"userId"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}
