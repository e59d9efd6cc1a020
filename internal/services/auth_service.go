package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLength = 6
	// bcrypt only accepts up to 72 bytes
	maxPasswordBytes = 72
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	totpSvc     domain.TOTPService
	audit       domain.AuditLogger
	validate    *validator.Validate

	// compared against on unknown emails so both failure paths cost a hash check
	dummyHash string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	totpSvc domain.TOTPService,
	audit domain.AuditLogger,
) domain.AuthService {
	if audit == nil {
		audit = domain.NopAuditLogger{}
	}
	dummyHash, _ := passwordSvc.Hash("not-a-real-password")
	return &AuthServiceImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		totpSvc:     totpSvc,
		audit:       audit,
		validate:    validator.New(),
		dummyHash:   dummyHash,
	}
}

// Login implements domain.AuthService. Unknown email and wrong password
// return the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		s.passwordSvc.Verify(s.dummyHash, password)
		s.loginFailed(ctx, email, "unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.loginFailed(ctx, email, "password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginEvent).FromContext(ctx).WithUser(user))
	return result, nil
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, role string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	verr := &domain.ValidationError{}
	s.checkEmail(verr, email)
	s.checkPassword(verr, "password", password)
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		var roleErr *domain.ValidationError
		if errors.As(err, &roleErr) {
			for field, msg := range roleErr.Fields {
				verr.Add(field, msg)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         parsedRole,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserRegistrationEvent).
		FromContext(ctx).
		WithUser(user).
		WithMetadata("role", string(user.Role)))
	return user, nil
}

// ListUsers implements domain.AuthService
func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	summaries := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}

// ChangePassword implements domain.AuthService
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, email, newPassword string) error {
	email = domain.NormalizeEmail(email)

	verr := &domain.ValidationError{}
	if email == "" {
		verr.Add("email", "email is required")
	}
	s.checkPassword(verr, "newPassword", newPassword)
	if err := verr.OrNil(); err != nil {
		return err
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, email, hashedPassword); err != nil {
		return err
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.PasswordChangedEvent).FromContext(ctx).WithEmail(email))
	return nil
}

// RevokeTOTP implements domain.AuthService
func (s *AuthServiceImpl) RevokeTOTP(ctx context.Context, email string) error {
	return s.totpSvc.Revoke(ctx, email)
}

// SetupTOTP implements domain.AuthService
func (s *AuthServiceImpl) SetupTOTP(ctx context.Context, email string) (*domain.TOTPSetupResult, error) {
	return s.totpSvc.BeginSetup(ctx, email)
}

// VerifyTOTP implements domain.AuthService. A verified code yields a fresh token.
func (s *AuthServiceImpl) VerifyTOTP(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	user, err := s.totpSvc.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthServiceImpl) issue(user *domain.User) (*domain.AuthResult, error) {
	token, claims, err := s.tokenSvc.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &domain.AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}

func (s *AuthServiceImpl) loginFailed(ctx context.Context, email, reason string) {
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserLoginFailureEvent).
		FromContext(ctx).
		WithEmail(email).
		WithMetadata("reason", reason).
		WithError(domain.ErrInvalidCredentials))
}

func (s *AuthServiceImpl) checkEmail(verr *domain.ValidationError, email string) {
	if email == "" {
		verr.Add("email", "email is required")
		return
	}
	if err := s.validate.Var(email, "email"); err != nil {
		verr.Add("email", "email must be a valid email address")
	}
}

func (s *AuthServiceImpl) checkPassword(verr *domain.ValidationError, field, password string) {
	switch {
	case len(password) < minPasswordLength:
		verr.Add(field, fmt.Sprintf("%s must be at least %d characters", field, minPasswordLength))
	case len(password) > maxPasswordBytes:
		verr.Add(field, fmt.Sprintf("%s must be at most %d bytes", field, maxPasswordBytes))
	}
}
