package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
)

// TOTPServiceImpl implements domain.TOTPService. A secret generated by
// BeginSetup stays pending until the first code verifies against it.
type TOTPServiceImpl struct {
	userRepo domain.UserRepository
	pending  domain.PendingSecretStore
	provider domain.TOTPProvider
	audit    domain.AuditLogger
}

// NewTOTPService creates a new TOTP service
func NewTOTPService(
	userRepo domain.UserRepository,
	pending domain.PendingSecretStore,
	provider domain.TOTPProvider,
	audit domain.AuditLogger,
) domain.TOTPService {
	if audit == nil {
		audit = domain.NopAuditLogger{}
	}
	return &TOTPServiceImpl{
		userRepo: userRepo,
		pending:  pending,
		provider: provider,
		audit:    audit,
	}
}

// BeginSetup implements domain.TOTPService
func (s *TOTPServiceImpl) BeginSetup(ctx context.Context, email string) (*domain.TOTPSetupResult, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.HasTOTP() {
		return &domain.TOTPSetupResult{AlreadyConfigured: true}, nil
	}

	key, err := s.provider.Generate(email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}
	// overwrites any earlier unconfirmed secret
	if err := s.pending.Set(ctx, email, key.Secret); err != nil {
		return nil, fmt.Errorf("failed to store pending secret: %w", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TOTPSetupStartedEvent).FromContext(ctx).WithUser(user))

	return &domain.TOTPSetupResult{
		Secret:     key.Secret,
		OTPAuthURL: key.OTPAuthURL,
		QRCodeURL:  key.QRCodeURL,
	}, nil
}

// Verify implements domain.TOTPService
func (s *TOTPServiceImpl) Verify(ctx context.Context, email, code string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	secret, pending, err := s.candidateSecret(ctx, user)
	if err != nil {
		return nil, err
	}

	ok, err := s.provider.Validate(code, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to validate totp code: %w", err)
	}
	if !ok {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TOTPFailureEvent).
			FromContext(ctx).
			WithUser(user).
			WithMetadata("pending", pending).
			WithError(domain.ErrTOTPInvalidCode))
		return nil, domain.ErrTOTPInvalidCode
	}

	if !pending {
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TOTPVerifiedEvent).FromContext(ctx).WithUser(user))
		return user, nil
	}

	if err := s.userRepo.SetTOTPSecret(ctx, email, secret); err != nil {
		return nil, fmt.Errorf("failed to persist totp secret: %w", err)
	}
	// the persisted secret now takes precedence, so a stale pending entry is harmless
	_ = s.pending.Delete(ctx, email)
	user.TOTPSecret = secret

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TOTPConfirmedEvent).FromContext(ctx).WithUser(user))
	return user, nil
}

// Revoke implements domain.TOTPService
func (s *TOTPServiceImpl) Revoke(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.userRepo.SetTOTPSecret(ctx, email, ""); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.TOTPRevokedEvent).FromContext(ctx).WithEmail(email))
	return nil
}

// candidateSecret prefers the persisted secret and reports whether the
// returned one is still pending.
func (s *TOTPServiceImpl) candidateSecret(ctx context.Context, user *domain.User) (string, bool, error) {
	if user.HasTOTP() {
		return user.TOTPSecret, false, nil
	}
	secret, err := s.pending.Get(ctx, user.Email)
	if err != nil {
		if errors.Is(err, domain.ErrPendingSecretNotFound) {
			return "", false, domain.ErrTOTPSetupNotInitiated
		}
		return "", false, fmt.Errorf("failed to load pending secret: %w", err)
	}
	return secret, true, nil
}
