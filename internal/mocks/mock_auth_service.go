package mocks

import (
	"context"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	LoginFunc          func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	RegisterFunc       func(ctx context.Context, email, password, role string) (*domain.User, error)
	ListUsersFunc      func(ctx context.Context) ([]domain.UserSummary, error)
	ChangePasswordFunc func(ctx context.Context, email, newPassword string) error
	RevokeTOTPFunc     func(ctx context.Context, email string) error
	SetupTOTPFunc      func(ctx context.Context, email string) (*domain.TOTPSetupResult, error)
	VerifyTOTPFunc     func(ctx context.Context, email, code string) (*domain.AuthResult, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// Login authenticates a user
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

// Register creates a new user
func (m *MockAuthService) Register(ctx context.Context, email, password, role string) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, role)
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: 1, Email: domain.NormalizeEmail(email), Role: r}, nil
}

// ListUsers lists user summaries
func (m *MockAuthService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return []domain.UserSummary{}, nil
}

// ChangePassword replaces a user's password
func (m *MockAuthService) ChangePassword(ctx context.Context, email, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, email, newPassword)
	}
	return nil
}

// RevokeTOTP clears a user's second factor
func (m *MockAuthService) RevokeTOTP(ctx context.Context, email string) error {
	if m.RevokeTOTPFunc != nil {
		return m.RevokeTOTPFunc(ctx, email)
	}
	return nil
}

// SetupTOTP starts second factor setup
func (m *MockAuthService) SetupTOTP(ctx context.Context, email string) (*domain.TOTPSetupResult, error) {
	if m.SetupTOTPFunc != nil {
		return m.SetupTOTPFunc(ctx, email)
	}
	return &domain.TOTPSetupResult{AlreadyConfigured: true}, nil
}

// VerifyTOTP verifies a second factor code
func (m *MockAuthService) VerifyTOTP(ctx context.Context, email, code string) (*domain.AuthResult, error) {
	if m.VerifyTOTPFunc != nil {
		return m.VerifyTOTPFunc(ctx, email, code)
	}
	return nil, domain.ErrTOTPInvalidCode
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
