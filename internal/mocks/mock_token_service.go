package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueFunc  func(user *domain.User) (string, *domain.TokenClaims, error)
	VerifyFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Issue issues a token for the user
func (m *MockTokenService) Issue(user *domain.User) (string, *domain.TokenClaims, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(user)
	}
	// Default behavior: readable token encoding id, email and role
	now := time.Now()
	claims := &domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
	return fmt.Sprintf("token_%d_%s_%s", user.ID, user.Email, user.Role), claims, nil
}

// Verify verifies a token
func (m *MockTokenService) Verify(token string) (*domain.TokenClaims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token)
	}
	// Default behavior: accept tokens produced by the default Issue
	parts := strings.SplitN(token, "_", 4)
	if len(parts) != 4 || parts[0] != "token" {
		return nil, domain.ErrTokenMalformed
	}
	var id uint
	if _, err := fmt.Sscanf(parts[1], "%d", &id); err != nil {
		return nil, domain.ErrTokenMalformed
	}
	return &domain.TokenClaims{
		UserID:    id,
		Email:     parts[2],
		Role:      domain.Role(parts[3]),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
