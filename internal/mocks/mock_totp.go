package mocks

import (
	"context"
	"sync"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
)

// MockTOTPService implements domain.TOTPService interface for testing
type MockTOTPService struct {
	BeginSetupFunc func(ctx context.Context, email string) (*domain.TOTPSetupResult, error)
	VerifyFunc     func(ctx context.Context, email, code string) (*domain.User, error)
	RevokeFunc     func(ctx context.Context, email string) error
}

// NewMockTOTPService creates a new MockTOTPService with default behaviors
func NewMockTOTPService() *MockTOTPService {
	return &MockTOTPService{}
}

// BeginSetup starts setup for email
func (m *MockTOTPService) BeginSetup(ctx context.Context, email string) (*domain.TOTPSetupResult, error) {
	if m.BeginSetupFunc != nil {
		return m.BeginSetupFunc(ctx, email)
	}
	return &domain.TOTPSetupResult{Secret: "JBSWY3DPEHPK3PXP", QRCodeURL: "data:image/png;base64,"}, nil
}

// Verify checks code for email
func (m *MockTOTPService) Verify(ctx context.Context, email, code string) (*domain.User, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, email, code)
	}
	return nil, domain.ErrTOTPInvalidCode
}

// Revoke clears the secret for email
func (m *MockTOTPService) Revoke(ctx context.Context, email string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, email)
	}
	return nil
}

// MockTOTPProvider implements domain.TOTPProvider interface for testing.
// By default the valid code for any secret is "code-for-" + secret.
type MockTOTPProvider struct {
	GenerateFunc func(account string) (*domain.TOTPKey, error)
	ValidateFunc func(code, secret string) (bool, error)

	mu        sync.Mutex
	generated int
}

// NewMockTOTPProvider creates a new MockTOTPProvider with default behaviors
func NewMockTOTPProvider() *MockTOTPProvider {
	return &MockTOTPProvider{}
}

// Generate returns a deterministic, distinct key per call
func (m *MockTOTPProvider) Generate(account string) (*domain.TOTPKey, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(account)
	}
	m.mu.Lock()
	m.generated++
	n := m.generated
	m.mu.Unlock()

	secret := "SECRET" + string(rune('A'+n-1))
	return &domain.TOTPKey{
		Secret:     secret,
		OTPAuthURL: "otpauth://totp/Test:" + account + "?secret=" + secret,
		QRCodeURL:  "data:image/png;base64,qr-" + secret,
	}, nil
}

// Validate accepts "code-for-<secret>"
func (m *MockTOTPProvider) Validate(code, secret string) (bool, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(code, secret)
	}
	return code == "code-for-"+secret, nil
}

// Generated reports how many keys were generated
func (m *MockTOTPProvider) Generated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generated
}

// MockAuditLogger records audit events for assertions
type MockAuditLogger struct {
	mu     sync.Mutex
	Events []*domain.AuditEvent
}

// NewMockAuditLogger creates a recording audit logger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

// LogEvent records event
func (m *MockAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the recorded event types in order
func (m *MockAuditLogger) Types() []domain.AuditEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]domain.AuditEventType, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}

// Compile-time interface compliance verification
var (
	_ domain.TOTPService  = (*MockTOTPService)(nil)
	_ domain.TOTPProvider = (*MockTOTPProvider)(nil)
	_ domain.AuditLogger  = (*MockAuditLogger)(nil)
)
