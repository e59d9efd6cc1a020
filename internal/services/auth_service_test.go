package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/infrastructure/repositories"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc       domain.AuthService
	repo      *mocks.MockUserRepository
	passwords *mocks.MockPasswordService
	tokens    *mocks.MockTokenService
	audit     *mocks.MockAuditLogger
}

func newAuthFixture(t *testing.T, users ...*domain.User) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:      memoryUsers(users...),
		passwords: mocks.NewMockPasswordService(),
		tokens:    mocks.NewMockTokenService(),
		audit:     mocks.NewMockAuditLogger(),
	}
	totpSvc := NewTOTPService(f.repo, repositories.NewMemoryPendingSecretStore(), mocks.NewMockTOTPProvider(), f.audit)
	f.svc = NewAuthService(f.repo, f.passwords, f.tokens, totpSvc, f.audit)
	return f
}

func storeUser() *domain.User {
	return &domain.User{ID: 2, Email: "store@x.com", PasswordHash: "hashed_secret1", Role: domain.RoleStore}
}

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		wantErr   error
		wantEvent domain.AuditEventType
	}{
		{
			name:      "successful login",
			email:     "store@x.com",
			password:  "secret1",
			wantEvent: domain.UserLoginEvent,
		},
		{
			name:      "email is normalized",
			email:     "  Store@X.com ",
			password:  "secret1",
			wantEvent: domain.UserLoginEvent,
		},
		{
			name:      "wrong password",
			email:     "store@x.com",
			password:  "wrong-password",
			wantErr:   domain.ErrInvalidCredentials,
			wantEvent: domain.UserLoginFailureEvent,
		},
		{
			name:      "unknown email",
			email:     "nobody@x.com",
			password:  "secret1",
			wantErr:   domain.ErrInvalidCredentials,
			wantEvent: domain.UserLoginFailureEvent,
		},
		{
			name:      "malformed email is just unknown",
			email:     "not-an-email",
			password:  "secret1",
			wantErr:   domain.ErrInvalidCredentials,
			wantEvent: domain.UserLoginFailureEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, storeUser())

			result, err := f.svc.Login(context.Background(), tt.email, tt.password)
			assert.Equal(t, []domain.AuditEventType{tt.wantEvent}, f.audit.Types())
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "store@x.com", result.User.Email)
			assert.Equal(t, domain.RoleStore, result.User.Role)
			assert.Equal(t, "token_2_store@x.com_store", result.Token)
			assert.True(t, result.ExpiresAt.After(time.Now()))
		})
	}
}

func TestAuthServiceImpl_LoginChecksPasswordForUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	var checked []string
	f.passwords.VerifyFunc = func(hashed, password string) bool {
		checked = append(checked, hashed)
		return false
	}

	_, err := f.svc.Login(context.Background(), "nobody@x.com", "secret1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, []string{"hashed_not-a-real-password"}, checked)
}

func TestAuthServiceImpl_LoginStoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.FindByEmailFunc = func(ctx context.Context, email string) (*domain.User, error) {
		return nil, errors.New("connection reset")
	}

	_, err := f.svc.Login(context.Background(), "store@x.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.Kind(err))
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthServiceImpl_Register(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		role       string
		wantErr    error
		wantFields []string
		wantRole   domain.Role
	}{
		{
			name:     "store by default",
			email:    "New@X.com",
			password: "secret1",
			wantRole: domain.RoleStore,
		},
		{
			name:     "explicit admin",
			email:    "boss@x.com",
			password: "secret1",
			role:     "admin",
			wantRole: domain.RoleAdmin,
		},
		{
			name:     "existing email",
			email:    "STORE@x.com",
			password: "secret1",
			wantErr:  domain.ErrUserAlreadyExists,
		},
		{
			name:       "short password",
			email:      "new@x.com",
			password:   "12345",
			wantFields: []string{"password"},
		},
		{
			name:       "password longer than bcrypt accepts",
			email:      "new@x.com",
			password:   strings.Repeat("p", 73),
			wantFields: []string{"password"},
		},
		{
			name:     "password at the bcrypt limit",
			email:    "long@x.com",
			password: strings.Repeat("p", 72),
			wantRole: domain.RoleStore,
		},
		{
			name:       "bad email and role",
			email:      "not-an-email",
			password:   "secret1",
			role:       "manager",
			wantFields: []string{"email", "role"},
		},
		{
			name:       "everything missing",
			wantFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, storeUser())

			user, err := f.svc.Register(context.Background(), tt.email, tt.password, tt.role)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			case tt.wantFields != nil:
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				for _, field := range tt.wantFields {
					assert.Contains(t, verr.Fields, field)
				}
				assert.Len(t, verr.Fields, len(tt.wantFields))
			default:
				require.NoError(t, err)
				assert.Equal(t, domain.NormalizeEmail(tt.email), user.Email)
				assert.Equal(t, tt.wantRole, user.Role)
				assert.Equal(t, "hashed_"+tt.password, user.PasswordHash)
				assert.False(t, user.HasTOTP())
				assert.Equal(t, []domain.AuditEventType{domain.UserRegistrationEvent}, f.audit.Types())

				// the new account can log in straight away
				_, err := f.svc.Login(context.Background(), tt.email, tt.password)
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthServiceImpl_RegisterRaceLosesToUniqueIndex(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.CreateFunc = func(ctx context.Context, user *domain.User) error {
		return domain.ErrUserAlreadyExists
	}

	_, err := f.svc.Register(context.Background(), "a@x.com", "secret1", "")
	assert.Equal(t, domain.ErrUserAlreadyExists, err)
}

func TestAuthServiceImpl_ListUsers(t *testing.T) {
	admin := &domain.User{ID: 1, Email: "admin@x.com", Role: domain.RoleAdmin, TOTPSecret: "SECRET"}
	f := newAuthFixture(t, admin, storeUser())

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.UserSummary{
		{Email: "admin@x.com", Role: domain.RoleAdmin, Has2FA: true},
		{Email: "store@x.com", Role: domain.RoleStore, Has2FA: false},
	}, users)
}

func TestAuthServiceImpl_ListUsersEmpty(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.ListFunc = func(ctx context.Context) ([]*domain.User, error) { return nil, nil }

	users, err := f.svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestAuthServiceImpl_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the hash", func(t *testing.T) {
		f := newAuthFixture(t, storeUser())
		require.NoError(t, f.svc.ChangePassword(ctx, "Store@x.com", "newsecret"))

		_, err := f.svc.Login(ctx, "store@x.com", "secret1")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		_, err = f.svc.Login(ctx, "store@x.com", "newsecret")
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture(t)
		err := f.svc.ChangePassword(ctx, "nobody@x.com", "newsecret")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("short password", func(t *testing.T) {
		f := newAuthFixture(t, storeUser())
		err := f.svc.ChangePassword(ctx, "store@x.com", "123")
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "newPassword")
	})

	t.Run("password too long", func(t *testing.T) {
		f := newAuthFixture(t, storeUser())
		err := f.svc.ChangePassword(ctx, "store@x.com", strings.Repeat("p", 80))
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "newPassword")

		_, err = f.svc.Login(ctx, "store@x.com", "secret1")
		assert.NoError(t, err)
	})
}

func TestAuthServiceImpl_TOTPFlow(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, storeUser())

	setup, err := f.svc.SetupTOTP(ctx, "store@x.com")
	require.NoError(t, err)
	require.False(t, setup.AlreadyConfigured)

	result, err := f.svc.VerifyTOTP(ctx, "store@x.com", "code-for-"+setup.Secret)
	require.NoError(t, err)
	assert.Equal(t, "token_2_store@x.com_store", result.Token)
	assert.Equal(t, domain.RoleStore, result.User.Role)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].Has2FA)

	require.NoError(t, f.svc.RevokeTOTP(ctx, "store@x.com"))
	users, err = f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.False(t, users[0].Has2FA)

	_, err = f.svc.VerifyTOTP(ctx, "store@x.com", "code-for-"+setup.Secret)
	assert.ErrorIs(t, err, domain.ErrTOTPSetupNotInitiated)
}

func TestAuthServiceImpl_VerifyTOTPTokenFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, storeUser())
	f.tokens.IssueFunc = func(user *domain.User) (string, *domain.TokenClaims, error) {
		return "", nil, errors.New("signing failed")
	}

	setup, err := f.svc.SetupTOTP(ctx, "store@x.com")
	require.NoError(t, err)
	_, err = f.svc.VerifyTOTP(ctx, "store@x.com", "code-for-"+setup.Secret)
	assert.ErrorContains(t, err, "signing failed")
}

func TestAuthServiceImpl_VerifyTOTPFailureIssuesNoToken(t *testing.T) {
	totpSvc := mocks.NewMockTOTPService()
	tokens := mocks.NewMockTokenService()
	issued := 0
	tokens.IssueFunc = func(user *domain.User) (string, *domain.TokenClaims, error) {
		issued++
		return "token", &domain.TokenClaims{}, nil
	}
	svc := NewAuthService(memoryUsers(storeUser()), mocks.NewMockPasswordService(), tokens, totpSvc, mocks.NewMockAuditLogger())

	result, err := svc.VerifyTOTP(context.Background(), "store@x.com", "000000")
	assert.ErrorIs(t, err, domain.ErrTOTPInvalidCode)
	assert.Nil(t, result)
	assert.Zero(t, issued)

	totpSvc.VerifyFunc = func(ctx context.Context, email, code string) (*domain.User, error) {
		return storeUser(), nil
	}
	result, err = svc.VerifyTOTP(context.Background(), "store@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "token", result.Token)
	assert.Equal(t, 1, issued)
}
