package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ST10067544-Thato/Gift-Card-System/internal/app"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/config"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/infrastructure/auth"
)

const (
	testJWTSecret = "e2e-signing-secret-0123456789"
	adminEmail    = "admin@x.com"
	adminPassword = "adminpass"
)

// TestApp is a full service over sqlite in memory, served by httptest
type TestApp struct {
	t         *testing.T
	Container *app.Container
	Server    *httptest.Server
	totp      *auth.TOTPProviderImpl
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(pendingStore, redisAddr string) *config.Config {
	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}
	cfg.JWT.Secret = testJWTSecret
	cfg.Password.BcryptCost = bcrypt.MinCost
	cfg.TOTP.PendingStore = pendingStore
	cfg.Redis.Addr = redisAddr
	return cfg
}

// NewTestApp starts the service with the given pending-secret backend and
// one bootstrapped admin account.
func NewTestApp(t *testing.T, pendingStore string) *TestApp {
	t.Helper()

	var redisAddr string
	if pendingStore == config.PendingStoreRedis {
		redisAddr = miniredis.RunT(t).Addr()
	}
	cfg := testConfig(pendingStore, redisAddr)
	require.NoError(t, cfg.Validate())

	ctx := context.Background()
	c, err := app.NewContainer(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = c.AuthSvc.Register(ctx, adminEmail, adminPassword, "admin")
	require.NoError(t, err)

	srv := httptest.NewServer(c.Router)
	t.Cleanup(func() {
		srv.Close()
		_ = c.Close()
	})

	return &TestApp{t: t, Container: c, Server: srv, totp: auth.NewTOTPProvider(cfg.TOTP.Issuer)}
}

// Do sends a JSON request and decodes the JSON response
func (a *TestApp) Do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	status, raw := a.DoRaw(method, path, token, body)
	var out map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out))
	}
	return status, out
}

// DoRaw sends a JSON request and returns the raw response body
func (a *TestApp) DoRaw(method, path, token string, body interface{}) (int, []byte) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.Server.URL+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.Server.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(a.t, err)
	return resp.StatusCode, raw.Bytes()
}

// Login returns a token or fails the test
func (a *TestApp) Login(email, password string) string {
	a.t.Helper()
	status, body := a.Do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, status, "login %s: %v", email, body)
	token, _ := body["token"].(string)
	require.NotEmpty(a.t, token)
	return token
}

// AdminToken logs in as the bootstrapped admin
func (a *TestApp) AdminToken() string {
	return a.Login(adminEmail, adminPassword)
}

// Register creates an account through the admin-gated endpoint
func (a *TestApp) Register(adminToken, email, password, role string) {
	a.t.Helper()
	body := map[string]string{"email": email, "password": password}
	if role != "" {
		body["role"] = role
	}
	status, resp := a.Do(http.MethodPost, "/auth/register", adminToken, body)
	require.Equal(a.t, http.StatusOK, status, "register %s: %v", email, resp)
}

// Code computes the current TOTP code for secret, as an authenticator app would
func (a *TestApp) Code(secret string) string {
	a.t.Helper()
	code, err := a.totp.CodeAt(secret, time.Now())
	require.NoError(a.t, err)
	return code
}

// Users fetches the admin user list keyed by email
func (a *TestApp) Users(adminToken string) map[string]map[string]interface{} {
	a.t.Helper()
	status, raw := a.DoRaw(http.MethodGet, "/auth/admin/users", adminToken, nil)
	require.Equal(a.t, http.StatusOK, status)

	var list []map[string]interface{}
	require.NoError(a.t, json.Unmarshal(raw, &list))
	out := make(map[string]map[string]interface{}, len(list))
	for _, u := range list {
		out[u["email"].(string)] = u
	}
	return out
}
