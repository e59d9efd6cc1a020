package e2e

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ST10067544-Thato/Gift-Card-System/internal/config"
)

func setupTOTP(t *testing.T, a *TestApp, email string) map[string]interface{} {
	t.Helper()
	status, body := a.Do(http.MethodPost, "/auth/setup-totp", "", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, status, "%v", body)
	return body
}

func TestTOTPLifecycle(t *testing.T) {
	for _, store := range []string{config.PendingStoreMemory, config.PendingStoreRedis} {
		t.Run(store, func(t *testing.T) {
			a := NewTestApp(t, store)
			admin := a.AdminToken()
			a.Register(admin, "a@x.com", "secret1", "")

			first := setupTOTP(t, a, "a@x.com")
			assert.Equal(t, false, first["hasTotp"])
			assert.True(t, strings.HasPrefix(first["qrCodeUrl"].(string), "data:image/png;base64,"))
			firstSecret := first["secret"].(string)

			// a second setup before confirmation replaces the pending secret
			second := setupTOTP(t, a, "A@x.com")
			secondSecret := second["secret"].(string)
			require.NotEqual(t, firstSecret, secondSecret)

			status, body := a.Do(http.MethodPost, "/auth/verify-totp", "",
				map[string]string{"email": "a@x.com", "code": a.Code(firstSecret)})
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "Invalid TOTP code", body["message"])
			assert.Equal(t, false, a.Users(admin)["a@x.com"]["has2FA"])

			status, body = a.Do(http.MethodPost, "/auth/verify-totp", "",
				map[string]string{"email": "a@x.com", "code": a.Code(secondSecret)})
			require.Equal(t, http.StatusOK, status, "%v", body)
			assert.NotEmpty(t, body["token"])
			assert.Equal(t, "store", body["role"])
			assert.Equal(t, true, a.Users(admin)["a@x.com"]["has2FA"])

			// confirmed: setup no longer hands out a secret, verification keeps working
			again := setupTOTP(t, a, "a@x.com")
			assert.Equal(t, true, again["hasTotp"])
			assert.NotContains(t, again, "secret")

			status, _ = a.Do(http.MethodPost, "/auth/verify-totp", "",
				map[string]string{"email": "a@x.com", "code": a.Code(secondSecret)})
			assert.Equal(t, http.StatusOK, status)

			status, body = a.Do(http.MethodPost, "/auth/admin/revoke-2fa", admin, map[string]string{"email": "a@x.com"})
			require.Equal(t, http.StatusOK, status, "%v", body)
			assert.Equal(t, false, a.Users(admin)["a@x.com"]["has2FA"])

			fresh := setupTOTP(t, a, "a@x.com")
			assert.Equal(t, false, fresh["hasTotp"])
			assert.NotEmpty(t, fresh["qrCodeUrl"])
			assert.NotEqual(t, secondSecret, fresh["secret"])
		})
	}
}

func TestTOTPErrors(t *testing.T) {
	a := NewTestApp(t, config.PendingStoreMemory)
	admin := a.AdminToken()
	a.Register(admin, "a@x.com", "secret1", "")

	status, body := a.Do(http.MethodPost, "/auth/setup-totp", "", map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User not found", body["message"])

	status, body = a.Do(http.MethodPost, "/auth/verify-totp", "", map[string]string{"email": "a@x.com", "code": "123456"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "TOTP setup not initiated", body["message"])

	status, body = a.Do(http.MethodPost, "/auth/verify-totp", "", map[string]string{"email": "ghost@x.com", "code": "123456"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User not found", body["message"])

	status, body = a.Do(http.MethodPost, "/auth/admin/revoke-2fa", admin, map[string]string{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["message"])

	status, _ = a.Do(http.MethodPost, "/auth/admin/revoke-2fa", a.Login("a@x.com", "secret1"), map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusForbidden, status)
}
