package httpx

import (
	"net/http"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/http/handlers"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildRouter wires every route. Gates are registered with the policy
// service as the routes are declared.
func BuildRouter(ah *handlers.AuthHandlers, adm *handlers.AdminHandlers, gate *middleware.RoleGate, logger *zap.Logger) *gin.Engine {
	handlers.UseJSONFieldNames()

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), middleware.Recovery(logger))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })

	adminOnly := gate.Require(domain.RoleAdmin)

	auth := r.Group("/auth")
	auth.POST("/login", ah.Login)
	auth.POST("/setup-totp", ah.SetupTOTP)
	auth.POST("/verify-totp", ah.VerifyTOTP)
	auth.POST("/register", adminOnly, ah.Register)
	auth.GET("/me", gate.Require(domain.RoleAdmin, domain.RoleStore), ah.Me)

	admin := auth.Group("/admin", adminOnly)
	admin.GET("/users", adm.ListUsers)
	admin.POST("/change-password", adm.ChangePassword)
	admin.POST("/revoke-2fa", adm.RevokeTOTP)
	admin.GET("/policies", adm.Policies)

	return r
}
