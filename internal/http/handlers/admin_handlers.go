package handlers

import (
	"net/http"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandlers serves the admin-gated user management endpoints
type AdminHandlers struct {
	authSvc   domain.AuthService
	policySvc domain.PolicyService
	logger    *zap.Logger
}

func NewAdminHandlers(authSvc domain.AuthService, policySvc domain.PolicyService, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{authSvc: authSvc, policySvc: policySvc, logger: logger}
}

type ChangePasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ListUsers returns every account without secrets
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.authSvc.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ChangePassword replaces a user's password
func (h *AdminHandlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authSvc.ChangePassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// RevokeTOTP clears a user's second factor
func (h *AdminHandlers) RevokeTOTP(c *gin.Context) {
	var req EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.authSvc.RevokeTOTP(c.Request.Context(), req.Email); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA revoked successfully"})
}

// Policies lists the role gate rules registered by the router
func (h *AdminHandlers) Policies(c *gin.Context) {
	rules := h.policySvc.GetPolicies()
	out := make([]gin.H, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 2 {
			continue
		}
		out = append(out, gin.H{"role": rule[0], "gate": rule[1]})
	}
	c.JSON(http.StatusOK, out)
}
