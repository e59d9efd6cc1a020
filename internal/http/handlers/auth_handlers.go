package handlers

import (
	"errors"
	"net/http"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandlers serves login, registration and the TOTP step-up endpoints
type AuthHandlers struct {
	authSvc domain.AuthService
	logger  *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc, logger: logger}
}

// LoginRequest represents login request. Email format is not checked so a
// malformed address fails exactly like an unknown one.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role,omitempty"` // defaults to "store"
}

type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type VerifyTOTPRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// Login handles password login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(result))
}

// Register handles admin-initiated account creation
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"email":   user.Email,
		"role":    user.Role,
	})
}

// SetupTOTP starts second factor enrollment for an email
func (h *AuthHandlers) SetupTOTP(c *gin.Context) {
	var req EmailRequest
	if !bindJSON(c, &req) {
		return
	}

	setup, err := h.authSvc.SetupTOTP(c.Request.Context(), req.Email)
	if err != nil {
		h.totpError(c, err)
		return
	}
	if setup.AlreadyConfigured {
		c.JSON(http.StatusOK, gin.H{"message": "2FA already configured", "hasTotp": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"qrCodeUrl":  setup.QRCodeURL,
		"otpauthUrl": setup.OTPAuthURL,
		"secret":     setup.Secret,
		"hasTotp":    false,
	})
}

// VerifyTOTP checks a code and returns a fresh token on success
func (h *AuthHandlers) VerifyTOTP(c *gin.Context) {
	var req VerifyTOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.VerifyTOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.totpError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse(result))
}

// Me returns the identity carried by the caller's token
func (h *AuthHandlers) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "Access denied, no token provided"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": claims.UserID,
		"email":  claims.Email,
		"role":   claims.Role,
		"exp":    claims.ExpiresAt,
	})
}

// totpError reports unknown emails as a bad request on the unauthenticated TOTP routes
func (h *AuthHandlers) totpError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User not found"})
		return
	}
	writeError(c, h.logger, err)
}

func tokenResponse(result *domain.AuthResult) gin.H {
	return gin.H{
		"token": result.Token,
		"email": result.User.Email,
		"role":  result.User.Role,
	}
}
