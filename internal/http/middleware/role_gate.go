package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/ST10067544-Thato/Gift-Card-System/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// RoleGate admits a request only when its bearer token is valid and the
// embedded role is one of the roles the route was declared with.
type RoleGate struct {
	tokenSvc  domain.TokenService
	policySvc domain.PolicyService
	audit     domain.AuditLogger
	logger    *zap.Logger
}

func NewRoleGate(tokenSvc domain.TokenService, policySvc domain.PolicyService, audit domain.AuditLogger, logger *zap.Logger) *RoleGate {
	if audit == nil {
		audit = domain.NopAuditLogger{}
	}
	return &RoleGate{tokenSvc: tokenSvc, policySvc: policySvc, audit: audit, logger: logger}
}

// Require registers a gate for roles and returns the middleware enforcing
// it. It panics on an empty or unknown role set, which is a routing bug.
func (g *RoleGate) Require(roles ...domain.Role) gin.HandlerFunc {
	gate := services.GateName(roles...)
	if err := g.policySvc.AllowRoles(gate, roles...); err != nil {
		panic("role gate: " + err.Error())
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			g.deny(c, gate, "", err)
			return
		}

		claims, err := g.tokenSvc.Verify(token)
		if err != nil {
			g.deny(c, gate, "", err)
			return
		}

		allowed, err := g.policySvc.CheckPermission(claims.Role, gate)
		if err != nil {
			g.logger.Error("policy check failed",
				zap.String("gate", gate),
				zap.String("role", string(claims.Role)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if !allowed {
			g.deny(c, gate, claims.Email, domain.ErrInsufficientRole)
			return
		}

		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(domain.WithClaims(ctx, claims))

		g.audit.LogEvent(c.Request.Context(), domain.NewAuditEvent(domain.AccessGrantedEvent).
			FromContext(c.Request.Context()).
			WithEmail(claims.Email).
			WithMetadata("gate", gate).
			WithMetadata("path", c.FullPath()))
		c.Next()
	}
}

// ClaimsFrom returns the claims a RoleGate stored on c
func ClaimsFrom(c *gin.Context) (*domain.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.TokenClaims)
	return claims, ok
}

func (g *RoleGate) deny(c *gin.Context, gate, email string, err error) {
	ctx := c.Request.Context()
	g.audit.LogEvent(ctx, domain.NewAuditEvent(domain.AccessDeniedEvent).
		FromContext(ctx).
		WithEmail(email).
		WithMetadata("gate", gate).
		WithMetadata("path", c.FullPath()).
		WithError(err))

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": denyMessage(err)})
}

func denyMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "Access denied, no token provided"
	case errors.Is(err, domain.ErrTokenExpired):
		return "Access denied, token expired"
	case errors.Is(err, domain.ErrInsufficientRole):
		return "Access denied, insufficient permissions"
	default:
		return "Access denied, invalid token"
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", domain.ErrTokenMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", domain.ErrTokenMissing
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrTokenMissing
	}
	return token, nil
}
