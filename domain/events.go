package domain

import (
	"context"
	"time"
)

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Authentication events
	UserLoginEvent        AuditEventType = "USER_LOGIN"
	UserLoginFailureEvent AuditEventType = "USER_LOGIN_FAILED"

	// User management events
	UserRegistrationEvent AuditEventType = "USER_REGISTERED"
	PasswordChangedEvent  AuditEventType = "PASSWORD_CHANGED"

	// Second factor events
	TOTPSetupStartedEvent AuditEventType = "TOTP_SETUP_STARTED"
	TOTPConfirmedEvent    AuditEventType = "TOTP_CONFIRMED"
	TOTPVerifiedEvent     AuditEventType = "TOTP_VERIFIED"
	TOTPFailureEvent      AuditEventType = "TOTP_VERIFICATION_FAILED"
	TOTPRevokedEvent      AuditEventType = "TOTP_REVOKED"

	// Authorization events
	AccessGrantedEvent AuditEventType = "ACCESS_GRANTED"
	AccessDeniedEvent  AuditEventType = "ACCESS_DENIED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType AuditEventType         `json:"event_type"`
	UserID    uint                   `json:"user_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Actor     string                 `json:"actor,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// AuditLogger records audit events. Implementations must never fail the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent)
}

// ClientContext represents client information extracted from HTTP request
type ClientContext struct {
	IPAddress string
	UserAgent string
	RequestID string
}

type clientContextKey struct{}
type claimsContextKey struct{}

// WithClientContext stores client information on ctx
func WithClientContext(ctx context.Context, cc *ClientContext) context.Context {
	return context.WithValue(ctx, clientContextKey{}, cc)
}

// ClientContextFrom returns the client information stored on ctx, if any
func ClientContextFrom(ctx context.Context) *ClientContext {
	cc, _ := ctx.Value(clientContextKey{}).(*ClientContext)
	return cc
}

// WithClaims stores verified token claims on ctx
func WithClaims(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFrom returns verified token claims stored on ctx
func ClaimsFrom(ctx context.Context) (*TokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*TokenClaims)
	return claims, ok && claims != nil
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// FromContext copies client and actor information from ctx
func (e *AuditEvent) FromContext(ctx context.Context) *AuditEvent {
	if cc := ClientContextFrom(ctx); cc != nil {
		e.IPAddress = cc.IPAddress
		e.UserAgent = cc.UserAgent
		e.RequestID = cc.RequestID
	}
	if claims, ok := ClaimsFrom(ctx); ok {
		e.Actor = claims.Email
	}
	return e
}

// WithUser sets the subject user of the event
func (e *AuditEvent) WithUser(user *User) *AuditEvent {
	if user != nil {
		e.UserID = user.ID
		e.Email = user.Email
	}
	return e
}

// WithEmail sets the email field
func (e *AuditEvent) WithEmail(email string) *AuditEvent {
	e.Email = email
	return e
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithMetadata adds metadata to the event
func (e *AuditEvent) WithMetadata(key string, value interface{}) *AuditEvent {
	e.Metadata[key] = value
	return e
}

// NopAuditLogger discards every event
type NopAuditLogger struct{}

func (NopAuditLogger) LogEvent(context.Context, *AuditEvent) {}
