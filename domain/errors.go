package domain

import (
	"errors"
	"sort"
	"strings"
)

// Authentication errors
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrTOTPInvalidCode       = errors.New("invalid totp code")
	ErrTOTPSetupNotInitiated = errors.New("totp setup not initiated")
)

// Token errors
var (
	ErrTokenMissing   = errors.New("no token provided")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Authorization errors
var (
	ErrInsufficientRole = errors.New("insufficient permissions")
)

// Store errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrPendingSecretNotFound = errors.New("pending totp secret not found")
)

// ErrorKind is the taxonomy an error maps to at the HTTP boundary
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Kind classifies err. Unknown errors are internal.
func Kind(err error) ErrorKind {
	var verr *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTOTPInvalidCode),
		errors.Is(err, ErrTOTPSetupNotInitiated):
		return KindAuthentication
	case errors.Is(err, ErrTokenMissing),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrInsufficientRole):
		return KindAuthorization
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrUserAlreadyExists):
		return KindConflict
	default:
		return KindInternal
	}
}

// ValidationError carries per-field messages for malformed input
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first message per field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Empty reports whether no field failed
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns e as an error, or nil when no field failed
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
