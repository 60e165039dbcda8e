package domain

import "errors"

// Authentication and session errors
var (
	// Login errors
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountNotFound      = errors.New("account not found")
	ErrMustUseGoogleLogin   = errors.New("please use Google Sign-In to login")
	ErrMustUsePasswordLogin = errors.New("this email was registered manually; please login with email and password")
	ErrNoGoogleAccount      = errors.New("no account found; please sign up with Google first")

	// Token errors
	ErrTokenMalformed        = errors.New("malformed session token")
	ErrTokenInvalidSignature = errors.New("invalid session token signature")
	ErrTokenExpired          = errors.New("session token expired")

	// Identity provider errors
	ErrInvalidAssertion    = errors.New("invalid identity assertion")
	ErrUpstreamUnavailable = errors.New("identity provider unavailable")

	// Authorization errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Store errors
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// ValidationError represents a validation failure with field detail
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrInvalidInput, so the HTTP
// boundary can map the whole class with errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
