package handlers

import (
	"errors"
	"net/http"

	"mealplan-auth/app/domain"
)

// Response is the uniform JSON envelope for authentication endpoints
type Response struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	User    *domain.PublicProfile `json:"user,omitempty"`
	Detail  string                `json:"detail,omitempty"`
}

// mapError translates a domain error into an HTTP status and client
// message. Credential failures stay intentionally non-specific;
// identity-provider and store failures surface as opaque 500s. Internal
// detail is attached only outside production.
func mapError(err error, fallback string, production bool) (int, Response) {
	status := http.StatusInternalServerError
	message := fallback

	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Message
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid request"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusBadRequest
		message = "Invalid credentials"
	case errors.Is(err, domain.ErrMustUseGoogleLogin):
		status = http.StatusBadRequest
		message = "Please use Google Sign-In to login."
	case errors.Is(err, domain.ErrMustUsePasswordLogin):
		status = http.StatusBadRequest
		message = "This email was registered manually. Please login with email and password."
	case errors.Is(err, domain.ErrNoGoogleAccount):
		status = http.StatusBadRequest
		message = "No account found. Please sign up with Google first."
	case errors.Is(err, domain.ErrNotAuthenticated):
		status = http.StatusUnauthorized
		message = "Not authenticated"
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = "Forbidden"
	}

	resp := Response{Success: false, Message: message}
	if !production && status == http.StatusInternalServerError {
		resp.Detail = err.Error()
	}
	return status, resp
}
