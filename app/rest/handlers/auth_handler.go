package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mealplan-auth/app/domain"
	"mealplan-auth/app/port"
	"mealplan-auth/app/rest/middleware"
	"mealplan-auth/app/utils/validator"
)

// CookieTransport writes the session cookie on login and removes it on
// logout. The concrete implementation owns the environment policy.
type CookieTransport interface {
	Attach(c echo.Context, token string)
	Clear(c echo.Context)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authUsecase port.AuthUsecase
	cookies     CookieTransport
	validate    *validator.Validator
	logger      *slog.Logger
	production  bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase port.AuthUsecase, cookies CookieTransport, logger *slog.Logger, production bool) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		cookies:     cookies,
		validate:    validator.New(),
		logger:      logger,
		production:  production,
	}
}

// LoginRequest carries password-login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries the Google-issued assertion token
type GoogleLoginRequest struct {
	TokenID string `json:"tokenId" validate:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "Invalid request format",
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "Email and password are required",
		})
	}
	if err := h.validate.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "Invalid email format",
		})
	}

	profile, token, err := h.authUsecase.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Info("login rejected",
			"error", err,
			"ip", c.RealIP())
		status, resp := mapError(err, "Login failed", h.production)
		return c.JSON(status, resp)
	}

	h.cookies.Attach(c, token)

	h.logger.Info("login succeeded",
		"username", profile.Username,
		"ip", c.RealIP())

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Login successful",
		User:    profile,
	})
}

// GoogleLogin handles POST /auth/google-login
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "Invalid request format",
		})
	}
	if err := h.validate.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: "Google token is required",
		})
	}

	profile, token, err := h.authUsecase.GoogleLogin(ctx, req.TokenID)
	if err != nil {
		h.logger.Info("google login rejected",
			"error", err,
			"ip", c.RealIP())
		status, resp := mapError(err, "Google login failed", h.production)
		return c.JSON(status, resp)
	}

	h.cookies.Attach(c, token)

	h.logger.Info("google login succeeded",
		"username", profile.Username,
		"ip", c.RealIP())

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Google login successful",
		User:    profile,
	})
}

// Logout handles POST /auth/logout. The session token is stateless, so
// logout just removes the cookie and always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// GetProfile handles GET /auth/get-profile. It runs behind RequireAuth,
// which resolved the account already.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Message: "Not authenticated",
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		User: &domain.PublicProfile{
			Username:     principal.Username,
			Email:        principal.Email,
			ProfileImage: principal.ProfileImage,
			Role:         principal.Role,
		},
	})
}
