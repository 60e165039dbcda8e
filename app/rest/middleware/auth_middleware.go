package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mealplan-auth/app/domain"
	"mealplan-auth/app/port"
)

// principalContextKey stores the authenticated principal on the echo
// context. Handlers read it through PrincipalFrom instead of touching
// the key directly.
const principalContextKey = "auth_principal"

// Principal is the typed identity attached to authenticated requests
type Principal struct {
	AccountID    uuid.UUID
	Username     string
	Email        string
	Role         domain.Role
	ProfileImage *string
}

// PrincipalFrom returns the authenticated principal set by RequireAuth
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	principal, ok := c.Get(principalContextKey).(*Principal)
	return principal, ok
}

// SetPrincipal attaches a principal to the request context. RequireAuth
// is the only production caller; handler tests use it to simulate an
// authenticated request.
func SetPrincipal(c echo.Context, principal *Principal) {
	c.Set(principalContextKey, principal)
}

// CookieReader extracts the session token from a request
type CookieReader interface {
	Extract(c echo.Context) string
}

// AuthMiddleware authenticates requests from the session cookie
type AuthMiddleware struct {
	cookies     CookieReader
	tokens      port.TokenService
	authUsecase port.AuthUsecase
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(cookies CookieReader, tokens port.TokenService, authUsecase port.AuthUsecase, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		cookies:     cookies,
		tokens:      tokens,
		authUsecase: authUsecase,
		logger:      logger,
	}
}

// RequireAuth verifies the session cookie and loads the account behind
// it. Every failure collapses to the same 401 response so callers
// cannot distinguish missing, expired, and forged sessions.
func (m *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token := m.cookies.Extract(c)
			if token == "" {
				return notAuthenticated(c)
			}

			claims, err := m.tokens.Verify(token)
			if err != nil {
				m.logger.Debug("session token rejected",
					"error", err,
					"ip", c.RealIP())
				return notAuthenticated(c)
			}

			profile, err := m.authUsecase.VerifySession(ctx, claims.AccountID)
			if err != nil {
				if errors.Is(err, domain.ErrNotAuthenticated) {
					m.logger.Debug("session account lookup failed",
						"account_id", claims.AccountID,
						"error", err)
					return notAuthenticated(c)
				}
				m.logger.Error("session verification failed",
					"account_id", claims.AccountID,
					"error", err)
				return c.JSON(http.StatusInternalServerError, map[string]interface{}{
					"success": false,
					"message": "Session verification failed",
					"code":    "INTERNAL_ERROR",
				})
			}

			SetPrincipal(c, &Principal{
				AccountID:    claims.AccountID,
				Username:     profile.Username,
				Email:        profile.Email,
				Role:         profile.Role,
				ProfileImage: profile.ProfileImage,
			})

			return next(c)
		}
	}
}

// RequireRole restricts a route to principals holding one of the given
// roles. It must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return notAuthenticated(c)
			}

			for _, role := range roles {
				if principal.Role == role {
					return next(c)
				}
			}

			m.logger.Warn("role check rejected request",
				"account_id", principal.AccountID,
				"role", principal.Role,
				"path", c.Request().URL.Path)

			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": "Forbidden",
				"code":    "FORBIDDEN",
			})
		}
	}
}

// RequireAdmin restricts a route to administrative roles
func (m *AuthMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return m.RequireRole(domain.RoleAdmin, domain.RoleSuperadmin)
}

func notAuthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"message": "Not authenticated",
		"code":    "NOT_AUTHENTICATED",
	})
}
