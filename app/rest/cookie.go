package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mealplan-auth/app/config"
	"mealplan-auth/app/domain"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "auth"

// CookieManager writes and reads the session cookie with attributes
// appropriate for the deployment environment. In production the
// frontend runs on a separate origin, so the cookie is Secure with
// SameSite=None and an explicit parent domain. In development the
// cookie stays host-only with SameSite=Lax so it works over plain HTTP.
type CookieManager struct {
	production bool
	domain     string
}

// NewCookieManager creates a cookie manager from service configuration
func NewCookieManager(cfg *config.Config) *CookieManager {
	return &CookieManager{
		production: cfg.IsProduction(),
		domain:     cfg.CookieDomain,
	}
}

// Attach sets the session cookie on the response
func (m *CookieManager) Attach(c echo.Context, token string) {
	cookie := m.baseCookie()
	cookie.Value = token
	cookie.MaxAge = int(domain.SessionLifetime.Seconds())
	c.SetCookie(cookie)
}

// Clear removes the session cookie. The attributes must match the ones
// used by Attach or browsers keep the original cookie alive.
func (m *CookieManager) Clear(c echo.Context) {
	cookie := m.baseCookie()
	cookie.Value = ""
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

// Extract returns the session token from the request cookie, or an
// empty string when the cookie is absent.
func (m *CookieManager) Extract(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func (m *CookieManager) baseCookie() *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		HttpOnly: true,
	}
	if m.production {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Domain = m.domain
	} else {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return cookie
}
