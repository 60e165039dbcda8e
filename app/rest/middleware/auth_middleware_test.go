package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mealplan-auth/app/domain"
	"mealplan-auth/app/mocks"
)

type staticCookieReader struct {
	token string
}

func (r staticCookieReader) Extract(echo.Context) string {
	return r.token
}

func newMiddlewareTest(t *testing.T, token string) (*AuthMiddleware, *mocks.MockTokenService, *mocks.MockAuthUsecase) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tokens := mocks.NewMockTokenService(ctrl)
	usecase := mocks.NewMockAuthUsecase(ctrl)
	mw := NewAuthMiddleware(staticCookieReader{token: token}, tokens, usecase, slog.Default())
	return mw, tokens, usecase
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/get-profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(next)(c)
	require.NoError(t, err)
	return rec
}

func testClaims(accountID uuid.UUID) *domain.SessionClaims {
	return &domain.SessionClaims{
		AccountID: accountID,
		Email:     "alice@example.com",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestRequireAuth_Success(t *testing.T) {
	accountID := uuid.New()
	mw, tokens, usecase := newMiddlewareTest(t, "valid-token")

	tokens.EXPECT().Verify("valid-token").Return(testClaims(accountID), nil)
	usecase.EXPECT().VerifySession(gomock.Any(), accountID).Return(&domain.PublicProfile{
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RoleUser,
	}, nil)

	var principal *Principal
	rec := invoke(t, mw.RequireAuth(), func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		require.True(t, ok)
		principal = p
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, accountID, principal.AccountID)
	assert.Equal(t, "alice", principal.Username)
	assert.Equal(t, domain.RoleUser, principal.Role)
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	mw, _, _ := newMiddlewareTest(t, "")

	rec := invoke(t, mw.RequireAuth(), func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_AUTHENTICATED")
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"expired", domain.ErrTokenExpired},
		{"bad signature", domain.ErrTokenInvalidSignature},
		{"malformed", domain.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, tokens, _ := newMiddlewareTest(t, "bad-token")
			tokens.EXPECT().Verify("bad-token").Return(nil, tt.err)

			rec := invoke(t, mw.RequireAuth(), func(c echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})

			// All token failures collapse to the same response
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "NOT_AUTHENTICATED")
		})
	}
}

func TestRequireAuth_AccountGone(t *testing.T) {
	accountID := uuid.New()
	mw, tokens, usecase := newMiddlewareTest(t, "valid-token")

	tokens.EXPECT().Verify("valid-token").Return(testClaims(accountID), nil)
	usecase.EXPECT().VerifySession(gomock.Any(), accountID).Return(nil, domain.ErrNotAuthenticated)

	rec := invoke(t, mw.RequireAuth(), func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_StoreOutage(t *testing.T) {
	accountID := uuid.New()
	mw, tokens, usecase := newMiddlewareTest(t, "valid-token")

	tokens.EXPECT().Verify("valid-token").Return(testClaims(accountID), nil)
	usecase.EXPECT().VerifySession(gomock.Any(), accountID).
		Return(nil, fmt.Errorf("account lookup failed: %w", domain.ErrStoreUnavailable))

	rec := invoke(t, mw.RequireAuth(), func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	// A store outage behind a valid token is a transient server failure,
	// not a rejected session.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     domain.Role
		wanted   []domain.Role
		wantCode int
	}{
		{"admin allowed", domain.RoleAdmin, []domain.Role{domain.RoleAdmin, domain.RoleSuperadmin}, http.StatusOK},
		{"superadmin allowed", domain.RoleSuperadmin, []domain.Role{domain.RoleAdmin, domain.RoleSuperadmin}, http.StatusOK},
		{"user rejected", domain.RoleUser, []domain.Role{domain.RoleAdmin, domain.RoleSuperadmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw, _, _ := newMiddlewareTest(t, "")

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/admin/accounts", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(principalContextKey, &Principal{
				AccountID: uuid.New(),
				Role:      tt.role,
			})

			err := mw.RequireRole(tt.wanted...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), "FORBIDDEN")
			}
		})
	}
}

func TestRequireRole_WithoutPrincipal(t *testing.T) {
	mw, _, _ := newMiddlewareTest(t, "")

	rec := invoke(t, mw.RequireRole(domain.RoleAdmin), func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
