package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func hitEndpoint(t *testing.T, rl *RateLimiter, path string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := rl.RateLimit()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec.Code
}

func TestRateLimit_LoginBurstExhausted(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Close()

	// The login budget allows a burst of 10 per IP; the 11th request
	// inside the window is rejected.
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, hitEndpoint(t, rl, "/auth/login"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hitEndpoint(t, rl, "/auth/login"))
}

func TestRateLimit_PathsAreIndependent(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Close()

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, hitEndpoint(t, rl, "/auth/login"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hitEndpoint(t, rl, "/auth/login"))

	// Exhausting the login budget does not touch other endpoints.
	assert.Equal(t, http.StatusOK, hitEndpoint(t, rl, "/auth/get-profile"))
}

func TestRateLimiter_CloseStopsCleanup(t *testing.T) {
	rl := NewRateLimiter()

	stopped := make(chan struct{})
	go func() {
		rl.cleanupVisitors()
		close(stopped)
	}()

	rl.Close()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop must exit once the limiter is closed")
	}

	// Close is idempotent.
	rl.Close()
}

func TestRateLimiter_AllowTracksVisitors(t *testing.T) {
	rl := NewRateLimiter()
	defer rl.Close()

	require.True(t, rl.allow("203.0.113.7", "/auth/login", rate.Every(time.Second), 1))
	assert.False(t, rl.allow("203.0.113.7", "/auth/login", rate.Every(time.Second), 1))

	rl.mutex.Lock()
	_, tracked := rl.visitors["203.0.113.7|/auth/login"]
	rl.mutex.Unlock()
	assert.True(t, tracked)
}
