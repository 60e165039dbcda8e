package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// StoreStatus exposes the supervisor's connection state for readiness
type StoreStatus interface {
	Ready() bool
	StateName() string
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	store  StoreStatus
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store StoreStatus, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// HealthCheck performs a basic health check
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "mealplan-auth",
		Uptime:    time.Since(startTime).String(),
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessCheck reports whether the service can serve traffic. The
// service is not ready while the credential store connection is down.
func (h *HealthHandler) ReadinessCheck(c echo.Context) error {
	checks := make(map[string]HealthStatus)

	storeReady := h.store.Ready()
	storeStatus := HealthStatus{
		Status:  "healthy",
		Message: h.store.StateName(),
	}
	if !storeReady {
		storeStatus.Status = "unhealthy"
	}
	checks["database"] = storeStatus

	response := ReadinessResponse{
		Status:    getOverallStatus(storeReady),
		Timestamp: time.Now(),
		Service:   "mealplan-auth",
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !storeReady {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, response)
}

// LivenessCheck performs a liveness check
func (h *HealthHandler) LivenessCheck(c echo.Context) error {
	response := HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Service:   "mealplan-auth",
		Uptime:    time.Since(startTime).String(),
	}

	return c.JSON(http.StatusOK, response)
}

// Helper functions
func getOverallStatus(ready bool) string {
	if ready {
		return "ready"
	}
	return "not_ready"
}

// Response types
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Uptime    string    `json:"uptime"`
}

type ReadinessResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Service   string                  `json:"service"`
	Checks    map[string]HealthStatus `json:"checks"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// startTime is set when the service starts
var startTime = time.Now()
