package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"mealplan-auth/app/config"
	"mealplan-auth/app/port"
	"mealplan-auth/app/rest/handlers"
	custommw "mealplan-auth/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Config      *config.Config
	Logger      *slog.Logger
	AuthUsecase port.AuthUsecase
	Tokens      port.TokenService
	Store       handlers.StoreStatus
}

// NewRouter creates and configures the Echo router
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	cookies := NewCookieManager(cfg.Config)

	// Create handlers
	authHandler := handlers.NewAuthHandler(cfg.AuthUsecase, cookies, cfg.Logger, cfg.Config.IsProduction())
	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Logger)

	// Create middleware
	authMiddleware := custommw.NewAuthMiddleware(cookies, cfg.Tokens, cfg.AuthUsecase, cfg.Logger)
	rateLimiter := custommw.NewRateLimiter()
	e.Server.RegisterOnShutdown(rateLimiter.Close)

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(custommw.NewCORSMiddleware(cfg.Config.AllowedOrigins))
	e.Use(custommw.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}, error=${error}\n",
	}))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/ready", healthHandler.ReadinessCheck)
	e.GET("/live", healthHandler.LivenessCheck)

	// Authentication endpoints
	auth := e.Group("/auth")

	// Public auth endpoints
	auth.POST("/login", authHandler.Login)
	auth.POST("/google-login", authHandler.GoogleLogin)
	auth.POST("/logout", authHandler.Logout)

	// Protected auth endpoints
	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth())
	authProtected.GET("/get-profile", authHandler.GetProfile)

	// Admin surface; role checks run after authentication
	admin := e.Group("/admin")
	admin.Use(authMiddleware.RequireAuth())
	admin.Use(authMiddleware.RequireAdmin())
	admin.GET("/store-status", healthHandler.ReadinessCheck)

	return e
}
