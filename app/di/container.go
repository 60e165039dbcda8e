package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"mealplan-auth/app/config"
	"mealplan-auth/app/driver/google"
	"mealplan-auth/app/driver/postgres"
	"mealplan-auth/app/port"
	"mealplan-auth/app/rest"
	"mealplan-auth/app/token"
	"mealplan-auth/app/usecase"
	"mealplan-auth/app/utils/logger"
)

// Container holds all dependencies for the application. It is built
// once at process start and passed down explicitly; nothing in it is
// package-level state.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Drivers
	Store    *postgres.Supervisor
	Verifier *google.Verifier

	// Services
	Tokens port.TokenService

	// Usecases
	AuthUsecase port.AuthUsecase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: log,
	}

	// Session token service; a missing secret is fatal
	tokens, err := token.NewJWTService(cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	container.Tokens = tokens

	// Identity provider adapter
	container.Verifier, err = google.NewVerifier(google.Config{
		ClientID: cfg.GoogleClientID,
		BaseURL:  cfg.GoogleVerifyURL,
	}, logger.IdentityLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}

	// Credential store connection supervisor. In development a store
	// that is down at startup kills the process fast so configuration
	// mistakes surface immediately. In production the process comes up
	// anyway and the supervisor keeps retrying in the background.
	container.Store = postgres.NewSupervisor(cfg, logger.DatabaseLogger(log))
	if err := container.Store.Start(ctx); err != nil {
		if !cfg.IsProduction() {
			return nil, fmt.Errorf("failed to connect to credential store: %w", err)
		}
		log.Error("credential store unavailable at startup, retrying in background", "error", err)
		container.Store.ScheduleReconnect()
	}

	// Repositories read through the supervisor's live connection
	store := postgres.NewAccountRepository(container.Store, logger.DatabaseLogger(log))

	// Usecases
	container.AuthUsecase = usecase.NewAuthUseCase(store, tokens, container.Verifier, log)

	log.Info("container initialized")

	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	return rest.NewRouter(rest.RouterConfig{
		Config:      c.Config,
		Logger:      c.Logger,
		AuthUsecase: c.AuthUsecase,
		Tokens:      c.Tokens,
		Store:       c.Store,
	})
}

// Close releases container resources
func (c *Container) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}
