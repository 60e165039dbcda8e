package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names recognized by the service
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the session service
type Config struct {
	// Server
	Port        string `env:"PORT" default:"8000"`
	Host        string `env:"HOST" default:"0.0.0.0"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	Environment string `env:"APP_ENV" default:"development"`

	// Session signing
	Secret string `env:"SECRET" required:"true"`

	// Cookie transport
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// Credential store
	DatabaseURL         string        `env:"DATABASE_URL" required:"true"`
	StoreRetryDelay     time.Duration `env:"STORE_RETRY_DELAY" default:"5s"`
	StoreHealthInterval time.Duration `env:"STORE_HEALTH_INTERVAL" default:"15s"`

	// Identity provider
	GoogleClientID  string `env:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleVerifyURL string `env:"GOOGLE_VERIFY_URL"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// Load reads configuration from environment variables. Configuration is
// read once at process start and treated as immutable afterwards;
// missing required configuration is fatal.
func Load() (*Config, error) {
	config := &Config{}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "8000")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	config.Environment = strings.ToLower(getEnvOrDefault("APP_ENV", EnvDevelopment))

	// Session signing secret
	config.Secret = os.Getenv("SECRET")
	if config.Secret == "" {
		return nil, fmt.Errorf("SECRET is required")
	}

	// Credential store configuration
	config.DatabaseURL = os.Getenv("DATABASE_URL")
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	config.StoreRetryDelay, err = getDurationEnv("STORE_RETRY_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	config.StoreHealthInterval, err = getDurationEnv("STORE_HEALTH_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, err
	}

	// Identity provider configuration
	config.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if config.GoogleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	config.GoogleVerifyURL = os.Getenv("GOOGLE_VERIFY_URL")

	// Cookie transport configuration
	config.CookieDomain = os.Getenv("COOKIE_DOMAIN")

	// CORS configuration
	origins := getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.AllowedOrigins = append(config.AllowedOrigins, origin)
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port
	port, err := strconv.ParseInt(c.Port, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	// Validate environment
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s (must be %s or %s)", c.Environment, EnvDevelopment, EnvProduction)
	}

	// Production cookies are scoped to an explicit domain so the
	// separate frontend origin can send them cross-site.
	if c.IsProduction() && c.CookieDomain == "" {
		return fmt.Errorf("COOKIE_DOMAIN is required in production")
	}

	if c.StoreRetryDelay <= 0 {
		return fmt.Errorf("store retry delay must be positive, got: %v", c.StoreRetryDelay)
	}
	if c.StoreHealthInterval <= 0 {
		return fmt.Errorf("store health interval must be positive, got: %v", c.StoreHealthInterval)
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
