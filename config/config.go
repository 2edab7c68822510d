package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultRecipeAPIURL is the recipe API the form submits to unless overridden.
	DefaultRecipeAPIURL = "http://127.0.0.1:8000/query_recipe"

	defaultServerHost      = "0.0.0.0"
	defaultServerPort      = "8080"
	defaultRateLimitPerMin = 30
	defaultCORSOrigins     = "http://localhost:5173"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 5 * time.Second
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration

	// Recipe API the form submissions are forwarded to
	RecipeAPIURL string
	// RecipeAPITimeout bounds one outbound call; zero means no timeout.
	RecipeAPITimeout time.Duration

	// Redis is optional. An empty URL disables it.
	RedisURL string

	// Submissions per client per minute; 0 disables rate limiting.
	RateLimitPerMinute int

	CORSAllowedOrigins []string

	LogLevel string
}

// LoadConfig creates a new Config instance with values from the environment.
// A .env file in the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// FromEnv reads the configuration from environment variables without validating it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerHost:         getEnv("SERVER_HOST", defaultServerHost),
		ServerPort:         getEnv("SERVER_PORT", defaultServerPort),
		ShutdownTimeout:    defaultShutdownTimeout,
		RecipeAPIURL:       getEnv("RECIPE_API_URL", DefaultRecipeAPIURL),
		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitPerMinute: defaultRateLimitPerMin,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
		LogLevel:           getEnv("LOG_LEVEL", defaultLogLevel),
	}

	if raw := os.Getenv("RECIPE_API_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RECIPE_API_TIMEOUT %q: %w", raw, err)
		}
		cfg.RecipeAPITimeout = d
	}

	if raw := os.Getenv("RATE_LIMIT_PER_MINUTE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q: %w", raw, err)
		}
		cfg.RateLimitPerMinute = n
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
