package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration can be used to start the server.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	u, err := url.Parse(cfg.RecipeAPIURL)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "RECIPE_API_URL", Message: err.Error()})
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, ValidationError{Field: "RECIPE_API_URL", Message: "scheme must be http or https"})
	case u.Host == "":
		errs = append(errs, ValidationError{Field: "RECIPE_API_URL", Message: "host is required"})
	}

	if cfg.RecipeAPITimeout < 0 {
		errs = append(errs, ValidationError{Field: "RECIPE_API_TIMEOUT", Message: "must not be negative"})
	}

	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_MINUTE", Message: "must not be negative"})
	}

	return errors.Join(errs...)
}
