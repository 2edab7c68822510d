package config

import (
	"os"

	"github.com/gin-gonic/gin"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment from ENV.
func GetEnvironment() Environment {
	switch os.Getenv("ENV") {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// GinMode maps the environment onto the gin run mode.
func (e Environment) GinMode() string {
	switch e {
	case Production:
		return gin.ReleaseMode
	case Test:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}
