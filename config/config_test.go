package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RECIPE_API_URL", "http://recipes.internal:8000/query_recipe")
	t.Setenv("RECIPE_API_TIMEOUT", "3s")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "http://recipes.internal:8000/query_recipe", cfg.RecipeAPIURL)
	assert.Equal(t, 3*time.Second, cfg.RecipeAPITimeout)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_HOST", "SERVER_PORT", "RECIPE_API_URL", "RECIPE_API_TIMEOUT", "REDIS_URL", "RATE_LIMIT_PER_MINUTE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultRecipeAPIURL, cfg.RecipeAPIURL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Zero(t, cfg.RecipeAPITimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		t.Setenv("RECIPE_API_TIMEOUT", "soon")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "RECIPE_API_TIMEOUT")
	})

	t.Run("url scheme", func(t *testing.T) {
		t.Setenv("RECIPE_API_TIMEOUT", "")
		t.Setenv("RECIPE_API_URL", "ftp://127.0.0.1/query_recipe")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "scheme must be http or https")
	})
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{ServerPort: "0", RecipeAPIURL: "http://", RateLimitPerMinute: -1}

	err := ValidateConfig(cfg)
	require.Error(t, err)

	var verr ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "RECIPE_API_URL: host is required")
	assert.Contains(t, err.Error(), "RATE_LIMIT_PER_MINUTE")
}

func TestEnvironmentGinMode(t *testing.T) {
	t.Setenv("ENV", "production")
	assert.Equal(t, Production, GetEnvironment())
	assert.Equal(t, "release", GetEnvironment().GinMode())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
	assert.Equal(t, "debug", GetEnvironment().GinMode())
}
