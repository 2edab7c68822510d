package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(RequestID(), Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("template exploded")
	})

	w := perform(router, "GET", "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An error occurred."}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, w.Body.String(), "template exploded")
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := perform(router, "GET", "/")
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	id := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", id)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(zap.New(core)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	perform(router, "GET", "/health")

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/metrics", m.Handler())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(router, "GET", "/")
	m.ObserveOutcome("recipe")

	body := perform(router, "GET", "/metrics").Body.String()
	assert.Contains(t, body, `recipeform_requests_total{endpoint="/",http_status="200",method="GET"} 1`)
	assert.Contains(t, body, `recipeform_submissions_total{outcome="recipe"} 1`)
	assert.Contains(t, body, "recipeform_request_latency_seconds")

	// a second instance must not collide with the first
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(RateLimitConfig{Window: time.Minute, Limit: 2})
	ctx := context.Background()

	allowed, remaining, _, err := limiter.IsAllowed(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, _, _, _ = limiter.IsAllowed(ctx, "10.0.0.1")
	assert.True(t, allowed)

	allowed, remaining, reset, _ := limiter.IsAllowed(ctx, "10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
	assert.True(t, reset.After(time.Now()))

	// other clients have their own bucket
	allowed, _, _, _ = limiter.IsAllowed(ctx, "10.0.0.2")
	assert.True(t, allowed)
}

type failingLimiter struct{}

func (failingLimiter) IsAllowed(context.Context, string) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(nil, SubmissionRateLimitConfig(1), zap.NewNop())
	router := gin.New()
	router.POST("/", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(router, "POST", "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = perform(router, "POST", "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "rate limit exceeded"))

	t.Run("limiter errors do not block", func(t *testing.T) {
		broken := &RateLimiter{limiter: failingLimiter{}, config: SubmissionRateLimitConfig(1), logger: zap.NewNop()}
		router := gin.New()
		router.POST("/", broken.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := perform(router, "POST", "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
	})
}

func TestRedisLimiter(t *testing.T) {
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("Skipping Redis-dependent test - REDIS_HOST not set")
	}

	client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_HOST") + ":6379"})
	defer client.Close()

	limiter := NewRedisLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "test:" + uuid.NewString()})
	ctx := context.Background()

	allowed, _, _, err := limiter.IsAllowed(ctx, "client")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, remaining, _, err := limiter.IsAllowed(ctx, "client")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestMemoryLimiterEvictsIdleBuckets(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryLimiter(RateLimitConfig{Window: time.Minute, Limit: 1})
	limiter.now = func() time.Time { return clock }
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, _, _, err := limiter.IsAllowed(ctx, ip)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, limiter.Len())

	clock = clock.Add(30 * time.Second)
	allowed, _, _, _ := limiter.IsAllowed(ctx, "10.0.0.1")
	assert.False(t, allowed)

	clock = clock.Add(2 * time.Minute)
	allowed, _, _, _ = limiter.IsAllowed(ctx, "10.0.0.4")
	assert.True(t, allowed)
	assert.Equal(t, 1, limiter.Len())

	// an evicted client starts over with a full bucket
	allowed, _, _, _ = limiter.IsAllowed(ctx, "10.0.0.1")
	assert.True(t, allowed)
}

func TestRateLimitMiddlewareWith(t *testing.T) {
	rl := NewRateLimiter(nil, SubmissionRateLimitConfig(1), zap.NewNop())
	var handled int
	router := gin.New()
	router.POST("/", rl.RateLimitMiddlewareWith(func(c *gin.Context, retryAfter time.Duration) {
		assert.Greater(t, retryAfter, time.Duration(0))
		c.String(http.StatusOK, "slow down")
	}), func(c *gin.Context) {
		handled++
		c.String(http.StatusOK, "handled")
	})

	assert.Equal(t, "handled", perform(router, "POST", "/").Body.String())

	w := perform(router, "POST", "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "slow down", w.Body.String())
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 1, handled)
}
