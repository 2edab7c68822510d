package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// SubmissionRateLimitConfig limits form submissions per client per minute.
func SubmissionRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:submission",
	}
}

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
}

// RedisLimiter counts requests in fixed Redis windows shared by all instances.
type RedisLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRedisLimiter creates a new Redis backed limiter
func NewRedisLimiter(redisClient *redis.Client, config RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{redis: redisClient, config: config}
}

// IsAllowed increments the counter for key and reports whether it is within the limit.
func (rl *RedisLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// MemoryLimiter keeps one token bucket per key in process memory.
// Buckets idle for a whole window are dropped; a fresh one behaves the same.
type MemoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*memoryBucket
	config    RateLimitConfig
	interval  time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type memoryBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter refills one token every Window/Limit with a burst of Limit.
func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		buckets:  make(map[string]*memoryBucket),
		config:   config,
		interval: config.Window / time.Duration(config.Limit),
		now:      time.Now,
	}
}

// IsAllowed takes a token for key if one is available.
func (ml *MemoryLimiter) IsAllowed(_ context.Context, key string) (bool, int, time.Time, error) {
	now := ml.now()

	ml.mu.Lock()
	ml.sweep(now)
	bucket, ok := ml.buckets[key]
	if !ok {
		bucket = &memoryBucket{limiter: rate.NewLimiter(rate.Every(ml.interval), ml.config.Limit)}
		ml.buckets[key] = bucket
	}
	bucket.lastSeen = now
	ml.mu.Unlock()

	allowed := bucket.limiter.AllowN(now, 1)

	tokens := bucket.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	reset := now
	if tokens < 1 {
		reset = now.Add(time.Duration((1 - tokens) * float64(ml.interval)))
	}
	return allowed, remaining, reset, nil
}

// Len returns the number of tracked keys.
func (ml *MemoryLimiter) Len() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return len(ml.buckets)
}

// sweep runs at most once per window. Caller holds mu.
func (ml *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(ml.lastSweep) < ml.config.Window {
		return
	}
	ml.lastSweep = now
	for key, b := range ml.buckets {
		if now.Sub(b.lastSeen) >= ml.config.Window {
			delete(ml.buckets, key)
		}
	}
}

// RateLimiter enforces a Limiter per client IP
type RateLimiter struct {
	limiter Limiter
	config  RateLimitConfig
	logger  *zap.Logger
}

// NewRateLimiter uses Redis when a client is given and process memory otherwise.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	var limiter Limiter
	if redisClient != nil {
		limiter = NewRedisLimiter(redisClient, config)
	} else {
		limiter = NewMemoryLimiter(config)
	}
	return &RateLimiter{limiter: limiter, config: config, logger: logger}
}

// RejectFunc answers a request that exceeded the limit. The rate-limit
// headers are already set and the chain is aborted afterwards.
type RejectFunc func(c *gin.Context, retryAfter time.Duration)

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// and rejects with a JSON 429.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return rl.RateLimitMiddlewareWith(rl.rejectJSON)
}

// RateLimitMiddlewareWith is RateLimitMiddleware with a custom rejection.
func (rl *RateLimiter) RateLimitMiddlewareWith(reject RejectFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := rl.limiter.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			// a broken limiter must not block submissions
			rl.logger.Warn("rate limit check failed", zap.Error(err))
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			reject(c, time.Until(resetTime))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) rejectJSON(c *gin.Context, retryAfter time.Duration) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "rate limit exceeded",
		"message":     fmt.Sprintf("You have exceeded the rate limit of %d submissions per %v", rl.config.Limit, rl.config.Window),
		"retry_after": int(retryAfter.Seconds()),
	})
}
