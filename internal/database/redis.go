package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis connection states reported by the health endpoint.
const (
	RedisConnected   = "connected"
	RedisUnavailable = "unavailable"
	RedisDisabled    = "disabled"
)

// NewRedisClient parses redisURL and checks the connection with a ping.
func NewRedisClient(ctx context.Context, redisURL string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis", zap.String("addr", opts.Addr))
	return client, nil
}

// RedisStatus pings the client and reports its state. A nil client is disabled.
func RedisStatus(ctx context.Context, client *redis.Client) string {
	if client == nil {
		return RedisDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return RedisUnavailable
	}
	return RedisConnected
}
