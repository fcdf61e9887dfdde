package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

// Connect creates the Redis client and verifies the connection with a ping.
// Redis backs optional caches only; callers tolerate a nil client.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to Redis: %w", err)
	}
	return rdb, nil
}

// HealthCheck verifies the connection is still alive.
func HealthCheck(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return fmt.Errorf("Redis client is not initialized")
	}
	return rdb.Ping(ctx).Err()
}
