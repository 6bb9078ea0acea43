package redis

import (
	"context"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/minhzk/smarthotel-booking/logger"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedisClient returns the singleton Redis client, or nil when REDIS_URL
// is unset or the server is unreachable. Callers treat a nil client as
// "Redis-backed optimizations off"; nothing correctness-critical lives in
// Redis.
func GetRedisClient(ctx context.Context) *redis.Client {
	redisOnce.Do(func() {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.WarnLogger.Warn("REDIS_URL not set; running without Redis")
			return
		}

		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.ErrorLogger.Errorf("Invalid REDIS_URL: %v", err)
			return
		}

		client := redis.NewClient(opt)
		if _, err := client.Ping(ctx).Result(); err != nil {
			logger.ErrorLogger.Errorf("Failed to connect to Redis: %v", err)
			client.Close()
			return
		}

		logger.InfoLogger.Info("Connected to Redis")
		redisClient = client
	})
	return redisClient
}

// CloseRedis closes the Redis connection.
func CloseRedis() {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.ErrorLogger.Errorf("Error closing Redis connection: %v", err)
		}
	}
}
