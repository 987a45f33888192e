package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	rdb *redis.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

// ConnectRedisWithRetry connects and sets the global Redis client used by the rate limiter.
// Call this from main() AFTER the HTTP server is listening. Gives up after maxAttempts so a
// missing Redis only disables rate limiting instead of blocking the service.
func ConnectRedisWithRetry(ctx context.Context, redisAddr string, maxAttempts int) bool {
	logger := GetLogger()
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: "",
			DB:       0, // use default DB
			PoolSize: 20,
		})
		err := client.Ping(ctx).Err()
		if err == nil {
			rdb = client
			logger.WithFields(logrus.Fields{"field": "redis", "attempt": attempt, "addr": redisAddr}).Info("connected to redis")
			return true
		}
		_ = client.Close()

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "redis",
			"attempt": attempt,
			"addr":    redisAddr,
		}).Warn("failed to connect redis; retrying in " + sleep.String() + ": " + err.Error())

		select {
		case <-ctx.Done():
			return false
		case <-time.After(sleep):
		}
	}
	return false
}

func CloseRedis() {
	if rdb != nil {
		_ = rdb.Close()
		rdb = nil
	}
}
