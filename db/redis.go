package db

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// PacingKeyPrefix namespaces the shared per-host request budget.
const PacingKeyPrefix = "tickernews:pace"

var ErrNoRedisURL = errors.New("REDIS_URL is not set")

func ConnectRedis(ctx context.Context, redisURL string) error {
	if redisURL == "" {
		return ErrNoRedisURL
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}
