package ratelimit

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/civicroom/memberdesk/internal/config"
)

const keyCommandUser = "commands:user:%s"

// CommandLimiter throttles command submissions per user. A nil limiter
// means rate limiting is disabled and every request is allowed.
type CommandLimiter struct {
	bucket *TokenBucket

	rate  float64
	burst int
}

// NewCommandLimiter returns nil when no redis address is configured; a
// single-instance deployment runs unthrottled.
func NewCommandLimiter(cfg config.Config) *CommandLimiter {
	if cfg.RedisAddr == "" {
		return nil
	}
	if cfg.CommandRate <= 0 || cfg.CommandBurst <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &CommandLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.CommandRate,
		burst:  cfg.CommandBurst,
	}
}

func (l *CommandLimiter) AllowUser(ctx context.Context, userID string) (Result, error) {
	if l == nil {
		return Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCommandUser, userID), l.rate, l.burst)
}
