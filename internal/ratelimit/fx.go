package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/civicroom/memberdesk/internal/config"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewCommandLimiter),
	fx.Provide(NewLockerFromConfig),
)

// NewLockerFromConfig returns nil when no redis address is configured;
// callers treat a nil locker as "always acquired".
func NewLockerFromConfig(cfg config.Config) *Locker {
	if cfg.RedisAddr == "" {
		return nil
	}
	return NewLocker(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}))
}
