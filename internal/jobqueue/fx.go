package jobqueue

import (
	"github.com/civicroom/memberdesk/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("jobqueue",
	fx.Provide(NewQueueFromConfig),
	fx.Provide(func(queue Queue, log *zap.Logger) *Worker {
		return NewWorker(queue, log, WorkerConfig{})
	}),
)

// NewQueueFromConfig selects the redis queue when an address is configured
// and falls back to the in-process queue otherwise.
func NewQueueFromConfig(cfg config.Config, log *zap.Logger) Queue {
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set, using in-process task queue")
		return NewMemoryQueue(0)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewRedisQueue(client)
}
