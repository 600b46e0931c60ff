package ioc

import (
	"context"
	"time"

	"daoportal/internal/app"
	"daoportal/internal/queue"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const memoryQueueSize = 1024

// InitRedis 构建 redis 客户端，内存队列模式下返回 nil。
func InitRedis(ctx context.Context, cfg app.Config, logger *zap.Logger) (*redis.Client, func(), error) {
	if cfg.Collect.Queue != app.QueueRedis {
		return nil, func() {}, nil
	}
	client, err := queue.NewRedisClient(ctx, queue.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis client failed", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

// InitQueue 按配置选择 redis 或内存队列。
func InitQueue(cfg app.Config, client *redis.Client, logger *zap.Logger) queue.Queue {
	if client == nil {
		return queue.NewMemoryQueue(memoryQueueSize)
	}
	return queue.NewRedisQueue(client, cfg.Redis.QueueKey, logger.Named("queue"))
}

// InitResultStore 构建任务结果存储。
func InitResultStore(cfg app.Config, client *redis.Client) queue.ResultStore {
	if client == nil {
		return queue.NewMemoryResults()
	}
	return queue.NewRedisResults(client, cfg.Redis.QueueKey, time.Duration(cfg.Redis.ResultTTLSeconds)*time.Second)
}
