package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daoportal/internal/apperr"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultQueueKey  = "daoportal:tasks"
	defaultResultTTL = 24 * time.Hour
	blockTimeout     = time.Second
)

// RedisConfig 控制 redis 连接参数。
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient 创建 redis 客户端并校验连通性。
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 redis 失败: %w", err)
	}
	return client, nil
}

// RedisQueue 使用 list 实现队列，出队时移动到 processing 列表，Ack 后删除。
type RedisQueue struct {
	client     *redis.Client
	key        string
	processing string
	logger     *zap.Logger
}

func NewRedisQueue(client *redis.Client, key string, logger *zap.Logger) *RedisQueue {
	if key == "" {
		key = defaultQueueKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisQueue{client: client, key: key, processing: key + ":processing", logger: logger}
}

// Enqueue 将任务写入队列头部。
func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("序列化任务失败: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("任务入队失败 id=%s: %w", task.ID, err)
	}
	return nil
}

// Dequeue 从队列尾部取任务，取不到时按 blockTimeout 轮询直到 ctx 结束。
func (q *RedisQueue) Dequeue(ctx context.Context) (*Delivery, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := q.client.BRPopLPush(ctx, q.key, q.processing, blockTimeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("任务出队失败: %w", err)
		}
		var task Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			q.logger.Warn("drop malformed task", zap.String("raw", raw), zap.Error(err))
			_ = q.client.LRem(ctx, q.processing, 1, raw).Err()
			continue
		}
		return &Delivery{
			Task: task,
			ack: func(ctx context.Context) error {
				return q.client.LRem(ctx, q.processing, 1, raw).Err()
			},
		}, nil
	}
}

// Requeue 将 processing 列表中未确认的任务放回队列，返回移动的数量。
func (q *RedisQueue) Requeue(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.RPopLPush(ctx, q.processing, q.key).Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("回收未确认任务失败: %w", err)
		}
		moved++
	}
	if moved > 0 {
		q.logger.Info("requeued unacked tasks", zap.Int("count", moved))
	}
	return moved, nil
}

// Len 返回待处理任务数量。
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return nil
}

// RedisResults 以 key 前缀加 task id 保存结果，带过期时间。
type RedisResults struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisResults(client *redis.Client, prefix string, ttl time.Duration) *RedisResults {
	if prefix == "" {
		prefix = defaultQueueKey
	}
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &RedisResults{client: client, prefix: prefix + ":result:", ttl: ttl}
}

func (r *RedisResults) Save(ctx context.Context, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化任务结果失败: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+result.TaskID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("保存任务结果失败 id=%s: %w", result.TaskID, err)
	}
	return nil
}

func (r *RedisResults) Get(ctx context.Context, taskID string) (Result, error) {
	raw, err := r.client.Get(ctx, r.prefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, apperr.NotFound("task not found")
	}
	if err != nil {
		return Result{}, fmt.Errorf("读取任务结果失败 id=%s: %w", taskID, err)
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("解析任务结果失败 id=%s: %w", taskID, err)
	}
	return result, nil
}
