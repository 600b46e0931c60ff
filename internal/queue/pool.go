package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"daoportal/internal/metrics"
	"go.uber.org/zap"
)

// Handler 执行一类任务，返回值会序列化为结果载荷。
type Handler func(ctx context.Context, task Task) (any, error)

// failer 由结果类型实现，用于把业务失败映射为 failed 状态。
type failer interface {
	Failed() bool
}

// PoolConfig 控制工作池并发度与时间限制。
type PoolConfig struct {
	Workers       int
	TimeLimit     time.Duration
	SoftTimeLimit time.Duration
}

// Pool 从队列拉取任务并交给对应 Handler 执行。
type Pool struct {
	queue    Queue
	results  ResultStore
	cfg      PoolConfig
	logger   *zap.Logger
	mu       sync.RWMutex
	handlers map[TaskKind]Handler
}

func NewPool(queue Queue, results ResultStore, cfg PoolConfig, logger *zap.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		queue:    queue,
		results:  results,
		cfg:      cfg,
		logger:   logger,
		handlers: make(map[TaskKind]Handler),
	}
}

// Register 为任务类型注册处理函数。
func (p *Pool) Register(kind TaskKind, handler Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[kind] = handler
}

// Run 启动 worker 并阻塞，ctx 结束后等待正在执行的任务返回。
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.worker(ctx, id)
		}(i + 1)
	}
	p.logger.Info("worker pool started", zap.Int("workers", p.cfg.Workers))
	wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		delivery, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return
			}
			p.logger.Warn("dequeue failed", zap.Int("worker", id), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		p.Process(ctx, delivery.Task)
		if err := delivery.Ack(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("ack task failed", zap.String("task_id", delivery.Task.ID), zap.Error(err))
		}
	}
}

// Process 执行单个任务并保存结果，panic 与超时都记为 failed。
func (p *Pool) Process(ctx context.Context, task Task) Result {
	log := p.logger.With(zap.String("task_id", task.ID), zap.String("kind", string(task.Kind)), zap.Int64("dao_id", task.DAOID))
	start := time.Now()
	p.save(ctx, Result{TaskID: task.ID, Kind: task.Kind, DAOID: task.DAOID, Status: StatusRunning})

	p.mu.RLock()
	handler, ok := p.handlers[task.Kind]
	p.mu.RUnlock()

	var (
		value any
		err   error
	)
	if !ok {
		err = fmt.Errorf("未注册的任务类型: %s", task.Kind)
	} else {
		value, err = p.execute(ctx, log, handler, task)
	}

	result := Result{TaskID: task.ID, Kind: task.Kind, DAOID: task.DAOID, Status: StatusSuccess}
	if value != nil {
		raw, merr := json.Marshal(value)
		if merr != nil {
			err = errors.Join(err, fmt.Errorf("序列化任务结果失败: %w", merr))
		} else {
			result.Result = raw
		}
		if f, ok := value.(failer); ok && f.Failed() {
			result.Status = StatusFailed
		}
	}
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
	}
	p.save(ctx, result)

	elapsed := time.Since(start)
	metrics.ObserveTask(string(task.Kind), string(result.Status), elapsed)
	if result.Status == StatusFailed {
		log.Warn("task failed", zap.Duration("duration", elapsed), zap.String("error", result.Error))
	} else {
		log.Info("task completed", zap.Duration("duration", elapsed))
	}
	return result
}

func (p *Pool) execute(ctx context.Context, log *zap.Logger, handler Handler, task Task) (any, error) {
	runCtx := ctx
	if p.cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.cfg.TimeLimit)
		defer cancel()
	}
	if p.cfg.SoftTimeLimit > 0 {
		soft := time.AfterFunc(p.cfg.SoftTimeLimit, func() {
			log.Warn("task exceeded soft time limit", zap.Duration("soft_limit", p.cfg.SoftTimeLimit))
		})
		defer soft.Stop()
	}

	done := make(chan handlerOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- handlerOutcome{err: fmt.Errorf("任务 panic: %v", r)}
			}
		}()
		value, err := handler(runCtx, task)
		done <- handlerOutcome{value: value, err: err}
	}()

	return awaitOutcome(runCtx, done)
}

type handlerOutcome struct {
	value any
	err   error
}

// awaitOutcome 等待处理函数返回；ctx 结束时若结果已就绪，仍以处理结果为准。
func awaitOutcome(ctx context.Context, done <-chan handlerOutcome) (any, error) {
	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		select {
		case out := <-done:
			return out.value, out.err
		default:
		}
		return nil, fmt.Errorf("任务超时或被取消: %w", ctx.Err())
	}
}

func (p *Pool) save(ctx context.Context, result Result) {
	if p.results == nil {
		return
	}
	result.UpdatedAt = time.Now().UTC()
	if err := p.results.Save(context.WithoutCancel(ctx), result); err != nil {
		p.logger.Warn("save task result failed", zap.String("task_id", result.TaskID), zap.Error(err))
	}
}
