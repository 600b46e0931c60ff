package queue

import (
	"context"
	"sync"

	"daoportal/internal/apperr"
)

// MemoryQueue 是进程内队列，用于单进程部署和测试。
type MemoryQueue struct {
	ch     chan Task
	done   chan struct{}
	closed sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	return &MemoryQueue{ch: make(chan Task, size), done: make(chan struct{})}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, task Task) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.ch <- task:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Delivery, error) {
	select {
	case task := <-q.ch:
		return &Delivery{Task: task}, nil
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Close() error {
	q.closed.Do(func() { close(q.done) })
	return nil
}

// MemoryResults 在内存中保存任务结果。
type MemoryResults struct {
	mu      sync.RWMutex
	results map[string]Result
}

func NewMemoryResults() *MemoryResults {
	return &MemoryResults{results: make(map[string]Result)}
}

func (r *MemoryResults) Save(_ context.Context, result Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.TaskID] = result
	return nil
}

func (r *MemoryResults) Get(_ context.Context, taskID string) (Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[taskID]
	if !ok {
		return Result{}, apperr.NotFound("task not found")
	}
	return result, nil
}
