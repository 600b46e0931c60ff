// Package queue 提供采集任务的投递、消费与结果存储。
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskKind 标识任务类型。
type TaskKind string

const (
	KindCollectDAO TaskKind = "collect_dao"
	KindCollectAll TaskKind = "collect_all"
)

// Status 是任务结果的状态。
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// ErrClosed 表示队列已关闭。
var ErrClosed = errors.New("queue closed")

// Task 是投递到队列中的一条任务。
type Task struct {
	ID         string    `json:"id"`
	Kind       TaskKind  `json:"kind"`
	DAOID      int64     `json:"dao_id,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewTask 生成带唯一 id 的任务。
func NewTask(kind TaskKind, daoID int64) Task {
	return Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		DAOID:      daoID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Result 是任务的执行结果。
type Result struct {
	TaskID    string          `json:"task_id"`
	Kind      TaskKind        `json:"kind"`
	DAOID     int64           `json:"dao_id,omitempty"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Delivery 是一次出队，处理完成后需要 Ack。
type Delivery struct {
	Task Task
	ack  func(context.Context) error
}

// Ack 确认任务已处理，未确认的任务会在队列重启后重新投递。
func (d *Delivery) Ack(ctx context.Context) error {
	if d == nil || d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

// Queue 是至少一次投递的任务队列。
type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Dequeue 阻塞直到取到任务或 ctx 结束。
	Dequeue(ctx context.Context) (*Delivery, error)
	Close() error
}

// ResultStore 保存任务结果供查询。
type ResultStore interface {
	Save(ctx context.Context, result Result) error
	Get(ctx context.Context, taskID string) (Result, error)
}
