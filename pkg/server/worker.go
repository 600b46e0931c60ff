package server

import (
	"context"

	"daoportal/internal/app"
	"daoportal/internal/job"
	"daoportal/internal/queue"
	"go.uber.org/zap"
)

// Worker 是独立的采集进程：消费队列并负责定时触发全量采集。
type Worker struct {
	Logger *zap.Logger
	Config app.Config
	Queue  queue.Queue
	Pool   *queue.Pool
	Job    *job.Scheduler
	Hourly *job.HourlyReporter
}

// Run 阻塞直到 ctx 结束且正在执行的任务全部返回。
func (w *Worker) Run(ctx context.Context) error {
	fields := []zap.Field{
		zap.Int("workers", w.Config.Collect.Workers),
		zap.String("cron", w.Config.Collect.Cron),
		zap.String("data_dir", w.Config.Collect.DataDir),
	}
	if rq, ok := w.Queue.(*queue.RedisQueue); ok {
		if _, err := rq.Requeue(ctx); err != nil {
			w.Logger.Warn("requeue unacked tasks failed", zap.Error(err))
		}
		if backlog, err := rq.Len(ctx); err == nil {
			fields = append(fields, zap.Int64("backlog", backlog))
		}
	}
	w.Logger.Info("worker starting", fields...)
	stop := startBackground(ctx, w.Logger, w.Job, w.Hourly, w.Pool)
	<-ctx.Done()
	stop()
	return nil
}
