package ioc

import (
	"context"

	"daoportal/internal/app"
	"daoportal/internal/job"
	"daoportal/internal/queue"
	"go.uber.org/zap"
)

// InitPool 构建采集工作池并注册任务处理函数。
func InitPool(cfg app.Config, q queue.Queue, results queue.ResultStore, svc *app.Service, logger *zap.Logger) *queue.Pool {
	pool := queue.NewPool(q, results, queue.PoolConfig{
		Workers:       cfg.Collect.Workers,
		TimeLimit:     cfg.Collect.TimeLimit(),
		SoftTimeLimit: cfg.Collect.SoftTimeLimit(),
	}, logger.Named("pool"))
	svc.RegisterHandlers(pool)
	return pool
}

// InitScheduler 构建每日全量采集调度器。
func InitScheduler(cfg app.Config, svc *app.Service, logger *zap.Logger) *job.Scheduler {
	enqueue := func(ctx context.Context) error {
		taskID, err := svc.EnqueueFanOut(ctx)
		if err != nil {
			return err
		}
		logger.Info("daily collect queued", zap.String("task_id", taskID))
		return nil
	}
	return job.NewScheduler("collect_all", cfg.Collect.Cron, enqueue, logger)
}

// InitHourlyReporter 构建每小时失败统计任务。
func InitHourlyReporter(svc *app.Service, logger *zap.Logger) *job.HourlyReporter {
	return job.NewHourlyReporter(svc, logger)
}
