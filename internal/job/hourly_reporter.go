package job

import (
	"context"
	"time"

	"daoportal/internal/metrics"
	"go.uber.org/zap"
)

// FailedRunCounter 统计某时间点之后未成功的 run。
type FailedRunCounter interface {
	CountFailedRunsSince(ctx context.Context, since time.Time) (int64, error)
}

// HourlyReporter 每小时输出最近一小时失败 run 的数量。
type HourlyReporter struct {
	counter FailedRunCounter
	logger  *zap.Logger
	now     func() time.Time
}

func NewHourlyReporter(counter FailedRunCounter, logger *zap.Logger) *HourlyReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HourlyReporter{counter: counter, logger: logger, now: time.Now}
}

// Report 统计并输出一次。
func (h *HourlyReporter) Report(ctx context.Context) error {
	now := h.now()
	failed, err := h.counter.CountFailedRunsSince(ctx, now.Add(-time.Hour))
	if err != nil {
		return err
	}
	metrics.FailedRunsLastHour.Set(float64(failed))
	h.logger.Info("hourly collect heartbeat", zap.Time("timestamp", now), zap.Int64("failed_runs_last_hour", failed))
	return nil
}

// Scheduler 返回按小时执行的调度器。
func (h *HourlyReporter) Scheduler() *Scheduler {
	return NewScheduler("hourly_report", "@hourly", h.Report, h.logger)
}
