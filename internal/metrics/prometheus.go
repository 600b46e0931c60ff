package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TaskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dao_task_duration_seconds",
		Help:    "单个后台任务耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	TaskTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dao_tasks_total",
		Help: "后台任务执行次数，按类型与结果区分",
	}, []string{"kind", "status"})

	CollectRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dao_collect_runs_total",
		Help: "采集 run 次数，按结果区分",
	}, []string{"outcome"})

	FailedRunsLastHour = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dao_failed_runs_last_hour",
		Help: "最近一小时未成功的 run 数量",
	})
)

// MustRegister 注册指标，可在 main 中调用。
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(TaskDuration, TaskTotal, CollectRuns, FailedRunsLastHour)
}

// ObserveTask 记录一次任务的耗时与结果。
func ObserveTask(kind, status string, elapsed time.Duration) {
	TaskDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	TaskTotal.WithLabelValues(kind, status).Inc()
}
