package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"daoportal/internal/domain"
	"daoportal/internal/metrics"
	"daoportal/internal/source"
	"go.uber.org/zap"
)

// CollectStore 是采集流程使用的存储接口。
type CollectStore interface {
	GetDAO(ctx context.Context, id int64) (domain.DAO, error)
	CreateRun(ctx context.Context, daoID int64, ts time.Time) (domain.Run, error)
	SetRunSourcePath(ctx context.Context, runID int64, path string) error
	CreateSnapshots(ctx context.Context, snapshots []domain.Snapshot) error
	MarkRunSucceeded(ctx context.Context, runID int64) error
}

// MetricSource 定位并解析 DAO 的指标文件。
type MetricSource interface {
	Locate(dao domain.DAO) (string, error)
	Load(path string) (map[string]domain.Payload, error)
}

// CollectFlow 为单个 DAO 执行一次采集：建 run -> 找文件 -> 解析 -> 写快照 -> 标记成功。
type CollectFlow struct {
	Store  CollectStore
	Source MetricSource
	Logger *zap.Logger
	Now    func() time.Time
}

// Run 执行采集。DAO 不存在或 run 无法创建时返回 error，其余失败记录在结果中。
func (f *CollectFlow) Run(ctx context.Context, daoID int64) (domain.CollectResult, error) {
	if f == nil || f.Store == nil || f.Source == nil {
		return domain.CollectResult{Status: domain.CollectFailed, DAOID: daoID, Error: "collect flow 未初始化"},
			fmt.Errorf("collect flow 依赖未注入完整")
	}
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.Int64("dao_id", daoID))
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	dao, err := f.Store.GetDAO(ctx, daoID)
	if err != nil {
		logger.Error("DAO 不存在，放弃采集", zap.Error(err))
		metrics.CollectRuns.WithLabelValues("missing_dao").Inc()
		return domain.CollectResult{Status: domain.CollectFailed, DAOID: daoID, Error: "DAO not found"}, err
	}
	res := domain.CollectResult{Status: domain.CollectFailed, DAOID: dao.ID, DAOName: dao.Name}

	run, err := f.Store.CreateRun(ctx, dao.ID, now())
	if err != nil {
		metrics.CollectRuns.WithLabelValues("failed").Inc()
		res.Error = err.Error()
		return res, fmt.Errorf("创建采集 run 失败: %w", err)
	}
	res.RunID = run.ID
	logger = logger.With(zap.Int64("run_id", run.ID), zap.String("dao_name", dao.Name))

	path, err := f.Source.Locate(dao)
	if errors.Is(err, source.ErrNoFile) {
		res.Error = fmt.Sprintf("No JSON metric file found for DAO: %s", dao.Name)
		logger.Error("未找到指标文件")
		metrics.CollectRuns.WithLabelValues("no_file").Inc()
		return res, nil
	}
	if err != nil {
		return f.fail(logger, res, err), nil
	}
	res.FilePath = path

	if err := f.Store.SetRunSourcePath(ctx, run.ID, path); err != nil {
		return f.fail(logger, res, err), nil
	}

	extracted, err := f.Source.Load(path)
	if err != nil {
		return f.fail(logger, res, err), nil
	}

	names := make([]string, 0, len(extracted))
	for name := range extracted {
		names = append(names, name)
	}
	sort.Strings(names)
	snapshots := make([]domain.Snapshot, 0, len(names))
	for _, name := range names {
		snapshots = append(snapshots, domain.Snapshot{
			DAOID:      dao.ID,
			RunID:      run.ID,
			MetricName: name,
			Payload:    extracted[name],
		})
	}
	if err := f.Store.CreateSnapshots(ctx, snapshots); err != nil {
		return f.fail(logger, res, err), nil
	}
	if err := f.Store.MarkRunSucceeded(ctx, run.ID); err != nil {
		return f.fail(logger, res, err), nil
	}

	res.Status = domain.CollectSuccess
	res.MetricsCount = len(snapshots)
	metrics.CollectRuns.WithLabelValues("success").Inc()
	logger.Info("采集完成", zap.String("file", path), zap.Int("metrics", len(snapshots)))
	return res, nil
}

func (f *CollectFlow) fail(logger *zap.Logger, res domain.CollectResult, err error) domain.CollectResult {
	res.Status = domain.CollectFailed
	res.Error = err.Error()
	metrics.CollectRuns.WithLabelValues("failed").Inc()
	logger.Error("采集失败", zap.Error(err))
	return res
}
