package app

import (
	"context"
	"fmt"
	"time"

	"daoportal/internal/domain"
	"daoportal/internal/queue"
	"daoportal/internal/util"
	"go.uber.org/zap"
)

// DAOLister 返回全部 DAO id。
type DAOLister interface {
	ListDAOIDs(ctx context.Context) ([]int64, error)
}

// FanOutFlow 为每个 DAO 投递一个采集任务，单个投递失败不影响其他 DAO。
type FanOutFlow struct {
	DAOs     DAOLister
	Queue    queue.Queue
	Results  queue.ResultStore
	Attempts int
	Backoff  time.Duration
	Logger   *zap.Logger
}

func (f *FanOutFlow) Run(ctx context.Context) (domain.FanOutResult, error) {
	if f == nil || f.DAOs == nil || f.Queue == nil {
		return domain.FanOutResult{Status: domain.CollectFailed, Message: "fan-out flow 未初始化"},
			fmt.Errorf("fan-out flow 依赖未注入完整")
	}
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ids, err := f.DAOs.ListDAOIDs(ctx)
	if err != nil {
		return domain.FanOutResult{Status: domain.CollectFailed, Message: err.Error()}, err
	}
	if len(ids) == 0 {
		return domain.FanOutResult{Status: domain.CollectSuccess, Message: "No DAOs found to process"}, nil
	}

	res := domain.FanOutResult{Status: domain.CollectSuccess}
	for _, id := range ids {
		task := queue.NewTask(queue.KindCollectDAO, id)
		if f.Results != nil {
			pending := queue.Result{TaskID: task.ID, Kind: task.Kind, DAOID: id, Status: queue.StatusPending, UpdatedAt: time.Now().UTC()}
			if err := f.Results.Save(ctx, pending); err != nil {
				logger.Warn("save pending result failed", zap.String("task_id", task.ID), zap.Int64("dao_id", id), zap.Error(err))
			}
		}
		err := util.Retry(ctx, f.Attempts, f.Backoff, func() error {
			return f.Queue.Enqueue(ctx, task)
		})
		if err != nil {
			res.Errored++
			logger.Error("采集任务投递失败", zap.Int64("dao_id", id), zap.Error(err))
			continue
		}
		res.Queued++
	}
	res.Message = fmt.Sprintf("Queued metric fetching for %d DAOs", res.Queued)
	if res.Queued == 0 {
		res.Status = domain.CollectFailed
	}
	logger.Info("全量采集任务已投递", zap.Int("queued", res.Queued), zap.Int("failed", res.Errored))
	return res, nil
}
