package ioc

import (
	"context"

	"daoportal/internal/app"
	"daoportal/internal/queue"
	"daoportal/internal/source"
	"daoportal/internal/store"
	"go.uber.org/zap"
)

// InitSource 构建指标文件数据源。
func InitSource(cfg app.Config) app.MetricSource {
	return source.NewFileSource(cfg.Collect.DataDir)
}

// InitAppService 构建 DAO 指标服务，cleanup 负责关闭任务队列。
func InitAppService(cfg app.Config, st *store.Store, q queue.Queue, results queue.ResultStore, src app.MetricSource, logger *zap.Logger) (*app.Service, func(), error) {
	svc, err := app.NewService(cfg, st, q, results, src, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := svc.Close(context.Background()); err != nil {
			logger.Warn("close app service failed", zap.Error(err))
		}
	}
	return svc, cleanup, nil
}
