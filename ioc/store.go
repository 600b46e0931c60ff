package ioc

import (
	"context"
	"time"

	"daoportal/internal/app"
	"daoportal/internal/store"
	"go.uber.org/zap"
)

// InitStore 打开数据库并同步表结构，cleanup 负责关闭连接池。
func InitStore(ctx context.Context, cfg app.Config, logger *zap.Logger) (*store.Store, func(), error) {
	st, err := store.Open(ctx, store.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeSeconds) * time.Second,
		LogLevel:        cfg.Database.LogLevel,
		BatchSize:       cfg.Database.BatchSize,
	}, logger.Named("store"))
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("close store failed", zap.Error(err))
		}
	}
	return st, cleanup, nil
}
