package ioc

import (
	"daoportal/internal/app"
	"daoportal/pkg/logging"
	"go.uber.org/zap"
)

// InitLogger 构建全局 logger。
func InitLogger(cfg app.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("env", cfg.App.Environment)), nil
}
