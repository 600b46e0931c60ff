package ioc

import (
	"daoportal/internal/app"
	"daoportal/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// InitDAOHandler 构建 DAO 查询 HTTP 处理器。
func InitDAOHandler(svc *app.Service, logger *zap.Logger) *router.DAOHandler {
	return router.NewDAOHandler(svc, logger.Named("http"))
}

// InitGinEngine 构建 gin 引擎。
func InitGinEngine(cfg app.Config, daoHandler *router.DAOHandler, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return router.NewEngine(cfg, daoHandler, reg, logger)
}
