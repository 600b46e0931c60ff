//go:build wireinject

package main

import (
	"context"

	"daoportal/ioc"
	"daoportal/pkg/server"
	"github.com/google/wire"
)

func InitApp(ctx context.Context) (*server.HTTPServer, func(), error) {
	panic(wire.Build(
		ioc.InitConfig,
		ioc.InitLogger,
		ioc.InitStore,
		ioc.InitRedis,
		ioc.InitQueue,
		ioc.InitResultStore,
		ioc.InitSource,
		ioc.InitAppService,
		ioc.InitPool,
		ioc.InitScheduler,
		ioc.InitHourlyReporter,
		ioc.InitRegistry,
		ioc.InitDAOHandler,
		ioc.InitGinEngine,
		server.NewHTTPServer,
	))
}
