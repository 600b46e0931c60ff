package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"daoportal/ioc"
	"daoportal/pkg/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	worker, cleanup, err := initWorker(ctx)
	if err != nil {
		log.Fatalf("init worker failed: %v", err)
	}
	defer cleanup()

	if err := worker.Run(ctx); err != nil {
		log.Printf("worker run failed: %v", err)
	}
}

func initWorker(ctx context.Context) (*server.Worker, func(), error) {
	cfg, err := ioc.InitConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := ioc.InitLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, closeStore, err := ioc.InitStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	client, closeRedis, err := ioc.InitRedis(ctx, cfg, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	q := ioc.InitQueue(cfg, client, logger)
	results := ioc.InitResultStore(cfg, client)
	svc, closeSvc, err := ioc.InitAppService(cfg, st, q, results, ioc.InitSource(cfg), logger)
	if err != nil {
		closeRedis()
		closeStore()
		return nil, nil, err
	}
	worker := &server.Worker{
		Logger: logger.Named("worker"),
		Config: cfg,
		Queue:  q,
		Pool:   ioc.InitPool(cfg, q, results, svc, logger),
		Job:    ioc.InitScheduler(cfg, svc, logger),
		Hourly: ioc.InitHourlyReporter(svc, logger),
	}
	return worker, func() {
		closeSvc()
		closeRedis()
		closeStore()
	}, nil
}
