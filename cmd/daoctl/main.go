package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"daoportal/internal/app"
	"daoportal/ioc"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}
	cmd := flag.Arg(0)

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "构建服务失败: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	var out any
	switch cmd {
	case "migrate":
		err = svc.Migrate(ctx)
	case "seed":
		out, err = svc.Seed(ctx)
	case "import":
		if flag.NArg() < 2 {
			usage()
			os.Exit(1)
		}
		out, err = svc.Import(ctx, flag.Arg(1))
	case "collect":
		id, perr := argID()
		if perr != nil {
			fmt.Fprintf(os.Stderr, "%v\n", perr)
			os.Exit(1)
		}
		out, err = svc.CollectNow(ctx, id)
	case "collect-all":
		if cfg.Collect.Queue != app.QueueRedis {
			fmt.Fprintln(os.Stderr, "collect-all 需要 redis 队列，由 worker 消费")
			os.Exit(1)
		}
		out, err = svc.FanOut(ctx)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s 执行失败: %v\n", cmd, err)
		os.Exit(1)
	}
	if out != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	}
}

func buildService(ctx context.Context, cfg app.Config) (*app.Service, func(), error) {
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
	return svc, func() {
		closeSvc()
		closeRedis()
		closeStore()
	}, nil
}

func argID() (int64, error) {
	if flag.NArg() < 2 {
		return 0, fmt.Errorf("缺少 DAO id")
	}
	id, err := strconv.ParseInt(flag.Arg(1), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("无效的 DAO id: %s", flag.Arg(1))
	}
	return id, nil
}

func usage() {
	fmt.Println("用法: daoctl [-config configs/config.yaml] {migrate|seed|import <file>|collect <dao_id>|collect-all}")
}
