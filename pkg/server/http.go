package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"daoportal/internal/app"
	"daoportal/internal/job"
	"daoportal/internal/queue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPServer 封装 HTTP 服务运行所需的依赖。
type HTTPServer struct {
	Engine *gin.Engine
	Logger *zap.Logger
	Config app.Config
	Job    *job.Scheduler
	Hourly *job.HourlyReporter
	Pool   *queue.Pool
}

// NewHTTPServer 构建 HTTPServer。
func NewHTTPServer(engine *gin.Engine, logger *zap.Logger, cfg app.Config, scheduler *job.Scheduler, hourly *job.HourlyReporter, pool *queue.Pool) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPServer{
		Engine: engine,
		Logger: logger,
		Config: cfg,
		Job:    scheduler,
		Hourly: hourly,
		Pool:   pool,
	}
}

// Run 启动 HTTP 服务，ctx 结束时优雅退出。
// 使用内存队列时，采集工作池与定时任务在本进程内运行。
func (s *HTTPServer) Run(ctx context.Context) error {
	listen := strings.TrimSpace(s.Config.HTTP.Listen)
	if listen == "" {
		listen = ":8080"
	}

	if s.Config.Collect.Queue == app.QueueMemory {
		stopBackground := startBackground(ctx, s.Logger, s.Job, s.Hourly, s.Pool)
		defer stopBackground()
	} else {
		s.Logger.Info("collect jobs run in worker process", zap.String("queue", s.Config.Collect.Queue))
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server starting", zap.String("listen", listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// startBackground 启动定时任务与工作池，返回的函数会等待它们退出。
func startBackground(ctx context.Context, logger *zap.Logger, scheduler *job.Scheduler, hourly *job.HourlyReporter, pool *queue.Pool) func() {
	ctx, cancel := context.WithCancel(ctx)
	stops := make([]context.CancelFunc, 0, 2)
	if scheduler != nil {
		stops = append(stops, scheduler.Start(ctx))
	}
	if hourly != nil {
		stops = append(stops, hourly.Scheduler().Start(ctx))
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if pool != nil {
			pool.Run(ctx)
		}
	}()
	return func() {
		cancel()
		for _, stop := range stops {
			stop()
		}
		<-done
		logger.Info("background jobs stopped")
	}
}
