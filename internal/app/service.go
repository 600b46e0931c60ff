package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"daoportal/internal/aggregator"
	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"daoportal/internal/history"
	"daoportal/internal/queue"
	"daoportal/internal/store"
	"go.uber.org/zap"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// Service 负责装配各个 Flow 并提供统一入口。
type Service struct {
	cfg         Config
	store       *store.Store
	queue       queue.Queue
	results     queue.ResultStore
	aggregator  *aggregator.Aggregator
	history     *history.Engine
	CollectFlow *CollectFlow
	FanOutFlow  *FanOutFlow
	ImportFlow  *ImportFlow
	logger      *zap.Logger
}

// NewService 根据配置与依赖构建 Service。
func NewService(cfg Config, st *store.Store, q queue.Queue, results queue.ResultStore, src MetricSource, logger *zap.Logger) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("必须提供 store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:        cfg,
		store:      st,
		queue:      q,
		results:    results,
		aggregator: aggregator.New(st),
		history:    history.New(st),
		CollectFlow: &CollectFlow{
			Store:  st,
			Source: src,
			Logger: logger.Named("collect"),
		},
		FanOutFlow: &FanOutFlow{
			DAOs:     st,
			Queue:    q,
			Results:  results,
			Attempts: cfg.Retry.Attempts,
			Backoff:  cfg.Retry.Backoff(),
			Logger:   logger.Named("fanout"),
		},
		ImportFlow: &ImportFlow{Store: st, Logger: logger.Named("import")},
		logger:     logger,
	}, nil
}

// Config 返回当前配置。
func (s *Service) Config() Config {
	return s.cfg
}

// ListParams 是列表查询参数。
type ListParams struct {
	Search  string
	ChainID string
	Limit   int
	Offset  int
}

// DAOPage 是分页列表结果。
type DAOPage struct {
	Items  []map[string]any `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
	Page   int              `json:"page"`
	Pages  int              `json:"pages"`
}

// ListDAOs 按名称或描述模糊搜索与 chain id 过滤分页列出 DAO，附带摘要字段。
func (s *Service) ListDAOs(ctx context.Context, params ListParams) (DAOPage, error) {
	if params.Limit < 1 || params.Limit > MaxListLimit {
		return DAOPage{}, apperr.InvalidArgument("limit must be between 1 and %d", MaxListLimit)
	}
	if params.Offset < 0 {
		return DAOPage{}, apperr.InvalidArgument("offset must be greater than or equal to 0")
	}
	daos, total, err := s.store.ListDAOs(ctx, domain.DAOFilter{
		Search:  params.Search,
		ChainID: params.ChainID,
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
	if err != nil {
		return DAOPage{}, err
	}
	ids := make([]int64, 0, len(daos))
	for _, dao := range daos {
		ids = append(ids, dao.ID)
	}
	summaries, err := s.aggregator.Summaries(ctx, ids)
	if err != nil {
		return DAOPage{}, err
	}

	items := make([]map[string]any, 0, len(daos))
	for _, dao := range daos {
		item := daoFields(dao)
		for k, v := range summaries[dao.ID] {
			item[k] = v
		}
		items = append(items, item)
	}
	return DAOPage{
		Items:  items,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
		Page:   params.Offset/params.Limit + 1,
		Pages:  int((total + int64(params.Limit) - 1) / int64(params.Limit)),
	}, nil
}

// CreateDAOInput 是新建 DAO 的参数。
type CreateDAOInput struct {
	Name        string  `json:"name"`
	ChainID     string  `json:"chain_id"`
	Description *string `json:"description"`
}

func (s *Service) CreateDAO(ctx context.Context, in CreateDAOInput) (domain.DAO, error) {
	dao, err := s.store.CreateDAO(ctx, domain.DAO{Name: in.Name, ChainID: in.ChainID, Description: in.Description})
	if err != nil {
		return domain.DAO{}, err
	}
	s.logger.Info("DAO created", zap.Int64("dao_id", dao.ID), zap.String("name", dao.Name))
	return dao, nil
}

// GetDAO 返回 DAO 基本信息，并把最近一次成功 run 的快照按类别平铺到顶层。
func (s *Service) GetDAO(ctx context.Context, id int64) (map[string]any, error) {
	dao, err := s.store.GetDAO(ctx, id)
	if err != nil {
		return nil, err
	}
	res := daoFields(dao)
	run, err := s.store.LatestSucceededRun(ctx, id, time.Time{})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return res, nil
	}
	snaps, err := s.store.RunSnapshots(ctx, id, run.ID, "")
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if _, reserved := res[snap.MetricName]; reserved {
			continue
		}
		res[snap.MetricName] = snap.Payload
	}
	return res, nil
}

// EnhancedMetrics 返回基于全部历史快照、缺省类别补零的完整视图。
func (s *Service) EnhancedMetrics(ctx context.Context, id int64) (aggregator.Enhanced, error) {
	return s.aggregator.Enhanced(ctx, id)
}

// MultiMetrics 解析逗号分隔的 id 列表，返回存在的 DAO 的完整视图。
func (s *Service) MultiMetrics(ctx context.Context, rawIDs string) ([]aggregator.Enhanced, error) {
	ids := ParseIDList(rawIDs)
	if len(ids) == 0 {
		return nil, apperr.InvalidArgument("No valid DAO IDs provided")
	}
	return s.aggregator.EnhancedMany(ctx, ids)
}

// LatestMetrics 返回窗口内最近一次成功 run 的快照。
func (s *Service) LatestMetrics(ctx context.Context, id int64, metric, period string) (history.Latest, error) {
	return s.history.Latest(ctx, id, metric, period)
}

// MetricHistory 返回单个类别的时间序列。
func (s *Service) MetricHistory(ctx context.Context, id int64, metric, period string) (history.Series, error) {
	return s.history.History(ctx, id, metric, period)
}

// PollAck 是触发采集后的即时应答。
type PollAck struct {
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// TriggerCollection 为 DAO 投递采集任务，不等待执行结果。
func (s *Service) TriggerCollection(ctx context.Context, id int64) (PollAck, error) {
	dao, err := s.store.GetDAO(ctx, id)
	if err != nil {
		return PollAck{}, err
	}
	task := queue.NewTask(queue.KindCollectDAO, dao.ID)
	if err := s.submit(ctx, task); err != nil {
		return PollAck{}, err
	}
	s.logger.Info("collect task enqueued", zap.String("task_id", task.ID), zap.Int64("dao_id", dao.ID))
	return PollAck{
		TaskID:  task.ID,
		Status:  "accepted",
		Message: fmt.Sprintf("Started metrics fetch for DAO: %s", dao.Name),
	}, nil
}

// EnqueueFanOut 投递一次全量采集任务，返回任务 id。
func (s *Service) EnqueueFanOut(ctx context.Context) (string, error) {
	task := queue.NewTask(queue.KindCollectAll, 0)
	if err := s.submit(ctx, task); err != nil {
		return "", err
	}
	return task.ID, nil
}

func (s *Service) submit(ctx context.Context, task queue.Task) error {
	if s.queue == nil {
		return apperr.Internal(fmt.Errorf("queue not configured"), "投递任务失败")
	}
	if s.results != nil {
		pending := queue.Result{TaskID: task.ID, Kind: task.Kind, DAOID: task.DAOID, Status: queue.StatusPending, UpdatedAt: time.Now().UTC()}
		if err := s.results.Save(ctx, pending); err != nil {
			s.logger.Warn("save pending result failed", zap.String("task_id", task.ID), zap.Error(err))
		}
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return apperr.Internal(err, "投递任务失败")
	}
	return nil
}

// TaskStatus 查询任务结果。
func (s *Service) TaskStatus(ctx context.Context, taskID string) (queue.Result, error) {
	if s.results == nil {
		return queue.Result{}, apperr.NotFound("task not found")
	}
	return s.results.Get(ctx, taskID)
}

// CollectNow 同步执行一次采集。
func (s *Service) CollectNow(ctx context.Context, id int64) (domain.CollectResult, error) {
	return s.CollectFlow.Run(ctx, id)
}

// FanOut 同步为全部 DAO 投递采集任务。
func (s *Service) FanOut(ctx context.Context) (domain.FanOutResult, error) {
	return s.FanOutFlow.Run(ctx)
}

// Import 导入 JSON 数组文件。
func (s *Service) Import(ctx context.Context, path string) (ImportReport, error) {
	return s.ImportFlow.Run(ctx, path)
}

// Seed 写入示例 DAO。
func (s *Service) Seed(ctx context.Context) (int, error) {
	return s.ImportFlow.Seed(ctx)
}

// Migrate 初始化表结构。
func (s *Service) Migrate(ctx context.Context) error {
	return s.store.Migrate(ctx)
}

// RegisterHandlers 将采集相关任务注册到工作池。
func (s *Service) RegisterHandlers(pool *queue.Pool) {
	pool.Register(queue.KindCollectDAO, func(ctx context.Context, task queue.Task) (any, error) {
		res, err := s.CollectFlow.Run(ctx, task.DAOID)
		if err != nil && apperr.Is(err, apperr.CodeNotFound) {
			return res, nil
		}
		return res, err
	})
	pool.Register(queue.KindCollectAll, func(ctx context.Context, task queue.Task) (any, error) {
		return s.FanOutFlow.Run(ctx)
	})
}

// CountFailedRunsSince 统计 since 之后未成功的 run。
func (s *Service) CountFailedRunsSince(ctx context.Context, since time.Time) (int64, error) {
	return s.store.CountFailedRunsSince(ctx, since)
}

// Close 关闭任务队列，数据库连接由创建方负责关闭。
func (s *Service) Close(ctx context.Context) error {
	_ = s.logger.Sync()
	if s.queue == nil {
		return nil
	}
	if err := s.queue.Close(); err != nil {
		return fmt.Errorf("关闭任务队列失败: %w", err)
	}
	return nil
}

// ParseIDList 解析逗号分隔的 id，丢弃非正整数项。
func ParseIDList(raw string) []int64 {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func daoFields(dao domain.DAO) map[string]any {
	return map[string]any{
		"id":          dao.ID,
		"name":        dao.Name,
		"chain_id":    dao.ChainID,
		"description": dao.DisplayDescription(),
		"created_at":  dao.CreatedAt,
	}
}
