package history

import (
	"context"
	"time"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
)

// DefaultPeriod 是未指定窗口时使用的回看范围。
const DefaultPeriod = "30d"

// Reader 是查询引擎依赖的存储读接口。
type Reader interface {
	GetDAO(ctx context.Context, id int64) (domain.DAO, error)
	LatestSucceededRun(ctx context.Context, daoID int64, since time.Time) (*domain.Run, error)
	RunSnapshots(ctx context.Context, daoID, runID int64, metric string) ([]domain.Snapshot, error)
	MetricHistory(ctx context.Context, daoID int64, metric string, since time.Time) ([]domain.HistoryPoint, error)
}

// Latest 是窗口内最近一次成功 run 的类别载荷。
type Latest struct {
	DAOID        int64                     `json:"dao_id"`
	DAOName      string                    `json:"dao_name"`
	RunTimestamp *time.Time                `json:"run_timestamp,omitempty"`
	Metrics      map[string]domain.Payload `json:"metrics"`
}

// Series 是单个类别在窗口内的时间序列。
type Series struct {
	DAOID   int64                 `json:"dao_id"`
	DAOName string                `json:"dao_name"`
	Metric  string                `json:"metric"`
	History []domain.HistoryPoint `json:"history"`
}

// Option 调整 Engine 行为。
type Option func(*Engine)

// WithClock 替换当前时间来源。
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine 负责按时间窗口查询 run 与快照。
type Engine struct {
	reader Reader
	now    func() time.Time
}

func New(reader Reader, opts ...Option) *Engine {
	e := &Engine{reader: reader, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) cutoff(period string) (time.Time, error) {
	if period == "" {
		period = DefaultPeriod
	}
	window, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	return e.now().UTC().Add(-window), nil
}

// Latest 返回窗口内最近一次成功 run 的快照，metric 非空时只返回该类别。
// 没有符合条件的 run 时返回空 metrics。
func (e *Engine) Latest(ctx context.Context, daoID int64, metric, period string) (Latest, error) {
	dao, err := e.reader.GetDAO(ctx, daoID)
	if err != nil {
		return Latest{}, err
	}
	since, err := e.cutoff(period)
	if err != nil {
		return Latest{}, err
	}
	res := Latest{DAOID: dao.ID, DAOName: dao.Name, Metrics: map[string]domain.Payload{}}
	run, err := e.reader.LatestSucceededRun(ctx, daoID, since)
	if err != nil {
		return Latest{}, err
	}
	if run == nil {
		return res, nil
	}
	snaps, err := e.reader.RunSnapshots(ctx, daoID, run.ID, metric)
	if err != nil {
		return Latest{}, err
	}
	ts := run.RunTimestamp
	res.RunTimestamp = &ts
	for _, snap := range snaps {
		res.Metrics[snap.MetricName] = snap.Payload
	}
	return res, nil
}

// History 返回窗口内成功 run 中 metric 的时间序列，按时间升序。
func (e *Engine) History(ctx context.Context, daoID int64, metric, period string) (Series, error) {
	dao, err := e.reader.GetDAO(ctx, daoID)
	if err != nil {
		return Series{}, err
	}
	since, err := e.cutoff(period)
	if err != nil {
		return Series{}, err
	}
	if metric == "" {
		return Series{}, apperr.InvalidArgument("metric is required")
	}
	points, err := e.reader.MetricHistory(ctx, daoID, metric, since)
	if err != nil {
		return Series{}, err
	}
	if points == nil {
		points = []domain.HistoryPoint{}
	}
	return Series{DAOID: dao.ID, DAOName: dao.Name, Metric: metric, History: points}, nil
}
