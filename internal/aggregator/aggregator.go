package aggregator

import (
	"context"
	"time"

	"daoportal/internal/domain"
)

// SnapshotReader 是聚合器依赖的存储读接口。
type SnapshotReader interface {
	GetDAO(ctx context.Context, id int64) (domain.DAO, error)
	ListSnapshots(ctx context.Context, daoID int64) ([]domain.Snapshot, error)
	ListSnapshotsForDAOs(ctx context.Context, daoIDs []int64) (map[int64][]domain.Snapshot, error)
}

// Enhanced 是 DAO 身份加五个标准类别的完整视图。
type Enhanced struct {
	ID                   int64          `json:"id"`
	Name                 string         `json:"name"`
	ChainID              string         `json:"chain_id"`
	Timestamp            time.Time      `json:"timestamp"`
	NetworkParticipation domain.Payload `json:"network_participation"`
	AccumulatedFunds     domain.Payload `json:"accumulated_funds"`
	VotingEfficiency     domain.Payload `json:"voting_efficiency"`
	Decentralisation     domain.Payload `json:"decentralisation"`
	HealthMetrics        domain.Payload `json:"health_metrics"`
}

// Category 按类别名取出载荷。
func (e Enhanced) Category(name string) domain.Payload {
	switch name {
	case domain.CategoryNetworkParticipation:
		return e.NetworkParticipation
	case domain.CategoryAccumulatedFunds:
		return e.AccumulatedFunds
	case domain.CategoryVotingEfficiency:
		return e.VotingEfficiency
	case domain.CategoryDecentralisation:
		return e.Decentralisation
	case domain.CategoryHealthMetrics:
		return e.HealthMetrics
	}
	return nil
}

// Aggregator 根据全部历史快照构建类别视图。
type Aggregator struct {
	reader SnapshotReader
}

func New(reader SnapshotReader) *Aggregator {
	return &Aggregator{reader: reader}
}

// Enhanced 返回单个 DAO 的完整视图，DAO 不存在时返回 NotFound。
func (a *Aggregator) Enhanced(ctx context.Context, daoID int64) (Enhanced, error) {
	dao, err := a.reader.GetDAO(ctx, daoID)
	if err != nil {
		return Enhanced{}, err
	}
	snaps, err := a.reader.ListSnapshots(ctx, daoID)
	if err != nil {
		return Enhanced{}, err
	}
	return Build(dao, snaps), nil
}

// EnhancedMany 返回多个 DAO 的视图，查不到的 id 直接跳过。
func (a *Aggregator) EnhancedMany(ctx context.Context, daoIDs []int64) ([]Enhanced, error) {
	daos := make([]domain.DAO, 0, len(daoIDs))
	found := make([]int64, 0, len(daoIDs))
	for _, id := range daoIDs {
		dao, err := a.reader.GetDAO(ctx, id)
		if err != nil {
			continue
		}
		daos = append(daos, dao)
		found = append(found, id)
	}
	result := make([]Enhanced, 0, len(daos))
	if len(daos) == 0 {
		return result, nil
	}
	grouped, err := a.reader.ListSnapshotsForDAOs(ctx, found)
	if err != nil {
		return nil, err
	}
	for _, dao := range daos {
		result = append(result, Build(dao, grouped[dao.ID]))
	}
	return result, nil
}

// Summaries 为列表页中的每个 DAO 计算摘要字段。
func (a *Aggregator) Summaries(ctx context.Context, daoIDs []int64) (map[int64]Summary, error) {
	grouped, err := a.reader.ListSnapshotsForDAOs(ctx, daoIDs)
	if err != nil {
		return nil, err
	}
	res := make(map[int64]Summary, len(daoIDs))
	for _, id := range daoIDs {
		res[id] = Summarize(Collapse(grouped[id]))
	}
	return res, nil
}

// Collapse 将快照按类别归并，后出现的覆盖先出现的。
func Collapse(snaps []domain.Snapshot) map[string]domain.Payload {
	byCategory := make(map[string]domain.Payload, len(snaps))
	for _, snap := range snaps {
		byCategory[snap.MetricName] = snap.Payload
	}
	return byCategory
}

// Build 组装完整视图，缺失的类别使用零值载荷。
func Build(dao domain.DAO, snaps []domain.Snapshot) Enhanced {
	byCategory := Collapse(snaps)
	pick := func(category string) domain.Payload {
		if payload, ok := byCategory[category]; ok && payload != nil {
			return payload
		}
		return DefaultPayload(category)
	}
	return Enhanced{
		ID:                   dao.ID,
		Name:                 dao.Name,
		ChainID:              dao.ChainID,
		Timestamp:            dao.CreatedAt,
		NetworkParticipation: pick(domain.CategoryNetworkParticipation),
		AccumulatedFunds:     pick(domain.CategoryAccumulatedFunds),
		VotingEfficiency:     pick(domain.CategoryVotingEfficiency),
		Decentralisation:     pick(domain.CategoryDecentralisation),
		HealthMetrics:        pick(domain.CategoryHealthMetrics),
	}
}
