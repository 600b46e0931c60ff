package store

import (
	"context"
	"fmt"
	"time"

	"daoportal/internal/domain"
	"daoportal/pkg/util"
	"gorm.io/datatypes"
)

// CreateSnapshots 按批写入快照，已提交的批次不会因后续失败回滚。
func (s *Store) CreateSnapshots(ctx context.Context, snapshots []domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	rows := make([]snapshotModel, 0, len(snapshots))
	for _, snap := range snapshots {
		rows = append(rows, snapshotModel{
			DAOID:        snap.DAOID,
			RunID:        snap.RunID,
			MetricName:   snap.MetricName,
			JSONBPayload: datatypes.JSONMap(snap.Payload),
		})
	}
	for _, chunk := range util.Batch(rows, s.batchSize) {
		if err := s.db.WithContext(ctx).Create(&chunk).Error; err != nil {
			return fmt.Errorf("写入快照失败 run_id=%d: %w", chunk[0].RunID, err)
		}
	}
	return nil
}

// ListSnapshots 返回 DAO 的全部快照，按写入顺序。
func (s *Store) ListSnapshots(ctx context.Context, daoID int64) ([]domain.Snapshot, error) {
	var rows []snapshotModel
	if err := s.db.WithContext(ctx).Where("dao_id = ?", daoID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询快照失败 dao_id=%d: %w", daoID, err)
	}
	return toSnapshots(rows), nil
}

// ListSnapshotsForDAOs 一次查询多个 DAO 的快照，按 DAO 分组。
func (s *Store) ListSnapshotsForDAOs(ctx context.Context, daoIDs []int64) (map[int64][]domain.Snapshot, error) {
	grouped := make(map[int64][]domain.Snapshot, len(daoIDs))
	if len(daoIDs) == 0 {
		return grouped, nil
	}
	var rows []snapshotModel
	if err := s.db.WithContext(ctx).Where("dao_id IN ?", daoIDs).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("批量查询快照失败: %w", err)
	}
	for _, row := range rows {
		grouped[row.DAOID] = append(grouped[row.DAOID], row.toDomain())
	}
	return grouped, nil
}

// RunSnapshots 返回某次 run 的快照，metric 非空时只返回该类别。
func (s *Store) RunSnapshots(ctx context.Context, daoID, runID int64, metric string) ([]domain.Snapshot, error) {
	query := s.db.WithContext(ctx).Where("dao_id = ? AND run_id = ?", daoID, runID)
	if metric != "" {
		query = query.Where("metric_name = ?", metric)
	}
	var rows []snapshotModel
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询 run 快照失败 run_id=%d: %w", runID, err)
	}
	return toSnapshots(rows), nil
}

type historyRow struct {
	RunTimestamp time.Time         `gorm:"column:run_timestamp"`
	JSONBPayload datatypes.JSONMap `gorm:"column:jsonb_payload"`
}

// MetricHistory 返回 since 之后成功 run 中某类别的时间序列，按 run 时间升序。
func (s *Store) MetricHistory(ctx context.Context, daoID int64, metric string, since time.Time) ([]domain.HistoryPoint, error) {
	var rows []historyRow
	err := s.db.WithContext(ctx).
		Table("metric_snapshot AS s").
		Select("r.run_timestamp AS run_timestamp, s.jsonb_payload AS jsonb_payload").
		Joins("JOIN metric_run AS r ON r.id = s.run_id").
		Where("s.dao_id = ? AND s.metric_name = ?", daoID, metric).
		Where("r.succeeded = ? AND r.run_timestamp >= ?", true, since.UTC()).
		Order("r.run_timestamp ASC, s.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询指标历史失败 dao_id=%d metric=%s: %w", daoID, metric, err)
	}
	points := make([]domain.HistoryPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.HistoryPoint{Timestamp: row.RunTimestamp.UTC(), Data: toPayload(row.JSONBPayload)})
	}
	return points, nil
}

func toSnapshots(rows []snapshotModel) []domain.Snapshot {
	res := make([]domain.Snapshot, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res
}
