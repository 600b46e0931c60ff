package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"gorm.io/gorm"
)

// CreateRun 以 succeeded=false、空路径创建一次采集记录。
func (s *Store) CreateRun(ctx context.Context, daoID int64, ts time.Time) (domain.Run, error) {
	if ts.IsZero() {
		ts = time.Now()
	}
	row := runModel{DAOID: daoID, RunTimestamp: ts.UTC(), SrcFilePath: "", Succeeded: false}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Run{}, apperr.Internal(err, "创建 run 失败 dao_id=%d", daoID)
	}
	return row.toDomain(), nil
}

// GetRun 按 id 查询 run。
func (s *Store) GetRun(ctx context.Context, id int64) (domain.Run, error) {
	var row runModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Run{}, apperr.NotFound("run not found")
	}
	if err != nil {
		return domain.Run{}, apperr.Internal(err, "查询 run 失败 id=%d", id)
	}
	return row.toDomain(), nil
}

// ListRuns 返回 DAO 的全部 run，按时间升序。
func (s *Store) ListRuns(ctx context.Context, daoID int64) ([]domain.Run, error) {
	var rows []runModel
	if err := s.db.WithContext(ctx).Where("dao_id = ?", daoID).
		Order("run_timestamp ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询 run 列表失败 dao_id=%d: %w", daoID, err)
	}
	runs := make([]domain.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toDomain())
	}
	return runs, nil
}

// SetRunSourcePath 写入采集所用的数据文件路径。
func (s *Store) SetRunSourcePath(ctx context.Context, runID int64, path string) error {
	err := s.db.WithContext(ctx).Model(&runModel{}).Where("id = ?", runID).
		Update("src_file_path", path).Error
	if err != nil {
		return fmt.Errorf("更新 run 文件路径失败 id=%d: %w", runID, err)
	}
	return nil
}

// MarkRunSucceeded 将 run 标记为成功。
func (s *Store) MarkRunSucceeded(ctx context.Context, runID int64) error {
	err := s.db.WithContext(ctx).Model(&runModel{}).Where("id = ?", runID).
		Update("succeeded", true).Error
	if err != nil {
		return fmt.Errorf("标记 run 成功失败 id=%d: %w", runID, err)
	}
	return nil
}

// LatestSucceededRun 返回 since 之后最近一次成功的 run，没有时返回 nil。
// since 为零值时不限制时间。
func (s *Store) LatestSucceededRun(ctx context.Context, daoID int64, since time.Time) (*domain.Run, error) {
	query := s.db.WithContext(ctx).Where("dao_id = ? AND succeeded = ?", daoID, true)
	if !since.IsZero() {
		query = query.Where("run_timestamp >= ?", since.UTC())
	}
	var row runModel
	err := query.Order("run_timestamp DESC, id DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询最近成功 run 失败 dao_id=%d: %w", daoID, err)
	}
	run := row.toDomain()
	return &run, nil
}

// CountFailedRunsSince 统计 since 之后创建且未成功的 run 数量。
func (s *Store) CountFailedRunsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&runModel{}).
		Where("succeeded = ? AND run_timestamp >= ?", false, since.UTC()).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("统计失败 run 失败: %w", err)
	}
	return n, nil
}
