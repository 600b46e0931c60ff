package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"gorm.io/gorm"
)

// CreateDAO 新建 DAO，名称重复时返回 Conflict。
func (s *Store) CreateDAO(ctx context.Context, dao domain.DAO) (domain.DAO, error) {
	name := strings.TrimSpace(dao.Name)
	if name == "" {
		return domain.DAO{}, apperr.InvalidArgument("name is required")
	}
	if strings.TrimSpace(dao.ChainID) == "" {
		return domain.DAO{}, apperr.InvalidArgument("chain_id is required")
	}
	if _, err := s.GetDAOByName(ctx, name); err == nil {
		return domain.DAO{}, apperr.Conflict("DAO with name %q already exists", name)
	} else if !apperr.Is(err, apperr.CodeNotFound) {
		return domain.DAO{}, err
	}
	createdAt := dao.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := daoModel{
		Name:        name,
		ChainID:     strings.TrimSpace(dao.ChainID),
		Description: dao.Description,
		CreatedAt:   createdAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.DAO{}, apperr.Conflict("DAO with name %q already exists", name)
		}
		return domain.DAO{}, apperr.Internal(err, "创建 DAO 失败")
	}
	return row.toDomain(), nil
}

// GetDAO 按 id 查询 DAO。
func (s *Store) GetDAO(ctx context.Context, id int64) (domain.DAO, error) {
	var row daoModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DAO{}, apperr.NotFound("DAO not found")
	}
	if err != nil {
		return domain.DAO{}, apperr.Internal(err, "查询 DAO 失败 id=%d", id)
	}
	return row.toDomain(), nil
}

// GetDAOByName 按名称精确查询 DAO。
func (s *Store) GetDAOByName(ctx context.Context, name string) (domain.DAO, error) {
	var row daoModel
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DAO{}, apperr.NotFound("DAO not found")
	}
	if err != nil {
		return domain.DAO{}, apperr.Internal(err, "查询 DAO 失败 name=%s", name)
	}
	return row.toDomain(), nil
}

// ListDAOs 返回当前页与同一过滤条件下的总数。
func (s *Store) ListDAOs(ctx context.Context, filter domain.DAOFilter) ([]domain.DAO, int64, error) {
	scope := daoFilterScope(filter)

	var total int64
	if err := s.db.WithContext(ctx).Model(&daoModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计 DAO 失败: %w", err)
	}

	var rows []daoModel
	query := s.db.WithContext(ctx).Model(&daoModel{}).Scopes(scope).Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("查询 DAO 列表失败: %w", err)
	}

	items := make([]domain.DAO, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, total, nil
}

// ListDAOIDs 返回全部 DAO 的 id，按 id 升序。
func (s *Store) ListDAOIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&daoModel{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("查询 DAO id 失败: %w", err)
	}
	return ids, nil
}

func daoFilterScope(filter domain.DAOFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", pattern, pattern)
		}
		if chainID := strings.TrimSpace(filter.ChainID); chainID != "" {
			db = db.Where("chain_id = ?", chainID)
		}
		return db
	}
}
