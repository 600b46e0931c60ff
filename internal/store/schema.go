package store

import (
	"context"
	"fmt"
)

// Migrate 初始化 dao、metric_run、metric_snapshot 三张表及索引。
func (s *Store) Migrate(ctx context.Context) error {
	models := []any{&daoModel{}, &runModel{}, &snapshotModel{}}
	for _, m := range models {
		if err := s.db.WithContext(ctx).AutoMigrate(m); err != nil {
			return fmt.Errorf("迁移表结构失败 %T: %w", m, err)
		}
	}
	return nil
}
