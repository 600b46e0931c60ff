// Package storetest 提供基于内存 SQLite 的 Store，供各包测试使用。
package storetest

import (
	"context"
	"testing"

	"daoportal/internal/store"
	"go.uber.org/zap"
)

// New 创建已迁移的内存库，测试结束时自动关闭。
func New(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		Driver:       store.DriverSQLite,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
		BatchSize:    2,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return st
}
