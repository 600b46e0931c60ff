package ioc

import (
	"context"
	"testing"

	"daoportal/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitStoreCleanupClosesPool(t *testing.T) {
	cfg := app.Config{}
	cfg.Database = app.Database{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: "silent"}
	ctx := context.Background()

	st, cleanup, err := InitStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	ids, err := st.ListDAOIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	cleanup()
	_, err = st.ListDAOIDs(ctx)
	assert.Error(t, err)
}

func TestInitStoreRejectsEmptyDSN(t *testing.T) {
	cfg := app.Config{}
	cfg.Database = app.Database{Driver: "sqlite"}
	st, cleanup, err := InitStore(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Nil(t, cleanup)
}
