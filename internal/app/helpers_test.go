package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"daoportal/internal/domain"
	"daoportal/internal/queue"
	"daoportal/internal/source"
	"daoportal/internal/store"
	"daoportal/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *Service
	store   *store.Store
	queue   *queue.MemoryQueue
	results *queue.MemoryResults
	dataDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := storetest.New(t)
	dir := t.TempDir()
	q := queue.NewMemoryQueue(16)
	results := queue.NewMemoryResults()
	cfg := Config{}
	cfg.Defaults()
	cfg.Retry.BackoffSeconds = 0
	svc, err := NewService(cfg, st, q, results, source.NewFileSource(dir), nil)
	require.NoError(t, err)
	return &fixture{svc: svc, store: st, queue: q, results: results, dataDir: dir}
}

func (f *fixture) dao(t *testing.T, name, chain string) domain.DAO {
	t.Helper()
	dao, err := f.store.CreateDAO(context.Background(), domain.DAO{Name: name, ChainID: chain})
	require.NoError(t, err)
	return dao
}

func (f *fixture) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dataDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) succeededRun(t *testing.T, daoID int64, ts time.Time, payloads map[string]domain.Payload) domain.Run {
	t.Helper()
	ctx := context.Background()
	run, err := f.store.CreateRun(ctx, daoID, ts)
	require.NoError(t, err)
	var snaps []domain.Snapshot
	for _, name := range domain.CanonicalCategories {
		if p, ok := payloads[name]; ok {
			snaps = append(snaps, domain.Snapshot{DAOID: daoID, RunID: run.ID, MetricName: name, Payload: p})
		}
	}
	require.NoError(t, f.store.CreateSnapshots(ctx, snaps))
	require.NoError(t, f.store.MarkRunSucceeded(ctx, run.ID))
	return run
}
