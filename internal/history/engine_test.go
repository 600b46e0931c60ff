package history_test

import (
	"context"
	"testing"
	"time"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"daoportal/internal/history"
	"daoportal/internal/store"
	"daoportal/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*history.Engine, *store.Store, domain.DAO) {
	t.Helper()
	st := storetest.New(t)
	dao, err := st.CreateDAO(context.Background(), domain.DAO{Name: "ENS DAO", ChainID: "ethereum"})
	require.NoError(t, err)
	return history.New(st, history.WithClock(func() time.Time { return fixedNow })), st, dao
}

func addRun(t *testing.T, st *store.Store, daoID int64, ts time.Time, succeeded bool, payloads map[string]domain.Payload) {
	t.Helper()
	ctx := context.Background()
	run, err := st.CreateRun(ctx, daoID, ts)
	require.NoError(t, err)
	snaps := make([]domain.Snapshot, 0, len(payloads))
	for _, name := range []string{domain.CategoryNetworkParticipation, domain.CategoryHealthMetrics, domain.CategoryAccumulatedFunds} {
		if payload, ok := payloads[name]; ok {
			snaps = append(snaps, domain.Snapshot{DAOID: daoID, RunID: run.ID, MetricName: name, Payload: payload})
		}
	}
	require.NoError(t, st.CreateSnapshots(ctx, snaps))
	if succeeded {
		require.NoError(t, st.MarkRunSucceeded(ctx, run.ID))
	}
}

func TestLatestReturnsMostRecentRunOnly(t *testing.T) {
	engine, st, dao := newEngine(t)
	addRun(t, st, dao.ID, fixedNow.Add(-48*time.Hour), true, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.1},
		domain.CategoryHealthMetrics:        {"activity_ratio": 0.5},
	})
	addRun(t, st, dao.ID, fixedNow.Add(-24*time.Hour), true, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.2},
	})

	got, err := engine.Latest(context.Background(), dao.ID, "", "30d")
	require.NoError(t, err)
	require.NotNil(t, got.RunTimestamp)
	assert.True(t, got.RunTimestamp.Equal(fixedNow.Add(-24*time.Hour)))
	require.Len(t, got.Metrics, 1)
	assert.EqualValues(t, 0.2, got.Metrics[domain.CategoryNetworkParticipation]["participation_rate"])
	_, merged := got.Metrics[domain.CategoryHealthMetrics]
	assert.False(t, merged)
}

func TestLatestIgnoresFailedRuns(t *testing.T) {
	engine, st, dao := newEngine(t)
	addRun(t, st, dao.ID, fixedNow.Add(-time.Hour), false, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.9},
	})

	got, err := engine.Latest(context.Background(), dao.ID, "", "7d")
	require.NoError(t, err)
	assert.Nil(t, got.RunTimestamp)
	assert.Empty(t, got.Metrics)
	assert.NotNil(t, got.Metrics)
}

func TestLatestFiltersMetric(t *testing.T) {
	engine, st, dao := newEngine(t)
	addRun(t, st, dao.ID, fixedNow.Add(-time.Hour), true, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.3},
		domain.CategoryHealthMetrics:        {"activity_ratio": 0.4},
	})

	got, err := engine.Latest(context.Background(), dao.ID, domain.CategoryHealthMetrics, "1d")
	require.NoError(t, err)
	require.Len(t, got.Metrics, 1)
	assert.Contains(t, got.Metrics, domain.CategoryHealthMetrics)
}

func TestHistoryWindowBoundary(t *testing.T) {
	engine, st, dao := newEngine(t)
	cutoff := fixedNow.Add(-7 * 24 * time.Hour)
	addRun(t, st, dao.ID, cutoff.Add(-time.Second), true, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.1},
	})
	addRun(t, st, dao.ID, cutoff, true, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.2},
	})
	addRun(t, st, dao.ID, cutoff.Add(time.Second), true, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.3},
	})
	addRun(t, st, dao.ID, fixedNow.Add(-time.Hour), false, map[string]domain.Payload{
		domain.CategoryNetworkParticipation: {"participation_rate": 0.4},
	})

	got, err := engine.History(context.Background(), dao.ID, domain.CategoryNetworkParticipation, "7d")
	require.NoError(t, err)
	require.Len(t, got.History, 2)
	assert.Equal(t, 0.2, got.History[0].Data["participation_rate"])
	assert.Equal(t, 0.3, got.History[1].Data["participation_rate"])
	assert.Equal(t, domain.CategoryNetworkParticipation, got.Metric)
}

func TestHistoryEmptyIsNotError(t *testing.T) {
	engine, _, dao := newEngine(t)
	got, err := engine.History(context.Background(), dao.ID, domain.CategoryHealthMetrics, "2m")
	require.NoError(t, err)
	assert.NotNil(t, got.History)
	assert.Empty(t, got.History)
}

func TestNotFoundCheckedBeforePeriod(t *testing.T) {
	engine, _, _ := newEngine(t)
	_, err := engine.Latest(context.Background(), 404, "", "bogus")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	_, err = engine.History(context.Background(), 404, domain.CategoryHealthMetrics, "bogus")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestInvalidPeriod(t *testing.T) {
	engine, _, dao := newEngine(t)
	_, err := engine.Latest(context.Background(), dao.ID, "", "30x")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	_, err = engine.History(context.Background(), dao.ID, "", "30d")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}
