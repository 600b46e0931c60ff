package app

import (
	"context"
	"errors"
	"testing"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFlowSuccess(t *testing.T) {
	f := newFixture(t)
	dao := f.dao(t, "MakerDAO", "ethereum")
	path := f.file(t, "MakerDAO_metrics.json", `{
		"network_participation": {"participation_rate": 0.42},
		"treasury": {"value": 1000},
		"ignored": {"x": 1},
		"metrics": {"voting_efficiency": {"approval_rate": 0.8}}
	}`)

	res, err := f.svc.CollectNow(context.Background(), dao.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CollectSuccess, res.Status)
	assert.Equal(t, 3, res.MetricsCount)
	assert.Equal(t, path, res.FilePath)

	run, err := f.store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.True(t, run.Succeeded)
	assert.Equal(t, path, run.SrcFilePath)

	latest, err := f.svc.LatestMetrics(context.Background(), dao.ID, "", "1d")
	require.NoError(t, err)
	assert.Len(t, latest.Metrics, 3)
	assert.EqualValues(t, 0.42, latest.Metrics[domain.CategoryNetworkParticipation]["participation_rate"])
}

func TestCollectFlowNoFileLeavesRunFailed(t *testing.T) {
	f := newFixture(t)
	dao := f.dao(t, "Uniswap", "ethereum")
	f.file(t, "aave.json", `{}`)

	res, err := f.svc.CollectNow(context.Background(), dao.ID)
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, "No JSON metric file found for DAO: Uniswap", res.Error)

	run, err := f.store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.False(t, run.Succeeded)
	assert.Empty(t, run.SrcFilePath)

	snaps, err := f.store.ListSnapshots(context.Background(), dao.ID)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	latest, err := f.svc.LatestMetrics(context.Background(), dao.ID, "", "30d")
	require.NoError(t, err)
	assert.Empty(t, latest.Metrics)
	assert.Nil(t, latest.RunTimestamp)
}

func TestCollectFlowMalformedFile(t *testing.T) {
	f := newFixture(t)
	dao := f.dao(t, "Aave", "ethereum")
	path := f.file(t, "Aave.json", `{"network_participation": `)

	res, err := f.svc.CollectNow(context.Background(), dao.ID)
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.Error)

	run, err := f.store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.False(t, run.Succeeded)
	assert.Equal(t, path, run.SrcFilePath)
}

func TestCollectFlowMissingDAO(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.CollectNow(context.Background(), 77)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.True(t, res.Failed())
}

type failingSnapshots struct {
	CollectStore
}

func (failingSnapshots) CreateSnapshots(context.Context, []domain.Snapshot) error {
	return errors.New("disk full")
}

func TestCollectFlowSnapshotWriteFailure(t *testing.T) {
	f := newFixture(t)
	dao := f.dao(t, "Compound", "ethereum")
	f.file(t, "Compound.json", `{"health_metrics": {"activity_ratio": 0.3}}`)

	flow := &CollectFlow{Store: failingSnapshots{CollectStore: f.store}, Source: f.svc.CollectFlow.Source}
	res, err := flow.Run(context.Background(), dao.ID)
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "disk full")

	run, err := f.store.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.False(t, run.Succeeded)
}
