package app

import (
	"context"
	"testing"

	"daoportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCreatesDAOsAndSnapshots(t *testing.T) {
	f := newFixture(t)
	existing := f.dao(t, "MakerDAO", "ethereum")
	path := f.file(t, "import.json", `[
		{"dao_name": "MakerDAO", "network_participation": {"participation_rate": 0.5}, "health_metrics": {}},
		{"dao_name": "Lido", "chain_id": 1, "accumulated_funds": {"treasury_value_usd": 10}, "voting_efficiency": {"approval_rate": 0.7}},
		{"chain_id": "ethereum"}
	]`)

	report, err := f.svc.Import(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Records: 3, Created: 1, Skipped: 1, Snapshots: 3}, report)

	lido, err := f.store.GetDAOByName(context.Background(), "Lido")
	require.NoError(t, err)
	assert.Equal(t, "1", lido.ChainID)
	assert.Equal(t, "Lido is a decentralized autonomous organization.", lido.DisplayDescription())

	latest, err := f.svc.LatestMetrics(context.Background(), existing.ID, "", "1d")
	require.NoError(t, err)
	require.Len(t, latest.Metrics, 1)
	assert.Contains(t, latest.Metrics, domain.CategoryNetworkParticipation)

	runs, err := f.store.ListRuns(context.Background(), lido.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Succeeded)
	assert.Equal(t, path, runs[0].SrcFilePath)
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	created, err = f.svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
