package aggregator

import (
	"context"
	"testing"
	"time"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	daos  map[int64]domain.DAO
	snaps map[int64][]domain.Snapshot
}

func (f *fakeReader) GetDAO(_ context.Context, id int64) (domain.DAO, error) {
	dao, ok := f.daos[id]
	if !ok {
		return domain.DAO{}, apperr.NotFound("DAO not found")
	}
	return dao, nil
}

func (f *fakeReader) ListSnapshots(_ context.Context, daoID int64) ([]domain.Snapshot, error) {
	return f.snaps[daoID], nil
}

func (f *fakeReader) ListSnapshotsForDAOs(_ context.Context, ids []int64) (map[int64][]domain.Snapshot, error) {
	res := make(map[int64][]domain.Snapshot)
	for _, id := range ids {
		res[id] = f.snaps[id]
	}
	return res, nil
}

func newFake() *fakeReader {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeReader{
		daos: map[int64]domain.DAO{
			1: {ID: 1, Name: "MakerDAO", ChainID: "ethereum", CreatedAt: created},
			2: {ID: 2, Name: "Uniswap", ChainID: "ethereum", CreatedAt: created},
		},
		snaps: map[int64][]domain.Snapshot{
			1: {
				{ID: 1, DAOID: 1, RunID: 1, MetricName: domain.CategoryNetworkParticipation, Payload: domain.Payload{"participation_rate": 0.1}},
				{ID: 2, DAOID: 1, RunID: 2, MetricName: domain.CategoryNetworkParticipation, Payload: domain.Payload{"participation_rate": 0.2}},
				{ID: 3, DAOID: 1, RunID: 2, MetricName: "treasury", Payload: domain.Payload{"value": 1}},
			},
		},
	}
}

func TestEnhancedDefaultsForEmptyDAO(t *testing.T) {
	agg := New(newFake())
	got, err := agg.Enhanced(context.Background(), 2)
	require.NoError(t, err)

	for _, category := range domain.CanonicalCategories {
		assert.Equal(t, DefaultPayload(category), got.Category(category), category)
	}
	assert.Equal(t, "No", got.Decentralisation["on_chain_automation"])
	assert.Equal(t, map[string]any{}, got.VotingEfficiency["proposal_states"])
	assert.Equal(t, "Uniswap", got.Name)
}

func TestEnhancedLastSnapshotWins(t *testing.T) {
	agg := New(newFake())
	got, err := agg.Enhanced(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0.2, got.NetworkParticipation["participation_rate"])
	assert.Equal(t, DefaultPayload(domain.CategoryHealthMetrics), got.HealthMetrics)
}

func TestEnhancedNotFound(t *testing.T) {
	agg := New(newFake())
	_, err := agg.Enhanced(context.Background(), 99)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestDefaultPayloadIsFresh(t *testing.T) {
	first := DefaultPayload(domain.CategoryVotingEfficiency)
	first["total_proposals"] = 10
	second := DefaultPayload(domain.CategoryVotingEfficiency)
	assert.Equal(t, 0, second["total_proposals"])
}

func TestEnhancedManySkipsMissing(t *testing.T) {
	agg := New(newFake())
	got, err := agg.EnhancedMany(context.Background(), []int64{1, 999, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].ID)
	assert.EqualValues(t, 2, got[1].ID)
}

func TestSummaries(t *testing.T) {
	agg := New(newFake())
	got, err := agg.Summaries(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	s1 := got[1]
	assert.Equal(t, 0.2, s1["participation_rate"])
	v, ok := s1["total_members"]
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = s1["treasury_value_usd"]
	assert.False(t, ok)

	assert.Empty(t, got[2])
}
