package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"daoportal/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()
	task := NewTask(KindCollectDAO, 7)
	require.NoError(t, q.Enqueue(ctx, task))

	d, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.ID, d.Task.ID)
	assert.NoError(t, d.Ack(ctx))
}

func TestMemoryQueueDequeueHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestMemoryQueueClosed(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(context.Background(), NewTask(KindCollectAll, 0)), ErrClosed)
	_, err := q.Dequeue(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryResults(t *testing.T) {
	r := NewMemoryResults()
	ctx := context.Background()
	_, err := r.Get(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	require.NoError(t, r.Save(ctx, Result{TaskID: "t1", Status: StatusPending}))
	got, err := r.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}
