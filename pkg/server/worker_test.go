package server

import (
	"context"
	"testing"
	"time"

	"daoportal/internal/queue"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWorkerRequeuesAndReportsBacklog(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := queue.NewRedisClient(context.Background(), queue.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	q := queue.NewRedisQueue(client, "worker:tasks", nil)
	require.NoError(t, q.Enqueue(context.Background(), queue.NewTask(queue.KindCollectDAO, 1)))
	require.NoError(t, q.Enqueue(context.Background(), queue.NewTask(queue.KindCollectDAO, 2)))
	_, err = q.Dequeue(context.Background())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	w := &Worker{Logger: zap.New(core), Queue: q}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("worker starting").Len() == 1
	}, time.Second, 10*time.Millisecond)
	entry := logs.FilterMessage("worker starting").All()[0]
	assert.EqualValues(t, 2, entry.ContextMap()["backlog"])

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
