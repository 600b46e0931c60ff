package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSchedulerRunOnceSkipsWhenRunning(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	s := NewScheduler("test", "", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return nil
	}, nil)
	if s.cronExpr != defaultCronSpec {
		t.Fatalf("expect default cron, got %s", s.cronExpr)
	}

	done := make(chan struct{})
	go func() {
		s.RunOnce()
		close(done)
	}()
	<-started
	s.RunOnce()
	close(release)
	<-done

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expect 1 call, got %d", got)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler("test", "@every 1h", func(ctx context.Context) error { return nil }, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stop := s.Start(ctx)
	cancel()
	stop()
	stop()
}

func TestSchedulerInvalidSpec(t *testing.T) {
	s := NewScheduler("test", "not a cron", nil, nil)
	stop := s.Start(context.Background())
	stop()
}

type fakeCounter struct {
	since time.Time
	n     int64
	err   error
}

func (f *fakeCounter) CountFailedRunsSince(_ context.Context, since time.Time) (int64, error) {
	f.since = since
	return f.n, f.err
}

func TestHourlyReporter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	counter := &fakeCounter{n: 3}
	h := NewHourlyReporter(counter, zap.New(core))
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	if err := h.Report(context.Background()); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !counter.since.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected window start %v", counter.since)
	}
	entries := logs.FilterMessage("hourly collect heartbeat").All()
	if len(entries) != 1 {
		t.Fatalf("expect one heartbeat log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["failed_runs_last_hour"]; got != int64(3) {
		t.Fatalf("unexpected count field %v", got)
	}

	counter.err = errors.New("db down")
	if err := h.Report(context.Background()); err == nil {
		t.Fatalf("expect error")
	}
	if h.Scheduler().cronExpr != "@hourly" {
		t.Fatalf("expect hourly spec")
	}
}
