package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expect success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expect 3 calls, got %d", calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	want := errors.New("still down")
	err := Retry(context.Background(), 2, 0, func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expect last error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expect 2 calls, got %d", calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 5, time.Second, func() error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expect context canceled, got %v", err)
	}
}
