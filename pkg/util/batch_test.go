package util

import "testing"

func TestBatch(t *testing.T) {
	got := Batch([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 {
		t.Fatalf("expect 3 batches, got %d", len(got))
	}
	if len(got[2]) != 1 || got[2][0] != 5 {
		t.Fatalf("unexpected last batch %v", got[2])
	}
	if b := Batch([]int{1, 2}, 0); len(b) != 1 || len(b[0]) != 2 {
		t.Fatalf("non-positive size should yield one batch, got %v", b)
	}
	if b := Batch[int](nil, 3); b != nil {
		t.Fatalf("empty input should yield nil, got %v", b)
	}
}
