package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1000} {
		seen := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, n := range seen {
			if n != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, n)
			}
		}
	}
}

func TestParallelizeWithThresholdSequentialBelowThreshold(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 5 {
			t.Fatalf("expected single full range, got [%d, %d)", start, end)
		}
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
