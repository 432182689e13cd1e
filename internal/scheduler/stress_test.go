package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSerializerStressConcurrentKeys(t *testing.T) {
	s := NewSerializer()

	const workers = 8
	const perWorker = 200
	const keys = 4

	var inside [keys]int32
	var counters [keys]int
	var overlaps int64

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				k := (w + i) % keys
				err := s.Do(context.Background(), fmt.Sprintf("sched-%d", k), func(context.Context) error {
					if atomic.AddInt32(&inside[k], 1) != 1 {
						atomic.AddInt64(&overlaps, 1)
					}
					counters[k]++
					atomic.AddInt32(&inside[k], -1)
					return nil
				})
				if err != nil {
					t.Errorf("do failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if overlaps != 0 {
		t.Fatalf("expected no overlapping holders, got %d", overlaps)
	}
	total := 0
	for _, c := range counters {
		total += c
	}
	if total != workers*perWorker {
		t.Fatalf("unexpected total: got=%d want=%d", total, workers*perWorker)
	}
	if s.Active() != 0 {
		t.Fatalf("expected all slots released, active=%d", s.Active())
	}
}
