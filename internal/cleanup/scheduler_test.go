package cleanup

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls int32
}

func (c *countingSweeper) Sweep(maxAge time.Duration) int {
	atomic.AddInt32(&c.calls, 1)
	return 0
}

// TestSchedulerRunsSweep verifies the sweeper fires on the interval and stops
// after Stop.
func TestSchedulerRunsSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, "", 10*time.Millisecond, time.Hour)
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&sweeper.calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never ran")
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	stopped := atomic.LoadInt32(&sweeper.calls)
	time.Sleep(50 * time.Millisecond)
	if after := atomic.LoadInt32(&sweeper.calls); after > stopped+1 {
		t.Fatalf("sweeper kept running after stop: %d -> %d", stopped, after)
	}
}
