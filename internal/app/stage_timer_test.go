package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestStageTimerFiresOnce(t *testing.T) {
	var fired atomic.Int32
	timer := NewStageTimer(10*time.Millisecond, func() {
		fired.Add(1)
	})
	defer timer.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly one expiry, got %d", got)
	}
	if timer.Remaining() != 0 {
		t.Fatalf("expired timer reports %v remaining", timer.Remaining())
	}
}

func TestStageTimerStopPreventsExpiry(t *testing.T) {
	var fired atomic.Int32
	timer := NewStageTimer(30*time.Millisecond, func() {
		fired.Add(1)
	})

	if !timer.Stop() {
		t.Fatalf("first stop must win the guard")
	}
	if timer.Stop() {
		t.Fatalf("second stop must report already settled")
	}

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("stopped timer fired %d times", got)
	}
}

func TestStageTimerRemainingCountsDown(t *testing.T) {
	timer := NewStageTimer(time.Minute, func() {})
	defer timer.Stop()

	left := timer.Remaining()
	if left <= 0 || left > time.Minute {
		t.Fatalf("remaining out of range: %v", left)
	}
}
