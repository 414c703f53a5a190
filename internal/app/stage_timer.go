package app

import (
	"sync/atomic"
	"time"
)

// StageTimer is a cancellable countdown owned by a single stage attempt. The
// expiry callback runs at most once: Stop and the firing callback race on the
// same guard, so a timer stopped at the exact deadline never double-fires.
type StageTimer struct {
	timer    *time.Timer
	deadline time.Time
	done     atomic.Bool
}

// NewStageTimer schedules expire to run once after d.
func NewStageTimer(d time.Duration, expire func()) *StageTimer {
	t := &StageTimer{deadline: time.Now().Add(d)}
	t.timer = time.AfterFunc(d, func() {
		if t.done.CompareAndSwap(false, true) {
			expire()
		}
	})
	return t
}

// Stop cancels the countdown. It reports whether the expiry callback was
// prevented from running (false if it already fired or was stopped before).
func (t *StageTimer) Stop() bool {
	if !t.done.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	return true
}

// Remaining returns the time left before expiry, floored at zero.
func (t *StageTimer) Remaining() time.Duration {
	if t.done.Load() {
		return 0
	}
	if left := time.Until(t.deadline); left > 0 {
		return left
	}
	return 0
}
