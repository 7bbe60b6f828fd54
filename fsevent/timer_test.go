package fsevent

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerFiresAfterDuration(t *testing.T) {
	tm := NewTimer()
	tm.Set(20 * time.Millisecond)

	var fired int32
	tm.AddOnFinish(func() { atomic.StoreInt32(&fired, 1) })

	tm.Start()
	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("callback did not fire within 100ms of a 20ms timer")
	}
}

func TestTimerStopSuppressesCallback(t *testing.T) {
	tm := NewTimer()
	tm.Set(20 * time.Millisecond)

	var fired int32
	tm.AddOnFinish(func() { atomic.StoreInt32(&fired, 1) })

	tm.Start()
	tm.Stop()
	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("callback fired after Stop()")
	}
}

func TestTimerPauseResumeExtendsDeadline(t *testing.T) {
	tm := NewTimer()
	tm.Set(40 * time.Millisecond)

	var fired int32
	tm.AddOnFinish(func() { atomic.StoreInt32(&fired, 1) })

	tm.Start()
	time.Sleep(20 * time.Millisecond)
	tm.Pause()
	time.Sleep(100 * time.Millisecond) // well past the original deadline
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("callback fired while paused")
	}
	tm.Resume()
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatalf("callback did not fire after Resume()")
	}
}

func TestTimerRemoveOnFinish(t *testing.T) {
	tm := NewTimer()
	tm.Set(10 * time.Millisecond)

	var fired int32
	id := tm.AddOnFinish(func() { atomic.StoreInt32(&fired, 1) })
	tm.RemoveOnFinish(id)

	tm.Start()
	time.Sleep(60 * time.Millisecond)

	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("removed callback still fired")
	}
}
