package fsevent

import (
	"sync"
	"time"
)

// pollResolution is how often the background loop wakes to check elapsed
// time against the deadline, trading a small amount of latency for not
// spinning the CPU between wakeups.
const pollResolution = 5 * time.Millisecond

type callback struct {
	id int
	fn func()
}

// Timer is a single-shot countdown with pause/resume and an on-expiry
// notification, used by the watcher adapter to drive the MOVED-synthesis
// heuristic.
//
// A Timer is safe for concurrent use. Stop() and the expiry check
// serialize on the same mutex and agree on a single "generation" counter,
// so whichever takes the lock first wins deterministically: a Stop() that
// gets there before the expiry check suppresses callback delivery, while
// a Stop() that arrives after the timer has committed to firing does not
// recall the callbacks already being delivered.
type Timer struct {
	mu sync.Mutex

	duration time.Duration

	running     bool
	accumulated time.Duration
	runStart    time.Time

	generation uint64
	nextID     int
	callbacks  []callback
}

// NewTimer returns a stopped Timer with no configured duration.
func NewTimer() *Timer {
	return &Timer{}
}

// Set stops the timer (if running) and records the duration used by the
// next Start.
func (t *Timer) Set(d time.Duration) {
	t.Stop()
	t.mu.Lock()
	t.duration = d
	t.mu.Unlock()
}

// Start begins counting from zero toward the configured duration. When the
// cumulative elapsed time (excluding any paused intervals) reaches the
// duration, every registered callback fires exactly once, in registration
// order, on the timer's own background goroutine.
func (t *Timer) Start() {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.accumulated = 0
	t.running = true
	t.runStart = time.Now()
	t.mu.Unlock()

	go t.run(gen)
}

// Pause freezes elapsed-time accumulation without invoking callbacks.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.accumulated += time.Since(t.runStart)
		t.running = false
	}
}

// Resume unfreezes elapsed-time accumulation.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		t.running = true
		t.runStart = time.Now()
	}
}

// Stop cancels the timer without firing callbacks and resets elapsed time
// to zero. It is safe to call even if no Start is in flight.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	t.running = false
	t.accumulated = 0
}

// AddOnFinish registers a completion callback and returns an id for later
// removal. Ids are monotonically increasing and never zero.
func (t *Timer) AddOnFinish(fn func()) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.callbacks = append(t.callbacks, callback{id: id, fn: fn})
	return id
}

// RemoveOnFinish deregisters a previously added callback.
func (t *Timer) RemoveOnFinish(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.callbacks[:0]
	for _, cb := range t.callbacks {
		if cb.id != id {
			out = append(out, cb)
		}
	}
	t.callbacks = out
}

func (t *Timer) run(gen uint64) {
	ticker := time.NewTicker(pollResolution)
	defer ticker.Stop()

	for range ticker.C {
		t.mu.Lock()
		if t.generation != gen {
			t.mu.Unlock()
			return
		}
		if !t.running {
			t.mu.Unlock()
			continue
		}

		elapsed := t.accumulated + time.Since(t.runStart)
		if elapsed < t.duration {
			t.mu.Unlock()
			continue
		}

		// Fire: bump the generation first so a racing Stop()/Start()
		// that acquires the lock right after us can tell this run
		// already finished, and so this goroutine never double-fires.
		t.generation++
		t.running = false
		t.accumulated = 0
		cbs := make([]callback, len(t.callbacks))
		copy(cbs, t.callbacks)
		t.mu.Unlock()

		for _, cb := range cbs {
			cb.fn()
		}
		return
	}
}
