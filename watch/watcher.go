package watch

import (
	"time"

	"github.com/1Serg777/file-watcher/fsevent"
	"github.com/1Serg777/file-watcher/metrics"
)

// Watcher is the top-level facade: it owns the event queue and the
// adapter, and exposes start/stop/retrieve. All queue-touching operations
// are internally locked via fsevent.Queue.
type Watcher struct {
	queue   *fsevent.Queue
	adapter *Adapter
}

// New returns a Watcher whose MOVED-synthesis window is moveWindow.
// onWarning, if non-nil, receives recoverable runtime errors (buffer
// overflow, malformed batches) from the adapter's worker. m may be nil.
func New(moveWindow time.Duration, onWarning func(error), m *metrics.Metrics) *Watcher {
	queue := fsevent.NewQueue()
	return &Watcher{
		queue:   queue,
		adapter: NewAdapter(queue, moveWindow, onWarning, m),
	}
}

// StartWatching begins watching rootAbsPath. If a previous session is
// still active, it is stopped first.
func (w *Watcher) StartWatching(rootAbsPath string) error {
	return w.adapter.StartWatching(rootAbsPath)
}

// StopWatching stops the active watch session, if any.
func (w *Watcher) StopWatching() {
	w.adapter.StopWatching()
}

// IsWatching reports whether a watch session is active.
func (w *Watcher) IsWatching() bool {
	return w.adapter.IsWatching()
}

// HasFileEvents reports whether any normalized events are queued.
func (w *Watcher) HasFileEvents() bool {
	return w.queue.HasAny()
}

// FileEventsAvailable is an alias for HasFileEvents, named to match
// RetrieveFileEvent as a paired existence-check/retrieval operation.
func (w *Watcher) FileEventsAvailable() bool {
	return w.queue.HasAny()
}

// RetrieveFileEvent pops and returns the oldest queued event. Panics if
// the queue is empty: callers must check HasFileEvents first.
func (w *Watcher) RetrieveFileEvent() fsevent.Event {
	return w.queue.Pop()
}
