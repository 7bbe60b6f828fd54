package watch

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/1Serg777/file-watcher/fsevent"
	"github.com/1Serg777/file-watcher/metrics"
)

// ErrMalformedBatch is returned when a rename-old-name record isn't
// immediately followed by its rename-new-name pair within the same
// batch. The caller must abort the current batch and resubscribe.
var ErrMalformedBatch = errors.New("watch: malformed batch: rename-old-name not immediately followed by rename-new-name")

// Normalizer turns raw change-notification batches into the typed
// fsevent.Event stream, applying the MOVED-synthesis heuristic. It holds
// no reference to any real OS backend: Adapter drives it from fsnotify,
// and tests drive it directly with hand-built Batches.
//
// A Normalizer is safe for concurrent use: ProcessBatch and the move
// timer's expiry callback both acquire the same mutex around the
// stashed-removed slot, so a record handler and a timer firing never
// interleave on it.
type Normalizer struct {
	mu sync.Mutex

	emit    func(fsevent.Event)
	metrics *metrics.Metrics

	timer *fsevent.Timer

	waiting       bool
	stashedRemove fsevent.Event
}

// NewNormalizer returns a Normalizer that calls emit for every produced
// event and waits moveWindow for an ADDED to pair with a stashed REMOVED
// before flushing it as a plain REMOVED. m may be nil.
func NewNormalizer(emit func(fsevent.Event), moveWindow time.Duration, m *metrics.Metrics) *Normalizer {
	n := &Normalizer{
		emit:    emit,
		metrics: m,
		timer:   fsevent.NewTimer(),
	}
	n.timer.Set(moveWindow)
	n.timer.AddOnFinish(n.onMoveWindowExpired)
	return n
}

func (n *Normalizer) emitEvent(e fsevent.Event) {
	n.metrics.EventNormalized(e.Type.String())
	n.emit(e)
}

// ProcessBatch normalizes every record of batch, in order.
func (n *Normalizer) ProcessBatch(batch Batch) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	records := batch.Records
	for i := 0; i < len(records); i++ {
		rec := records[i]
		switch rec.Action {
		case ActionAdded:
			n.onAddedLocked(rec.Path)
		case ActionRemoved:
			n.onRemovedLocked(rec.Path)
		case ActionModified:
			n.emitEvent(fsevent.NewModified(rec.Path))
		case ActionRenameOldName:
			if i+1 >= len(records) || records[i+1].Action != ActionRenameNewName {
				n.metrics.MalformedBatch()
				return ErrMalformedBatch
			}
			n.emitEvent(fsevent.NewRenamed(rec.Path, records[i+1].Path))
			i++
		case ActionRenameNewName:
			// Reachable only when a rename-new-name arrives without its
			// rename-old-name predecessor in the same batch.
			n.metrics.MalformedBatch()
			return ErrMalformedBatch
		}
	}
	return nil
}

// onRemovedLocked stashes path as a pending REMOVED and arms the move
// timer, flushing any already-stashed REMOVED first so a second removal
// while waiting never overwrites the first one silently. Caller holds
// n.mu.
func (n *Normalizer) onRemovedLocked(path string) {
	if n.waiting {
		n.timer.Stop()
		n.emitEvent(n.stashedRemove)
	}
	n.waiting = true
	n.stashedRemove = fsevent.NewRemoved(path)
	n.timer.Start()
}

// onAddedLocked pairs path with a stashed REMOVED into a MOVED if one is
// waiting, falling back to a plain ADDED otherwise. Caller holds n.mu.
func (n *Normalizer) onAddedLocked(path string) {
	if n.waiting {
		n.timer.Stop()
		n.waiting = false
		n.metrics.MovedMerge()
		n.emitEvent(fsevent.NewMoved(n.stashedRemove.OldPath, path))
		return
	}
	n.emitEvent(fsevent.NewAdded(path))
}

func (n *Normalizer) onMoveWindowExpired() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.waiting {
		return
	}
	n.waiting = false
	n.metrics.MovedTimeout()
	n.emitEvent(n.stashedRemove)
}
