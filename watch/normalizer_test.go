package watch

import (
	"sync"
	"testing"
	"time"

	"github.com/1Serg777/file-watcher/fsevent"
)

// eventSink collects emitted events under a mutex for assertion.
type eventSink struct {
	mu     sync.Mutex
	events []fsevent.Event
}

func (s *eventSink) push(e fsevent.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) snapshot() []fsevent.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fsevent.Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestNormalizerPlainAddedAndModified(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 50*time.Millisecond, nil)

	err := n.ProcessBatch(Batch{Records: []RawRecord{
		{Action: ActionAdded, Path: "a.txt"},
		{Action: ActionModified, Path: "a.txt"},
	}})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	got := sink.snapshot()
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %v", len(got), got)
	}
	if got[0].Type != fsevent.Added || got[0].NewPath != "a.txt" {
		t.Errorf("event[0] = %v, want ADDED a.txt", got[0])
	}
	if got[1].Type != fsevent.Modified || got[1].OldPath != "a.txt" {
		t.Errorf("event[1] = %v, want MODIFIED a.txt", got[1])
	}
}

func TestNormalizerMergesRemovedAndAddedIntoMoved(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 200*time.Millisecond, nil)

	if err := n.ProcessBatch(Batch{Records: []RawRecord{{Action: ActionRemoved, Path: "old.txt"}}}); err != nil {
		t.Fatalf("ProcessBatch (removed): %v", err)
	}
	if err := n.ProcessBatch(Batch{Records: []RawRecord{{Action: ActionAdded, Path: "new.txt"}}}); err != nil {
		t.Fatalf("ProcessBatch (added): %v", err)
	}

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 merged MOVED: %v", len(got), got)
	}
	if got[0].Type != fsevent.Moved || got[0].OldPath != "old.txt" || got[0].NewPath != "new.txt" {
		t.Errorf("event = %v, want MOVED old.txt -> new.txt", got[0])
	}
}

func TestNormalizerFlushesRemovedAfterWindowExpires(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 20*time.Millisecond, nil)

	if err := n.ProcessBatch(Batch{Records: []RawRecord{{Action: ActionRemoved, Path: "gone.txt"}}}); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 flushed REMOVED: %v", len(got), got)
	}
	if got[0].Type != fsevent.Removed || got[0].OldPath != "gone.txt" {
		t.Errorf("event = %v, want REMOVED gone.txt", got[0])
	}
}

func TestNormalizerStackedRemovedFlushesThePrevious(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 200*time.Millisecond, nil)

	if err := n.ProcessBatch(Batch{Records: []RawRecord{{Action: ActionRemoved, Path: "first.txt"}}}); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if err := n.ProcessBatch(Batch{Records: []RawRecord{{Action: ActionRemoved, Path: "second.txt"}}}); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	// "first.txt" should have been flushed immediately as a plain REMOVED
	// when "second.txt" stacked on top of it.
	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 (the stacked flush): %v", len(got), got)
	}
	if got[0].Type != fsevent.Removed || got[0].OldPath != "first.txt" {
		t.Errorf("event = %v, want REMOVED first.txt", got[0])
	}

	time.Sleep(250 * time.Millisecond)
	got = sink.snapshot()
	if len(got) != 2 {
		t.Fatalf("got %d events after window expiry, want 2: %v", len(got), got)
	}
	if got[1].Type != fsevent.Removed || got[1].OldPath != "second.txt" {
		t.Errorf("event[1] = %v, want REMOVED second.txt", got[1])
	}
}

func TestNormalizerRenamePair(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 50*time.Millisecond, nil)

	err := n.ProcessBatch(Batch{Records: []RawRecord{
		{Action: ActionRenameOldName, Path: "old.txt"},
		{Action: ActionRenameNewName, Path: "new.txt"},
	}})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1 RENAMED: %v", len(got), got)
	}
	if got[0].Type != fsevent.Renamed || got[0].OldPath != "old.txt" || got[0].NewPath != "new.txt" {
		t.Errorf("event = %v, want RENAMED old.txt -> new.txt", got[0])
	}
}

func TestNormalizerMalformedRenameBatch(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 50*time.Millisecond, nil)

	err := n.ProcessBatch(Batch{Records: []RawRecord{
		{Action: ActionRenameOldName, Path: "old.txt"},
		{Action: ActionAdded, Path: "unrelated.txt"},
	}})
	if err != ErrMalformedBatch {
		t.Fatalf("ProcessBatch error = %v, want ErrMalformedBatch", err)
	}
}

func TestNormalizerOrphanedRenameNewNameIsMalformed(t *testing.T) {
	sink := &eventSink{}
	n := NewNormalizer(sink.push, 50*time.Millisecond, nil)

	err := n.ProcessBatch(Batch{Records: []RawRecord{
		{Action: ActionRenameNewName, Path: "new.txt"},
	}})
	if err != ErrMalformedBatch {
		t.Fatalf("ProcessBatch error = %v, want ErrMalformedBatch", err)
	}
}
