// Package fsevent defines the normalized change-notification type the rest
// of the module speaks in, plus the small concurrency primitives (a FIFO
// queue and a pausable single-shot timer) the normalizer builds on.
package fsevent

import "fmt"

// Type is the kind of change a File event represents.
type Type int

const (
	// Added means a new file or directory appeared at newPath.
	Added Type = iota
	// Removed means the entry at oldPath no longer exists.
	Removed
	// Moved means an entry moved from oldPath to newPath. Synthesized by
	// the MOVED heuristic from a REMOVED followed by an ADDED; never
	// reported directly by an OS backend. The heuristic does not compare
	// parent directories, so a same-directory rename observed as a
	// remove plus a create is also reported as Moved.
	Moved
	// Modified means the entry at oldPath was written to.
	Modified
	// Renamed means an entry changed its filename but kept the same
	// parent directory.
	Renamed
)

func (t Type) String() string {
	switch t {
	case Added:
		return "ADDED"
	case Removed:
		return "REMOVED"
	case Moved:
		return "MOVED"
	case Modified:
		return "MODIFIED"
	case Renamed:
		return "RENAMED"
	default:
		return "UNKNOWN"
	}
}

// Event is a tagged value carrying only the path fields that apply to its
// Type: Added uses NewPath, Removed and Modified use OldPath, Moved and
// Renamed use both.
type Event struct {
	Type    Type
	OldPath string
	NewPath string
}

// NewAdded builds an ADDED event.
func NewAdded(newPath string) Event { return Event{Type: Added, NewPath: newPath} }

// NewRemoved builds a REMOVED event.
func NewRemoved(oldPath string) Event { return Event{Type: Removed, OldPath: oldPath} }

// NewMoved builds a MOVED event, pairing a previously stashed REMOVED with
// a subsequent ADDED.
func NewMoved(oldPath, newPath string) Event {
	return Event{Type: Moved, OldPath: oldPath, NewPath: newPath}
}

// NewModified builds a MODIFIED event.
func NewModified(oldPath string) Event { return Event{Type: Modified, OldPath: oldPath} }

// NewRenamed builds a RENAMED event from a same-batch rename-old-name /
// rename-new-name pair.
func NewRenamed(oldPath, newPath string) Event {
	return Event{Type: Renamed, OldPath: oldPath, NewPath: newPath}
}

func (e Event) String() string {
	switch e.Type {
	case Added:
		return fmt.Sprintf("ADDED %q", e.NewPath)
	case Removed:
		return fmt.Sprintf("REMOVED %q", e.OldPath)
	case Modified:
		return fmt.Sprintf("MODIFIED %q", e.OldPath)
	case Moved:
		return fmt.Sprintf("MOVED %q -> %q", e.OldPath, e.NewPath)
	case Renamed:
		return fmt.Sprintf("RENAMED %q -> %q", e.OldPath, e.NewPath)
	default:
		return fmt.Sprintf("UNKNOWN %+v", struct {
			Old, New string
		}{e.OldPath, e.NewPath})
	}
}
