// Package watch implements the OS watcher adapter and the top-level
// watcher facade on top of the real github.com/fsnotify/fsnotify backend.
// The Normalizer in this package is deliberately kept independent of
// fsnotify: it consumes an abstract RawRecord batch shape, the same
// next-entry-chained, split rename-old/new-name batch that Windows'
// ReadDirectoryChangesW and fsnotify's own windows.go both produce, so it
// can be driven directly by tests without a real filesystem.
package watch

// Action is the raw change kind reported for a single path by the OS
// change-notification API, before normalization.
type Action int

const (
	ActionAdded Action = iota
	ActionRemoved
	ActionModified
	ActionRenameOldName
	ActionRenameNewName
)

func (a Action) String() string {
	switch a {
	case ActionAdded:
		return "ADDED"
	case ActionRemoved:
		return "REMOVED"
	case ActionModified:
		return "MODIFIED"
	case ActionRenameOldName:
		return "RENAME_OLD_NAME"
	case ActionRenameNewName:
		return "RENAME_NEW_NAME"
	default:
		return "UNKNOWN"
	}
}

// RawRecord is one entry of a raw change-notification batch: an action
// plus a path relative to the watch root.
type RawRecord struct {
	Action Action
	Path   string
}

// Batch is a sequence of RawRecords that arrived together, mirroring the
// contiguous-buffer-with-next-entry-chain shape of the Windows
// FILE_NOTIFY_INFORMATION API: a rename-old-name record and its paired
// rename-new-name record MUST be consecutive entries of the same Batch.
type Batch struct {
	Records []RawRecord
}
