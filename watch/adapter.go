package watch

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/fsnotify/fsnotify"

	"github.com/1Serg777/file-watcher/fsevent"
	"github.com/1Serg777/file-watcher/metrics"
)

// State is the Adapter's lifecycle state.
type State int

const (
	Idle State = iota
	Watching
	Stopping
)

func (s State) String() string {
	switch s {
	case Watching:
		return "WATCHING"
	case Stopping:
		return "STOPPING"
	default:
		return "IDLE"
	}
}

// Adapter watches a directory subtree using a real
// github.com/fsnotify/fsnotify watcher rather than a from-scratch
// platform syscall layer. fsnotify already normalizes inotify, kqueue, and
// ReadDirectoryChangesW into one Create/Write/Remove/Rename/Chmod
// vocabulary, which is coarser than the rename-old/new-name pair the
// Normalizer can model: fsnotify never reports a correlated rename pair,
// so the Adapter treats both its Remove and Rename ops as a plain
// ActionRemoved record and leans on the Normalizer's REMOVED+ADDED MOVED
// heuristic to reassemble the move.
//
// fsnotify watches a single directory non-recursively; the Adapter
// extends that to the whole subtree by walking it at startup and adding a
// watch for every new directory as it's created.
type Adapter struct {
	mu    sync.Mutex
	state State

	watcher *fsnotify.Watcher
	rootAbs string

	normalizer *Normalizer
	queue      *fsevent.Queue

	onWarning func(error)
	metrics   *metrics.Metrics

	done chan struct{}
}

// NewAdapter returns an Adapter that normalizes events into queue, with
// the MOVED-synthesis window fixed at moveWindow. onWarning, if non-nil,
// is called from the adapter's worker goroutine for recoverable runtime
// errors such as a buffer overflow. m may be nil.
func NewAdapter(queue *fsevent.Queue, moveWindow time.Duration, onWarning func(error), m *metrics.Metrics) *Adapter {
	a := &Adapter{
		queue:     queue,
		onWarning: onWarning,
		metrics:   m,
	}
	a.normalizer = NewNormalizer(func(e fsevent.Event) {
		queue.Push(e)
	}, moveWindow, m)
	return a
}

// StartWatching transitions IDLE -> WATCHING: it walks rootAbsPath,
// establishes a recursive fsnotify watch, and launches the background
// worker. Failure to stat or watch the root is a fatal initialization
// error, reported as ErrPathNotFound or ErrAccessDenied.
func (a *Adapter) StartWatching(rootAbsPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Watching {
		a.stopLocked()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return pkgerrors.Wrap(err, "creating OS watcher")
	}

	rootAbsPath = filepath.Clean(rootAbsPath)
	if err := addRecursive(w, rootAbsPath); err != nil {
		w.Close()
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return ErrPathNotFound
		case errors.Is(err, fs.ErrPermission):
			return ErrAccessDenied
		default:
			return pkgerrors.Wrapf(err, "watching %q", rootAbsPath)
		}
	}

	a.watcher = w
	a.rootAbs = rootAbsPath
	a.state = Watching
	a.done = make(chan struct{})

	go a.run(w, a.done)
	return nil
}

// StopWatching transitions WATCHING -> STOPPING -> IDLE, cancelling the
// background worker's blocked read and joining it before returning. A
// no-op when not watching.
func (a *Adapter) StopWatching() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Adapter) stopLocked() {
	if a.state != Watching {
		return
	}
	a.state = Stopping
	a.watcher.Close()
	<-a.done
	a.state = Idle
}

// IsWatching reports whether the adapter is currently in WATCHING state.
func (a *Adapter) IsWatching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == Watching
}

func (a *Adapter) run(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			a.handleEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.handleError(err)
		}
	}
}

func (a *Adapter) handleEvent(ev fsnotify.Event) {
	relPath, err := filepath.Rel(a.rootAbs, ev.Name)
	if err != nil {
		return
	}

	switch {
	case ev.HasCreate():
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addRecursive(a.watcher, ev.Name); err != nil && a.onWarning != nil {
				a.onWarning(pkgerrors.Wrapf(err, "extending watch to %q", ev.Name))
			}
		}
		a.dispatch(RawRecord{Action: ActionAdded, Path: relPath})
	case ev.HasRemove(), ev.HasRename():
		// fsnotify reports both a delete and the old side of a rename as
		// Remove/Rename with no paired new name; the Normalizer's
		// REMOVED+ADDED heuristic is what recovers MOVED from this.
		a.dispatch(RawRecord{Action: ActionRemoved, Path: relPath})
	case ev.HasWrite(), ev.HasChmod():
		a.dispatch(RawRecord{Action: ActionModified, Path: relPath})
	}
}

func (a *Adapter) dispatch(rec RawRecord) {
	if err := a.normalizer.ProcessBatch(Batch{Records: []RawRecord{rec}}); err != nil {
		if a.onWarning != nil {
			a.onWarning(pkgerrors.Wrap(err, "normalizing event"))
		}
	}
}

func (a *Adapter) handleError(err error) {
	if a.onWarning != nil {
		a.onWarning(err)
	}
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		a.metrics.BufferOverflow()
		slog.Warn("watch: OS event buffer overflow, some changes may have been missed; consider resyncing from disk")
	}
}

// addRecursive adds root and every directory beneath it to w.
func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}
