// Package consumer drives a tree.Tree from a watch.Watcher's normalized
// event queue: it drains whatever is queued and dispatches each event to
// the appropriate Added/Removed/Modified/Moved/Renamed handler, turning
// the tree into a live mirror of the watched subtree.
package consumer

import (
	"log/slog"
	"path/filepath"

	"github.com/1Serg777/file-watcher/fsevent"
	"github.com/1Serg777/file-watcher/tree"
	"github.com/1Serg777/file-watcher/watch"
)

// Consumer drains a Watcher's queue on Tick and applies each event to a
// Tree.
type Consumer struct {
	watcher  *watch.Watcher
	tree     *tree.Tree
	rootName string
	log      *slog.Logger
}

// New returns a Consumer. rootName is the watch root's own leaf name
// (e.g. "Assets"), prepended to every event path to build the
// tree-relative path the tree's mutation API expects.
func New(w *watch.Watcher, t *tree.Tree, rootName string, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{watcher: w, tree: t, rootName: rootName, log: log}
}

// Tick drains every event currently queued and applies it to the tree, in
// order. Returns true if at least one event was applied.
func (c *Consumer) Tick() bool {
	any := false
	for c.watcher.HasFileEvents() {
		c.apply(c.watcher.RetrieveFileEvent())
		any = true
	}
	return any
}

func (c *Consumer) apply(event fsevent.Event) {
	c.log.Debug("normalized event", "event", event.String())
	switch event.Type {
	case fsevent.Added:
		c.applyAdded(event)
	case fsevent.Removed:
		c.applyRemoved(event)
	case fsevent.Modified:
		c.applyModified(event)
	case fsevent.Moved:
		c.applyMoved(event)
	case fsevent.Renamed:
		c.applyRenamed(event)
	}
}

// relPath builds the tree-relative path from an event path, prepending
// the watch root's own leaf name.
func (c *Consumer) relPath(eventPath string) string {
	return filepath.Join(c.rootName, eventPath)
}

// isFileLike resolves the file-vs-directory ambiguity in a normalized
// event path: a path with an extension names a file, otherwise a
// directory.
func isFileLike(eventPath string) bool {
	return filepath.Ext(eventPath) != ""
}

func (c *Consumer) applyAdded(event fsevent.Event) {
	rel := c.relPath(event.NewPath)
	var err error
	if isFileLike(event.NewPath) {
		err = c.tree.AddNewFile(rel)
	} else {
		err = c.tree.AddNewDirectory(rel)
	}
	if err != nil {
		c.log.Error("apply ADDED", "path", rel, "error", err)
	}
}

func (c *Consumer) applyRemoved(event fsevent.Event) {
	rel := c.relPath(event.OldPath)
	var err error
	if isFileLike(event.OldPath) {
		err = c.tree.RemoveFile(rel)
	} else {
		err = c.tree.RemoveDirectory(rel)
	}
	if err != nil {
		c.log.Error("apply REMOVED", "path", rel, "error", err)
	}
}

func (c *Consumer) applyModified(event fsevent.Event) {
	rel := c.relPath(event.OldPath)
	if err := c.tree.TouchFile(rel); err != nil {
		c.log.Error("apply MODIFIED", "path", rel, "error", err)
	}
}

func (c *Consumer) applyMoved(event fsevent.Event) {
	c.applyPathChange(event, c.tree.MoveFile, c.tree.MoveDirectory, "MOVED")
}

func (c *Consumer) applyRenamed(event fsevent.Event) {
	c.applyPathChange(event, c.tree.RenameFile, c.tree.RenameDirectory, "RENAMED")
}

// applyPathChange implements the shared ambiguity-resolution and dispatch
// logic for MOVED and RENAMED: both paths must agree on file-vs-directory,
// otherwise the event is logged and dropped.
func (c *Consumer) applyPathChange(event fsevent.Event, asFile, asDir func(old, new string) error, kind string) {
	oldFile, newFile := isFileLike(event.OldPath), isFileLike(event.NewPath)
	if oldFile != newFile {
		c.log.Warn("dropping event: old/new path disagree on file vs directory",
			"kind", kind, "old", event.OldPath, "new", event.NewPath)
		return
	}

	oldRel, newRel := c.relPath(event.OldPath), c.relPath(event.NewPath)
	var err error
	if oldFile {
		err = asFile(oldRel, newRel)
	} else {
		err = asDir(oldRel, newRel)
	}
	if err != nil {
		c.log.Error("apply "+kind, "old", oldRel, "new", newRel, "error", err)
	}
}
