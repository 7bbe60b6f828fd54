// Package tree implements a path-indexed, ordered in-memory mirror of a
// directory subtree. It owns no OS subscription of its own: the sole
// mutator is whatever drives it from normalized fsevent events, typically
// the consumer package. Callers are expected to apply mutations from a
// single goroutine.
package tree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/1Serg777/file-watcher/assettype"
	"github.com/1Serg777/file-watcher/metrics"
)

// Tree is the path-indexed, ordered mirror of a directory subtree. It is
// not internally synchronized; callers serialize their own access.
type Tree struct {
	root      *Directory
	index     map[string]*Directory
	listeners []Listener

	assetTypes assettype.Table
	metrics    *metrics.Metrics

	// defaultSortType is the SortType BuildRootTree builds every directory
	// with. AddNewDirectory uses the parent directory's SortType instead.
	defaultSortType SortType

	// rootParentAbs is the absolute parent of the watch root, used only to
	// resolve a tree-relative path back to an absolute disk path.
	rootParentAbs string
}

// New returns an empty tree with no root. assetTypes classifies files
// encountered while building or growing the tree; pass assettype.Default()
// for the built-in extension table. m may be nil.
func New(assetTypes assettype.Table, m *metrics.Metrics) *Tree {
	return &Tree{index: make(map[string]*Directory), assetTypes: assetTypes, metrics: m, defaultSortType: DefaultSortType}
}

// SetDefaultSortType changes the SortType new directories are built with.
// It does not re-sort an already-built tree; call it before BuildRootTree.
func (t *Tree) SetDefaultSortType(st SortType) {
	t.defaultSortType = st
}

// AddListener registers l to receive future notifications.
func (t *Tree) AddListener(l Listener) {
	t.listeners = append(t.listeners, l)
}

// RemoveListener deregisters l. A no-op if l was never registered.
func (t *Tree) RemoveListener(l Listener) {
	for i, x := range t.listeners {
		if x == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// GetRootDirectory returns the tree's root, or nil if no root has been
// built yet.
func (t *Tree) GetRootDirectory() *Directory { return t.root }

// GetDirectory looks up a directory by its tree-relative path, returning
// nil if absent. The root's own path (its directory name) is a valid key.
func (t *Tree) GetDirectory(relPath string) *Directory {
	return t.index[filepath.Clean(relPath)]
}

// ProcessDirectoryTree hands processor the root for read-only traversal.
// processor must not retain any node reference past the call, nor mutate
// the tree from within it.
func (t *Tree) ProcessDirectoryTree(processor func(root *Directory)) {
	if t.root == nil {
		return
	}
	processor(t.root)
}

// BuildRootTree discards any existing tree and rebuilds it from scratch by
// walking rootAbsPath on disk. Listeners are notified for every
// descendant directory and file, post-order, but not for the root itself,
// since the root is constructed directly rather than through the
// add-directory path that fires notifications.
func (t *Tree) BuildRootTree(rootAbsPath string) error {
	t.clear()

	rootAbsPath = filepath.Clean(rootAbsPath)
	t.rootParentAbs = filepath.Dir(rootAbsPath)
	name := filepath.Base(rootAbsPath)

	root, err := t.buildDirNode(nil, name, rootAbsPath, t.defaultSortType)
	if err != nil {
		t.clear()
		return err
	}
	t.root = root
	t.index[root.Path()] = root
	return nil
}

// ClearTree releases the root and empties the path index. Listeners
// receive no individual removal notifications: clearing is a regime
// change, not a sequence of per-entry removals. The index is fully
// emptied too, since nothing in it is reachable once the root is gone.
func (t *Tree) ClearTree() {
	t.clear()
}

func (t *Tree) clear() {
	t.root = nil
	t.index = make(map[string]*Directory)
	t.rootParentAbs = ""
}

// buildDirNode recursively builds a Directory node for absPath, attaching
// and notifying for every descendant in post-order. It does not attach or
// index the returned node itself; the caller does that, since root
// construction and subtree-add construction notify differently for the
// subtree's own root. The node's parent link is set to parent up front, so
// every descendant is indexed and notified under its full tree-relative
// path.
func (t *Tree) buildDirNode(parent *Directory, name, absPath string, st SortType) (*Directory, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %q", absPath)
	}
	dir := newDirectory(name, info.ModTime())
	dir.sortType = st
	dir.parent = parent

	entries, err := os.ReadDir(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %q", absPath)
	}
	for _, entry := range entries {
		childAbs := filepath.Join(absPath, entry.Name())
		if entry.IsDir() {
			child, err := t.buildDirNode(dir, entry.Name(), childAbs, st)
			if err != nil {
				return nil, err
			}
			t.attachDirectory(dir, child)
		} else {
			info, err := entry.Info()
			if err != nil {
				return nil, errors.Wrapf(err, "stat %q", childAbs)
			}
			file := newFile(entry.Name(), info.ModTime(), t.assetTypes.Detect(entry.Name()))
			t.attachFile(dir, file)
		}
	}
	return dir, nil
}

func (t *Tree) attachDirectory(parent, dir *Directory) {
	parent.insertDirectory(dir)
	t.index[dir.Path()] = dir
	t.notifyDirectoryAdded(dir)
}

func (t *Tree) attachFile(parent *Directory, file *File) {
	parent.insertFile(file)
	t.notifyFileAdded(file)
}

// absPath resolves a tree-relative path to an absolute disk path.
func (t *Tree) absPath(relPath string) string {
	return filepath.Join(t.rootParentAbs, relPath)
}

func splitPath(relPath string) (parent, name string) {
	relPath = filepath.Clean(relPath)
	return filepath.Dir(relPath), filepath.Base(relPath)
}

// AddNewFile attaches a single new file under its already-indexed parent
// directory, deriving its asset type from its extension and its
// last-write-time from disk. A parent missing from the index is an
// ErrTreeContractViolation: the caller lost an earlier ADDED event for
// that directory. Re-adding a name that's already present is a no-op, so
// a replayed ADDED is harmless.
func (t *Tree) AddNewFile(relPath string) error {
	relPath = filepath.Clean(relPath)
	parentPath, name := splitPath(relPath)

	parent := t.index[parentPath]
	if parent == nil {
		return errors.Wrapf(ErrTreeContractViolation, "add file %q: parent %q not indexed", relPath, parentPath)
	}
	if parent.File(name) != nil {
		return nil
	}

	absPath := t.absPath(relPath)
	info, err := os.Stat(absPath)
	if err != nil {
		return errors.Wrapf(err, "stat %q", absPath)
	}
	file := newFile(name, info.ModTime(), t.assetTypes.Detect(name))
	t.attachFile(parent, file)
	t.metrics.TreeMutation("add_file")
	return nil
}

// AddNewDirectory attaches a new directory, built recursively from disk
// using the same rules as BuildRootTree, under its already-indexed parent.
// Every directory in the new subtree is indexed and notified, post-order,
// ending with a notification for the subtree's own root. A missing parent
// is an ErrTreeContractViolation; re-adding an already-present name is a
// no-op.
func (t *Tree) AddNewDirectory(relPath string) error {
	relPath = filepath.Clean(relPath)
	parentPath, name := splitPath(relPath)

	parent := t.index[parentPath]
	if parent == nil {
		return errors.Wrapf(ErrTreeContractViolation, "add directory %q: parent %q not indexed", relPath, parentPath)
	}
	if parent.Directory(name) != nil {
		return nil
	}

	absPath := t.absPath(relPath)
	dir, err := t.buildDirNode(parent, name, absPath, parent.sortType)
	if err != nil {
		return err
	}
	t.attachDirectory(parent, dir)
	t.metrics.TreeMutation("add_directory")
	return nil
}

// RemoveFile detaches a single file. Missing parent or missing file are
// both treated as an already-satisfied removal, not an error: a REMOVED
// event may legitimately be replayed, or may race a parent's own removal.
func (t *Tree) RemoveFile(relPath string) error {
	relPath = filepath.Clean(relPath)
	parentPath, name := splitPath(relPath)

	parent := t.index[parentPath]
	if parent == nil {
		return nil
	}
	file := parent.File(name)
	if file == nil {
		return nil
	}

	t.notifyFileRemoved(file)
	parent.removeFile(file)
	t.metrics.TreeMutation("remove_file")
	return nil
}

// RemoveDirectory detaches a directory and its entire subtree, notifying
// bottom-up: every descendant file and directory first, innermost first,
// then the named directory itself last. Missing parent or missing
// directory are treated as an already-satisfied removal.
func (t *Tree) RemoveDirectory(relPath string) error {
	relPath = filepath.Clean(relPath)
	parentPath, name := splitPath(relPath)

	parent := t.index[parentPath]
	if parent == nil {
		return nil
	}
	dir := parent.Directory(name)
	if dir == nil {
		return nil
	}

	t.removeSubtreeBottomUp(dir)
	parent.removeDirectory(dir)
	t.metrics.TreeMutation("remove_directory")
	return nil
}

func (t *Tree) removeSubtreeBottomUp(dir *Directory) {
	for _, child := range dir.dirs {
		t.removeSubtreeBottomUp(child)
	}
	for _, file := range dir.files {
		t.notifyFileRemoved(file)
	}
	delete(t.index, dir.Path())
	t.notifyDirectoryRemoved(dir)
}

// TouchFile refreshes a file's cached last-write-time from disk and
// notifies any registered FileModifiedListener. Missing parent or file
// are both a no-op.
func (t *Tree) TouchFile(relPath string) error {
	relPath = filepath.Clean(relPath)
	parentPath, name := splitPath(relPath)

	parent := t.index[parentPath]
	if parent == nil {
		return nil
	}
	file := parent.File(name)
	if file == nil {
		return nil
	}

	info, err := os.Stat(t.absPath(relPath))
	if err != nil {
		return errors.Wrapf(err, "stat %q", relPath)
	}
	file.lastWriteTime = info.ModTime()
	for _, l := range t.listeners {
		if ml, ok := l.(FileModifiedListener); ok {
			ml.OnFileModified(file)
		}
	}
	t.metrics.TreeMutation("touch_file")
	return nil
}

// MoveFile detaches a file from its old parent and reattaches it under
// newPath's parent, rewriting its stored name immediately so that
// subsequent lookups and Path() calls see the new location right away.
func (t *Tree) MoveFile(oldPath, newPath string) error {
	oldPath, newPath = filepath.Clean(oldPath), filepath.Clean(newPath)
	oldParentPath, oldName := splitPath(oldPath)
	newParentPath, newName := splitPath(newPath)

	oldParent := t.index[oldParentPath]
	newParent := t.index[newParentPath]
	if oldParent == nil || newParent == nil {
		return errors.Wrapf(ErrTreeContractViolation, "move file %q -> %q: parent not indexed", oldPath, newPath)
	}
	file := oldParent.File(oldName)
	if file == nil {
		return nil
	}

	oldEventPath := file.Path()
	oldParent.removeFile(file)
	file.name = newName
	newParent.insertFile(file)
	t.notifyFilePathChanged(file, oldEventPath)
	t.metrics.TreeMutation("move_file")
	return nil
}

// MoveDirectory detaches a directory subtree from its old parent and
// reattaches it under newPath's parent. Before reparenting, it rewrites
// every index key under the subtree to its post-move value, descendants
// first and the subtree's own key last, so the index is never observably
// inconsistent with the tree.
func (t *Tree) MoveDirectory(oldPath, newPath string) error {
	oldPath, newPath = filepath.Clean(oldPath), filepath.Clean(newPath)
	oldParentPath, oldName := splitPath(oldPath)
	newParentPath, newName := splitPath(newPath)

	oldParent := t.index[oldParentPath]
	newParent := t.index[newParentPath]
	if oldParent == nil || newParent == nil {
		return errors.Wrapf(ErrTreeContractViolation, "move directory %q -> %q: parent not indexed", oldPath, newPath)
	}
	dir := oldParent.Directory(oldName)
	if dir == nil {
		return nil
	}

	oldEventPath := dir.Path()
	oldRoot := filepath.Join(oldParent.Path(), oldName)
	newRoot := filepath.Join(newParent.Path(), newName)
	t.reindexSubtree(dir, oldRoot, newRoot)

	oldParent.removeDirectory(dir)
	dir.name = newName
	newParent.insertDirectory(dir)

	t.notifyDirectoryPathChanged(dir, oldEventPath)
	t.metrics.TreeMutation("move_directory")
	return nil
}

// RenameFile renames a file in place. oldPath and newPath must share a
// parent; a cross-directory rename is rejected in favor of MoveFile.
func (t *Tree) RenameFile(oldPath, newPath string) error {
	oldPath, newPath = filepath.Clean(oldPath), filepath.Clean(newPath)
	parentPath, oldName := splitPath(oldPath)
	newParentPath, newName := splitPath(newPath)
	if parentPath != newParentPath {
		return errors.Errorf("rename file: parent changed (%q -> %q); use MoveFile", parentPath, newParentPath)
	}

	parent := t.index[parentPath]
	if parent == nil {
		return errors.Wrapf(ErrTreeContractViolation, "rename file %q: parent %q not indexed", oldPath, parentPath)
	}
	file := parent.File(oldName)
	if file == nil {
		return nil
	}

	oldEventPath := file.Path()
	parent.removeFile(file)
	file.name = newName
	parent.insertFile(file)
	t.notifyFilePathChanged(file, oldEventPath)
	t.metrics.TreeMutation("rename_file")
	return nil
}

// RenameDirectory renames a directory in place, rewriting the index for
// its entire subtree the same way MoveDirectory does. oldPath and newPath
// must share a parent; a cross-directory rename is rejected in favor of
// MoveDirectory.
func (t *Tree) RenameDirectory(oldPath, newPath string) error {
	oldPath, newPath = filepath.Clean(oldPath), filepath.Clean(newPath)
	parentPath, oldName := splitPath(oldPath)
	newParentPath, newName := splitPath(newPath)
	if parentPath != newParentPath {
		return errors.Errorf("rename directory: parent changed (%q -> %q); use MoveDirectory", parentPath, newParentPath)
	}

	parent := t.index[parentPath]
	if parent == nil {
		return errors.Wrapf(ErrTreeContractViolation, "rename directory %q: parent %q not indexed", oldPath, parentPath)
	}
	dir := parent.Directory(oldName)
	if dir == nil {
		return nil
	}

	oldEventPath := dir.Path()
	oldRoot := oldEventPath
	newRoot := filepath.Join(parent.Path(), newName)
	t.reindexSubtree(dir, oldRoot, newRoot)

	parent.removeDirectory(dir)
	dir.name = newName
	parent.insertDirectory(dir)

	t.notifyDirectoryPathChanged(dir, oldEventPath)
	t.metrics.TreeMutation("rename_directory")
	return nil
}

// reindexSubtree rewrites the index key of every directory in the subtree
// rooted at dir from its oldRoot-prefixed value to its newRoot-prefixed
// value. It runs before dir is reparented or renamed, so every node's
// Path() still reflects its pre-move location when rewriteIndexKey reads
// it.
func (t *Tree) reindexSubtree(dir *Directory, oldRoot, newRoot string) {
	var rewriteDescendants func(d *Directory)
	rewriteDescendants = func(d *Directory) {
		for _, child := range d.dirs {
			rewriteDescendants(child)
			t.rewriteIndexKey(child, oldRoot, newRoot)
		}
	}
	rewriteDescendants(dir)
	t.rewriteIndexKey(dir, oldRoot, newRoot)
}

func (t *Tree) rewriteIndexKey(d *Directory, oldRoot, newRoot string) {
	oldKey := d.Path()
	if t.index[oldKey] != d {
		panic(fmt.Sprintf("tree: index inconsistent at %q during subtree move", oldKey))
	}
	delete(t.index, oldKey)
	suffix, err := filepath.Rel(oldRoot, oldKey)
	if err != nil {
		panic(fmt.Sprintf("tree: %q is not under %q during subtree move", oldKey, oldRoot))
	}
	t.index[filepath.Join(newRoot, suffix)] = d
}

func (t *Tree) notifyDirectoryAdded(dir *Directory) {
	for _, l := range t.listeners {
		l.OnDirectoryAdded(dir)
	}
}

func (t *Tree) notifyDirectoryRemoved(dir *Directory) {
	for _, l := range t.listeners {
		l.OnDirectoryRemoved(dir)
	}
}

func (t *Tree) notifyFileAdded(file *File) {
	for _, l := range t.listeners {
		l.OnFileAdded(file)
	}
}

func (t *Tree) notifyFileRemoved(file *File) {
	for _, l := range t.listeners {
		l.OnFileRemoved(file)
	}
}

func (t *Tree) notifyFilePathChanged(file *File, oldPath string) {
	for _, l := range t.listeners {
		if pl, ok := l.(FilePathChangedListener); ok {
			pl.OnFilePathChanged(file, oldPath)
		}
	}
}

func (t *Tree) notifyDirectoryPathChanged(dir *Directory, oldPath string) {
	for _, l := range t.listeners {
		if pl, ok := l.(DirectoryPathChangedListener); ok {
			pl.OnDirectoryPathChanged(dir, oldPath)
		}
	}
}
