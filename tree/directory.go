package tree

import (
	"path/filepath"
	"time"
)

// Directory is an interior node of the tree. Its two sibling sequences
// (subdirectories and files) are kept sorted per the directory's current
// SortType, and are disjoint: a name appears in at most one of the two.
type Directory struct {
	name          string
	lastWriteTime time.Time
	parent        *Directory

	dirs  []*Directory
	files []*File

	sortType SortType
}

func newDirectory(name string, lastWrite time.Time) *Directory {
	return &Directory{name: name, lastWriteTime: lastWrite, sortType: DefaultSortType}
}

// Name returns the directory's own name (not its full path).
func (d *Directory) Name() string { return d.name }

// LastWriteTime returns the cached last-write-time captured when the
// directory was built or last refreshed.
func (d *Directory) LastWriteTime() time.Time { return d.lastWriteTime }

// Parent returns the non-owning back-reference to the containing
// directory, or nil for the root.
func (d *Directory) Parent() *Directory { return d.parent }

// Path returns the directory's current tree-relative path, computed from
// the parent chain rather than stored per-node, so a move or rename
// anywhere above this directory is reflected immediately without a
// cascading rewrite.
func (d *Directory) Path() string {
	if d.parent == nil {
		return d.name
	}
	return filepath.Join(d.parent.Path(), d.name)
}

// Directories returns a snapshot of the current ordered subdirectory
// sequence. Callers must not retain it past their use of the tree.
func (d *Directory) Directories() []*Directory {
	out := make([]*Directory, len(d.dirs))
	copy(out, d.dirs)
	return out
}

// Files returns a snapshot of the current ordered file sequence. Callers
// must not retain it past their use of the tree.
func (d *Directory) Files() []*File {
	out := make([]*File, len(d.files))
	copy(out, d.files)
	return out
}

// Directory looks up an immediate subdirectory by name.
func (d *Directory) Directory(name string) *Directory {
	for _, c := range d.dirs {
		if c.name == name {
			return c
		}
	}
	return nil
}

// File looks up an immediate file by name.
func (d *Directory) File(name string) *File {
	for _, f := range d.files {
		if f.name == name {
			return f
		}
	}
	return nil
}

// SortType returns the directory's current sort strategy.
func (d *Directory) SortType() SortType { return d.sortType }

// SetSortType changes the sort strategy and immediately re-sorts both
// sibling sequences.
func (d *Directory) SetSortType(st SortType) {
	d.sortType = st
	sortDirectories(d.dirs, st)
	sortFiles(d.files, st)
}

func (d *Directory) insertDirectory(c *Directory) {
	c.parent = d
	d.dirs = insertDirectorySorted(d.dirs, c, d.sortType)
}

func (d *Directory) insertFile(f *File) {
	f.parent = d
	d.files = insertFileSorted(d.files, f, d.sortType)
}

func (d *Directory) removeDirectory(c *Directory) {
	for i, x := range d.dirs {
		if x == c {
			d.dirs = append(d.dirs[:i], d.dirs[i+1:]...)
			break
		}
	}
	c.parent = nil
}

func (d *Directory) removeFile(f *File) {
	for i, x := range d.files {
		if x == f {
			d.files = append(d.files[:i], d.files[i+1:]...)
			break
		}
	}
	f.parent = nil
}
