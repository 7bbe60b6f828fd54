package tree

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/1Serg777/file-watcher/assettype"
)

// File is a leaf entry in the tree. Files never have children.
type File struct {
	name          string
	lastWriteTime time.Time
	parent        *Directory

	assetType assettype.Type
}

func newFile(name string, lastWrite time.Time, at assettype.Type) *File {
	return &File{name: name, lastWriteTime: lastWrite, assetType: at}
}

// Name returns the file's own name (not its full path).
func (f *File) Name() string { return f.name }

// LastWriteTime returns the cached last-write-time captured when the file
// was built or last refreshed.
func (f *File) LastWriteTime() time.Time { return f.lastWriteTime }

// Parent returns the non-owning back-reference to the containing
// directory. Never nil for a file attached to a tree.
func (f *File) Parent() *Directory { return f.parent }

// AssetType returns the type assigned when the file was added, derived
// from its extension via the tree's assettype.Table.
func (f *File) AssetType() assettype.Type { return f.assetType }

// Extension returns the file's lowercase extension, including the dot.
func (f *File) Extension() string { return strings.ToLower(filepath.Ext(f.name)) }

// Path returns the file's current tree-relative path, computed from the
// parent chain rather than stored per-node.
func (f *File) Path() string {
	if f.parent == nil {
		return f.name
	}
	return filepath.Join(f.parent.Path(), f.name)
}
