// Package assettype classifies files by extension. The table is injected
// rather than held as package-level state, so callers can configure their
// own extension mapping instead of sharing one process-wide table.
package assettype

import (
	"path/filepath"
	"strings"
)

// Type tags a File with the kind of asset its extension suggests.
type Type int

const (
	Undefined Type = iota
	Model
	Shader
	Texture
	TextDoc
)

func (t Type) String() string {
	switch t {
	case Model:
		return "MODEL"
	case Shader:
		return "SHADER"
	case Texture:
		return "TEXTURE"
	case TextDoc:
		return "TEXT_DOC"
	default:
		return "UNDEFINED"
	}
}

// Table maps a lowercase, leading-dot extension to the asset type it
// represents.
type Table map[string]Type

// Default returns the built-in extension table.
func Default() Table {
	return Table{
		".png":  Texture,
		".jpg":  Texture,
		".jpeg": Texture,
		".hdr":  Texture,

		".glb":  Model,
		".gltf": Model,
		".mtl":  Model,
		".obj":  Model,
		".stl":  Model,

		".shader": Shader,

		".txt": TextDoc,
	}
}

// Detect returns the asset type for a file name, based on its extension.
// Lookups are case-insensitive; an unrecognized or missing extension
// returns Undefined.
func (t Table) Detect(fileName string) Type {
	ext := strings.ToLower(filepath.Ext(fileName))
	if at, ok := t[ext]; ok {
		return at
	}
	return Undefined
}
