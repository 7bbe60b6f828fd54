package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/1Serg777/file-watcher/assettype"
	"github.com/1Serg777/file-watcher/tree"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Sort.Field != "alphabetical" || cfg.Sort.Direction != "ascending" {
		t.Errorf("Default().Sort = %+v, want alphabetical/ascending", cfg.Sort)
	}
	if cfg.MoveWindow != 100*time.Millisecond {
		t.Errorf("Default().MoveWindow = %v, want 100ms", cfg.MoveWindow)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("Default().MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want Default()", cfg)
	}
}

func TestLoadMergesOverFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
sort:
  field: last_write_time
move_window: 250ms
asset_types:
  .foo: MODEL
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sort.Field != "last_write_time" {
		t.Errorf("Sort.Field = %q, want last_write_time", cfg.Sort.Field)
	}
	// Direction was left unset in the document, so Default()'s "ascending"
	// should survive the merge.
	if cfg.Sort.Direction != "ascending" {
		t.Errorf("Sort.Direction = %q, want ascending (unset field keeps default)", cfg.Sort.Direction)
	}
	if cfg.MoveWindow != 250*time.Millisecond {
		t.Errorf("MoveWindow = %v, want 250ms", cfg.MoveWindow)
	}
	if cfg.AssetTypes[".foo"] != "MODEL" {
		t.Errorf("AssetTypes[.foo] = %q, want MODEL", cfg.AssetTypes[".foo"])
	}
}

func TestLoadRejectsInvalidSortField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "sort:\n  field: bogus\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("Load() with an invalid sort field should fail validation")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load() of a missing file should return an error")
	}
}

func TestAssetTypeTableOverridesDefaults(t *testing.T) {
	cfg := Default()
	cfg.AssetTypes = map[string]string{".xyz": "SHADER"}

	table, err := cfg.AssetTypeTable()
	if err != nil {
		t.Fatalf("AssetTypeTable: %v", err)
	}
	if table.Detect("a.xyz") != assettype.Shader {
		t.Errorf("Detect(a.xyz) = %v, want Shader", table.Detect("a.xyz"))
	}
	// Defaults survive alongside the override.
	if table.Detect("a.png") != assettype.Texture {
		t.Errorf("Detect(a.png) = %v, want Texture (defaults preserved)", table.Detect("a.png"))
	}
}

func TestAssetTypeTableRejectsUnknownTypeName(t *testing.T) {
	cfg := Default()
	cfg.AssetTypes = map[string]string{".xyz": "NOT_A_REAL_TYPE"}

	if _, err := cfg.AssetTypeTable(); err == nil {
		t.Fatalf("AssetTypeTable() should reject an unknown asset type name")
	}
}

func TestSortType(t *testing.T) {
	cfg := Default()
	cfg.Sort = SortConfig{Field: "last_write_time", Direction: "descending"}

	st, err := cfg.SortType()
	if err != nil {
		t.Fatalf("SortType: %v", err)
	}
	want := tree.SortType{Field: tree.LastWriteTime, Direction: tree.Descending}
	if st != want {
		t.Errorf("SortType() = %v, want %v", st, want)
	}
}
