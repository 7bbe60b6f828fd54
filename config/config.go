// Package config loads the optional YAML configuration file that
// overrides the default asset-type table, sibling sort order, MOVED
// heuristic window, and metrics listener address. Loading follows
// colebrumley/srvrmgr's internal/config/loader.go shape: unmarshal into a
// typed struct, fill defaults, then validate.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/1Serg777/file-watcher/assettype"
	"github.com/1Serg777/file-watcher/tree"
)

// Config is the on-disk shape of the optional configuration file.
type Config struct {
	// AssetTypes overrides/extends the default extension table. Keys must
	// be lowercase and start with a dot.
	AssetTypes map[string]string `yaml:"asset_types" validate:"omitempty,dive,keys,startswith=.,endkeys"`

	// Sort picks the sibling ordering applied to every directory.
	Sort SortConfig `yaml:"sort"`

	// MoveWindow is how long the normalizer waits for an ADDED to pair
	// with a stashed REMOVED before flushing it as a plain REMOVED.
	MoveWindow time.Duration `yaml:"move_window" validate:"omitempty,gt=0"`

	// MetricsAddr, if set, is the address the optional metrics/health
	// HTTP server listens on (e.g. "127.0.0.1:9090").
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// SortConfig selects a sort field and direction.
type SortConfig struct {
	Field     string `yaml:"field" validate:"omitempty,oneof=alphabetical last_write_time"`
	Direction string `yaml:"direction" validate:"omitempty,oneof=ascending descending"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Sort: SortConfig{
			Field:     "alphabetical",
			Direction: "ascending",
		},
		MoveWindow: 100 * time.Millisecond,
	}
}

// Load reads and validates a YAML configuration file, filling in any field
// the document leaves zero-valued with Default()'s value.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config file %q", path)
	}

	// Parse into a fresh value so zero fields in the document don't
	// clobber Default()'s values, then merge by hand for the few fields
	// that can legitimately be left unset.
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config file %q", path)
	}
	cfg.mergeFrom(parsed)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, errors.Wrapf(err, "validating config file %q", path)
	}
	return cfg, nil
}

func (c *Config) mergeFrom(o Config) {
	if len(o.AssetTypes) > 0 {
		if c.AssetTypes == nil {
			c.AssetTypes = map[string]string{}
		}
		for k, v := range o.AssetTypes {
			c.AssetTypes[k] = v
		}
	}
	if o.Sort.Field != "" {
		c.Sort.Field = o.Sort.Field
	}
	if o.Sort.Direction != "" {
		c.Sort.Direction = o.Sort.Direction
	}
	if o.MoveWindow != 0 {
		c.MoveWindow = o.MoveWindow
	}
	if o.MetricsAddr != "" {
		c.MetricsAddr = o.MetricsAddr
	}
}

// AssetTypeTable builds the effective extension→AssetType table: the
// built-in defaults, overridden/extended by the config document.
func (c Config) AssetTypeTable() (assettype.Table, error) {
	table := assettype.Default()
	for ext, name := range c.AssetTypes {
		at, err := parseAssetType(name)
		if err != nil {
			return nil, errors.Wrapf(err, "asset_types[%q]", ext)
		}
		table[ext] = at
	}
	return table, nil
}

func parseAssetType(name string) (assettype.Type, error) {
	switch name {
	case "MODEL":
		return assettype.Model, nil
	case "SHADER":
		return assettype.Shader, nil
	case "TEXTURE":
		return assettype.Texture, nil
	case "TEXT_DOC":
		return assettype.TextDoc, nil
	case "UNDEFINED":
		return assettype.Undefined, nil
	default:
		return assettype.Undefined, errors.Errorf("unknown asset type %q", name)
	}
}

// SortType translates the config's field/direction pair into a tree.SortType.
func (c Config) SortType() (tree.SortType, error) {
	return tree.ParseSortType(c.Sort.Field, c.Sort.Direction)
}
