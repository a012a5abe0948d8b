// Package config loads the flattening command configuration from TOML.
package config

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jacoelho/xsdtree"
	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/report"
	"github.com/jacoelho/xsdtree/internal/traversal"
)

// Schema is one root schema to flatten.
type Schema struct {
	Path string `toml:"path"`
	// Source tags the rows of this schema; defaults to the file name without
	// its extension.
	Source string `toml:"source"`
}

// Config is the command configuration.
type Config struct {
	Follow           bool     `toml:"follow"`
	Root             string   `toml:"root"`
	Format           string   `toml:"format"`
	Output           string   `toml:"output"`
	MaxDepth         int      `toml:"max_depth"`
	NeverFollow      []string `toml:"never_follow"`
	ControlAttribute string   `toml:"control_attribute"`
	Jobs             int      `toml:"jobs"`
	FailFast         bool     `toml:"fail_fast"`
	Schemas          []Schema `toml:"schema"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Root:             ".",
		Format:           string(report.FormatCSV),
		MaxDepth:         locator.DefaultMaxDepth,
		ControlAttribute: traversal.DefaultControlAttribute,
		Jobs:             1,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	for i, s := range cfg.Schemas {
		if strings.TrimSpace(s.Path) == "" {
			return Config{}, fmt.Errorf("%s: [[schema]] %d: missing path", path, i+1)
		}
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be positive, got %d", c.Jobs)
	}
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root must not be empty")
	}
	return nil
}

// AddSchemas appends schema paths given on the command line.
func (c *Config) AddSchemas(paths ...string) {
	for _, p := range paths {
		c.Schemas = append(c.Schemas, Schema{Path: p})
	}
}

// SourceOf returns the row tag of s.
func SourceOf(s Schema) string {
	if s.Source != "" {
		return s.Source
	}
	base := path.Base(s.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Options returns the library options for c.
func (c Config) Options(logger *slog.Logger, cache *xsdtree.Cache) xsdtree.Options {
	return xsdtree.NewOptions().
		WithFollow(c.Follow).
		WithMaxDepth(c.MaxDepth).
		WithNeverFollow(c.NeverFollow...).
		WithControlAttribute(c.ControlAttribute).
		WithLogger(logger).
		WithCache(cache)
}
