// Package xsdtree flattens XML Schema documents into an ordered list of
// entries, each addressed by a hierarchical locator, while checking that
// every schema node has one of the shapes the flattening understands.
package xsdtree

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/loader"
	"github.com/jacoelho/xsdtree/internal/traversal"
	"github.com/jacoelho/xsdtree/internal/tree"
)

type (
	// Tree is the flat entry list of one run.
	Tree = tree.Tree
	// Entry is one flattened element, attribute, or group.
	Entry = tree.Entry
	// Fields maps entry field keys to values.
	Fields = tree.Fields
	// Restriction is the facet bundle of a simple type.
	Restriction = tree.Restriction
	// Cache memoizes parsed schema documents between runs.
	Cache = loader.Cache
)

// NewCache returns an empty document cache. A cache may be shared by
// concurrent runs over the same filesystem.
func NewCache() *Cache {
	return loader.NewCache()
}

// Flatten loads the schema at location from fsys, together with every
// document it includes or imports, and flattens its top-level elements.
func Flatten(fsys fs.FS, location string, opts Options) (*Tree, error) {
	if fsys == nil {
		return nil, fmt.Errorf("flatten schema %s: nil fs", location)
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("flatten schema %s: %w", location, err)
	}
	schema := path.Base(location)

	docs, err := loader.New(loader.Config{
		FS:     fsys,
		Cache:  resolved.cache,
		Logger: resolved.traversal.Logger,
	}).Load(location)
	if err != nil {
		return nil, errors.StampSchema(err, schema)
	}
	t, err := traversal.Run(docs, resolved.traversal)
	if err != nil {
		return nil, errors.StampSchema(err, schema)
	}
	return t, nil
}

// FlattenFile flattens the schema at a file path. Relative include and
// import locations resolve against the directory holding the file.
func FlattenFile(path string, opts Options) (*Tree, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("flatten schema %s: %w", path, err)
	}
	return Flatten(os.DirFS(dir), base, opts)
}
