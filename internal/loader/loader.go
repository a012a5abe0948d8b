// Package loader reads a root schema and its transitive include/import
// targets into an ordered document collection.
package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sync"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/assert"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
)

var schemaRootAttrs = []string{
	"targetNamespace",
	"elementFormDefault",
	"attributeFormDefault",
	"version",
	"id",
	"blockDefault",
	"finalDefault",
	"xml:lang",
}

// Document is one parsed and shape-checked schema file.
type Document struct {
	SystemID string
	Root     schemadoc.Node
}

// Collection is the root document followed by its include/import targets in
// depth-first discovery order, each present once.
type Collection []*Document

// Root returns the root schema document.
func (c Collection) Root() *Document {
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// SystemIDs lists the document system IDs in collection order.
func (c Collection) SystemIDs() []string {
	ids := make([]string, len(c))
	for i, d := range c {
		ids[i] = d.SystemID
	}
	return ids
}

// Cache memoizes parsed documents by system ID. Cached documents are never
// modified, so a cache may be shared between runs.
type Cache struct {
	mu   sync.Mutex
	docs map[string]*Document
}

// NewCache returns an empty document cache.
func NewCache() *Cache {
	return &Cache{docs: make(map[string]*Document)}
}

func (c *Cache) get(systemID string) (*Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[systemID]
	return doc, ok
}

func (c *Cache) put(doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.SystemID] = doc
}

// Len reports the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Config configures a Loader.
type Config struct {
	FS     fs.FS
	Cache  *Cache
	Logger *slog.Logger
}

// Loader loads schema collections from a filesystem.
type Loader struct {
	fsys  fs.FS
	cache *Cache
	log   *slog.Logger
}

// New creates a loader. A nil cache is replaced with a fresh one.
func New(cfg Config) *Loader {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{fsys: cfg.FS, cache: cache, log: log}
}

// Load reads the schema at location and every document it transitively
// includes or imports.
func (l *Loader) Load(location string) (Collection, error) {
	if l == nil || l.fsys == nil {
		return nil, fmt.Errorf("load schema %s: no filesystem configured", location)
	}
	systemID := path.Clean(location)
	if !fs.ValidPath(systemID) {
		return nil, errors.Newf(errors.ErrSchemaLoad, location, "invalid schema path")
	}
	var out Collection
	if err := l.load(systemID, make(map[string]bool), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) load(systemID string, seen map[string]bool, out *Collection) error {
	if seen[systemID] {
		return nil
	}
	seen[systemID] = true

	doc, err := l.document(systemID)
	if err != nil {
		return err
	}
	*out = append(*out, doc)

	for _, directive := range doc.Root.Children() {
		target, ok, err := directiveTarget(doc, directive)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := l.load(target, seen, out); err != nil {
			return err
		}
	}
	return nil
}

// directiveTarget returns the system ID an include or import child points to.
// Directives are matched by local name in any namespace.
func directiveTarget(doc *Document, n schemadoc.Node) (string, bool, error) {
	var e assert.Expect
	switch n.Local() {
	case "include":
		e = assert.Expect{Required: []string{"schemaLocation"}, Optional: []string{"id"}, Content: assert.ContentNone}
	case "import":
		e = assert.Expect{Required: []string{"schemaLocation"}, Optional: []string{"namespace", "id"}, Content: assert.ContentNone}
	default:
		return "", false, nil
	}
	if err := assert.Node(n, e); err != nil {
		return "", false, err
	}
	location := n.AttrValue("schemaLocation")
	target, err := resolveSystemID(doc.SystemID, location)
	if err != nil {
		return "", false, errors.New(errors.ErrSchemaLoad, err.Error(), n.Position()).WithSnapshot(n.Excerpt())
	}
	return target, true, nil
}

func (l *Loader) document(systemID string) (*Document, error) {
	if doc, ok := l.cache.get(systemID); ok {
		l.log.Debug("schema document cached", "system_id", systemID)
		return doc, nil
	}
	data, err := fs.ReadFile(l.fsys, systemID)
	if err != nil {
		return nil, errors.Newf(errors.ErrSchemaLoad, systemID, "read schema: %v", err)
	}
	root, err := schemadoc.Parse(data, systemID)
	if err != nil {
		return nil, errors.Newf(errors.ErrSchemaLoad, systemID, "%v", err)
	}
	err = assert.Node(root, assert.Expect{
		Tags:     []string{"schema"},
		Optional: schemaRootAttrs,
		Content:  assert.ContentChildren,
	})
	if err != nil {
		return nil, err
	}
	doc := &Document{SystemID: systemID, Root: root}
	l.cache.put(doc)
	l.log.Debug("schema document loaded", "system_id", systemID, "bytes", len(data))
	return doc, nil
}
