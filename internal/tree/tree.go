// Package tree holds the flat, ordered entry list produced by a traversal.
package tree

import (
	"slices"
	"strings"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
)

// Kind marks what a tree entry describes.
type Kind string

const (
	// KindElement marks an element declaration or reference.
	KindElement Kind = "element"
	// KindAttribute marks an attribute declaration.
	KindAttribute Kind = "attribute"
	// KindGroup marks a model group definition or reference.
	KindGroup Kind = "group"
)

// Field keys recorded besides the source attributes.
const (
	FieldAnnotation = "annotation"
	FieldUnique     = "unique"
)

// FieldOrder is the presentation order of entry fields.
var FieldOrder = []string{
	"name", "ref", "type", "minOccurs", "maxOccurs", "use", "fixed", "mixed",
	FieldAnnotation, FieldUnique,
}

// Fields maps field keys to values.
type Fields map[string]string

// Facet is one named value restriction.
type Facet struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Value string `json:"value" yaml:"value" msgpack:"value"`
}

// Restriction is the facet bundle of a simple type restriction.
type Restriction struct {
	Base        string
	Enumeration []string
	Facets      []Facet
}

// EnumerationSeparator joins enumeration values in flat renderings.
const EnumerationSeparator = "|"

// JoinEnumeration renders the enumeration values pipe-joined.
func (r *Restriction) JoinEnumeration() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Enumeration, EnumerationSeparator)
}

// SplitEnumeration parses a pipe-joined enumeration rendering.
func SplitEnumeration(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, EnumerationSeparator)
}

// Facet returns the value of a non-enumeration facet.
func (r *Restriction) Facet(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, f := range r.Facets {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Entry is one flattened element, attribute, or group reference.
type Entry struct {
	Locator     locator.Locator
	Kind        Kind
	Fields      Fields
	Restriction *Restriction
}

// Path returns the dot-joined locator.
func (e *Entry) Path() string {
	return e.Locator.String()
}

// Field returns a recorded field value.
func (e *Entry) Field(key string) string {
	return e.Fields[key]
}

// Keys returns the recorded field keys in presentation order, unknown keys
// last in lexical order.
func (e *Entry) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for _, k := range FieldOrder {
		if _, ok := e.Fields[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range e.Fields {
		if !slices.Contains(FieldOrder, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// Handle identifies an entry for later merges.
type Handle int

// NoEntry is the handle of "no entry yet".
const NoEntry Handle = -1

// MergeContext decides whether a node merges into an existing entry.
type MergeContext struct {
	// Target is the entry of the invoking element, attribute, or group.
	Target Handle
	// Reference is the name the invoking node referenced, if any.
	Reference string
	// ControlAttribute names attributes that always merge into Target.
	ControlAttribute string
}

// Tree is the ordered entry list of one run.
type Tree struct {
	entries []*Entry
	paths   map[string]Handle
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{paths: make(map[string]Handle)}
}

// Len reports the number of entries.
func (t *Tree) Len() int {
	return len(t.entries)
}

// Entries returns the entries in traversal order.
func (t *Tree) Entries() []*Entry {
	return t.entries
}

// Entry returns the entry for h.
func (t *Tree) Entry(h Handle) (*Entry, bool) {
	if h < 0 || int(h) >= len(t.entries) {
		return nil, false
	}
	return t.entries[h], true
}

// Enter merges node into ctx.Target when the node is the definition the
// invoking node referenced, or a control attribute; otherwise it appends a
// new entry at loc. It returns the handle later fields must be set on.
func (t *Tree) Enter(node schemadoc.Node, loc locator.Locator, kind Kind, ctx MergeContext) (Handle, error) {
	fields := Fields{}
	for _, a := range node.Attrs() {
		fields[a.Name] = a.Value
	}
	name := fields["name"]
	merge := (ctx.Reference != "" && name == ctx.Reference) ||
		(kind == KindAttribute && ctx.ControlAttribute != "" && name == ctx.ControlAttribute)
	if merge && ctx.Target != NoEntry {
		delete(fields, "name")
		if err := t.Set(ctx.Target, fields, node.Position()); err != nil {
			return NoEntry, err
		}
		return ctx.Target, nil
	}
	return t.Append(&Entry{Locator: loc, Kind: kind, Fields: fields}, node.Position())
}

// Append adds a new entry and returns its handle.
func (t *Tree) Append(e *Entry, where string) (Handle, error) {
	path := e.Path()
	if prev, ok := t.paths[path]; ok {
		return NoEntry, errors.Newf(errors.ErrDuplicateLocator, where, "locator %s already allocated to entry %d", path, prev)
	}
	if e.Fields == nil {
		e.Fields = Fields{}
	}
	h := Handle(len(t.entries))
	t.entries = append(t.entries, e)
	t.paths[path] = h
	return h, nil
}

// Set merges fields into the entry for h. Setting a key the entry already
// holds is a merge conflict.
func (t *Tree) Set(h Handle, fields Fields, where string) error {
	e, ok := t.Entry(h)
	if !ok {
		return errors.Newf(errors.ErrMergeConflict, where, "no entry to merge into")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if old, exists := e.Fields[k]; exists {
			return errors.Newf(errors.ErrMergeConflict, where, "entry %s already has %s=%q, refusing %q", e.Path(), k, old, fields[k])
		}
	}
	for _, k := range keys {
		e.Fields[k] = fields[k]
	}
	return nil
}

// SetRestriction attaches a restriction bundle to the entry for h.
func (t *Tree) SetRestriction(h Handle, r *Restriction, where string) error {
	e, ok := t.Entry(h)
	if !ok {
		return errors.Newf(errors.ErrMergeConflict, where, "no entry to merge restriction into")
	}
	if e.Restriction != nil {
		return errors.Newf(errors.ErrMergeConflict, where, "entry %s already has a restriction", e.Path())
	}
	e.Restriction = r
	return nil
}
