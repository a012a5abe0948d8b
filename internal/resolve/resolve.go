// Package resolve follows type and ref attributes to the definitions they
// name in an ordered document collection.
package resolve

import (
	"strings"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/loader"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
	"github.com/jacoelho/xsdtree/internal/state"
)

// Config configures reference resolution.
type Config struct {
	// Follow searches every document of the collection. Without it only the
	// root document is searched and a miss is not an error.
	Follow bool
	// NeverFollow lists reference values, prefixed or local, that are never
	// followed in addition to the XML Schema built-in types.
	NeverFollow []string
}

// Request describes which definitions a node's references may point to.
type Request struct {
	TypeTags []string
	RefTags  []string
	// AllowNone accepts a node with neither a reference nor child content.
	AllowNone bool
}

// Target is a resolved definition.
type Target struct {
	Node schemadoc.Node
	// Name is the referenced name with its prefix stripped.
	Name string
	// Attr is the attribute that was followed: type or ref.
	Attr string
}

func (t Target) key() string {
	return t.Node.Position()
}

// Resolver resolves references against one collection. It is not safe for
// concurrent use.
type Resolver struct {
	docs   loader.Collection
	follow bool
	never  map[string]bool
	active *state.Stack[string]
}

// New creates a resolver over docs.
func New(docs loader.Collection, cfg Config) *Resolver {
	never := make(map[string]bool, len(cfg.NeverFollow))
	for _, name := range cfg.NeverFollow {
		never[name] = true
	}
	return &Resolver{
		docs:   docs,
		follow: cfg.Follow,
		never:  never,
		active: state.NewStack[string](16),
	}
}

// Resolve finds the definition n references. It reports false when n carries
// no followable reference, or when the root document does not define it and
// following is disabled.
func (r *Resolver) Resolve(n schemadoc.Node, req Request) (Target, bool, error) {
	attr, value, err := reference(n, req.AllowNone)
	if err != nil || attr == "" {
		return Target{}, false, err
	}
	tags := req.TypeTags
	if attr == "ref" {
		tags = req.RefTags
	}
	if len(tags) == 0 {
		return Target{}, false, errors.Newf(errors.ErrAttributeUnexpected, n.Position(), "%s references are not followed on xs:%s", attr, n.Local()).WithSnapshot(n.Excerpt())
	}
	if r.builtin(n, value) {
		return Target{}, false, nil
	}

	local := value
	if _, after, ok := strings.Cut(value, ":"); ok {
		local = after
	}
	for i, doc := range r.docs {
		if i > 0 && !r.follow {
			return Target{}, false, nil
		}
		var matches []schemadoc.Node
		for _, def := range doc.Root.Named(tags...) {
			if def.AttrValue("name") == local {
				matches = append(matches, def)
			}
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return Target{Node: matches[0], Name: local, Attr: attr}, true, nil
		default:
			return Target{}, false, errors.Newf(errors.ErrReferenceAmbiguous, n.Position(), "%s %q defined %d times in %s", attr, value, len(matches), doc.SystemID).WithSnapshot(n.Excerpt())
		}
	}
	if !r.follow {
		return Target{}, false, nil
	}
	return Target{}, false, errors.Newf(errors.ErrReferenceUnresolved, n.Position(), "%s %q not defined in any of %d documents", attr, value, len(r.docs)).WithSnapshot(n.Excerpt())
}

// reference returns the followed attribute and its value. Exactly one of
// type, ref, or element children must be present.
func reference(n schemadoc.Node, allowNone bool) (attr, value string, err error) {
	present := 0
	if v, ok := n.Attr("type"); ok {
		attr, value = "type", v
		present++
	}
	if v, ok := n.Attr("ref"); ok {
		attr, value = "ref", v
		present++
	}
	if n.HasChildren() {
		present++
	}
	if present > 1 || (present == 0 && !allowNone) {
		return "", "", errors.Newf(errors.ErrAttributeDisjoint, n.Position(), "expected exactly one of type, ref, or child content, found %d", present).WithSnapshot(n.Excerpt())
	}
	if n.HasChildren() {
		return "", "", nil
	}
	return attr, value, nil
}

// builtin reports whether value names an XML Schema built-in or a
// configured never-follow name.
func (r *Resolver) builtin(n schemadoc.Node, value string) bool {
	if r.never[value] {
		return true
	}
	if _, local, ok := strings.Cut(value, ":"); ok && r.never[local] {
		return true
	}
	space, _, ok := n.Resolve(value)
	return ok && space == schemadoc.XSDNamespace
}

// Enter marks t as being expanded. Entering a definition that is already
// being expanded is a reference cycle.
func (r *Resolver) Enter(from schemadoc.Node, t Target) error {
	key := t.key()
	if r.active.Contains(key) {
		chain := append(append([]string(nil), r.active.Items()...), key)
		return errors.Newf(errors.ErrReferenceCycle, from.Position(), "%s %q leads back to a definition being expanded: %s", t.Attr, t.Name, strings.Join(chain, " -> ")).WithSnapshot(from.Excerpt())
	}
	r.active.Push(key)
	return nil
}

// Leave ends the expansion started by the matching Enter.
func (r *Resolver) Leave() {
	r.active.Pop()
}

// Depth reports how many definitions are being expanded.
func (r *Resolver) Depth() int {
	return r.active.Len()
}
