// Package traversal walks a schema collection depth first, checking the
// shape of every node and recording its entries in a flat tree.
package traversal

import (
	"log/slog"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/loader"
	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/resolve"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
	"github.com/jacoelho/xsdtree/internal/tree"
)

// Defaults for the structural limits.
const (
	DefaultControlAttribute    = "CTYPE"
	DefaultMaxSequenceChildren = 16
	DefaultMaxChoiceChildren   = 6
)

// Config configures one traversal. Zero limits take their defaults.
type Config struct {
	// Follow searches every loaded document for references and reports the
	// ones that no document defines.
	Follow      bool
	NeverFollow []string
	MaxDepth    int
	// ControlAttribute names the attribute merged into its owning entry.
	// Unlike the limits it has no default: empty disables the merge.
	// xsdtree.Options sets DefaultControlAttribute unless told otherwise.
	ControlAttribute    string
	MaxSequenceChildren int
	MaxChoiceChildren   int
	Logger              *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = locator.DefaultMaxDepth
	}
	if c.MaxSequenceChildren <= 0 {
		c.MaxSequenceChildren = DefaultMaxSequenceChildren
	}
	if c.MaxChoiceChildren <= 0 {
		c.MaxChoiceChildren = DefaultMaxChoiceChildren
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// engine holds the state of one run: the accumulating tree and the
// resolver's in-progress set. It is single-threaded.
type engine struct {
	cfg   Config
	alloc locator.Allocator
	res   *resolve.Resolver
	tree  *tree.Tree
	log   *slog.Logger
}

// scope is what a node inherits from its caller.
type scope struct {
	depth int
	loc   locator.Locator
	// entry is the handle fields of this node are set on.
	entry tree.Handle
	// kind is the kind of the entry that owns this node.
	kind tree.Kind
	// reference is the name the caller followed to reach this node.
	reference string
	// register asks a type definition to enter itself into the tree.
	register bool
}

// Run flattens the top-level elements of the root document of docs.
func Run(docs loader.Collection, cfg Config) (*tree.Tree, error) {
	root := docs.Root()
	if root == nil {
		return nil, errors.New(errors.ErrSchemaLoad, "empty document collection", "")
	}
	cfg = cfg.withDefaults()
	e := &engine{
		cfg:   cfg,
		alloc: locator.NewAllocator(cfg.MaxDepth),
		res:   resolve.New(docs, resolve.Config{Follow: cfg.Follow, NeverFollow: cfg.NeverFollow}),
		tree:  tree.New(),
		log:   cfg.Logger.With("schema", root.SystemID),
	}
	for i, el := range root.Root.Named("element") {
		loc, err := e.alloc.Set(nil, 0, locator.Integer(i+1))
		if err != nil {
			return nil, err
		}
		if err := e.visit(el, scope{loc: loc, entry: tree.NoEntry, kind: tree.KindElement}); err != nil {
			return nil, err
		}
	}
	e.log.Debug("schema flattened", "documents", len(docs), "entries", e.tree.Len())
	return e.tree, nil
}

func (e *engine) visit(n schemadoc.Node, s scope) error {
	kind, ok := KindOf(n)
	if !ok {
		return errors.Newf(errors.ErrUnexpectedNode, n.Position(), "unexpected node %s", n.QName()).WithSnapshot(n.Excerpt())
	}
	switch kind {
	case KindSequence:
		return e.sequence(n, s)
	case KindChoice:
		return e.choice(n, s)
	case KindElement:
		return e.element(n, s)
	case KindGroup:
		return e.group(n, s)
	case KindComplexType:
		return e.complexType(n, s)
	case KindSimpleType:
		return e.simpleType(n, s)
	case KindAttribute:
		return e.attribute(n, s)
	case KindSimpleContent:
		return e.simpleContent(n, s)
	case KindComplexContent:
		return e.complexContent(n, s)
	}
	return errors.Newf(errors.ErrUnexpectedNode, n.Position(), "unhandled node kind %s", kind).WithSnapshot(n.Excerpt())
}

// follow expands the definition n references, if any, as part of the entry
// in s.
func (e *engine) follow(n schemadoc.Node, s scope, req resolve.Request) error {
	target, ok, err := e.res.Resolve(n, req)
	if err != nil || !ok {
		return err
	}
	if err := e.res.Enter(n, target); err != nil {
		return err
	}
	defer e.res.Leave()

	e.log.Debug("following reference",
		"attr", target.Attr,
		"name", target.Name,
		"target", target.Node.Position(),
		"locator", s.loc.String(),
	)
	return e.visit(target.Node, scope{
		depth:     s.depth,
		loc:       s.loc,
		entry:     s.entry,
		kind:      s.kind,
		reference: target.Name,
		register:  true,
	})
}

// child returns the scope of a node nested at the same depth under the
// entry h.
func (s scope) child(h tree.Handle, kind tree.Kind) scope {
	return scope{depth: s.depth, loc: s.loc, entry: h, kind: kind}
}

func (e *engine) setFields(h tree.Handle, fields tree.Fields, n schemadoc.Node) error {
	if len(fields) == 0 {
		return nil
	}
	return e.tree.Set(h, fields, n.Position())
}
