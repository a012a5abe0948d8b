package traversal

import (
	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/annotation"
	"github.com/jacoelho/xsdtree/internal/assert"
	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/resolve"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
	"github.com/jacoelho/xsdtree/internal/tree"
)

var (
	typeDefinitions = []string{"complexType", "simpleType"}
	modelGroups     = []string{"choice", "sequence"}
)

func (e *engine) sequence(n schemadoc.Node, s scope) error {
	if err := assert.Node(n, assert.Expect{Tags: []string{"sequence"}}); err != nil {
		return err
	}
	_, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return err
	}
	return e.members(rest, s, e.cfg.MaxSequenceChildren, position)
}

func (e *engine) choice(n schemadoc.Node, s scope) error {
	if err := assert.Node(n, assert.Expect{Tags: []string{"choice"}, Optional: []string{"maxOccurs"}}); err != nil {
		return err
	}
	_, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return err
	}
	return e.members(rest, s, e.cfg.MaxChoiceChildren, locator.Letter)
}

// position returns the integer marker of the i-th (0-based) sequence member.
func position(i int) locator.Marker {
	return locator.Integer(i + 1)
}

// members descends into the particles of a model group, one depth below it.
// marker maps the 0-based member index to its locator marker.
func (e *engine) members(n schemadoc.Node, s scope, limit int, marker func(int) locator.Marker) error {
	children, err := assert.Children(n, assert.Expect{Min: 1, Max: limit, Tags: particleTags, NameOnly: true})
	if err != nil {
		return err
	}
	depth := s.depth + 1
	for i, c := range children {
		loc, err := e.alloc.Set(s.loc, depth, marker(i))
		if err != nil {
			return errors.StampPath(err, c.Position())
		}
		if err := e.visit(c, scope{depth: depth, loc: loc, entry: s.entry, kind: s.kind}); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) element(n schemadoc.Node, s scope) error {
	err := assert.Node(n, assert.Expect{
		Tags:     []string{"element"},
		Disjoint: []string{"name", "ref"},
		Optional: []string{"type", "minOccurs", "maxOccurs"},
	})
	if err != nil {
		return err
	}
	h, err := e.tree.Enter(n, s.loc, tree.KindElement, tree.MergeContext{Target: s.entry, Reference: s.reference})
	if err != nil {
		return err
	}
	x, rest, err := annotation.Extract(n, annotation.Documentation, annotation.Unique)
	if err != nil {
		return err
	}
	if err := e.setFields(h, x.Fields(), n); err != nil {
		return err
	}

	inner := s.child(h, tree.KindElement)
	inline, ok, err := assert.Optional(rest, assert.Expect{Tags: typeDefinitions, NameOnly: true})
	if err != nil {
		return err
	}
	if ok {
		if err := e.visit(inline, inner); err != nil {
			return err
		}
	}
	return e.follow(rest, inner, resolve.Request{
		TypeTags: typeDefinitions,
		RefTags:  []string{"element"},
	})
}

func (e *engine) group(n schemadoc.Node, s scope) error {
	err := assert.Node(n, assert.Expect{
		Tags:     []string{"group"},
		Disjoint: []string{"name", "ref"},
		Optional: []string{"minOccurs", "maxOccurs"},
	})
	if err != nil {
		return err
	}
	h, err := e.tree.Enter(n, s.loc, tree.KindGroup, tree.MergeContext{Target: s.entry, Reference: s.reference})
	if err != nil {
		return err
	}
	x, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return err
	}
	if err := e.setFields(h, x.Fields(), n); err != nil {
		return err
	}

	inner := s.child(h, tree.KindGroup)
	inline, ok, err := assert.Optional(rest, assert.Expect{Tags: modelGroups, NameOnly: true})
	if err != nil {
		return err
	}
	if ok {
		if err := e.visit(inline, inner); err != nil {
			return err
		}
	}
	return e.follow(rest, inner, resolve.Request{RefTags: []string{"group"}})
}

// enterDefinition returns the entry a type definition contributes to. A
// definition reached by reference merges into the referencing entry.
func (e *engine) enterDefinition(n schemadoc.Node, s scope) (tree.Handle, error) {
	if !s.register {
		return s.entry, nil
	}
	return e.tree.Enter(n, s.loc, s.kind, tree.MergeContext{Target: s.entry, Reference: s.reference})
}

func (e *engine) complexType(n schemadoc.Node, s scope) error {
	if err := assert.Node(n, assert.Expect{Tags: []string{"complexType"}, Optional: []string{"name", "mixed"}}); err != nil {
		return err
	}
	h, err := e.enterDefinition(n, s)
	if err != nil {
		return err
	}
	x, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return err
	}
	if err := e.setFields(h, x.Fields(), n); err != nil {
		return err
	}

	children, err := assert.Children(rest, assert.Expect{
		Max:      assert.Unbounded,
		Tags:     []string{"attribute", "choice", "complexContent", "group", "sequence", "simpleContent"},
		NameOnly: true,
	})
	if err != nil {
		return err
	}
	if err := singleContentModel(rest, children); err != nil {
		return err
	}
	inner := s.child(h, s.kind)
	for _, c := range children {
		if err := e.visit(c, inner); err != nil {
			return err
		}
	}
	return nil
}

// singleContentModel rejects more than one non-attribute child.
func singleContentModel(parent schemadoc.Node, children []schemadoc.Node) error {
	var models []string
	for _, c := range children {
		if !c.Is("attribute") {
			models = append(models, c.QName())
		}
	}
	if len(models) > 1 {
		return errors.Newf(errors.ErrCardinality, parent.Position(), "expected at most one content model, found %d", len(models)).WithSnapshot(parent.Excerpt())
	}
	return nil
}

func (e *engine) simpleType(n schemadoc.Node, s scope) error {
	if err := assert.Node(n, assert.Expect{Tags: []string{"simpleType"}, Optional: []string{"name"}}); err != nil {
		return err
	}
	h, err := e.enterDefinition(n, s)
	if err != nil {
		return err
	}
	x, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return err
	}
	if err := e.setFields(h, x.Fields(), n); err != nil {
		return err
	}
	restriction, err := assert.Child(rest, assert.Expect{Count: 1, Tags: []string{"restriction"}, NameOnly: true}, 0)
	if err != nil {
		return err
	}
	r, err := annotation.Restriction(restriction)
	if err != nil {
		return err
	}
	return e.tree.SetRestriction(h, r, restriction.Position())
}

func (e *engine) attribute(n schemadoc.Node, s scope) error {
	err := assert.Node(n, assert.Expect{
		Tags:     []string{"attribute"},
		Required: []string{"name"},
		Optional: []string{"type", "use", "fixed"},
	})
	if err != nil {
		return err
	}
	depth := s.depth + 1
	loc, err := e.alloc.Set(s.loc, depth, locator.Attribute(n.AttrValue("name")))
	if err != nil {
		return errors.StampPath(err, n.Position())
	}
	h, err := e.tree.Enter(n, loc, tree.KindAttribute, tree.MergeContext{
		Target:           s.entry,
		Reference:        s.reference,
		ControlAttribute: e.cfg.ControlAttribute,
	})
	if err != nil {
		return err
	}
	x, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return err
	}
	if err := e.setFields(h, x.Fields(), n); err != nil {
		return err
	}

	inner := scope{depth: depth, loc: loc, entry: h, kind: tree.KindAttribute}
	inline, ok, err := assert.Optional(rest, assert.Expect{Tags: []string{"simpleType"}, NameOnly: true})
	if err != nil {
		return err
	}
	if ok {
		if err := e.visit(inline, inner); err != nil {
			return err
		}
	}
	return e.follow(rest, inner, resolve.Request{TypeTags: []string{"simpleType"}, AllowNone: true})
}

// derivation validates the single extension or restriction child of a
// content node. Its base is checked but not followed.
func derivation(n schemadoc.Node) (schemadoc.Node, error) {
	_, rest, err := annotation.Extract(n, annotation.Documentation)
	if err != nil {
		return schemadoc.Node{}, err
	}
	return assert.Child(rest, assert.Expect{
		Count:    1,
		Tags:     []string{"extension", "restriction"},
		Required: []string{"base"},
	}, 0)
}

func (e *engine) simpleContent(n schemadoc.Node, s scope) error {
	if err := assert.Node(n, assert.Expect{Tags: []string{"simpleContent"}}); err != nil {
		return err
	}
	d, err := derivation(n)
	if err != nil {
		return err
	}
	_, rest, err := annotation.Extract(d, annotation.Documentation)
	if err != nil {
		return err
	}
	children, err := assert.Children(rest, assert.Expect{Max: assert.Unbounded, Tags: []string{"attribute"}, NameOnly: true})
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := e.visit(c, s.child(s.entry, s.kind)); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) complexContent(n schemadoc.Node, s scope) error {
	if err := assert.Node(n, assert.Expect{Tags: []string{"complexContent"}, Optional: []string{"mixed"}}); err != nil {
		return err
	}
	d, err := derivation(n)
	if err != nil {
		return err
	}
	_, rest, err := annotation.Extract(d, annotation.Documentation)
	if err != nil {
		return err
	}
	tags := []string{"sequence"}
	if d.Is("extension") {
		tags = []string{"attribute", "choice", "group", "sequence"}
	}
	children, err := assert.Children(rest, assert.Expect{Max: assert.Unbounded, Tags: tags, NameOnly: true})
	if err != nil {
		return err
	}
	if err := singleContentModel(rest, children); err != nil {
		return err
	}
	for _, c := range children {
		if err := e.visit(c, s.child(s.entry, s.kind)); err != nil {
			return err
		}
	}
	return nil
}
