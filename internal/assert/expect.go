// Package assert checks schema nodes against a declarative expectation of
// their shape and reports the first mismatch as a violation.
package assert

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
)

// Content classifies the child content a node may carry.
type Content uint8

const (
	// ContentAny accepts any content.
	ContentAny Content = iota
	// ContentNone rejects element children and non-whitespace text.
	ContentNone
	// ContentText rejects element children.
	ContentText
	// ContentChildren requires at least one element child.
	ContentChildren
)

func (c Content) String() string {
	switch c {
	case ContentNone:
		return "none"
	case ContentText:
		return "text-only"
	case ContentChildren:
		return "children"
	default:
		return "any"
	}
}

// Unbounded marks Max as having no upper limit.
const Unbounded = -1

// Expect declares the shape a node collection must have.
//
// Count requests an exact cardinality; Min and Max request a range. With
// neither set the collection must hold exactly one node.
type Expect struct {
	Count int
	Min   int
	Max   int

	// Tags lists the allowed XML Schema local names.
	Tags []string

	// Attrs lists attributes that must all be present with nothing else.
	Attrs    []string
	Required []string
	Optional []string
	// Disjoint lists attributes of which exactly one must be present.
	Disjoint []string

	// Snapshots maps collection positions to their exact canonical form.
	Snapshots map[int]string

	Content Content

	// NameOnly skips attribute and content checks.
	NameOnly bool
}

// bounds returns the accepted cardinality range.
func (e Expect) bounds() (lo, hi int) {
	switch {
	case e.Count > 0:
		return e.Count, e.Count
	case e.Min == 0 && e.Max == 0:
		return 1, 1
	default:
		return e.Min, e.Max
	}
}

func (e Expect) validate(path string) error {
	if e.NameOnly {
		if len(e.Attrs)+len(e.Required)+len(e.Optional)+len(e.Disjoint) > 0 || e.Content != ContentAny {
			return errors.New(errors.ErrConfig, "name-only check combined with attribute or content clauses", path)
		}
	}
	if len(e.Attrs) > 0 && len(e.Required)+len(e.Optional)+len(e.Disjoint) > 0 {
		return errors.New(errors.ErrConfig, "flat attribute list combined with required/optional/disjoint sets", path)
	}
	if e.Count > 0 && (e.Min != 0 || e.Max != 0) {
		return errors.New(errors.ErrConfig, "exact count combined with a range", path)
	}
	if e.Count < 0 || e.Min < 0 || (e.Max < 0 && e.Max != Unbounded) {
		return errors.New(errors.ErrConfig, "negative cardinality", path)
	}
	if e.Max != Unbounded && e.Max != 0 && e.Min > e.Max {
		return errors.Newf(errors.ErrConfig, path, "minimum %d exceeds maximum %d", e.Min, e.Max)
	}
	if e.Min > 0 && e.Max == 0 && e.Count == 0 {
		return errors.Newf(errors.ErrConfig, path, "minimum %d without maximum", e.Min)
	}
	return nil
}

func violation(code errors.ErrorCode, n schemadoc.Node, format string, args ...any) error {
	return errors.Newf(code, n.Position(), format, args...).WithSnapshot(n.Excerpt())
}

// Check validates a homogeneous node collection against e.
func Check(nodes []schemadoc.Node, e Expect, where string) error {
	if err := e.validate(where); err != nil {
		return err
	}
	lo, hi := e.bounds()
	if len(nodes) < lo || (hi != Unbounded && len(nodes) > hi) {
		return errors.Newf(errors.ErrCardinality, where, "expected %s node(s), found %d", describeBounds(lo, hi), len(nodes))
	}
	for i, n := range nodes {
		if err := checkNode(n, e); err != nil {
			return err
		}
		if want, ok := e.Snapshots[i]; ok {
			if got := n.Snapshot(); got != want {
				return violation(errors.ErrSnapshot, n, "expected %s", want)
			}
		}
	}
	return nil
}

// Node validates a single node against e.
func Node(n schemadoc.Node, e Expect) error {
	if e.Count == 0 && e.Min == 0 && e.Max == 0 {
		e.Count = 1
	}
	return Check([]schemadoc.Node{n}, e, n.Position())
}

// Children validates every element child of parent against e.
func Children(parent schemadoc.Node, e Expect) ([]schemadoc.Node, error) {
	if len(e.Tags) == 0 {
		return nil, errors.New(errors.ErrConfig, "child selection without allowed tags", parent.Position())
	}
	children := parent.Children()
	if err := Check(children, e, parent.Position()); err != nil {
		return nil, err
	}
	return children, nil
}

// Child validates the element children of parent and returns the one at index.
// An expectation allowing more than one child must pin snapshots so the
// selected position is unambiguous.
func Child(parent schemadoc.Node, e Expect, index int) (schemadoc.Node, error) {
	_, hi := e.bounds()
	if (hi == Unbounded || hi > 1) && len(e.Snapshots) == 0 {
		return schemadoc.Node{}, errors.New(errors.ErrConfig, "single-index selection from a multi-node expectation without snapshots", parent.Position())
	}
	children, err := Children(parent, e)
	if err != nil {
		return schemadoc.Node{}, err
	}
	if index < 0 || index >= len(children) {
		return schemadoc.Node{}, errors.Newf(errors.ErrConfig, parent.Position(), "index %d out of range for %d children", index, len(children))
	}
	return children[index], nil
}

// Optional validates the children of parent allowing zero or one of them and
// returns it when present.
func Optional(parent schemadoc.Node, e Expect) (schemadoc.Node, bool, error) {
	e.Count, e.Min, e.Max = 0, 0, 1
	children, err := Children(parent, e)
	if err != nil || len(children) == 0 {
		return schemadoc.Node{}, false, err
	}
	return children[0], true, nil
}

func describeBounds(lo, hi int) string {
	switch {
	case hi == Unbounded:
		return fmt.Sprintf("at least %d", lo)
	case lo == hi:
		return fmt.Sprintf("exactly %d", lo)
	default:
		return fmt.Sprintf("%d to %d", lo, hi)
	}
}

func checkNode(n schemadoc.Node, e Expect) error {
	if len(e.Tags) > 0 && (!n.IsXSD() || !slices.Contains(e.Tags, n.Local())) {
		return violation(errors.ErrTag, n, "unexpected tag %s (allowed: %s)", n.QName(), strings.Join(e.Tags, ", "))
	}
	if e.NameOnly {
		return nil
	}
	if err := checkAttrs(n, e); err != nil {
		return err
	}
	return checkContent(n, e.Content)
}

func checkAttrs(n schemadoc.Node, e Expect) error {
	required := e.Required
	if len(e.Attrs) > 0 {
		required = e.Attrs
	}
	for _, name := range required {
		if !n.Has(name) {
			return violation(errors.ErrAttributeMissing, n, "missing attribute %s", name)
		}
	}
	if len(e.Disjoint) > 0 {
		var present []string
		for _, name := range e.Disjoint {
			if n.Has(name) {
				present = append(present, name)
			}
		}
		if len(present) != 1 {
			return violation(errors.ErrAttributeDisjoint, n, "expected exactly one of %s, found %d", strings.Join(e.Disjoint, ", "), len(present))
		}
	}
	for _, a := range n.Attrs() {
		if slices.Contains(required, a.Name) || slices.Contains(e.Optional, a.Name) || slices.Contains(e.Disjoint, a.Name) {
			continue
		}
		return violation(errors.ErrAttributeUnexpected, n, "unexpected attribute %s", a.Name)
	}
	return nil
}

func checkContent(n schemadoc.Node, c Content) error {
	switch c {
	case ContentNone:
		if n.HasChildren() || n.HasText() {
			return violation(errors.ErrContent, n, "expected no content")
		}
	case ContentText:
		if n.HasChildren() {
			return violation(errors.ErrContent, n, "expected text-only content")
		}
	case ContentChildren:
		if !n.HasChildren() {
			return violation(errors.ErrContent, n, "expected child elements")
		}
	}
	return nil
}
