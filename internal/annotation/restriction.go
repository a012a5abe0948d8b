package annotation

import (
	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/assert"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
	"github.com/jacoelho/xsdtree/internal/tree"
)

const enumeration = "enumeration"

// FacetNames lists the facets a restriction may carry.
var FacetNames = []string{
	enumeration,
	"pattern",
	"length",
	"minLength",
	"maxLength",
	"minInclusive",
	"maxInclusive",
	"minExclusive",
	"maxExclusive",
	"totalDigits",
	"fractionDigits",
	"whiteSpace",
}

// Restriction collects the facets of an xs:restriction into a bundle.
// Enumeration values accumulate in document order; every other facet may
// appear once.
func Restriction(n schemadoc.Node) (*tree.Restriction, error) {
	if err := assert.Node(n, assert.Expect{Tags: []string{"restriction"}, Required: []string{"base"}}); err != nil {
		return nil, err
	}
	facets, err := assert.Children(n, assert.Expect{
		Min:     0,
		Max:     assert.Unbounded,
		Tags:    FacetNames,
		Attrs:   []string{"value"},
		Content: assert.ContentNone,
	})
	if err != nil {
		return nil, err
	}

	r := &tree.Restriction{Base: n.AttrValue("base")}
	for _, f := range facets {
		value := f.AttrValue("value")
		if f.Local() == enumeration {
			r.Enumeration = append(r.Enumeration, value)
			continue
		}
		if _, dup := r.Facet(f.Local()); dup {
			return nil, errors.Newf(errors.ErrCardinality, f.Position(), "facet %s repeated", f.Local()).WithSnapshot(f.Excerpt())
		}
		r.Facets = append(r.Facets, tree.Facet{Name: f.Local(), Value: value})
	}
	return r, nil
}
