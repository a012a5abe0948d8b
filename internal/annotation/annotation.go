// Package annotation extracts documentation, uniqueness constraints, and
// restriction facets from schema nodes.
package annotation

import (
	"strings"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/assert"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
	"github.com/jacoelho/xsdtree/internal/tree"
)

// Kind names an annotation-bearing child a node may carry.
type Kind string

const (
	// Documentation is an xs:annotation wrapping one xs:documentation.
	Documentation Kind = "annotation"
	// Unique is an xs:unique constraint over the node's children.
	Unique Kind = "unique"
)

// SelectAll is the only selector a uniqueness constraint may use.
const SelectAll = `<xs:selector xpath="*"/>`

// Extracted holds the payload detached from a node.
type Extracted struct {
	Documentation    string
	HasDocumentation bool
	Unique           string
	HasUnique        bool
}

// Fields returns the extracted payload as entry fields.
func (x Extracted) Fields() tree.Fields {
	fields := tree.Fields{}
	if x.HasDocumentation {
		fields[tree.FieldAnnotation] = x.Documentation
	}
	if x.HasUnique {
		fields[tree.FieldUnique] = x.Unique
	}
	return fields
}

// Empty reports whether nothing was extracted.
func (x Extracted) Empty() bool {
	return !x.HasDocumentation && !x.HasUnique
}

// Extract detaches the allowed annotation-bearing children of n and returns
// their payload with the remaining node.
func Extract(n schemadoc.Node, allowed ...Kind) (Extracted, schemadoc.Node, error) {
	var x Extracted
	locals := make([]string, len(allowed))
	for i, k := range allowed {
		locals[i] = string(k)
	}
	for _, k := range allowed {
		found := n.Named(string(k))
		if len(found) == 0 {
			continue
		}
		if len(found) > 1 {
			return x, n, errors.Newf(errors.ErrCardinality, n.Position(), "expected at most one xs:%s, found %d", k, len(found)).WithSnapshot(n.Excerpt())
		}
		var err error
		switch k {
		case Documentation:
			x.Documentation, err = documentation(found[0])
			x.HasDocumentation = err == nil
		case Unique:
			x.Unique, err = uniqueField(found[0])
			x.HasUnique = err == nil
		default:
			err = errors.Newf(errors.ErrConfig, n.Position(), "unknown annotation kind %q", k)
		}
		if err != nil {
			return Extracted{}, n, err
		}
	}
	return x, n.Without(locals...), nil
}

func documentation(ann schemadoc.Node) (string, error) {
	if err := assert.Node(ann, assert.Expect{Tags: []string{"annotation"}, Optional: []string{"id"}, Content: assert.ContentChildren}); err != nil {
		return "", err
	}
	doc, err := assert.Child(ann, assert.Expect{
		Count:    1,
		Tags:     []string{"documentation"},
		Optional: []string{"xml:lang", "source"},
		Content:  assert.ContentText,
	}, 0)
	if err != nil {
		return "", err
	}
	return Normalize(doc.Text()), nil
}

func uniqueField(u schemadoc.Node) (string, error) {
	if err := assert.Node(u, assert.Expect{Tags: []string{"unique"}, Required: []string{"name"}, Content: assert.ContentChildren}); err != nil {
		return "", err
	}
	field, err := assert.Child(u, assert.Expect{
		Count:     2,
		Tags:      []string{"selector", "field"},
		Attrs:     []string{"xpath"},
		Content:   assert.ContentNone,
		Snapshots: map[int]string{0: SelectAll},
	}, 1)
	if err != nil {
		return "", err
	}
	if !field.Is("field") {
		return "", errors.Newf(errors.ErrTag, field.Position(), "expected xs:field, found %s", field.QName()).WithSnapshot(field.Excerpt())
	}
	return field.AttrValue("xpath"), nil
}

// Normalize trims every line of s, rejoins the lines with newlines, and trims
// the result.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
