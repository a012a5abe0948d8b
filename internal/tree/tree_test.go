package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xsdtree/errors"
	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/schemadoc"
)

func nodes(t *testing.T, body string) []schemadoc.Node {
	t.Helper()
	doc := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">` + body + `</xs:schema>`
	root, err := schemadoc.Parse([]byte(doc), "test.xsd")
	require.NoError(t, err)
	return root.Children()
}

func TestEnterAppends(t *testing.T) {
	n := nodes(t, `<xs:element name="A" type="AType" minOccurs="0"/>`)[0]
	tr := New()

	h, err := tr.Enter(n, locator.Locator{"1"}, KindElement, MergeContext{Target: NoEntry})
	require.NoError(t, err)
	assert.Equal(t, Handle(0), h)
	require.Equal(t, 1, tr.Len())

	e := tr.Entries()[0]
	assert.Equal(t, "1", e.Path())
	assert.Equal(t, KindElement, e.Kind)
	want := Fields{"name": "A", "type": "AType", "minOccurs": "0"}
	if diff := cmp.Diff(want, e.Fields); diff != "" {
		t.Fatalf("Fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"name", "type", "minOccurs"}, e.Keys())
}

func TestEnterMergesReferencedDefinition(t *testing.T) {
	ns := nodes(t, `<xs:element ref="B" minOccurs="0"/><xs:element name="B" type="BType"/>`)
	tr := New()

	h, err := tr.Enter(ns[0], locator.Locator{"1"}, KindElement, MergeContext{Target: NoEntry})
	require.NoError(t, err)

	merged, err := tr.Enter(ns[1], locator.Locator{"1"}, KindElement, MergeContext{Target: h, Reference: "B"})
	require.NoError(t, err)
	assert.Equal(t, h, merged)
	require.Equal(t, 1, tr.Len())
	assert.Equal(t, Fields{"ref": "B", "minOccurs": "0", "type": "BType"}, tr.Entries()[0].Fields)
}

func TestEnterMergesControlAttribute(t *testing.T) {
	ns := nodes(t, `<xs:element name="TYPE_CONTRACT"/><xs:attribute name="CTYPE" use="required"/><xs:attribute name="CODE"/>`)
	tr := New()

	h, err := tr.Enter(ns[0], locator.Locator{"1"}, KindElement, MergeContext{Target: NoEntry})
	require.NoError(t, err)

	ctx := MergeContext{Target: h, ControlAttribute: "CTYPE"}
	got, err := tr.Enter(ns[1], locator.Locator{"1", "@CTYPE"}, KindAttribute, ctx)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	code, err := tr.Enter(ns[2], locator.Locator{"1", "@CODE"}, KindAttribute, ctx)
	require.NoError(t, err)
	assert.Equal(t, Handle(1), code)

	assert.Equal(t, Fields{"name": "TYPE_CONTRACT", "use": "required"}, tr.Entries()[0].Fields)
	assert.Equal(t, "1.@CODE", tr.Entries()[1].Path())
}

func TestSetConflict(t *testing.T) {
	tr := New()
	h, err := tr.Append(&Entry{Locator: locator.Locator{"1"}, Kind: KindElement, Fields: Fields{"annotation": "a"}}, "")
	require.NoError(t, err)

	err = tr.Set(h, Fields{"annotation": "b"}, "here")
	assert.True(t, errors.HasCode(err, errors.ErrMergeConflict), "got %v", err)
	assert.Equal(t, "a", tr.Entries()[0].Field("annotation"))

	require.NoError(t, tr.Set(h, Fields{"unique": "@ID"}, "here"))
	assert.Equal(t, "@ID", tr.Entries()[0].Field("unique"))

	err = tr.Set(Handle(7), Fields{"x": "y"}, "here")
	assert.True(t, errors.HasCode(err, errors.ErrMergeConflict))
}

func TestSetConflictLeavesEntryUntouched(t *testing.T) {
	tr := New()
	h, err := tr.Append(&Entry{Locator: locator.Locator{"1"}, Fields: Fields{"type": "T"}}, "")
	require.NoError(t, err)

	err = tr.Set(h, Fields{"fixed": "X", "type": "U"}, "")
	require.Error(t, err)
	_, has := tr.Entries()[0].Fields["fixed"]
	assert.False(t, has)
}

func TestDuplicateLocator(t *testing.T) {
	tr := New()
	_, err := tr.Append(&Entry{Locator: locator.Locator{"1", "a"}}, "")
	require.NoError(t, err)

	_, err = tr.Append(&Entry{Locator: locator.Locator{"1", "a"}}, "there")
	assert.True(t, errors.HasCode(err, errors.ErrDuplicateLocator), "got %v", err)
}

func TestSetRestriction(t *testing.T) {
	tr := New()
	h, err := tr.Append(&Entry{Locator: locator.Locator{"1"}}, "")
	require.NoError(t, err)

	r := &Restriction{Base: "xs:string", Enumeration: []string{"A", "B"}}
	require.NoError(t, tr.SetRestriction(h, r, ""))
	assert.Same(t, r, tr.Entries()[0].Restriction)

	err = tr.SetRestriction(h, &Restriction{Base: "xs:token"}, "")
	assert.True(t, errors.HasCode(err, errors.ErrMergeConflict))
}

func TestEnumerationRoundTrip(t *testing.T) {
	r := &Restriction{Enumeration: []string{"WORKS", "SUPPLIES", "SERVICES"}}
	joined := r.JoinEnumeration()
	assert.Equal(t, "WORKS|SUPPLIES|SERVICES", joined)
	assert.Equal(t, r.Enumeration, SplitEnumeration(joined))
	assert.Nil(t, SplitEnumeration(""))

	var none *Restriction
	assert.Equal(t, "", none.JoinEnumeration())
}

func TestKeysOrdersUnknownLast(t *testing.T) {
	e := &Entry{Fields: Fields{"zeta": "1", "annotation": "doc", "name": "A", "alpha": "2"}}
	assert.Equal(t, []string{"name", "annotation", "alpha", "zeta"}, e.Keys())
}
