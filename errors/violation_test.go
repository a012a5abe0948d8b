package errors

import (
	"fmt"
	"testing"
)

func TestViolationErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		want string
		v    Violation
	}{
		{
			name: "message only",
			v:    Violation{Code: "shape-tag", Message: "unexpected tag"},
			want: "[shape-tag] unexpected tag",
		},
		{
			name: "with path",
			v:    Violation{Code: "shape-tag", Message: "unexpected tag", Path: "/xs:schema/xs:element[1]"},
			want: "[shape-tag] unexpected tag at /xs:schema/xs:element[1]",
		},
		{
			name: "with schema",
			v:    Violation{Code: "shape-tag", Schema: "F02.xsd", Message: "unexpected tag"},
			want: "F02.xsd: [shape-tag] unexpected tag",
		},
		{
			name: "with all",
			v: Violation{
				Code:     "shape-attribute-missing",
				Schema:   "F02.xsd",
				Message:  "missing attribute name",
				Path:     "/xs:schema/xs:attribute[1]",
				Snapshot: `<xs:attribute type="xs:string"/>`,
			},
			want: `F02.xsd: [shape-attribute-missing] missing attribute name at /xs:schema/xs:attribute[1] (node: <xs:attribute type="xs:string"/>)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNilViolation(t *testing.T) {
	var v *Violation
	if got := v.Error(); got != "violation <nil>" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestAsViolation(t *testing.T) {
	base := Newf(ErrReferenceCycle, "/xs:schema", "cycle through %s", "A")
	wrapped := fmt.Errorf("flatten: %w", base)

	got, ok := AsViolation(wrapped)
	if !ok {
		t.Fatal("AsViolation() ok = false")
	}
	if got != base {
		t.Fatalf("AsViolation() = %p, want %p", got, base)
	}
	if !HasCode(wrapped, ErrReferenceCycle) {
		t.Fatal("HasCode() = false")
	}
	if HasCode(wrapped, ErrTag) {
		t.Fatal("HasCode(ErrTag) = true")
	}
	if _, ok := AsViolation(fmt.Errorf("plain")); ok {
		t.Fatal("AsViolation(plain) ok = true")
	}
	if _, ok := AsViolation(nil); ok {
		t.Fatal("AsViolation(nil) ok = true")
	}
}

func TestStampSchema(t *testing.T) {
	v := New(ErrTag, "bad tag", "")
	err := StampSchema(fmt.Errorf("wrap: %w", v), "root.xsd")
	if v.Schema != "root.xsd" {
		t.Fatalf("Schema = %q, want root.xsd", v.Schema)
	}
	StampSchema(err, "other.xsd")
	if v.Schema != "root.xsd" {
		t.Fatalf("Schema overwritten: %q", v.Schema)
	}
}

func TestStampPath(t *testing.T) {
	v := New(ErrLocatorDepth, "too deep", "")
	StampPath(v, "root.xsd:/xs:schema/xs:element")
	if v.Path != "root.xsd:/xs:schema/xs:element" {
		t.Fatalf("Path = %q", v.Path)
	}
	StampPath(v, "elsewhere")
	if v.Path != "root.xsd:/xs:schema/xs:element" {
		t.Fatalf("Path overwritten: %q", v.Path)
	}
	if err := StampPath(nil, "x"); err != nil {
		t.Fatalf("StampPath(nil) = %v", err)
	}
}
