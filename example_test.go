package xsdtree_test

import (
	"fmt"
	"testing/fstest"

	"github.com/jacoelho/xsdtree"
	"github.com/jacoelho/xsdtree/errors"
)

func ExampleFlatten() {
	schemaXML := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" elementFormDefault="qualified">
  <xs:element name="order">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string"/>
        <xs:choice>
          <xs:element name="email" type="xs:string"/>
          <xs:element name="phone" type="xs:string"/>
        </xs:choice>
      </xs:sequence>
      <xs:attribute name="version" type="xs:string"/>
    </xs:complexType>
  </xs:element>
</xs:schema>`

	fsys := fstest.MapFS{
		"order.xsd": &fstest.MapFile{Data: []byte(schemaXML)},
	}

	t, err := xsdtree.Flatten(fsys, "order.xsd", xsdtree.NewOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, e := range t.Entries() {
		fmt.Println(e.Path(), e.Kind, e.Field("name"))
	}
	// Output:
	// 1 element order
	// 1.1 element id
	// 1.2.a element email
	// 1.2.b element phone
	// 1.@version attribute version
}

func ExampleFlatten_violation() {
	schemaXML := `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="order">
    <xs:complexType>
      <xs:all>
        <xs:element name="id" type="xs:string"/>
      </xs:all>
    </xs:complexType>
  </xs:element>
</xs:schema>`

	fsys := fstest.MapFS{
		"order.xsd": &fstest.MapFile{Data: []byte(schemaXML)},
	}

	_, err := xsdtree.Flatten(fsys, "order.xsd", xsdtree.NewOptions())
	if v, ok := errors.AsViolation(err); ok {
		fmt.Println(v.Schema, v.Code, v.Path)
	}
	// Output: order.xsd shape-tag order.xsd:/xs:schema/xs:element/xs:complexType/xs:all
}
