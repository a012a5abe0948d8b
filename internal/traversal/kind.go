package traversal

import "github.com/jacoelho/xsdtree/internal/schemadoc"

// Kind is the closed set of structural node kinds the traversal models.
type Kind uint8

const (
	// KindSequence is an ordered model group.
	KindSequence Kind = iota + 1
	// KindChoice is a model group of alternatives.
	KindChoice
	// KindElement is an element declaration or reference.
	KindElement
	// KindGroup is a named model group or group reference.
	KindGroup
	// KindComplexType is a complex type definition.
	KindComplexType
	// KindSimpleType is a simple type definition.
	KindSimpleType
	// KindAttribute is an attribute declaration.
	KindAttribute
	// KindSimpleContent is a complex type's simple content.
	KindSimpleContent
	// KindComplexContent is a complex type derived from another.
	KindComplexContent
)

var kindNames = [...]string{
	KindSequence:       "sequence",
	KindChoice:         "choice",
	KindElement:        "element",
	KindGroup:          "group",
	KindComplexType:    "complexType",
	KindSimpleType:     "simpleType",
	KindAttribute:      "attribute",
	KindSimpleContent:  "simpleContent",
	KindComplexContent: "complexContent",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf classifies n. Nodes outside the XML Schema namespace and schema
// components the traversal does not model report false.
func KindOf(n schemadoc.Node) (Kind, bool) {
	if !n.IsXSD() {
		return 0, false
	}
	for k, name := range kindNames {
		if name != "" && name == n.Local() {
			return Kind(k), true
		}
	}
	return 0, false
}

// particleTags are the kinds allowed as members of a sequence or choice.
var particleTags = []string{"choice", "element", "group", "sequence"}
