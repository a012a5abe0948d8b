// Package locator allocates the per-depth position markers that identify a
// tree entry's structural path.
package locator

import (
	"strconv"
	"strings"

	"github.com/jacoelho/xsdtree/errors"
)

// DefaultMaxDepth is the number of depth slots reserved by default.
const DefaultMaxDepth = 16

// AttributeMarker prefixes the marker of attribute entries.
const AttributeMarker = "@"

// Marker is the position of a node among its siblings at one depth.
type Marker string

// Integer returns the marker of the i-th (1-based) member of a sequence.
func Integer(i int) Marker {
	return Marker(strconv.Itoa(i))
}

// Letter returns the marker of the i-th (0-based) alternative of a choice:
// a, b, ..., z, aa, ab, ...
func Letter(i int) Marker {
	var buf []byte
	for i >= 0 {
		buf = append(buf, byte('a'+i%26))
		i = i/26 - 1
	}
	for l, r := 0, len(buf)-1; l < r; l, r = l+1, r-1 {
		buf[l], buf[r] = buf[r], buf[l]
	}
	return Marker(buf)
}

// Attribute returns the marker of an attribute entry. Attributes are
// unordered, so they share the attribute marker qualified by their name.
func Attribute(name string) Marker {
	return Marker(AttributeMarker + name)
}

// IsAttribute reports whether m marks an attribute.
func (m Marker) IsAttribute() bool {
	return strings.HasPrefix(string(m), AttributeMarker)
}

// Locator is the ordered sequence of markers from depth 0 down to an entry.
type Locator []Marker

// Depth returns the depth of the last marker, or -1 for an empty locator.
func (l Locator) Depth() int {
	return len(l) - 1
}

// String renders the locator dot-joined.
func (l Locator) String() string {
	parts := make([]string, len(l))
	for i, m := range l {
		parts[i] = string(m)
	}
	return strings.Join(parts, ".")
}

// Allocator maps depths to reserved slots.
type Allocator struct {
	MaxDepth int
}

// NewAllocator returns an allocator with maxDepth slots; non-positive values
// use DefaultMaxDepth.
func NewAllocator(maxDepth int) Allocator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return Allocator{MaxDepth: maxDepth}
}

// KeyForDepth returns the reserved slot name for depth.
func (a Allocator) KeyForDepth(depth int) (string, error) {
	if depth < 0 || depth >= a.MaxDepth {
		return "", errors.Newf(errors.ErrLocatorDepth, "", "depth %d outside the %d reserved locator slots", depth, a.MaxDepth)
	}
	return "level" + strconv.Itoa(depth), nil
}

// Keys returns every reserved slot name in depth order.
func (a Allocator) Keys() []string {
	keys := make([]string, a.MaxDepth)
	for d := range keys {
		keys[d] = "level" + strconv.Itoa(d)
	}
	return keys
}

// Set returns a copy of loc truncated to depth with m placed at depth.
func (a Allocator) Set(loc Locator, depth int, m Marker) (Locator, error) {
	if _, err := a.KeyForDepth(depth); err != nil {
		return nil, err
	}
	if depth > len(loc) {
		return nil, errors.Newf(errors.ErrLocatorDepth, "", "depth %d skips slots after %q", depth, loc.String())
	}
	out := make(Locator, depth+1)
	copy(out, loc[:depth])
	out[depth] = m
	return out, nil
}

// Slots maps each reserved slot name up to the locator depth to its marker.
func (a Allocator) Slots(loc Locator) (map[string]Marker, error) {
	slots := make(map[string]Marker, len(loc))
	for d, m := range loc {
		key, err := a.KeyForDepth(d)
		if err != nil {
			return nil, err
		}
		slots[key] = m
	}
	return slots, nil
}
