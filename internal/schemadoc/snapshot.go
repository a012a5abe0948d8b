package schemadoc

import (
	"strings"
	"unicode/utf8"
)

// SnapshotLimit bounds the length of snapshots embedded in violations.
const SnapshotLimit = 120

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

var textEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")

// Snapshot serializes n in a canonical form: xs-prefixed schema tags,
// attributes in document order, no namespace declarations, whitespace-only
// text dropped, and self-closing tags for empty elements. Detached children
// are not part of the snapshot.
func (n Node) Snapshot() string {
	var b strings.Builder
	n.writeSnapshot(&b)
	return b.String()
}

func (n Node) writeSnapshot(b *strings.Builder) {
	if n.el == nil {
		return
	}
	b.WriteByte('<')
	b.WriteString(n.QName())
	for _, a := range n.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		attrEscaper.WriteString(b, a.Value)
		b.WriteByte('"')
	}
	text := strings.TrimSpace(n.text)
	if text == "" && len(n.children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	textEscaper.WriteString(b, text)
	for _, c := range n.children {
		c.writeSnapshot(b)
	}
	b.WriteString("</")
	b.WriteString(n.QName())
	b.WriteByte('>')
}

// Excerpt returns the snapshot truncated to SnapshotLimit runes.
func (n Node) Excerpt() string {
	return Truncate(n.Snapshot(), SnapshotLimit)
}

// Truncate shortens s to at most limit runes, marking the cut with "...".
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
