// Package report renders flattened trees as tabular rows in several formats.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xsdtree/internal/locator"
	"github.com/jacoelho/xsdtree/internal/tree"
)

// Format names an output encoding.
type Format string

const (
	// FormatCSV writes one comma-separated record per entry under a header.
	FormatCSV Format = "csv"
	// FormatJSON writes an indented JSON array of rows.
	FormatJSON Format = "json"
	// FormatYAML writes a YAML sequence of rows.
	FormatYAML Format = "yaml"
	// FormatMsgpack writes the rows as one msgpack array.
	FormatMsgpack Format = "msgpack"
)

var formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatMsgpack}

// Formats lists the supported format names.
func Formats() []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(formats, f) {
		return "", fmt.Errorf("unknown format %q (supported: %s)", s, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// Row is one entry of one schema.
type Row struct {
	Source      string            `json:"source" yaml:"source" msgpack:"source"`
	Path        string            `json:"path" yaml:"path" msgpack:"path"`
	Levels      []string          `json:"levels" yaml:"levels" msgpack:"levels"`
	Kind        string            `json:"kind" yaml:"kind" msgpack:"kind"`
	Fields      map[string]string `json:"fields" yaml:"fields" msgpack:"fields"`
	Base        string            `json:"base,omitempty" yaml:"base,omitempty" msgpack:"base,omitempty"`
	Enumeration []string          `json:"enumeration,omitempty" yaml:"enumeration,omitempty" msgpack:"enumeration,omitempty"`
	Facets      []tree.Facet      `json:"facets,omitempty" yaml:"facets,omitempty" msgpack:"facets,omitempty"`
}

// Rows converts the entries of t into rows tagged with source. Levels has
// one slot per reserved locator depth, empty past the entry's depth.
func Rows(source string, t *tree.Tree, alloc locator.Allocator) ([]Row, error) {
	keys := alloc.Keys()
	rows := make([]Row, 0, t.Len())
	for _, e := range t.Entries() {
		slots, err := alloc.Slots(e.Locator)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Path(), err)
		}
		levels := make([]string, len(keys))
		for i, k := range keys {
			levels[i] = string(slots[k])
		}
		row := Row{
			Source: source,
			Path:   e.Path(),
			Levels: levels,
			Kind:   string(e.Kind),
			Fields: map[string]string(e.Fields),
		}
		if r := e.Restriction; r != nil {
			row.Base = r.Base
			row.Enumeration = r.Enumeration
			row.Facets = r.Facets
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Header returns the CSV header for depth level columns.
func Header(depth int) []string {
	h := []string{"source", "path"}
	h = append(h, locator.NewAllocator(depth).Keys()...)
	h = append(h, "kind")
	h = append(h, tree.FieldOrder...)
	return append(h, "base", "enumeration", "facets")
}

// Write encodes rows to w. depth fixes the number of CSV level columns.
func Write(w io.Writer, f Format, rows []Row, depth int) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, rows, depth)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(nonNil(rows))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nonNil(rows)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(nonNil(rows))
	}
	return fmt.Errorf("unknown format %q", f)
}

func nonNil(rows []Row) []Row {
	if rows == nil {
		return []Row{}
	}
	return rows
}

func writeCSV(w io.Writer, rows []Row, depth int) error {
	header := Header(depth)
	levels := len(header) - len(tree.FieldOrder) - 6
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if len(r.Levels) > levels {
			return fmt.Errorf("row %s %s: %d levels exceed %d columns", r.Source, r.Path, len(r.Levels), levels)
		}
		record := make([]string, 0, len(header))
		record = append(record, r.Source, r.Path)
		for i := range levels {
			if i < len(r.Levels) {
				record = append(record, r.Levels[i])
			} else {
				record = append(record, "")
			}
		}
		record = append(record, r.Kind)
		for _, k := range tree.FieldOrder {
			record = append(record, r.Fields[k])
		}
		record = append(record,
			r.Base,
			strings.Join(r.Enumeration, tree.EnumerationSeparator),
			joinFacets(r.Facets),
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func joinFacets(facets []tree.Facet) string {
	parts := make([]string, len(facets))
	for i, f := range facets {
		parts[i] = f.Name + "=" + f.Value
	}
	return strings.Join(parts, ";")
}
