package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the clause a schema failed to satisfy.
type ErrorCode string

const (
	// ErrCardinality indicates a node collection has the wrong number of members.
	ErrCardinality ErrorCode = "shape-cardinality"
	// ErrTag indicates a node has a tag name outside the allowed set.
	ErrTag ErrorCode = "shape-tag"
	// ErrAttributeMissing indicates a required attribute is absent.
	ErrAttributeMissing ErrorCode = "shape-attribute-missing"
	// ErrAttributeUnexpected indicates an attribute outside the allowed sets is present.
	ErrAttributeUnexpected ErrorCode = "shape-attribute-unexpected"
	// ErrAttributeDisjoint indicates zero or several members of a disjoint attribute set are present.
	ErrAttributeDisjoint ErrorCode = "shape-attribute-disjoint"
	// ErrSnapshot indicates a node does not serialize to the exact expected form.
	ErrSnapshot ErrorCode = "shape-snapshot"
	// ErrContent indicates a node has the wrong class of child content.
	ErrContent ErrorCode = "shape-content"

	// ErrConfig indicates a check was requested with an invalid combination of clauses.
	ErrConfig ErrorCode = "engine-config"
	// ErrLocatorDepth indicates the schema nests deeper than the reserved locator slots.
	ErrLocatorDepth ErrorCode = "locator-depth"
	// ErrMergeConflict indicates a merge would overwrite a field the entry already holds.
	ErrMergeConflict ErrorCode = "entry-merge-conflict"
	// ErrDuplicateLocator indicates two entries were allocated the same locator.
	ErrDuplicateLocator ErrorCode = "entry-duplicate-locator"

	// ErrReferenceAmbiguous indicates a document defines a referenced name more than once.
	ErrReferenceAmbiguous ErrorCode = "reference-ambiguous"
	// ErrReferenceUnresolved indicates no loaded document defines a referenced name.
	ErrReferenceUnresolved ErrorCode = "reference-unresolved"
	// ErrReferenceCycle indicates a reference leads back to a definition still being expanded.
	ErrReferenceCycle ErrorCode = "reference-cycle"

	// ErrSchemaLoad indicates a schema document could not be read or parsed.
	ErrSchemaLoad ErrorCode = "schema-load"
	// ErrUnexpectedNode indicates a node kind the traversal does not model.
	ErrUnexpectedNode ErrorCode = "node-unexpected"
)

// Violation describes the first expectation a schema failed to meet.
//
//nolint:errname // domain term.
type Violation struct {
	Code     string
	Schema   string
	Message  string
	Path     string
	Snapshot string
}

// Error formats the violation for display, including schema, position, and snapshot.
func (v *Violation) Error() string {
	if v == nil {
		return "violation <nil>"
	}

	var b strings.Builder
	if v.Schema != "" {
		b.WriteString(v.Schema)
		b.WriteString(": ")
	}
	b.WriteString(fmt.Sprintf("[%s] %s", v.Code, v.Message))
	if v.Path != "" {
		b.WriteString(fmt.Sprintf(" at %s", v.Path))
	}
	if v.Snapshot != "" {
		b.WriteString(fmt.Sprintf(" (node: %s)", v.Snapshot))
	}
	return b.String()
}

// New builds a Violation with a code, message, and optional position.
func New(code ErrorCode, msg, path string) *Violation {
	return &Violation{Code: string(code), Message: msg, Path: path}
}

// Newf formats a message and builds a Violation.
func Newf(code ErrorCode, path, format string, args ...any) *Violation {
	return New(code, fmt.Sprintf(format, args...), path)
}

// WithSnapshot attaches a serialized form of the offending node.
func (v *Violation) WithSnapshot(snapshot string) *Violation {
	v.Snapshot = snapshot
	return v
}

// AsViolation extracts a violation from an error chain.
func AsViolation(err error) (*Violation, bool) {
	if err == nil {
		return nil, false
	}
	var v *Violation
	if errors.As(err, &v) && v != nil {
		return v, true
	}
	return nil, false
}

// HasCode reports whether err carries a violation with the given code.
func HasCode(err error, code ErrorCode) bool {
	v, ok := AsViolation(err)
	return ok && v.Code == string(code)
}

// StampSchema records the schema basename on a violation found in err.
// Violations that already name a schema are left unchanged.
func StampSchema(err error, schema string) error {
	if v, ok := AsViolation(err); ok && v.Schema == "" {
		v.Schema = schema
	}
	return err
}

// StampPath records path on a violation found in err that has no position.
func StampPath(err error, path string) error {
	if v, ok := AsViolation(err); ok && v.Path == "" {
		v.Path = path
	}
	return err
}
