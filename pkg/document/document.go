// Package document defines the narrow contract the layout engine needs from
// the record being edited. The engine reads values for condition evaluation
// and writes per-row field properties for table propagation; it never owns
// the record.
package document

// Property keys understood by FieldPropertyStore implementations.
const (
	PropRequired = "reqd"
	PropReadOnly = "read_only"
)

// Document is the live key/value record a form edits. Child-table rows are
// themselves Documents whose Parent() returns the owning record, which is how
// "eval:" expressions resolve their parent binding.
type Document interface {
	Get(fieldname string) (any, bool)
	Set(fieldname string, value any)
	Doctype() string
	Name() string
	IsNew() bool
	IsChildRow() bool
	Parent() Document
}

// FieldPropertyStore receives required/read-only overrides computed for
// fields that live inside repeating tables. Row controls are rebuilt per row,
// so the computed state has to survive on the document side rather than on
// the in-memory control node. Implementations must be idempotent: setting a
// property to its current value must be a no-op so dependency-driven setters
// cannot re-trigger refresh loops.
type FieldPropertyStore interface {
	SetFieldProperty(fieldname, property string, value bool) bool
	FieldProperty(fieldname, property string) (bool, bool)
}
