// Package layout is the form layout and dependency engine. It builds a
// hierarchical tree (pages, sections, columns, controls) from an ordered
// field descriptor list, keeps every field's visibility, required, and read-only
// state in sync with the bound document through declarative conditions, and
// computes keyboard tab order across the visibility-filtered tree including
// open rows of repeating sub-tables.
//
// The tree lives in a single arena addressed by NodeID; back references such
// as control-to-section are index lookups, never owning pointers. All work is
// synchronous and single-threaded: refresh passes complete before the next
// input event is processed.
package layout
