// Package descriptor defines the static field schema the layout engine
// consumes: one Field per input plus the layout-break pseudo fields that
// partition a form into pages, sections, and columns. Descriptors are data
// only; condition strings are parsed and evaluated by pkg/depends, and the
// live tree is owned by pkg/layout.
package descriptor
