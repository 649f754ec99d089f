package layout

import (
	"github.com/goliatone/go-formlayout/pkg/depends/expr"
	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// Status is a control's computed write state.
type Status string

const (
	StatusWrite Status = "write"
	StatusRead  Status = "read"
	StatusNone  Status = "none"
)

// Control is the narrow surface the engine consumes from an input widget.
// Widgets are external collaborators; the engine never reaches past this
// interface.
type Control interface {
	// Refresh re-renders the control. The engine only calls it when the
	// computed dependency state actually changed.
	Refresh()
	Status() Status
	// Rendered reports whether the control is currently displayed, i.e. not
	// hidden by visibility or a collapsed section.
	Rendered() bool
	Value() any
	SetValue(value any) error
}

// ComputedSink is implemented by controls that want the engine's computed
// dependency state pushed to them ahead of Refresh. The built-in controls
// implement it; external widgets that track their own state can ignore it.
type ComputedSink interface {
	SetComputed(state State)
}

// TextSelector is implemented by controls that can select their input text.
// The refresh coordinator uses it for the numeric reselect affordance.
type TextSelector interface {
	SelectText()
}

// TableControl is the surface of a repeating sub-table widget. Rows carry
// their own documents and their own nested layout.
type TableControl interface {
	Control
	RowCount() int
	// AddRow appends an empty row document and returns it.
	AddRow() document.Document
	// OpenRow opens the row at idx for inline editing and returns its
	// layout. It reports false when idx is out of range.
	OpenRow(idx int) (*Layout, bool)
	// OpenRowIndex returns the currently open row, or -1 when closed.
	OpenRowIndex() int
	// OpenRowLayout returns the layout of the open row, or nil when closed.
	OpenRowLayout() *Layout
	CloseRow()
}

// ControlFactory builds the widget for one field descriptor bound to a
// document.
type ControlFactory interface {
	Make(field descriptor.Field, doc document.Document) (Control, error)
}

// ControlFactoryFunc adapts a function into a ControlFactory.
type ControlFactoryFunc func(field descriptor.Field, doc document.Document) (Control, error)

func (fn ControlFactoryFunc) Make(field descriptor.Field, doc document.Document) (Control, error) {
	return fn(field, doc)
}

// PermissionGate is the form-permission collaborator. Fields whose permlevel
// is not readable are forced hidden.
type PermissionGate interface {
	CanRead(permlevel int) bool
}

// Notifier receives the generic invalid-condition notice when an "eval:"
// expression fails. Evaluation failures never escape Refresh.
type Notifier interface {
	InvalidCondition(fieldname string, err error)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(fieldname string, err error)

func (fn NotifierFunc) InvalidCondition(fieldname string, err error) { fn(fieldname, err) }

// State is the transient per-field dependency outcome, recomputed on every
// refresh pass and never persisted.
type State struct {
	Visible  bool
	Required bool
	ReadOnly bool
	// Collapsed is true when the owning section is collapsed, which hides the
	// control without changing its visibility outcome.
	Collapsed bool
}

// BasicControl is the built-in headless control used by the CLI, the prompt
// runner, and tests. It derives its status entirely from the computed state
// the engine pushes.
type BasicControl struct {
	field     descriptor.Field
	doc       document.Document
	computed  State
	selected  bool
	refreshes int
}

var _ Control = (*BasicControl)(nil)
var _ ComputedSink = (*BasicControl)(nil)
var _ TextSelector = (*BasicControl)(nil)

// NewBasicControl constructs a headless control for field bound to doc.
func NewBasicControl(field descriptor.Field, doc document.Document) *BasicControl {
	return &BasicControl{field: field, doc: doc}
}

func (c *BasicControl) Refresh() { c.refreshes++ }

func (c *BasicControl) Status() Status {
	if !c.computed.Visible {
		return StatusNone
	}
	if c.computed.ReadOnly {
		return StatusRead
	}
	return StatusWrite
}

func (c *BasicControl) Rendered() bool {
	return c.computed.Visible && !c.computed.Collapsed
}

func (c *BasicControl) Value() any {
	if c.doc == nil {
		return nil
	}
	value, _ := c.doc.Get(c.field.Fieldname)
	return value
}

func (c *BasicControl) SetValue(value any) error {
	if c.doc == nil {
		return nil
	}
	c.doc.Set(c.field.Fieldname, value)
	return nil
}

func (c *BasicControl) SetComputed(state State) { c.computed = state }

func (c *BasicControl) SelectText() { c.selected = true }

// Field returns the bound descriptor.
func (c *BasicControl) Field() descriptor.Field { return c.field }

// RefreshCount reports how many times the engine re-rendered this control.
// Useful for asserting the change-only refresh contract.
func (c *BasicControl) RefreshCount() int { return c.refreshes }

// TextSelected reports whether SelectText ran since the last ClearSelection.
func (c *BasicControl) TextSelected() bool { return c.selected }

// ClearSelection resets the reselect marker.
func (c *BasicControl) ClearSelection() { c.selected = false }

// Rebind points the control at a new document.
func (c *BasicControl) Rebind(doc document.Document) { c.doc = doc }

// Empty reports whether the control currently has no meaningful value.
func (c *BasicControl) Empty() bool { return !expr.Truthy(c.Value()) }
