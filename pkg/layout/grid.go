package layout

import (
	"fmt"

	"github.com/goliatone/go-formlayout/pkg/depends"
	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// GridConfig wires the collaborators a Grid shares with its owning layout.
type GridConfig struct {
	Evaluator *depends.Evaluator
	Gate      PermissionGate
	Notifier  Notifier
}

// Grid is the built-in repeating sub-table control. Each row is a child
// document with its own nested layout built from the table field's row
// schema. Row layouts are rebuilt per open, so computed required/read-only
// state for row fields survives via the parent document's field property
// store, not on the controls.
type Grid struct {
	field descriptor.Field
	doc   document.Document
	cfg   GridConfig

	rows      []document.Document
	openRow   int
	rowLayout *Layout

	computed  State
	refreshes int
}

var _ Control = (*Grid)(nil)
var _ TableControl = (*Grid)(nil)
var _ ComputedSink = (*Grid)(nil)
var _ Rebinder = (*Grid)(nil)

// NewGrid constructs a Grid for a Table field bound to the parent document.
func NewGrid(field descriptor.Field, doc document.Document, cfg GridConfig) *Grid {
	if cfg.Evaluator == nil {
		cfg.Evaluator = depends.NewEvaluator()
	}
	return &Grid{field: field, doc: doc, cfg: cfg, openRow: -1}
}

func (g *Grid) Refresh() {
	g.refreshes++
}

func (g *Grid) Status() Status {
	if !g.computed.Visible {
		return StatusNone
	}
	if g.computed.ReadOnly {
		return StatusRead
	}
	return StatusWrite
}

func (g *Grid) Rendered() bool { return g.computed.Visible && !g.computed.Collapsed }

// Value returns the row documents; conditions referencing the table field see
// a non-empty slice as truthy.
func (g *Grid) Value() any {
	rows := make([]any, len(g.rows))
	for idx, row := range g.rows {
		rows[idx] = row
	}
	return rows
}

func (g *Grid) SetValue(value any) error {
	rows, ok := value.([]document.Document)
	if !ok {
		return fmt.Errorf("layout: grid %q expects []document.Document values", g.field.Fieldname)
	}
	g.CloseRow()
	g.rows = append([]document.Document(nil), rows...)
	g.syncValue()
	return nil
}

func (g *Grid) SetComputed(state State) { g.computed = state }

// Rebind swaps the grid to a new parent document, adopting any row documents
// the document already carries under the table fieldname. The document's
// value is left untouched; the grid only writes back when it changes the
// rows itself.
func (g *Grid) Rebind(doc document.Document) {
	g.doc = doc
	g.CloseRow()
	g.rows = adoptRows(doc, g.field.Fieldname)
}

// adoptRows extracts row documents from an existing table value. Values the
// grid did not write, and values holding anything but row documents, yield
// no rows.
func adoptRows(doc document.Document, fieldname string) []document.Document {
	if doc == nil {
		return nil
	}
	value, ok := doc.Get(fieldname)
	if !ok {
		return nil
	}
	switch rows := value.(type) {
	case []document.Document:
		return append([]document.Document(nil), rows...)
	case []any:
		out := make([]document.Document, 0, len(rows))
		for _, entry := range rows {
			row, ok := entry.(document.Document)
			if !ok {
				return nil
			}
			out = append(out, row)
		}
		return out
	default:
		return nil
	}
}

func (g *Grid) RowCount() int { return len(g.rows) }

// Row returns the row document at idx.
func (g *Grid) Row(idx int) (document.Document, bool) {
	if idx < 0 || idx >= len(g.rows) {
		return nil, false
	}
	return g.rows[idx], true
}

func (g *Grid) AddRow() document.Document {
	row := document.NewChildRow(g.doc, g.field.Options)
	g.rows = append(g.rows, row)
	g.syncValue()
	return row
}

// OpenRow opens the row at idx for inline editing, building a fresh layout
// over the row schema. The new layout is refreshed before it is returned so
// its dependency state is current.
func (g *Grid) OpenRow(idx int) (*Layout, bool) {
	if idx < 0 || idx >= len(g.rows) {
		return nil, false
	}
	rowLayout, err := Build(g.field.Children, g.rows[idx],
		WithoutNameField(),
		WithEvaluator(g.cfg.Evaluator),
		WithPermissionGate(g.cfg.Gate),
		WithNotifier(g.cfg.Notifier),
	)
	if err != nil {
		return nil, false
	}
	g.openRow = idx
	g.rowLayout = rowLayout
	rowLayout.Refresh(nil)
	return rowLayout, true
}

func (g *Grid) OpenRowIndex() int { return g.openRow }

func (g *Grid) OpenRowLayout() *Layout { return g.rowLayout }

func (g *Grid) CloseRow() {
	g.openRow = -1
	g.rowLayout = nil
}

// Field returns the table descriptor.
func (g *Grid) Field() descriptor.Field { return g.field }

// RefreshCount reports engine-triggered re-renders, mirroring BasicControl.
func (g *Grid) RefreshCount() int { return g.refreshes }

func (g *Grid) syncValue() {
	if g.doc != nil {
		g.doc.Set(g.field.Fieldname, g.Value())
	}
}
