package layout

import (
	"github.com/goliatone/go-formlayout/pkg/depends"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// RefreshContext carries per-pass state that would otherwise live in process
// globals, such as which field currently holds focus.
type RefreshContext struct {
	// FocusedField names the control holding keyboard focus, if any. Numeric
	// focused fields get their text reselected after the pass.
	FocusedField string
}

// Rebinder is implemented by controls that can swap to a new document without
// being rebuilt. Build-time controls survive many document loads.
type Rebinder interface {
	Rebind(doc document.Document)
}

// Refresh runs a full re-evaluation pass. When doc is non-nil the layout and
// every control are rebound to it first. The pass order is fixed: per-field
// dependency results, then section collapse, then section emptiness. Controls
// are only re-rendered when their computed state changed, and the whole pass
// is idempotent: running it twice on unchanged data produces identical state
// and no second round of side effects.
func (l *Layout) Refresh(doc document.Document) {
	l.RefreshWithContext(RefreshContext{}, doc)
}

// RefreshWithContext is Refresh with explicit pass state.
func (l *Layout) RefreshWithContext(ctx RefreshContext, doc document.Document) {
	if doc != nil {
		l.rebind(doc)
	}

	for _, id := range l.order {
		l.refreshControl(id)
	}
	l.refreshSections()
	l.reselectNumeric(ctx)
	l.refreshed = true
}

func (l *Layout) rebind(doc document.Document) {
	l.doc = doc
	for _, id := range l.order {
		if rebinder, ok := l.nodes[id].control.(Rebinder); ok {
			rebinder.Rebind(doc)
		}
	}
}

// refreshControl recomputes one field's dependency outcome and re-renders the
// control only when the outcome changed. Evaluation failures keep the prior
// outcome for that flag and surface through the notifier; they never escape.
func (l *Layout) refreshControl(id NodeID) {
	n := &l.nodes[id]
	prior := n.state
	hadPrior := n.hasState

	var state State
	state.Collapsed = prior.Collapsed

	if n.synthetic && n.field.Fieldname == "name" {
		state.Visible = l.doc != nil && l.doc.IsNew() && l.naming != NameAuto
		state.ReadOnly = false
		state.Required = state.Visible
	} else {
		staticRequired, staticReadOnly := l.staticFlags(n)
		state.Visible = l.computeVisible(n, prior, hadPrior)
		state.Required = l.computeFlag(n.mandatory, staticRequired, prior.Required, hadPrior, n.field.Fieldname)
		state.ReadOnly = l.computeFlag(n.readOnly, staticReadOnly, prior.ReadOnly, hadPrior, n.field.Fieldname)
	}

	n.state = state
	n.hasState = true

	l.propagateRowProperties(n, state)

	// An open table row reads the parent document live, so its layout is
	// re-evaluated on every pass even when the grid's own outcome is
	// unchanged.
	if table, ok := n.control.(TableControl); ok {
		if rowLayout := table.OpenRowLayout(); rowLayout != nil {
			rowLayout.Refresh(nil)
		}
	}

	if hadPrior && state.Visible == prior.Visible && state.Required == prior.Required && state.ReadOnly == prior.ReadOnly {
		return
	}
	if sink, ok := n.control.(ComputedSink); ok {
		sink.SetComputed(state)
	}
	n.control.Refresh()
}

func (l *Layout) computeVisible(n *node, prior State, hadPrior bool) bool {
	if n.field.Hidden {
		return false
	}
	if l.perms != nil && !l.perms.CanRead(n.field.Permlevel) {
		return false
	}
	if n.dependsOn.IsZero() {
		return true
	}
	outcome, err := l.eval.Evaluate(n.dependsOn, l.doc)
	if err != nil {
		l.notifyInvalid(n.field.Fieldname, err)
		if hadPrior {
			return prior.Visible
		}
		// fail safe, not fail open
		return false
	}
	return outcome
}

func (l *Layout) computeFlag(cond depends.Condition, static, prior, hadPrior bool, fieldname string) bool {
	if cond.IsZero() {
		return static
	}
	outcome, err := l.eval.Evaluate(cond, l.doc)
	if err != nil {
		l.notifyInvalid(fieldname, err)
		if hadPrior {
			return prior
		}
		return static
	}
	return outcome
}

// staticFlags returns the descriptor's static required/read-only defaults.
// For child-row scopes, per-row properties stored on the parent document win
// over the descriptor: row controls are rebuilt on every row open and would
// otherwise lose state computed by an earlier pass.
func (l *Layout) staticFlags(n *node) (required, readOnly bool) {
	required = n.field.Required
	readOnly = n.field.ReadOnly
	if l.doc == nil || !l.doc.IsChildRow() {
		return required, readOnly
	}
	store, ok := l.doc.Parent().(document.FieldPropertyStore)
	if !ok {
		return required, readOnly
	}
	if stored, ok := store.FieldProperty(n.field.Fieldname, document.PropRequired); ok {
		required = stored
	}
	if stored, ok := store.FieldProperty(n.field.Fieldname, document.PropReadOnly); ok {
		readOnly = stored
	}
	return required, readOnly
}

// propagateRowProperties pushes required/read-only outcomes for child-table
// fields into the parent document's per-row field metadata. Row controls are
// rebuilt per row, so the document is the only place the computed state can
// survive. The store contract makes the write idempotent, which doubles as
// the reentrancy guard against refresh loops.
func (l *Layout) propagateRowProperties(n *node, state State) {
	if l.doc == nil || !l.doc.IsChildRow() {
		return
	}
	store, ok := l.doc.Parent().(document.FieldPropertyStore)
	if !ok {
		return
	}
	store.SetFieldProperty(n.field.Fieldname, document.PropRequired, state.Required)
	store.SetFieldProperty(n.field.Fieldname, document.PropReadOnly, state.ReadOnly)
}

// reselectNumeric reselects the focused control's text when it is numeric. A
// UX affordance only; it has no effect on computed state.
func (l *Layout) reselectNumeric(ctx RefreshContext) {
	if ctx.FocusedField == "" {
		return
	}
	id, ok := l.byName[ctx.FocusedField]
	if !ok || l.nodes[id].kind != nodeControl {
		return
	}
	n := &l.nodes[id]
	if !n.field.Fieldtype.IsNumeric() || !n.state.Visible {
		return
	}
	if selector, ok := n.control.(TextSelector); ok {
		selector.SelectText()
	}
}
