package layout

import (
	"github.com/goliatone/go-formlayout/pkg/depends"
	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// NodeID addresses a node inside the layout arena. All parent/child and
// back-reference relations are plain indices, never object pointers, so the
// arena is the single owner of the tree.
type NodeID int

// NoNode is the null node reference.
const NoNode NodeID = -1

const gridUnits = 12

type nodeKind int

const (
	nodePage nodeKind = iota
	nodeSection
	nodeColumn
	nodeControl
)

type node struct {
	kind     nodeKind
	parent   NodeID
	children []NodeID

	field descriptor.Field

	// page state
	fold   bool
	folded bool

	// section state
	collapsible  depends.Condition
	collapsed    bool
	userExpanded bool
	empty        bool

	// column state
	span int

	// control state
	control   Control
	dependsOn depends.Condition
	mandatory depends.Condition
	readOnly  depends.Condition
	state     State
	hasState  bool
	synthetic bool
}

// NamingRule controls how the synthetic name field behaves for new documents.
type NamingRule int

const (
	// NameAuto means the identifier is assigned by the system; the name field
	// never becomes writable.
	NameAuto NamingRule = iota
	// NamePrompt asks the user for the identifier while the document is new.
	NamePrompt
	// NameSetByUser means a field on the document supplies the identifier;
	// the name field stays writable while the document is new.
	NameSetByUser
)

// Layout owns the arena of layout nodes for one form (or one open table
// row). It is built once per schema and reused across document loads.
type Layout struct {
	nodes  []node
	pages  []NodeID
	byName map[string]NodeID
	order  []NodeID // control nodes in descriptor order

	doc     document.Document
	factory ControlFactory
	eval    *depends.Evaluator
	perms   PermissionGate
	notify  Notifier
	naming  NamingRule

	// build cursor, kept so Append continues where Build stopped
	curPage    NodeID
	curSection NodeID
	curColumn  NodeID

	nameField bool
	refreshed bool
}

// Option configures a Layout during Build.
type Option func(*Layout)

// WithControlFactory overrides the widget factory. The default builds
// BasicControl instances and Grid tables.
func WithControlFactory(factory ControlFactory) Option {
	return func(l *Layout) {
		if factory != nil {
			l.factory = factory
		}
	}
}

// WithEvaluator supplies a shared dependency evaluator, typically one built
// with a trigger handler for "fn:" conditions.
func WithEvaluator(eval *depends.Evaluator) Option {
	return func(l *Layout) {
		if eval != nil {
			l.eval = eval
		}
	}
}

// WithPermissionGate attaches the form-permission collaborator.
func WithPermissionGate(gate PermissionGate) Option {
	return func(l *Layout) {
		l.perms = gate
	}
}

// WithNotifier attaches the invalid-condition notice sink.
func WithNotifier(notify Notifier) Option {
	return func(l *Layout) {
		l.notify = notify
	}
}

// WithNamingRule sets the name-field policy. The default is NameAuto.
func WithNamingRule(rule NamingRule) Option {
	return func(l *Layout) {
		l.naming = rule
	}
}

// WithoutNameField suppresses the synthetic leading name field. Row layouts
// use this; rows are identified by their parent table.
func WithoutNameField() Option {
	return func(l *Layout) {
		l.nameField = false
	}
}

// Document returns the currently bound document.
func (l *Layout) Document() document.Document { return l.doc }

// Control returns the live control for fieldname.
func (l *Layout) Control(fieldname string) (Control, bool) {
	id, ok := l.byName[fieldname]
	if !ok {
		return nil, false
	}
	return l.nodes[id].control, true
}

// FieldState returns the last computed dependency outcome for fieldname.
func (l *Layout) FieldState(fieldname string) (State, bool) {
	id, ok := l.byName[fieldname]
	if !ok {
		return State{}, false
	}
	n := &l.nodes[id]
	return n.state, n.hasState
}

// Fieldnames returns control fieldnames in layout order.
func (l *Layout) Fieldnames() []string {
	out := make([]string, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.nodes[id].field.Fieldname)
	}
	return out
}

func (l *Layout) sectionOf(id NodeID) NodeID {
	for id != NoNode {
		if l.nodes[id].kind == nodeSection {
			return id
		}
		id = l.nodes[id].parent
	}
	return NoNode
}

func (l *Layout) pageOf(id NodeID) NodeID {
	for id != NoNode {
		if l.nodes[id].kind == nodePage {
			return id
		}
		id = l.nodes[id].parent
	}
	return NoNode
}

// sectionControls yields the control node ids under a section, in order.
func (l *Layout) sectionControls(section NodeID) []NodeID {
	var out []NodeID
	for _, column := range l.nodes[section].children {
		out = append(out, l.nodes[column].children...)
	}
	return out
}
