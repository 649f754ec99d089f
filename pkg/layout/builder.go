package layout

import (
	"fmt"

	"github.com/goliatone/go-formlayout/pkg/depends"
	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
)

// Build turns an ordered descriptor list into a layout tree bound to doc. A
// synthetic name field is prepended (unless WithoutNameField), the first
// section and column are synthesized lazily, and every page after a page
// break becomes a collapsible secondary region.
//
// The tree is built once per schema; document changes go through Refresh,
// schema additions through Append.
func Build(fields []descriptor.Field, doc document.Document, options ...Option) (*Layout, error) {
	l := &Layout{
		byName:     make(map[string]NodeID),
		doc:        doc,
		eval:       depends.NewEvaluator(),
		curPage:    NoNode,
		curSection: NoNode,
		curColumn:  NoNode,
		nameField:  true,
	}
	l.factory = defaultFactory(l)
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}

	if l.nameField {
		if err := l.appendControl(descriptor.NameField(), true); err != nil {
			return nil, err
		}
	}
	if err := l.Append(fields); err != nil {
		return nil, err
	}
	l.ensureSection()
	return l, nil
}

// Append adds descriptors to an existing tree, continuing at the current
// page/section/column. Existing nodes keep their identity and state; only the
// new control nodes are refreshed, so focus and user-toggled sections are
// undisturbed.
func (l *Layout) Append(fields []descriptor.Field) error {
	if err := l.validateBatch(fields); err != nil {
		return err
	}

	firstNew := len(l.order)
	for _, field := range fields {
		switch field.Fieldtype {
		case descriptor.TypePageBreak:
			l.newPage(field, true)
		case descriptor.TypeSectionBreak:
			l.newSection(field)
		case descriptor.TypeColumnBreak:
			l.newColumn(field)
		default:
			if err := l.appendControl(field, false); err != nil {
				return err
			}
		}
	}
	l.spreadColumns()

	if l.refreshed {
		for _, id := range l.order[firstNew:] {
			l.refreshControl(id)
		}
		l.refreshSections()
	}
	return nil
}

// validateBatch rejects a descriptor batch before any of it touches the
// arena, so a bad batch never leaves the tree half-appended.
func (l *Layout) validateBatch(fields []descriptor.Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Fieldname == "" {
			if field.Fieldtype.IsBreak() {
				continue
			}
			return fmt.Errorf("layout: field of type %q has no fieldname", field.Fieldtype)
		}
		if _, exists := l.byName[field.Fieldname]; exists {
			return fmt.Errorf("layout: duplicate fieldname %q", field.Fieldname)
		}
		if _, dup := seen[field.Fieldname]; dup {
			return fmt.Errorf("layout: duplicate fieldname %q", field.Fieldname)
		}
		seen[field.Fieldname] = struct{}{}
	}
	return nil
}

func (l *Layout) newPage(field descriptor.Field, fold bool) NodeID {
	id := l.alloc(node{kind: nodePage, parent: NoNode, field: field, fold: fold})
	l.pages = append(l.pages, id)
	l.curPage = id
	l.curSection = NoNode
	l.curColumn = NoNode
	return id
}

func (l *Layout) ensurePage() NodeID {
	if l.curPage == NoNode {
		l.newPage(descriptor.Field{Fieldtype: descriptor.TypePageBreak}, false)
	}
	return l.curPage
}

func (l *Layout) newSection(field descriptor.Field) NodeID {
	page := l.ensurePage()
	id := l.alloc(node{
		kind:        nodeSection,
		parent:      page,
		field:       field,
		collapsible: depends.Parse(field.CollapsibleDependsOn),
	})
	l.nodes[page].children = append(l.nodes[page].children, id)
	l.curSection = id
	l.curColumn = NoNode
	if field.Fieldname != "" {
		l.byName[field.Fieldname] = id
	}
	return id
}

func (l *Layout) ensureSection() NodeID {
	if l.curSection == NoNode {
		l.newSection(descriptor.Field{Fieldtype: descriptor.TypeSectionBreak})
	}
	return l.curSection
}

func (l *Layout) newColumn(field descriptor.Field) NodeID {
	section := l.ensureSection()
	id := l.alloc(node{kind: nodeColumn, parent: section, field: field, span: gridUnits})
	l.nodes[section].children = append(l.nodes[section].children, id)
	l.curColumn = id
	return id
}

func (l *Layout) ensureColumn() NodeID {
	if l.curColumn == NoNode {
		l.newColumn(descriptor.Field{Fieldtype: descriptor.TypeColumnBreak})
	}
	return l.curColumn
}

func (l *Layout) appendControl(field descriptor.Field, synthetic bool) error {
	if field.Fieldname == "" {
		return fmt.Errorf("layout: field of type %q has no fieldname", field.Fieldtype)
	}
	if _, exists := l.byName[field.Fieldname]; exists {
		return fmt.Errorf("layout: duplicate fieldname %q", field.Fieldname)
	}

	control, err := l.factory.Make(field, l.doc)
	if err != nil {
		return fmt.Errorf("layout: control for %q: %w", field.Fieldname, err)
	}

	column := l.ensureColumn()
	id := l.alloc(node{
		kind:      nodeControl,
		parent:    column,
		field:     field,
		control:   control,
		dependsOn: depends.Parse(field.DependsOn),
		mandatory: depends.Parse(field.MandatoryDependsOn),
		readOnly:  depends.Parse(field.ReadOnlyDependsOn),
		synthetic: synthetic,
	})
	l.nodes[column].children = append(l.nodes[column].children, id)
	l.byName[field.Fieldname] = id
	l.order = append(l.order, id)
	return nil
}

func (l *Layout) alloc(n node) NodeID {
	id := NodeID(len(l.nodes))
	l.nodes = append(l.nodes, n)
	return id
}

// spreadColumns assigns each column an equal share of the 12-unit grid
// within its section.
func (l *Layout) spreadColumns() {
	for _, pageID := range l.pages {
		for _, sectionID := range l.nodes[pageID].children {
			columns := l.nodes[sectionID].children
			if len(columns) == 0 {
				continue
			}
			span := gridUnits / len(columns)
			if span < 1 {
				span = 1
			}
			for _, columnID := range columns {
				l.nodes[columnID].span = span
			}
		}
	}
}

// defaultFactory builds headless controls: Grid for table fields,
// BasicControl for everything else.
func defaultFactory(l *Layout) ControlFactory {
	return ControlFactoryFunc(func(field descriptor.Field, doc document.Document) (Control, error) {
		if field.Fieldtype == descriptor.TypeTable {
			return NewGrid(field, doc, GridConfig{
				Evaluator: l.eval,
				Gate:      l.perms,
				Notifier:  l.notify,
			}), nil
		}
		return NewBasicControl(field, doc), nil
	})
}
