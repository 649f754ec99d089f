package layout

import (
	"fmt"

	"github.com/goliatone/go-formlayout/pkg/depends/expr"
)

// sectionIDs returns section nodes across all pages, in document order.
func (l *Layout) sectionIDs() []NodeID {
	var out []NodeID
	for _, pageID := range l.pages {
		out = append(out, l.nodes[pageID].children...)
	}
	return out
}

// SectionCount returns the number of sections across all pages.
func (l *Layout) SectionCount() int { return len(l.sectionIDs()) }

// ToggleSection flips the collapse state of the section at idx (document
// order). An expansion is recorded as a user action so later refreshes
// respect it.
func (l *Layout) ToggleSection(idx int) error {
	sections := l.sectionIDs()
	if idx < 0 || idx >= len(sections) {
		return fmt.Errorf("layout: no section at index %d", idx)
	}
	section := &l.nodes[sections[idx]]
	if section.collapsed {
		section.collapsed = false
		section.userExpanded = true
	} else {
		// clearing the expansion restores the declarative default, which
		// collapses an effectively-collapsible section
		section.collapsed = true
		section.userExpanded = false
	}
	l.pushSectionCollapse(sections[idx])
	return nil
}

// PageCount returns the number of pages.
func (l *Layout) PageCount() int { return len(l.pages) }

// TogglePage flips the fold state of the page at idx. Only pages opened by
// an explicit page break fold; the implicit first page is always visible.
func (l *Layout) TogglePage(idx int) error {
	if idx < 0 || idx >= len(l.pages) {
		return fmt.Errorf("layout: no page at index %d", idx)
	}
	page := &l.nodes[l.pages[idx]]
	if !page.fold {
		return fmt.Errorf("layout: page at index %d does not fold", idx)
	}
	page.folded = !page.folded
	return nil
}

// refreshSections runs the collapse state machine and the emptiness
// aggregate for every section. Called as passes two and three of Refresh.
func (l *Layout) refreshSections() {
	for _, sectionID := range l.sectionIDs() {
		l.refreshSectionCollapse(sectionID)
		l.refreshSectionEmpty(sectionID)
	}
}

// refreshSectionCollapse recomputes one section's collapse state.
//
// The declarative state is "collapsed" when the section is effectively
// collapsible (collapsible_depends_on when set, else the static flag) and no
// direct control has an unmet mandatory. A missing mandatory always forces
// the section open so the error is visible. A user expansion wins over the
// declarative recompute: a user-expanded section never auto-collapses on
// data changes. Collapsing it again clears the expansion, so the declarative
// default applies from the next recompute.
func (l *Layout) refreshSectionCollapse(sectionID NodeID) {
	section := &l.nodes[sectionID]

	collapsible := section.field.Collapsible
	if !section.collapsible.IsZero() {
		outcome, err := l.eval.Evaluate(section.collapsible, l.doc)
		if err != nil {
			l.notifyInvalid(section.field.Fieldname, err)
			// keep the static flag as the prior outcome
		} else {
			collapsible = outcome
		}
	}

	missing := l.sectionHasMissingMandatory(sectionID)

	was := section.collapsed
	switch {
	case !collapsible:
		section.collapsed = false
	case missing:
		section.collapsed = false
	case section.userExpanded:
		section.collapsed = false
	default:
		section.collapsed = true
	}

	if section.collapsed != was {
		l.pushSectionCollapse(sectionID)
	}
}

// pushSectionCollapse re-pushes computed state to every control under the
// section so Rendered reflects the new collapse state.
func (l *Layout) pushSectionCollapse(sectionID NodeID) {
	collapsed := l.nodes[sectionID].collapsed
	for _, controlID := range l.sectionControls(sectionID) {
		control := &l.nodes[controlID]
		if control.state.Collapsed == collapsed {
			continue
		}
		control.state.Collapsed = collapsed
		if sink, ok := control.control.(ComputedSink); ok {
			sink.SetComputed(control.state)
		}
		control.control.Refresh()
	}
}

// sectionHasMissingMandatory reports whether any direct control of the
// section is visible, required, and empty.
func (l *Layout) sectionHasMissingMandatory(sectionID NodeID) bool {
	for _, controlID := range l.sectionControls(sectionID) {
		control := &l.nodes[controlID]
		if !control.hasState || !control.state.Visible || !control.state.Required {
			continue
		}
		if !expr.Truthy(control.control.Value()) {
			return true
		}
	}
	return false
}

// refreshSectionEmpty recomputes the emptiness aggregate: a section is empty
// when it holds no rendered control in "write" state. Empty sections carry no
// actionable content and renderers hide them wholesale. Never cached across
// document changes.
func (l *Layout) refreshSectionEmpty(sectionID NodeID) {
	section := &l.nodes[sectionID]
	section.empty = true
	for _, controlID := range l.sectionControls(sectionID) {
		control := l.nodes[controlID].control
		if control.Status() == StatusWrite && control.Rendered() {
			section.empty = false
			return
		}
	}
}

func (l *Layout) notifyInvalid(fieldname string, err error) {
	if l.notify != nil {
		l.notify.InvalidCondition(fieldname, err)
	}
}
