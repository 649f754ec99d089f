package layout

// Direction selects the tab scan direction.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// FocusTarget is the outcome of an Advance call: a field in some scope, the
// form's primary action, or nothing.
type FocusTarget struct {
	// Layout is the scope owning Fieldname; for table rows it is the row's
	// own layout, not the parent form.
	Layout    *Layout
	Fieldname string
	// PrimaryAction is set when no further eligible field exists and focus
	// should move to the form's primary action control.
	PrimaryAction bool
}

// None reports whether no target was found.
func (t FocusTarget) None() bool { return t.Fieldname == "" && !t.PrimaryAction }

// Advance computes the next focusable control from current in the given
// direction. Eligibility requires computed "write" status and a rendered
// control. Forward entry into a table field opens (creating if empty) its
// first row and focuses into the row's layout; exhausting a row either opens
// the next row or closes the table and resumes in the parent scope after the
// table field. With no eligible field left anywhere the primary action is
// the target. The scan is read-only apart from row open/close, so repeated
// calls on a fixed visibility snapshot are stable.
func (l *Layout) Advance(current string, dir Direction) FocusTarget {
	if target, handled := l.advanceInOpenRow(current, dir); handled {
		return target
	}

	id, ok := l.byName[current]
	if !ok || l.nodes[id].kind != nodeControl {
		return l.primaryTarget()
	}
	return l.scanFrom(id, dir)
}

// advanceInOpenRow handles the case where current lives inside the open row
// of one of this layout's tables.
func (l *Layout) advanceInOpenRow(current string, dir Direction) (FocusTarget, bool) {
	for _, id := range l.order {
		table, ok := l.nodes[id].control.(TableControl)
		if !ok {
			continue
		}
		row := table.OpenRowLayout()
		if row == nil {
			continue
		}
		if _, inRow := row.byName[current]; !inRow {
			// the row may itself hold an open nested table
			if target, handled := row.advanceInOpenRow(current, dir); handled {
				return target, true
			}
			continue
		}

		if target := row.scanWithin(current, dir); !target.None() {
			return target, true
		}

		if dir == Forward {
			next := table.OpenRowIndex() + 1
			if next < table.RowCount() {
				if nextRow, ok := table.OpenRow(next); ok {
					if target := nextRow.firstEligible(); !target.None() {
						return target, true
					}
				}
			}
			table.CloseRow()
			return l.scanFrom(id, Forward), true
		}
		table.CloseRow()
		return l.scanFrom(id, Backward), true
	}
	return FocusTarget{}, false
}

// scanWithin is a scope-local scan that reports none instead of falling back
// to the primary action, so callers can resume in the parent scope.
func (l *Layout) scanWithin(current string, dir Direction) FocusTarget {
	id, ok := l.byName[current]
	if !ok || l.nodes[id].kind != nodeControl {
		return FocusTarget{}
	}
	idx := l.orderIndex(id)
	if idx < 0 {
		return FocusTarget{}
	}
	if dir == Forward {
		for i := idx + 1; i < len(l.order); i++ {
			if target := l.enterOrTarget(l.order[i]); !target.None() {
				return target
			}
		}
		return FocusTarget{}
	}
	for i := idx - 1; i >= 0; i-- {
		if target := l.targetAt(l.order[i]); !target.None() {
			return target
		}
	}
	return FocusTarget{}
}

func (l *Layout) scanFrom(id NodeID, dir Direction) FocusTarget {
	idx := l.orderIndex(id)
	if idx < 0 {
		return l.primaryTarget()
	}
	if dir == Forward {
		for i := idx + 1; i < len(l.order); i++ {
			if target := l.enterOrTarget(l.order[i]); !target.None() {
				return target
			}
		}
		return l.primaryTarget()
	}
	for i := idx - 1; i >= 0; i-- {
		if target := l.targetAt(l.order[i]); !target.None() {
			return target
		}
	}
	return l.primaryTarget()
}

// enterOrTarget resolves a candidate node going forward: plain fields become
// targets, eligible tables are entered through their first row.
func (l *Layout) enterOrTarget(id NodeID) FocusTarget {
	n := &l.nodes[id]
	if !eligible(n.control) {
		return FocusTarget{}
	}
	if table, ok := n.control.(TableControl); ok {
		if table.RowCount() == 0 {
			table.AddRow()
		}
		if row, ok := table.OpenRow(0); ok {
			if target := row.firstEligible(); !target.None() {
				return target
			}
			table.CloseRow()
		}
		return FocusTarget{}
	}
	return FocusTarget{Layout: l, Fieldname: n.field.Fieldname}
}

// targetAt resolves a candidate node going backward. Tables are a single
// stop in this direction; focus lands on the table control itself.
func (l *Layout) targetAt(id NodeID) FocusTarget {
	n := &l.nodes[id]
	if !eligible(n.control) {
		return FocusTarget{}
	}
	return FocusTarget{Layout: l, Fieldname: n.field.Fieldname}
}

// FirstFocusable returns the first focusable target in the form, entering
// table fields the same way a forward tab would. Callers use it to seed a
// keyboard walk before any field holds focus.
func (l *Layout) FirstFocusable() FocusTarget {
	for _, id := range l.order {
		if target := l.enterOrTarget(id); !target.None() {
			return target
		}
	}
	return l.primaryTarget()
}

// firstEligible finds the first focusable control in this scope.
func (l *Layout) firstEligible() FocusTarget {
	for _, id := range l.order {
		if target := l.targetAt(id); !target.None() {
			return target
		}
	}
	return FocusTarget{}
}

func (l *Layout) orderIndex(id NodeID) int {
	for idx, candidate := range l.order {
		if candidate == id {
			return idx
		}
	}
	return -1
}

func (l *Layout) primaryTarget() FocusTarget { return FocusTarget{PrimaryAction: true} }

func eligible(control Control) bool {
	return control.Status() == StatusWrite && control.Rendered()
}
