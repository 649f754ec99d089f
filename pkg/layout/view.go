package layout

import "github.com/goliatone/go-formlayout/pkg/descriptor"

// PageView is a read-only projection of one page for renderers.
type PageView struct {
	Fold     bool
	Folded   bool
	Sections []SectionView
}

// SectionView projects one section including its computed aggregate state.
type SectionView struct {
	Label       string
	Description string
	Collapsible bool
	Collapsed   bool
	Empty       bool
	Columns     []ColumnView
}

// ColumnView projects one column with its share of the 12-unit grid.
type ColumnView struct {
	Span   int
	Fields []FieldView
}

// FieldView projects one control with its computed dependency outcome.
type FieldView struct {
	Field     descriptor.Field
	State     State
	Status    Status
	Synthetic bool
}

// Snapshot projects the whole tree for renderers. The projection copies
// computed state; mutating it has no effect on the layout.
func (l *Layout) Snapshot() []PageView {
	pages := make([]PageView, 0, len(l.pages))
	for _, pageID := range l.pages {
		page := &l.nodes[pageID]
		view := PageView{Fold: page.fold, Folded: page.folded}
		for _, sectionID := range page.children {
			section := &l.nodes[sectionID]
			sectionView := SectionView{
				Label:       section.field.Label,
				Description: section.field.Description,
				Collapsible: section.field.Collapsible || !section.collapsible.IsZero(),
				Collapsed:   section.collapsed,
				Empty:       section.empty,
			}
			for _, columnID := range section.children {
				column := &l.nodes[columnID]
				columnView := ColumnView{Span: column.span}
				for _, controlID := range column.children {
					control := &l.nodes[controlID]
					columnView.Fields = append(columnView.Fields, FieldView{
						Field:     control.field,
						State:     control.state,
						Status:    control.control.Status(),
						Synthetic: control.synthetic,
					})
				}
				sectionView.Columns = append(sectionView.Columns, columnView)
			}
			view.Sections = append(view.Sections, sectionView)
		}
		pages = append(pages, view)
	}
	return pages
}
