package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formlayout/pkg/descriptor"
	"github.com/goliatone/go-formlayout/pkg/document"
)

func data(fieldname string) descriptor.Field {
	return descriptor.Field{Fieldname: fieldname, Fieldtype: descriptor.TypeData}
}

func sectionBreak(label string) descriptor.Field {
	return descriptor.Field{Fieldtype: descriptor.TypeSectionBreak, Label: label}
}

func columnBreak() descriptor.Field {
	return descriptor.Field{Fieldtype: descriptor.TypeColumnBreak}
}

// sectionFields flattens a snapshot section into fieldnames per column.
func sectionFields(section SectionView) [][]string {
	out := make([][]string, 0, len(section.Columns))
	for _, column := range section.Columns {
		names := make([]string, 0, len(column.Fields))
		for _, field := range column.Fields {
			names = append(names, field.Field.Fieldname)
		}
		out = append(out, names)
	}
	return out
}

func TestBuildSynthesizesPageSectionAndColumn(t *testing.T) {
	t.Parallel()

	fields := []descriptor.Field{
		data("a"),
		sectionBreak("Details"),
		data("b"),
		columnBreak(),
		data("c"),
	}
	l, err := Build(fields, document.NewMap("Task", "TASK-1"), WithoutNameField())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	pages := l.Snapshot()
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	sections := pages[0].Sections
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	if diff := cmp.Diff([][]string{{"a"}}, sectionFields(sections[0])); diff != "" {
		t.Fatalf("synthetic first section mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]string{{"b"}, {"c"}}, sectionFields(sections[1])); diff != "" {
		t.Fatalf("second section mismatch (-want +got):\n%s", diff)
	}
	if sections[1].Label != "Details" {
		t.Fatalf("section label = %q", sections[1].Label)
	}
}

func TestBuildSpreadsColumnsAcrossGrid(t *testing.T) {
	t.Parallel()

	fields := []descriptor.Field{
		data("a"),
		sectionBreak(""),
		data("b"),
		columnBreak(),
		data("c"),
		columnBreak(),
		data("d"),
	}
	l, err := Build(fields, document.NewMap("Task", "TASK-1"), WithoutNameField())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	sections := l.Snapshot()[0].Sections
	if got := sections[0].Columns[0].Span; got != 12 {
		t.Fatalf("single column span = %d, want 12", got)
	}
	for idx, column := range sections[1].Columns {
		if column.Span != 4 {
			t.Fatalf("column %d span = %d, want 4", idx, column.Span)
		}
	}
}

func TestBuildPrependsNameField(t *testing.T) {
	t.Parallel()

	l, err := Build([]descriptor.Field{data("subject")}, document.NewMap("Task", "TASK-1"))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	names := l.Fieldnames()
	if diff := cmp.Diff([]string{"name", "subject"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	snapshot := l.Snapshot()
	if !snapshot[0].Sections[0].Columns[0].Fields[0].Synthetic {
		t.Fatalf("name field should be marked synthetic")
	}
}

func TestBuildRejectsDuplicateFieldnames(t *testing.T) {
	t.Parallel()

	_, err := Build([]descriptor.Field{data("x"), data("x")}, document.NewMap("Task", "TASK-1"), WithoutNameField())
	if err == nil || !strings.Contains(err.Error(), "duplicate fieldname") {
		t.Fatalf("expected duplicate fieldname error, got %v", err)
	}
}

func TestBuildRejectsInputFieldWithoutFieldname(t *testing.T) {
	t.Parallel()

	_, err := Build([]descriptor.Field{{Fieldtype: descriptor.TypeData}}, document.NewMap("Task", "TASK-1"), WithoutNameField())
	if err == nil {
		t.Fatalf("expected error for missing fieldname")
	}
}

func TestPageBreakOpensFoldedRegion(t *testing.T) {
	t.Parallel()

	fields := []descriptor.Field{
		data("a"),
		{Fieldtype: descriptor.TypePageBreak},
		data("b"),
	}
	l, err := Build(fields, document.NewMap("Task", "TASK-1"), WithoutNameField())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	pages := l.Snapshot()
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[0].Fold {
		t.Fatalf("implicit first page must not fold")
	}
	if !pages[1].Fold {
		t.Fatalf("explicit page break should open a foldable region")
	}
}

func TestTogglePageFoldsSecondaryRegion(t *testing.T) {
	t.Parallel()

	fields := []descriptor.Field{
		data("a"),
		{Fieldtype: descriptor.TypePageBreak},
		data("b"),
	}
	l, err := Build(fields, document.NewMap("Task", "TASK-1"), WithoutNameField())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if l.Snapshot()[1].Folded {
		t.Fatalf("pages start unfolded")
	}
	if err := l.TogglePage(0); err == nil {
		t.Fatalf("the implicit first page must not fold")
	}
	if err := l.TogglePage(1); err != nil {
		t.Fatalf("TogglePage returned error: %v", err)
	}
	if !l.Snapshot()[1].Folded {
		t.Fatalf("toggle should fold the secondary page")
	}
	if err := l.TogglePage(1); err != nil {
		t.Fatalf("TogglePage returned error: %v", err)
	}
	if l.Snapshot()[1].Folded {
		t.Fatalf("a second toggle should unfold the page")
	}
	if err := l.TogglePage(5); err == nil {
		t.Fatalf("expected error for out-of-range page index")
	}
}

func TestAppendRejectsBatchBeforeMutatingTree(t *testing.T) {
	t.Parallel()

	doc := document.NewMap("Task", "TASK-1")
	l, err := Build([]descriptor.Field{data("a")}, doc, WithoutNameField())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	// "a" collides midway through the batch; "b" must not survive the error
	if err := l.Append([]descriptor.Field{data("b"), data("a")}); err == nil {
		t.Fatalf("expected duplicate-fieldname error")
	}
	if diff := cmp.Diff([]string{"a"}, l.Fieldnames()); diff != "" {
		t.Fatalf("rejected batch changed the tree (-want +got):\n%s", diff)
	}
	if _, ok := l.Control("b"); ok {
		t.Fatalf("rejected batch must not leave controls behind")
	}

	if err := l.Append([]descriptor.Field{data("c"), {Fieldtype: descriptor.TypeData}}); err == nil {
		t.Fatalf("expected missing-fieldname error")
	}
	if _, ok := l.Control("c"); ok {
		t.Fatalf("rejected batch must not leave controls behind")
	}
}

func TestAppendContinuesAtCursorAndKeepsExistingState(t *testing.T) {
	t.Parallel()

	doc := document.NewMap("Task", "TASK-1")
	l, err := Build([]descriptor.Field{data("a"), data("b")}, doc, WithoutNameField())
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	l.Refresh(nil)

	controlA, _ := l.Control("a")
	basicA := controlA.(*BasicControl)
	refreshesBefore := basicA.RefreshCount()

	if err := l.Append([]descriptor.Field{data("c")}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, l.Fieldnames()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	// same section, same column: append continues where the build stopped
	sections := l.Snapshot()[0].Sections
	if len(sections) != 1 || len(sections[0].Columns) != 1 {
		t.Fatalf("append should not open a new section or column")
	}

	if again, _ := l.Control("a"); again != controlA {
		t.Fatalf("append must keep existing control identity")
	}
	if basicA.RefreshCount() != refreshesBefore {
		t.Fatalf("append must not re-render untouched controls")
	}

	// the new control arrives refreshed
	if state, ok := l.FieldState("c"); !ok || !state.Visible {
		t.Fatalf("appended control should have computed state, got %+v ok=%v", state, ok)
	}
}
