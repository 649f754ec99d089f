package descriptor

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseJSONDocument(t *testing.T) {
	t.Parallel()

	schema, err := Parse([]byte(`{
		"title": "Sales Order",
		"fields": [
			{"fieldname": "customer", "fieldtype": "Link", "label": "Customer", "reqd": true},
			{"fieldtype": "Section Break", "label": "Totals"},
			{"fieldname": "total", "fieldtype": "Currency", "read_only": true}
		]
	}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if schema.Title != "Sales Order" {
		t.Fatalf("title = %q", schema.Title)
	}
	want := []Field{
		{Fieldname: "customer", Fieldtype: TypeLink, Label: "Customer", Required: true},
		{Fieldtype: TypeSectionBreak, Label: "Totals"},
		{Fieldname: "total", Fieldtype: TypeCurrency, ReadOnly: true},
	}
	if diff := cmp.Diff(want, schema.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLDocument(t *testing.T) {
	t.Parallel()

	schema, err := Parse([]byte(`
title: Task
fields:
  - fieldname: subject
    fieldtype: Data
    reqd: true
  - fieldname: status
    fieldtype: Select
    options: "Open\nWorking\nClosed"
  - fieldname: closing_notes
    fieldtype: Text
    depends_on: "eval: doc.status == 'Closed'"
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(schema.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(schema.Fields))
	}
	if got := schema.Fields[1].SelectOptions(); len(got) != 3 || got[0] != "Open" {
		t.Fatalf("SelectOptions = %v", got)
	}
	if schema.Fields[2].DependsOn != "eval: doc.status == 'Closed'" {
		t.Fatalf("depends_on not preserved: %v", schema.Fields[2].DependsOn)
	}
}

func TestParseBareFieldList(t *testing.T) {
	t.Parallel()

	schema, err := Parse([]byte(`
- fieldname: a
- fieldname: b
  fieldtype: Int
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(schema.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(schema.Fields))
	}
	if schema.Fields[0].Fieldtype != TypeData {
		t.Fatalf("missing fieldtype should default to Data, got %q", schema.Fields[0].Fieldtype)
	}
}

func TestParseRejectsDuplicateFieldnames(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`[{"fieldname": "x"}, {"fieldname": "x"}]`))
	if err == nil || !strings.Contains(err.Error(), "duplicate fieldname") {
		t.Fatalf("expected duplicate fieldname error, got %v", err)
	}
}

func TestParseRejectsInputFieldWithoutFieldname(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`[{"fieldtype": "Data"}]`))
	if err == nil {
		t.Fatalf("expected error for input field without fieldname")
	}

	// break fields need no fieldname
	if _, err := Parse([]byte(`[{"fieldtype": "Section Break"}]`)); err != nil {
		t.Fatalf("section break without fieldname should parse, got %v", err)
	}
}

func TestParseNormalizesTableChildren(t *testing.T) {
	t.Parallel()

	schema, err := Parse([]byte(`{
		"fields": [
			{
				"fieldname": "items",
				"fieldtype": "Table",
				"options": "Order Item",
				"children": [
					{"fieldname": "item_code", "label": "<script>x</script>Item"},
					{"fieldname": "qty", "fieldtype": "Int"}
				]
			}
		]
	}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	children := schema.Fields[0].Children
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0].Label != "Item" {
		t.Fatalf("child label should be sanitized, got %q", children[0].Label)
	}
	if children[0].Fieldtype != TypeData {
		t.Fatalf("child fieldtype should default to Data, got %q", children[0].Fieldtype)
	}
}

func TestParseSanitizesLabels(t *testing.T) {
	t.Parallel()

	schema, err := Parse([]byte(`[
		{"fieldname": "amount", "label": "<b>Amount</b><script>alert(1)</script>", "description": "<a href='x'>docs</a> only"}
	]`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	field := schema.Fields[0]
	if field.Label != "<b>Amount</b>" {
		t.Fatalf("label = %q, want inline formatting kept and script dropped", field.Label)
	}
	if strings.Contains(field.Description, "<a") {
		t.Fatalf("anchors should not survive sanitization: %q", field.Description)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "   ", "!!!not a document"} {
		if _, err := Parse([]byte(payload)); err == nil {
			t.Fatalf("Parse(%q) expected error", payload)
		}
	}
}

func TestLoadReadsFromReader(t *testing.T) {
	t.Parallel()

	schema, err := Load(strings.NewReader(`{"fields": [{"fieldname": "subject"}]}`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(schema.Fields) != 1 || schema.Fields[0].Fieldname != "subject" {
		t.Fatalf("unexpected schema: %+v", schema)
	}
}
