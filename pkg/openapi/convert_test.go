package openapi

import (
	"context"
	"testing"

	"github.com/goliatone/go-formlayout/pkg/descriptor"
)

const orderSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Orders", "version": "1.0.0"},
  "paths": {
    "/orders": {
      "post": {
        "operationId": "createOrder",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["customer"],
                "properties": {
                  "customer": {"type": "string", "title": "Customer"},
                  "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
                  "discount": {
                    "type": "number",
                    "x-depends-on": "eval: doc.priority == 'High'"
                  },
                  "paid": {"type": "boolean"},
                  "delivery_date": {"type": "string", "format": "date"},
                  "secret_margin": {"type": "number", "x-hidden": true, "x-permlevel": 1},
                  "items": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "properties": {
                        "item_code": {"type": "string"},
                        "qty": {"type": "integer"}
                      }
                    }
                  },
                  "shipping": {
                    "type": "object",
                    "x-collapsible": true,
                    "properties": {
                      "address_line": {"type": "string"},
                      "city": {"type": "string"}
                    }
                  }
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func fieldByName(t *testing.T, fields []descriptor.Field, fieldname string) descriptor.Field {
	t.Helper()
	for _, field := range fields {
		if field.Fieldname == fieldname {
			return field
		}
	}
	t.Fatalf("no field %q in %v", fieldname, fieldnames(fields))
	return descriptor.Field{}
}

func fieldnames(fields []descriptor.Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, field.Fieldname)
	}
	return out
}

func TestFieldsMapsPropertyTypes(t *testing.T) {
	t.Parallel()

	fields, err := Fields(context.Background(), []byte(orderSpec), "createOrder")
	if err != nil {
		t.Fatalf("Fields returned error: %v", err)
	}

	customer := fieldByName(t, fields, "customer")
	if customer.Fieldtype != descriptor.TypeData || !customer.Required || customer.Label != "Customer" {
		t.Fatalf("customer = %+v", customer)
	}

	priority := fieldByName(t, fields, "priority")
	if priority.Fieldtype != descriptor.TypeSelect {
		t.Fatalf("enum should map to Select, got %q", priority.Fieldtype)
	}
	if got := priority.SelectOptions(); len(got) != 3 || got[2] != "High" {
		t.Fatalf("SelectOptions = %v", got)
	}

	if got := fieldByName(t, fields, "paid").Fieldtype; got != descriptor.TypeCheck {
		t.Fatalf("boolean should map to Check, got %q", got)
	}
	if got := fieldByName(t, fields, "delivery_date").Fieldtype; got != descriptor.TypeDate {
		t.Fatalf("date format should map to Date, got %q", got)
	}
}

func TestFieldsCarriesDependencyExtensions(t *testing.T) {
	t.Parallel()

	fields, err := Fields(context.Background(), []byte(orderSpec), "createOrder")
	if err != nil {
		t.Fatalf("Fields returned error: %v", err)
	}

	discount := fieldByName(t, fields, "discount")
	if discount.DependsOn != "eval: doc.priority == 'High'" {
		t.Fatalf("x-depends-on not carried: %v", discount.DependsOn)
	}

	secret := fieldByName(t, fields, "secret_margin")
	if !secret.Hidden || secret.Permlevel != 1 {
		t.Fatalf("x-hidden/x-permlevel not carried: %+v", secret)
	}
}

func TestFieldsBuildsTablesFromArrays(t *testing.T) {
	t.Parallel()

	fields, err := Fields(context.Background(), []byte(orderSpec), "createOrder")
	if err != nil {
		t.Fatalf("Fields returned error: %v", err)
	}

	items := fieldByName(t, fields, "items")
	if items.Fieldtype != descriptor.TypeTable {
		t.Fatalf("array of objects should map to Table, got %q", items.Fieldtype)
	}
	if len(items.Children) != 2 {
		t.Fatalf("table children = %v", fieldnames(items.Children))
	}
	if got := fieldByName(t, items.Children, "qty").Fieldtype; got != descriptor.TypeInt {
		t.Fatalf("integer child should map to Int, got %q", got)
	}
}

func TestFieldsOpensSectionForNestedObject(t *testing.T) {
	t.Parallel()

	fields, err := Fields(context.Background(), []byte(orderSpec), "createOrder")
	if err != nil {
		t.Fatalf("Fields returned error: %v", err)
	}

	section := fieldByName(t, fields, "shipping_section")
	if section.Fieldtype != descriptor.TypeSectionBreak {
		t.Fatalf("nested object should open a section, got %q", section.Fieldtype)
	}
	if !section.Collapsible {
		t.Fatalf("x-collapsible should carry onto the section")
	}
	if section.Label != "Shipping" {
		t.Fatalf("section label = %q", section.Label)
	}

	// the section's fields follow it in the flattened list
	names := fieldnames(fields)
	sectionIdx, cityIdx := -1, -1
	for idx, name := range names {
		switch name {
		case "shipping_section":
			sectionIdx = idx
		case "city":
			cityIdx = idx
		}
	}
	if sectionIdx == -1 || cityIdx == -1 || cityIdx < sectionIdx {
		t.Fatalf("nested fields should follow their section: %v", names)
	}
}

func TestFieldsUnknownOperation(t *testing.T) {
	t.Parallel()

	if _, err := Fields(context.Background(), []byte(orderSpec), "nope"); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
}

func TestFieldsEmptyDocument(t *testing.T) {
	t.Parallel()

	if _, err := Fields(context.Background(), nil, "createOrder"); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
