// Package openapi derives field descriptor lists from OpenAPI 3 documents.
// Request-body object properties become input fields, nested objects become
// sections, and arrays of objects become repeating tables, so an existing
// API contract can drive the layout engine without a hand-written schema.
//
// Dependency conditions travel through vendor extensions: x-depends-on,
// x-mandatory-depends-on, x-read-only-depends-on, x-hidden, x-permlevel,
// x-collapsible, and x-collapsible-depends-on map onto the corresponding
// descriptor members.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formlayout/pkg/descriptor"
)

const (
	extDependsOn            = "x-depends-on"
	extMandatoryDependsOn   = "x-mandatory-depends-on"
	extReadOnlyDependsOn    = "x-read-only-depends-on"
	extHidden               = "x-hidden"
	extPermlevel            = "x-permlevel"
	extCollapsible          = "x-collapsible"
	extCollapsibleDependsOn = "x-collapsible-depends-on"
)

// Fields extracts the descriptor list for the operation identified by
// operationID from a raw OpenAPI 3 document.
func Fields(ctx context.Context, raw []byte, operationID string) ([]descriptor.Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	schema := requestSchema(operation.RequestBody)
	if schema == nil || schema.Value == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}
	return fieldsFromObject(schema.Value)
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestSchema(requestBody *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if requestBody == nil || requestBody.Value == nil {
		return nil
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return mt.Schema
		}
	}
	for _, mt := range content {
		return mt.Schema
	}
	return nil
}

// fieldsFromObject flattens an object schema into an ordered field list.
// Scalar properties come first, then each nested object opens a section.
// Property order inside a group is lexical, which keeps generation
// deterministic across runs.
func fieldsFromObject(schema *openapi3.Schema) ([]descriptor.Field, error) {
	if schema == nil || len(schema.Properties) == 0 {
		return nil, errors.New("openapi: request schema has no properties")
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []descriptor.Field
	var sections []descriptor.Field

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		property := ref.Value

		if isObject(property) {
			sectionFields, err := sectionFromObject(name, property)
			if err != nil {
				return nil, err
			}
			sections = append(sections, sectionFields...)
			continue
		}

		field, err := fieldFromProperty(name, property, required[name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	return append(fields, sections...), nil
}

func sectionFromObject(name string, schema *openapi3.Schema) ([]descriptor.Field, error) {
	section := descriptor.Field{
		Fieldname: name + "_section",
		Fieldtype: descriptor.TypeSectionBreak,
		Label:     labelFor(name, schema.Title),
	}
	applyExtensions(&section, schema.Extensions)

	children, err := fieldsFromObject(schema)
	if err != nil {
		return nil, fmt.Errorf("openapi: section %q: %w", name, err)
	}
	return append([]descriptor.Field{section}, children...), nil
}

func fieldFromProperty(name string, schema *openapi3.Schema, required bool) (descriptor.Field, error) {
	field := descriptor.Field{
		Fieldname:   name,
		Label:       labelFor(name, schema.Title),
		Required:    required,
		Description: schema.Description,
		Default:     schema.Default,
	}

	switch schemaType(schema) {
	case "boolean":
		field.Fieldtype = descriptor.TypeCheck
	case "integer":
		field.Fieldtype = descriptor.TypeInt
	case "number":
		field.Fieldtype = descriptor.TypeFloat
	case "array":
		table, err := tableFromArray(name, schema)
		if err != nil {
			return descriptor.Field{}, err
		}
		field.Fieldtype = descriptor.TypeTable
		field.Children = table
	default:
		switch {
		case len(schema.Enum) > 0:
			field.Fieldtype = descriptor.TypeSelect
			field.Options = enumOptions(schema.Enum)
		case schema.Format == "date" || schema.Format == "date-time":
			field.Fieldtype = descriptor.TypeDate
		case schema.Format == "textarea":
			field.Fieldtype = descriptor.TypeText
		default:
			field.Fieldtype = descriptor.TypeData
		}
	}

	applyExtensions(&field, schema.Extensions)
	return field, nil
}

func tableFromArray(name string, schema *openapi3.Schema) ([]descriptor.Field, error) {
	if schema.Items == nil || schema.Items.Value == nil || !isObject(schema.Items.Value) {
		return nil, fmt.Errorf("openapi: array %q must hold objects to become a table", name)
	}
	children, err := fieldsFromObject(schema.Items.Value)
	if err != nil {
		return nil, fmt.Errorf("openapi: table %q: %w", name, err)
	}
	return children, nil
}

func applyExtensions(field *descriptor.Field, extensions map[string]any) {
	if len(extensions) == 0 {
		return
	}
	if raw, ok := extensions[extDependsOn]; ok {
		field.DependsOn = raw
	}
	if raw, ok := extensions[extMandatoryDependsOn]; ok {
		field.MandatoryDependsOn = raw
	}
	if raw, ok := extensions[extReadOnlyDependsOn]; ok {
		field.ReadOnlyDependsOn = raw
	}
	if raw, ok := extensions[extCollapsibleDependsOn]; ok {
		field.CollapsibleDependsOn = raw
	}
	if raw, ok := extensions[extHidden]; ok {
		field.Hidden = truthyExtension(raw)
	}
	if raw, ok := extensions[extCollapsible]; ok {
		field.Collapsible = truthyExtension(raw)
	}
	if raw, ok := extensions[extPermlevel]; ok {
		switch v := raw.(type) {
		case float64:
			field.Permlevel = int(v)
		case int:
			field.Permlevel = v
		}
	}
}

func truthyExtension(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	case float64:
		return v != 0
	default:
		return false
	}
}

func enumOptions(enum []any) string {
	parts := make([]string, 0, len(enum))
	for _, entry := range enum {
		parts = append(parts, fmt.Sprint(entry))
	}
	return strings.Join(parts, "\n")
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	values := schema.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func isObject(schema *openapi3.Schema) bool {
	if schemaType(schema) == "object" {
		return true
	}
	return schemaType(schema) == "" && len(schema.Properties) > 0
}

func labelFor(name, title string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	for idx, part := range parts {
		if part == "" {
			continue
		}
		parts[idx] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
