package descriptor

import "strings"

// FieldType enumerates the field kinds the engine understands. Input types
// map to controls; break types only shape the layout tree.
type FieldType string

const (
	TypeData         FieldType = "Data"
	TypeText         FieldType = "Text"
	TypeSelect       FieldType = "Select"
	TypeCheck        FieldType = "Check"
	TypeInt          FieldType = "Int"
	TypeFloat        FieldType = "Float"
	TypeCurrency     FieldType = "Currency"
	TypeDate         FieldType = "Date"
	TypeLink         FieldType = "Link"
	TypeTable        FieldType = "Table"
	TypeSectionBreak FieldType = "Section Break"
	TypeColumnBreak  FieldType = "Column Break"
	TypePageBreak    FieldType = "Page Break"
)

// IsBreak reports whether the type partitions layout instead of rendering an
// input control.
func (t FieldType) IsBreak() bool {
	switch t {
	case TypeSectionBreak, TypeColumnBreak, TypePageBreak:
		return true
	}
	return false
}

// IsNumeric reports whether values of this type are numbers. The refresh
// coordinator uses this for the reselect-on-refresh affordance.
func (t FieldType) IsNumeric() bool {
	switch t {
	case TypeInt, TypeFloat, TypeCurrency:
		return true
	}
	return false
}

// Field is the static schema for a single field. A Field is immutable for the
// lifetime of a layout; swapping schemas means rebuilding the tree.
//
// The three *DependsOn members and CollapsibleDependsOn accept any condition
// shape pkg/depends understands: a bool, a func(Document) bool predicate, an
// "eval:" expression string, an "fn:" trigger name, or a plain fieldname.
type Field struct {
	Fieldname string    `json:"fieldname" yaml:"fieldname"`
	Fieldtype FieldType `json:"fieldtype" yaml:"fieldtype"`
	Label     string    `json:"label,omitempty" yaml:"label,omitempty"`

	Hidden    bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Required  bool `json:"reqd,omitempty" yaml:"reqd,omitempty"`
	ReadOnly  bool `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Permlevel int  `json:"permlevel,omitempty" yaml:"permlevel,omitempty"`

	DependsOn          any `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	MandatoryDependsOn any `json:"mandatory_depends_on,omitempty" yaml:"mandatory_depends_on,omitempty"`
	ReadOnlyDependsOn  any `json:"read_only_depends_on,omitempty" yaml:"read_only_depends_on,omitempty"`

	Collapsible          bool `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
	CollapsibleDependsOn any  `json:"collapsible_depends_on,omitempty" yaml:"collapsible_depends_on,omitempty"`

	// Options carries type-specific configuration: newline-separated choices
	// for Select, the child schema name for Table and Link.
	Options     string `json:"options,omitempty" yaml:"options,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`

	// Children holds the row schema for Table fields.
	Children []Field `json:"children,omitempty" yaml:"children,omitempty"`
}

// SelectOptions splits Options into individual choices for Select fields,
// dropping blank lines.
func (f Field) SelectOptions() []string {
	if f.Fieldtype != TypeSelect {
		return nil
	}
	var out []string
	for _, line := range strings.Split(f.Options, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// NameField is the synthetic descriptor the layout builder prepends so every
// form can surface the document identifier when the naming rule asks for it.
func NameField() Field {
	return Field{
		Fieldname: "name",
		Fieldtype: TypeData,
		Label:     "ID",
	}
}
