package descriptor

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// documentFile is the on-disk shape: either a bare field list or a document
// with a top-level "fields" key plus optional form metadata.
type documentFile struct {
	Title  string  `json:"title" yaml:"title"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Schema is a parsed descriptor document.
type Schema struct {
	Title  string
	Fields []Field
}

// Load parses a JSON or YAML descriptor document from r. Labels and
// descriptions are sanitized on the way in so downstream renderers can embed
// them without further escaping.
func Load(r io.Reader) (Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Schema{}, fmt.Errorf("descriptor: read schema: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a descriptor document from fsys.
func LoadFile(fsys fs.FS, path string) (Schema, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Schema{}, fmt.Errorf("descriptor: read %s: %w", path, err)
	}
	schema, err := Parse(data)
	if err != nil {
		return Schema{}, fmt.Errorf("descriptor: parse %s: %w", path, err)
	}
	return schema, nil
}

// Parse decodes a descriptor document from raw JSON or YAML bytes.
func Parse(data []byte) (Schema, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Schema{}, fmt.Errorf("descriptor: empty schema document")
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			// Fall back to a bare list before giving up.
			var fields []Field
			if listErr := yaml.Unmarshal(data, &fields); listErr != nil {
				return Schema{}, fmt.Errorf("descriptor: invalid JSON or YAML schema")
			}
			doc.Fields = fields
		}
	}
	if len(doc.Fields) == 0 {
		var fields []Field
		if err := yaml.Unmarshal(data, &fields); err == nil && len(fields) > 0 {
			doc.Fields = fields
		}
	}

	schema := Schema{Title: strings.TrimSpace(doc.Title)}
	schema.Fields = make([]Field, 0, len(doc.Fields))
	seen := make(map[string]struct{}, len(doc.Fields))
	for idx, field := range doc.Fields {
		normalized, err := normalizeField(field, idx)
		if err != nil {
			return Schema{}, err
		}
		if normalized.Fieldname != "" {
			if _, dup := seen[normalized.Fieldname]; dup {
				return Schema{}, fmt.Errorf("descriptor: duplicate fieldname %q", normalized.Fieldname)
			}
			seen[normalized.Fieldname] = struct{}{}
		}
		schema.Fields = append(schema.Fields, normalized)
	}
	return schema, nil
}

func normalizeField(field Field, idx int) (Field, error) {
	field.Fieldname = strings.TrimSpace(field.Fieldname)
	if field.Fieldtype == "" {
		field.Fieldtype = TypeData
	}
	if field.Fieldname == "" && !field.Fieldtype.IsBreak() {
		return Field{}, fmt.Errorf("descriptor: field %d has no fieldname", idx)
	}
	field.Label = sanitizeMarkup(field.Label)
	field.Description = sanitizeMarkup(field.Description)
	if field.Fieldtype == TypeTable {
		children := make([]Field, 0, len(field.Children))
		for childIdx, child := range field.Children {
			normalized, err := normalizeField(child, childIdx)
			if err != nil {
				return Field{}, fmt.Errorf("descriptor: table %q: %w", field.Fieldname, err)
			}
			children = append(children, normalized)
		}
		field.Children = children
	}
	return field, nil
}
