package document

// MapDocument is the map-backed Document used by the CLI, the prompt runner,
// and tests. Callers embedding the engine in a real application typically
// adapt their own record type instead.
type MapDocument struct {
	doctype  string
	name     string
	values   map[string]any
	parent   Document
	isNew    bool
	childRow bool

	fieldProps map[string]map[string]bool
}

var _ Document = (*MapDocument)(nil)
var _ FieldPropertyStore = (*MapDocument)(nil)

// NewMap constructs a top-level document.
func NewMap(doctype, name string) *MapDocument {
	return &MapDocument{
		doctype: doctype,
		name:    name,
		values:  make(map[string]any),
	}
}

// NewChildRow constructs a child-table row document bound to its parent.
func NewChildRow(parent Document, doctype string) *MapDocument {
	return &MapDocument{
		doctype:  doctype,
		values:   make(map[string]any),
		parent:   parent,
		childRow: true,
	}
}

func (d *MapDocument) Get(fieldname string) (any, bool) {
	value, ok := d.values[fieldname]
	return value, ok
}

func (d *MapDocument) Set(fieldname string, value any) {
	d.values[fieldname] = value
}

func (d *MapDocument) Doctype() string { return d.doctype }
func (d *MapDocument) Name() string    { return d.name }

func (d *MapDocument) IsNew() bool      { return d.isNew }
func (d *MapDocument) IsChildRow() bool { return d.childRow }
func (d *MapDocument) Parent() Document { return d.parent }

// MarkNew flags the document as unsaved; the synthetic name field is only
// writable while this is set.
func (d *MapDocument) MarkNew(isNew bool) { d.isNew = isNew }

// SetName assigns the record identifier, typically after first save.
func (d *MapDocument) SetName(name string) { d.name = name }

// Values returns the backing map. Mutating it is equivalent to calling Set.
func (d *MapDocument) Values() map[string]any { return d.values }

// SetFieldProperty records a computed row-field override. It reports whether
// the stored value actually changed, which lets dependency setters stay
// idempotent.
func (d *MapDocument) SetFieldProperty(fieldname, property string, value bool) bool {
	if current, ok := d.FieldProperty(fieldname, property); ok && current == value {
		return false
	}
	if d.fieldProps == nil {
		d.fieldProps = make(map[string]map[string]bool)
	}
	props := d.fieldProps[fieldname]
	if props == nil {
		props = make(map[string]bool)
		d.fieldProps[fieldname] = props
	}
	props[property] = value
	return true
}

func (d *MapDocument) FieldProperty(fieldname, property string) (bool, bool) {
	props, ok := d.fieldProps[fieldname]
	if !ok {
		return false, false
	}
	value, ok := props[property]
	return value, ok
}
