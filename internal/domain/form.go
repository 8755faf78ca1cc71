package domain

// FieldType enumerates the closed set of dynamic form field kinds.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeParagraph FieldType = "paragraph"
	FieldTypeNumber    FieldType = "number"
	FieldTypeQuantity  FieldType = "quantity"
	FieldTypeSelect    FieldType = "select"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeDate      FieldType = "date"
	FieldTypeImage     FieldType = "image"
	FieldTypeVideo     FieldType = "video"
	FieldTypeLocation  FieldType = "location"
)

// FormField is a single administrator-defined input. The json tags are the
// storage format: schemas live in a JSONB column.
type FormField struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Options     []string  `json:"options,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Description string    `json:"description,omitempty"`
}

// FormSchema is the sole source of truth for which form-data keys are legal
// and mandatory for a given form key. Well-known form keys include
// "new_ticket" and "ticket_diagnosis".
type FormSchema struct {
	ID      string
	FormKey string
	Fields  []FormField
}

// Field returns the field with the given key, if present.
func (s *FormSchema) Field(key string) (*FormField, bool) {
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i], true
		}
	}
	return nil, false
}
