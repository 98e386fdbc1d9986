// Package form holds the KPI form schema model: typed field definitions, the
// builder operations that edit a schema, entry validation, and the two entry
// renderers (single form and multi-row table).
package form

import (
	"encoding/json"
	"fmt"
)

// FieldType tags a field definition.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeSelect   FieldType = "select"
	TypeCheckbox FieldType = "checkbox"
	TypeRadio    FieldType = "radio"
	TypeDate     FieldType = "date"
	TypeEmail    FieldType = "email"
	TypeFile     FieldType = "file"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeTextarea, TypeNumber, TypeSelect, TypeCheckbox,
		TypeRadio, TypeDate, TypeEmail, TypeFile:
		return true
	}
	return false
}

// Complex reports whether values of this type are edited in the table's modal
// editor rather than inline in a cell.
func (t FieldType) Complex() bool {
	return t == TypeTextarea || t == TypeRadio || t == TypeFile
}

func (t FieldType) displayName() string {
	switch t {
	case TypeTextarea:
		return "Text Area"
	case TypeSelect:
		return "Select"
	case TypeCheckbox:
		return "Checkbox"
	case TypeRadio:
		return "Radio Group"
	case TypeNumber:
		return "Number"
	case TypeDate:
		return "Date"
	case TypeEmail:
		return "Email"
	case TypeFile:
		return "File Upload"
	}
	return "Text Field"
}

// Option is one choice of a select or radio field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Base carries the attributes every field type has.
type Base struct {
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

func (b *Base) base() *Base { return b }

// Attributes is the closed set of per-type attribute structs. Only the
// variants declared in this package implement it.
type Attributes interface {
	base() *Base
}

// TextAttributes serves text, email, date and checkbox fields.
type TextAttributes struct {
	Base
}

type TextareaAttributes struct {
	Base
	Rows int `json:"rows,omitempty"`
}

type NumberAttributes struct {
	Base
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ChoiceAttributes serves select and radio fields.
type ChoiceAttributes struct {
	Base
	Options []Option `json:"options,omitempty"`
}

type FileAttributes struct {
	Base
	AcceptedFileTypes string `json:"acceptedFileTypes,omitempty"`
	Multiple          bool   `json:"multiple,omitempty"`
}

// UnknownAttributes keeps the raw attribute document of a field whose type this
// build does not know, so stored schemas round-trip unchanged.
type UnknownAttributes struct {
	Base
	Raw json.RawMessage `json:"-"`
}

func (u UnknownAttributes) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return json.Marshal(u.Base)
}

func newAttributes(t FieldType) Attributes {
	switch t {
	case TypeText, TypeEmail, TypeDate, TypeCheckbox:
		return &TextAttributes{}
	case TypeTextarea:
		return &TextareaAttributes{}
	case TypeNumber:
		return &NumberAttributes{}
	case TypeSelect, TypeRadio:
		return &ChoiceAttributes{}
	case TypeFile:
		return &FileAttributes{}
	}
	return &UnknownAttributes{}
}

// fits reports whether a is the attribute variant for t.
func fits(t FieldType, a Attributes) bool {
	switch a.(type) {
	case *TextAttributes:
		return t == TypeText || t == TypeEmail || t == TypeDate || t == TypeCheckbox
	case *TextareaAttributes:
		return t == TypeTextarea
	case *NumberAttributes:
		return t == TypeNumber
	case *ChoiceAttributes:
		return t == TypeSelect || t == TypeRadio
	case *FileAttributes:
		return t == TypeFile
	case *UnknownAttributes:
		return !t.Valid()
	}
	return false
}

// DecodeAttributes decodes a JSON attribute document into the variant for t.
func DecodeAttributes(t FieldType, raw json.RawMessage) (Attributes, error) {
	a := newAttributes(t)
	if u, ok := a.(*UnknownAttributes); ok {
		u.Raw = append(json.RawMessage(nil), raw...)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return a, nil
	}
	if err := json.Unmarshal(raw, a); err != nil {
		return nil, fmt.Errorf("decode %s attributes: %w", t, err)
	}
	return a, nil
}

func cloneAttributes(t FieldType, a Attributes) (Attributes, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return DecodeAttributes(t, raw)
}

// FieldInstance is one field of a schema. Its ID is unique within the schema.
type FieldInstance struct {
	ID         string
	Type       FieldType
	Attributes Attributes
}

// Label returns the field label, falling back to the ID.
func (f FieldInstance) Label() string {
	if f.Attributes != nil && f.Attributes.base().Label != "" {
		return f.Attributes.base().Label
	}
	return f.ID
}

func (f FieldInstance) Required() bool {
	return f.Attributes != nil && f.Attributes.base().Required
}

func (f FieldInstance) Placeholder() string {
	if f.Attributes == nil {
		return ""
	}
	return f.Attributes.base().Placeholder
}

type fieldJSON struct {
	ID         string          `json:"id"`
	Type       FieldType       `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

func (f FieldInstance) MarshalJSON() ([]byte, error) {
	attrs := f.Attributes
	if attrs == nil {
		attrs = newAttributes(f.Type)
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fieldJSON{ID: f.ID, Type: f.Type, Attributes: raw})
}

func (f *FieldInstance) UnmarshalJSON(data []byte) error {
	var aux fieldJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	attrs, err := DecodeAttributes(aux.Type, aux.Attributes)
	if err != nil {
		return fmt.Errorf("field %q: %w", aux.ID, err)
	}
	f.ID = aux.ID
	f.Type = aux.Type
	f.Attributes = attrs
	return nil
}
