package form

import "fmt"

// Schema is a KPI form: an ordered list of field definitions plus metadata.
// Element order is display order and table column order.
type Schema struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Value       float64         `json:"value"`
	Elements    []FieldInstance `json:"elements"`
	CreatedBy   string          `json:"createdBy,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

// Field returns the element with the given id.
func (s *Schema) Field(id string) (FieldInstance, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Elements[i], true
	}
	return FieldInstance{}, false
}

func (s *Schema) indexOf(id string) int {
	for i, el := range s.Elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose element slice can be edited independently.
// Attribute values are never mutated in place, so they are shared.
func (s *Schema) Clone() *Schema {
	c := *s
	c.Elements = append([]FieldInstance(nil), s.Elements...)
	return &c
}

// SimpleFields returns the fields edited inline in a table cell, in order.
func (s *Schema) SimpleFields() []FieldInstance {
	var out []FieldInstance
	for _, el := range s.Elements {
		if !el.Type.Complex() {
			out = append(out, el)
		}
	}
	return out
}

// ComplexFields returns the fields edited through the table's modal editor.
func (s *Schema) ComplexFields() []FieldInstance {
	var out []FieldInstance
	for _, el := range s.Elements {
		if el.Type.Complex() {
			out = append(out, el)
		}
	}
	return out
}

// Check verifies the structural invariants of a schema: a title, unique
// non-empty element ids, known types with matching attribute variants, and
// consistent per-type attributes.
func (s *Schema) Check() error {
	var errs []FieldError
	if s.Title == "" {
		errs = append(errs, FieldError{FieldID: "title", Reason: "is required"})
	}
	seen := make(map[string]bool, len(s.Elements))
	for i, el := range s.Elements {
		if el.ID == "" {
			errs = append(errs, FieldError{FieldID: fmt.Sprintf("elements[%d]", i), Reason: "id is required"})
			continue
		}
		if seen[el.ID] {
			errs = append(errs, FieldError{FieldID: el.ID, Label: el.Label(), Reason: "duplicate field id"})
			continue
		}
		seen[el.ID] = true
		if err := checkElement(el); err != nil {
			errs = append(errs, FieldError{FieldID: el.ID, Label: el.Label(), Reason: err.Error()})
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkElement(el FieldInstance) error {
	if !el.Type.Valid() {
		return fmt.Errorf("unsupported field type %q", el.Type)
	}
	if el.Attributes == nil || !fits(el.Type, el.Attributes) {
		return fmt.Errorf("attributes do not match type %q", el.Type)
	}
	switch a := el.Attributes.(type) {
	case *NumberAttributes:
		if a.Min != nil && a.Max != nil && *a.Min > *a.Max {
			return fmt.Errorf("min %g is greater than max %g", *a.Min, *a.Max)
		}
	case *ChoiceAttributes:
		values := make(map[string]bool, len(a.Options))
		for _, o := range a.Options {
			if values[o.Value] {
				return fmt.Errorf("duplicate option value %q", o.Value)
			}
			values[o.Value] = true
		}
	case *TextareaAttributes:
		if a.Rows < 0 {
			return fmt.Errorf("rows must not be negative")
		}
	}
	return nil
}
