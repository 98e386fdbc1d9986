package form

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnknownField      = errors.New("unknown field")
	ErrDuplicateField    = errors.New("duplicate field id")
	ErrUnsupportedType   = errors.New("unsupported field type")
	ErrAttributeMismatch = errors.New("attributes do not match field type")
	ErrInvalidOrder      = errors.New("order must list every field exactly once")
)

// AddElement appends a field. An empty ID is replaced by a generated one and
// missing attributes default to the variant for the field type.
func (s *Schema) AddElement(f FieldInstance) (FieldInstance, error) {
	if !f.Type.Valid() {
		return FieldInstance{}, fmt.Errorf("%w: %q", ErrUnsupportedType, f.Type)
	}
	if f.ID == "" {
		f.ID = string(f.Type) + "-" + uuid.NewString()
	}
	if s.indexOf(f.ID) >= 0 {
		return FieldInstance{}, fmt.Errorf("%w: %s", ErrDuplicateField, f.ID)
	}
	if f.Attributes == nil {
		f.Attributes = newAttributes(f.Type)
	}
	if !fits(f.Type, f.Attributes) {
		return FieldInstance{}, ErrAttributeMismatch
	}
	if f.Attributes.base().Label == "" {
		f.Attributes.base().Label = f.Type.displayName()
	}
	if err := checkElement(f); err != nil {
		return FieldInstance{}, err
	}
	s.Elements = append(s.Elements, f)
	return f, nil
}

// UpdateElement overlays a partial JSON attribute document onto the field's
// current attributes. Keys absent from patch keep their value.
func (s *Schema) UpdateElement(id string, patch json.RawMessage) (FieldInstance, error) {
	i := s.indexOf(id)
	if i < 0 {
		return FieldInstance{}, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	el := s.Elements[i]
	attrs, err := cloneAttributes(el.Type, el.Attributes)
	if err != nil {
		return FieldInstance{}, err
	}
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, attrs); err != nil {
			return FieldInstance{}, fmt.Errorf("decode attributes: %w", err)
		}
	}
	updated := FieldInstance{ID: el.ID, Type: el.Type, Attributes: attrs}
	if err := checkElement(updated); err != nil {
		return FieldInstance{}, err
	}
	elements := append([]FieldInstance(nil), s.Elements...)
	elements[i] = updated
	s.Elements = elements
	return updated, nil
}

// RemoveElement deletes the field with the given id.
func (s *Schema) RemoveElement(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	elements := make([]FieldInstance, 0, len(s.Elements)-1)
	elements = append(elements, s.Elements[:i]...)
	s.Elements = append(elements, s.Elements[i+1:]...)
	return nil
}

// ReorderElements rearranges fields to match order, which must be a
// permutation of the current field ids.
func (s *Schema) ReorderElements(order []string) error {
	if len(order) != len(s.Elements) {
		return ErrInvalidOrder
	}
	elements := make([]FieldInstance, 0, len(order))
	used := make(map[string]bool, len(order))
	for _, id := range order {
		i := s.indexOf(id)
		if i < 0 || used[id] {
			return ErrInvalidOrder
		}
		used[id] = true
		elements = append(elements, s.Elements[i])
	}
	s.Elements = elements
	return nil
}
