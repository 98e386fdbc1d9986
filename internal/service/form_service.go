package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
)

// FormService manages KPI form schemas and the builder edits made to them.
type FormService struct {
	forms    FormStore
	assigned AssignedStore
}

func NewFormService(forms FormStore, assigned AssignedStore) *FormService {
	return &FormService{forms: forms, assigned: assigned}
}

type FormInput struct {
	Title       string
	Description string
	Value       float64
	Elements    []form.FieldInstance
}

// build assembles a schema through the builder so ids and labels get their
// defaults, then checks it as a whole.
func (in FormInput) build() (*form.Schema, error) {
	s := &form.Schema{Title: in.Title, Description: in.Description, Value: in.Value, Elements: []form.FieldInstance{}}
	for _, el := range in.Elements {
		if _, err := s.AddElement(el); err != nil {
			return nil, err
		}
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FormService) Create(ctx context.Context, in FormInput, createdBy string) (*form.Schema, error) {
	schema, err := in.build()
	if err != nil {
		return nil, err
	}
	now := timestamp()
	schema.CreatedBy = createdBy
	schema.CreatedAt = now
	schema.UpdatedAt = now

	id, err := s.forms.Create(ctx, schema)
	if err != nil {
		return nil, err
	}
	schema.ID = id
	return schema, nil
}

func (s *FormService) List(ctx context.Context) ([]form.Schema, error) {
	return s.forms.FindAll(ctx)
}

func (s *FormService) Get(ctx context.Context, id string) (*form.Schema, error) {
	schema, err := s.forms.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, errors.Wrapf(ErrNotFound, "form %s", id)
	}
	return schema, nil
}

// Update replaces the metadata and the whole element list.
func (s *FormService) Update(ctx context.Context, id string, in FormInput) (*form.Schema, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := in.build()
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Delete removes a form that is not assigned anywhere.
func (s *FormService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.assigned.Count(ctx, kpi.Filter{FormID: id})
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.Wrapf(ErrConflict, "form is assigned to %d pillars", n)
	}
	return s.forms.Delete(ctx, id)
}

func (s *FormService) AddElement(ctx context.Context, formID string, el form.FieldInstance) (form.FieldInstance, error) {
	var added form.FieldInstance
	err := s.edit(ctx, formID, func(schema *form.Schema) (err error) {
		added, err = schema.AddElement(el)
		return err
	})
	return added, err
}

func (s *FormService) UpdateElement(ctx context.Context, formID, elementID string, patch json.RawMessage) (form.FieldInstance, error) {
	var updated form.FieldInstance
	err := s.edit(ctx, formID, func(schema *form.Schema) (err error) {
		updated, err = schema.UpdateElement(elementID, patch)
		return err
	})
	return updated, err
}

func (s *FormService) RemoveElement(ctx context.Context, formID, elementID string) error {
	return s.edit(ctx, formID, func(schema *form.Schema) error {
		return schema.RemoveElement(elementID)
	})
}

func (s *FormService) ReorderElements(ctx context.Context, formID string, order []string) (*form.Schema, error) {
	var out *form.Schema
	err := s.edit(ctx, formID, func(schema *form.Schema) error {
		out = schema
		return schema.ReorderElements(order)
	})
	return out, err
}

// Render describes the single-entry controls of an empty form.
func (s *FormService) Render(ctx context.Context, formID string) ([]form.Control, error) {
	schema, err := s.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	return form.NewForm(schema, nil).Controls(), nil
}

// TableLayout describes an empty bulk entry table for the form.
func (s *FormService) TableLayout(ctx context.Context, formID string) (form.TableView, error) {
	schema, err := s.Get(ctx, formID)
	if err != nil {
		return form.TableView{}, err
	}
	return form.NewTable(schema).View(), nil
}

func (s *FormService) edit(ctx context.Context, formID string, fn func(*form.Schema) error) error {
	schema, err := s.Get(ctx, formID)
	if err != nil {
		return err
	}
	if err := fn(schema); err != nil {
		return err
	}
	return s.save(ctx, schema)
}

func (s *FormService) save(ctx context.Context, schema *form.Schema) error {
	schema.UpdatedAt = timestamp()
	return s.forms.Update(ctx, schema.ID, schema)
}
