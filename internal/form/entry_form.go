package form

import (
	"context"
	"fmt"
)

// SubmitEntryFunc persists one validated entry.
type SubmitEntryFunc func(ctx context.Context, e Entry) error

// Form binds a single entry to a schema for field-by-field input.
// It is not safe for concurrent use.
type Form struct {
	schema *Schema
	entry  Entry
}

// NewForm starts a form, pre-filled from prefill when editing an entry.
func NewForm(s *Schema, prefill Entry) *Form {
	entry := Entry{}
	if prefill != nil {
		entry = prefill.Clone()
	}
	return &Form{schema: s, entry: entry}
}

// Set records the value of one field.
func (f *Form) Set(fieldID string, v any) error {
	if f.schema.indexOf(fieldID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}
	next := f.entry.Clone()
	next[fieldID] = v
	f.entry = next
	return nil
}

// Entry returns a copy of the current values.
func (f *Form) Entry() Entry { return f.entry.Clone() }

func (f *Form) Controls() []Control { return f.schema.Controls(f.entry) }

func (f *Form) Validate() error { return f.schema.ValidateEntry(f.entry) }

// Submit validates the entry and hands it to fn. On success the form is
// cleared; on any failure the current values are left untouched.
func (f *Form) Submit(ctx context.Context, fn SubmitEntryFunc) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := fn(ctx, f.entry.Clone()); err != nil {
		return err
	}
	f.entry = Entry{}
	return nil
}
