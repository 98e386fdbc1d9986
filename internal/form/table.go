package form

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrRowOutOfRange = errors.New("row out of range")
	ErrNotComplex    = errors.New("field is edited inline")
	ErrEditorClosed  = errors.New("no field is being edited")
)

// SubmitRowsFunc persists a batch of validated, non-blank rows.
type SubmitRowsFunc func(ctx context.Context, rows []Entry) error

type editorState struct {
	open   bool
	row    int
	field  FieldInstance
	staged any
}

// Table holds the rows of a bulk entry grid bound to one schema, together with
// the modal editor used for complex fields. A table always has at least one
// row. It is not safe for concurrent use.
type Table struct {
	schema *Schema
	rows   []Entry
	editor editorState
}

// NewTable starts a table, optionally loaded with existing rows.
func NewTable(s *Schema, rows ...Entry) *Table {
	t := &Table{schema: s}
	for _, r := range rows {
		t.rows = append(t.rows, r.Clone())
	}
	if len(t.rows) == 0 {
		t.rows = []Entry{{}}
	}
	return t
}

func (t *Table) Schema() *Schema { return t.schema }

// Rebind moves the table onto a newer version of its schema. Values of fields
// that no longer exist are dropped from every row, and an editor open on such
// a field is closed.
func (t *Table) Rebind(s *Schema) {
	t.schema = s
	for i, r := range t.rows {
		var next Entry
		for id := range r {
			if s.indexOf(id) >= 0 {
				continue
			}
			if next == nil {
				next = r.Clone()
			}
			delete(next, id)
		}
		if next != nil {
			t.rows[i] = next
		}
	}
	if t.editor.open {
		f, ok := s.Field(t.editor.field.ID)
		if !ok || !f.Type.Complex() {
			t.editor = editorState{}
			return
		}
		t.editor.field = f
	}
}

func (t *Table) Len() int { return len(t.rows) }

// Rows returns copies of every row in order.
func (t *Table) Rows() []Entry {
	out := make([]Entry, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// Row returns a copy of one row.
func (t *Table) Row(i int) (Entry, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	return t.rows[i].Clone(), nil
}

// AddRow appends an empty row.
func (t *Table) AddRow() {
	t.rows = append(t.rows, Entry{})
}

// RemoveRow deletes row i. Removing the only row leaves a single empty row.
func (t *Table) RemoveRow(i int) error {
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	if len(t.rows) == 1 {
		t.rows = []Entry{{}}
		t.editor = editorState{}
		return nil
	}
	rows := make([]Entry, 0, len(t.rows)-1)
	rows = append(rows, t.rows[:i]...)
	t.rows = append(rows, t.rows[i+1:]...)

	if t.editor.open {
		switch {
		case t.editor.row == i:
			t.editor = editorState{}
		case t.editor.row > i:
			t.editor.row--
		}
	}
	return nil
}

// UpdateCell replaces one value in one row. The row map is copied so that no
// other row, and no previously returned copy, observes the change.
func (t *Table) UpdateCell(row int, fieldID string, v any) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if t.schema.indexOf(fieldID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}
	next := t.rows[row].Clone()
	next[fieldID] = v
	t.rows[row] = next
	return nil
}

// OpenComplexEditor stages the current value of a complex field of one row.
// Opening replaces any editor that was already open.
func (t *Table) OpenComplexEditor(row int, fieldID string) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	f, ok := t.schema.Field(fieldID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}
	if !f.Type.Complex() {
		return fmt.Errorf("%w: %s", ErrNotComplex, fieldID)
	}
	t.editor = editorState{open: true, row: row, field: f, staged: t.rows[row][fieldID]}
	return nil
}

// StageComplexValue replaces the staged value without touching the row.
func (t *Table) StageComplexValue(v any) error {
	if !t.editor.open {
		return ErrEditorClosed
	}
	t.editor.staged = v
	return nil
}

// SaveComplexValue writes the staged value back to its cell and closes the
// editor.
func (t *Table) SaveComplexValue() error {
	if !t.editor.open {
		return ErrEditorClosed
	}
	ed := t.editor
	t.editor = editorState{}
	return t.UpdateCell(ed.row, ed.field.ID, ed.staged)
}

// CancelComplexEditor discards the staged value.
func (t *Table) CancelComplexEditor() {
	t.editor = editorState{}
}

// EditorView describes the open modal editor.
type EditorView struct {
	Row     int     `json:"row"`
	Control Control `json:"control"`
}

// Editor returns the open editor, if any.
func (t *Table) Editor() (EditorView, bool) {
	if !t.editor.open {
		return EditorView{}, false
	}
	return EditorView{Row: t.editor.row, Control: Render(t.editor.field, t.editor.staged)}, true
}

// Validate runs the batch validation over all rows.
func (t *Table) Validate() error { return t.schema.ValidateRows(t.rows) }

// Submit sends every non-blank row to fn in one batch. Nothing is sent unless
// all rows validate. On success the table resets to one empty row; on failure
// it is left as it was.
func (t *Table) Submit(ctx context.Context, fn SubmitRowsFunc) error {
	filled := FilledRows(t.rows)
	if len(filled) == 0 {
		return ErrNoEntries
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := fn(ctx, filled); err != nil {
		return err
	}
	t.rows = []Entry{{}}
	t.editor = editorState{}
	return nil
}

// ComplexCell marks whether a modal-edited field of a row holds a value.
type ComplexCell struct {
	FieldID  string `json:"fieldId"`
	Label    string `json:"label"`
	HasValue bool   `json:"hasValue"`
}

type RowView struct {
	Index   int           `json:"index"`
	Cells   []Control     `json:"cells"`
	Complex []ComplexCell `json:"complex"`
}

// TableView is the render description of the whole table.
type TableView struct {
	Columns []Column    `json:"columns"`
	Complex []Column    `json:"complexColumns"`
	Rows    []RowView   `json:"rows"`
	Editor  *EditorView `json:"editor,omitempty"`
}

// View renders the table.
func (t *Table) View() TableView {
	inline, modal := t.schema.Layout()
	simpleFields, complexFields := t.schema.SimpleFields(), t.schema.ComplexFields()

	v := TableView{Columns: inline, Complex: modal, Rows: make([]RowView, len(t.rows))}
	for i, row := range t.rows {
		rv := RowView{Index: i, Cells: make([]Control, len(simpleFields)), Complex: make([]ComplexCell, len(complexFields))}
		for j, f := range simpleFields {
			rv.Cells[j] = Render(f, row[f.ID])
		}
		for j, f := range complexFields {
			rv.Complex[j] = ComplexCell{FieldID: f.ID, Label: f.Label(), HasValue: !IsEmpty(row[f.ID])}
		}
		v.Rows[i] = rv
	}
	if ed, ok := t.Editor(); ok {
		v.Editor = &ed
	}
	return v
}
