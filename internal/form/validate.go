package form

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNoEntries is returned when a table is submitted without any filled row.
var ErrNoEntries = errors.New("no data to submit")

const reasonRequired = "is required"

// FieldError describes one field that failed validation.
type FieldError struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label,omitempty"`
	Reason  string `json:"reason"`
}

func (fe FieldError) String() string {
	name := fe.Label
	if name == "" {
		name = fe.FieldID
	}
	return name + " " + fe.Reason
}

// ValidationError collects every field problem of one entry or schema.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		parts[i] = fe.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Missing returns the ids of required fields that had no value.
func (e *ValidationError) Missing() []string {
	var ids []string
	for _, fe := range e.Fields {
		if fe.Reason == reasonRequired {
			ids = append(ids, fe.FieldID)
		}
	}
	return ids
}

// RowsError reports every failing table row at once. Rows are 1-based.
type RowsError struct {
	Rows   []int                `json:"rows"`
	Fields map[int][]FieldError `json:"fields"`
}

func (e *RowsError) Error() string {
	rows := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		rows[i] = strconv.Itoa(r)
	}
	return "please complete all required fields in rows: " + strings.Join(rows, ", ")
}

// ValidateEntry checks e against the schema. It fails when e has a key that is
// not a field of the schema, when a required field is empty, or when a value
// does not conform to its field type.
func (s *Schema) ValidateEntry(e Entry) error {
	var errs []FieldError

	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s.indexOf(k) < 0 {
			errs = append(errs, FieldError{FieldID: k, Reason: "is not a field of this form"})
		}
	}

	for _, f := range s.Elements {
		v := e[f.ID]
		if IsEmpty(v) {
			if f.Required() {
				errs = append(errs, FieldError{FieldID: f.ID, Label: f.Label(), Reason: reasonRequired})
			}
			continue
		}
		if err := checkValue(f, v); err != nil {
			errs = append(errs, FieldError{FieldID: f.ID, Label: f.Label(), Reason: err.Error()})
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateRows validates a batch of table rows. Blank rows are skipped when
// there is more than one row; every other row must pass ValidateEntry. All
// failing rows are reported together in a *RowsError.
func (s *Schema) ValidateRows(rows []Entry) error {
	var failed []int
	details := make(map[int][]FieldError)
	for i, row := range rows {
		if len(rows) > 1 && row.Blank() {
			continue
		}
		err := s.ValidateEntry(row)
		if err == nil {
			continue
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		failed = append(failed, i+1)
		details[i+1] = ve.Fields
	}
	if len(failed) > 0 {
		return &RowsError{Rows: failed, Fields: details}
	}
	return nil
}

// FilledRows returns clones of the rows holding at least one value.
func FilledRows(rows []Entry) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if !row.Blank() {
			out = append(out, row.Clone())
		}
	}
	return out
}
