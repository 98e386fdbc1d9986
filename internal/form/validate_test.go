package form_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/oxikpi/internal/form"
)

func text(id string, required bool) form.FieldInstance {
	return form.FieldInstance{ID: id, Type: form.TypeText, Attributes: &form.TextAttributes{Base: form.Base{Label: id, Required: required}}}
}

func number(id string, required bool) form.FieldInstance {
	return form.FieldInstance{ID: id, Type: form.TypeNumber, Attributes: &form.NumberAttributes{Base: form.Base{Label: id, Required: required}}}
}

func schemaOf(fields ...form.FieldInstance) *form.Schema {
	return &form.Schema{ID: "1", Title: "KPI", Elements: fields}
}

func TestIsEmpty(t *testing.T) {
	empty := []any{nil, "", []any{}, []form.FileRef{}, form.FileRef{}, form.Option{}, map[string]any{}, map[string]any{"value": ""}}
	for _, v := range empty {
		assert.True(t, form.IsEmpty(v), "%#v", v)
	}
	present := []any{"x", 0, 0.0, false, true, form.FileRef{ID: "9"}, []any{map[string]any{"id": "9"}}, map[string]any{"label": "A", "value": "a"}}
	for _, v := range present {
		assert.False(t, form.IsEmpty(v), "%#v", v)
	}
}

func TestValidateEntryRequiredFields(t *testing.T) {
	s := schemaOf(text("name", true), number("age", false), text("dept", true))

	cases := []struct {
		name    string
		entry   form.Entry
		missing []string
	}{
		{"all present", form.Entry{"name": "A", "dept": "CS"}, nil},
		{"optional absent", form.Entry{"name": "A", "dept": "CS", "age": ""}, nil},
		{"one missing", form.Entry{"name": "A"}, []string{"dept"}},
		{"empty string counts as absent", form.Entry{"name": "", "dept": "CS"}, []string{"name"}},
		{"nil counts as absent", form.Entry{"name": nil, "dept": nil}, []string{"name", "dept"}},
		{"empty entry", form.Entry{}, []string{"name", "dept"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.ValidateEntry(tc.entry)
			if tc.missing == nil {
				assert.NoError(t, err)
				return
			}
			var ve *form.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.missing, ve.Missing())
		})
	}
}

func TestValidateEntryRequiredFile(t *testing.T) {
	s := schemaOf(form.FieldInstance{ID: "proof", Type: form.TypeFile, Attributes: &form.FileAttributes{Base: form.Base{Label: "Proof", Required: true}}})

	assert.Error(t, s.ValidateEntry(form.Entry{"proof": []any{}}))
	assert.NoError(t, s.ValidateEntry(form.Entry{"proof": form.FileRef{ID: "3", FileName: "a.pdf"}}))
	assert.Error(t, s.ValidateEntry(form.Entry{"proof": []any{map[string]any{"id": "3"}, map[string]any{"id": "4"}}}), "single file field")
}

func TestValidateEntryConformance(t *testing.T) {
	lo, hi := 0.0, 10.0
	s := schemaOf(
		form.FieldInstance{ID: "score", Type: form.TypeNumber, Attributes: &form.NumberAttributes{Base: form.Base{Label: "Score"}, Min: &lo, Max: &hi}},
		form.FieldInstance{ID: "mail", Type: form.TypeEmail, Attributes: &form.TextAttributes{Base: form.Base{Label: "Mail"}}},
		form.FieldInstance{ID: "on", Type: form.TypeDate, Attributes: &form.TextAttributes{Base: form.Base{Label: "On"}}},
		form.FieldInstance{ID: "kind", Type: form.TypeRadio, Attributes: &form.ChoiceAttributes{Base: form.Base{Label: "Kind"}, Options: []form.Option{{Label: "A", Value: "a"}}}},
		form.FieldInstance{ID: "ok", Type: form.TypeCheckbox, Attributes: &form.TextAttributes{Base: form.Base{Label: "Ok"}}},
	)

	good := form.Entry{"score": 7, "mail": "hod@uni.edu", "on": "2024-05-01", "kind": map[string]any{"label": "A", "value": "a"}, "ok": false}
	assert.NoError(t, s.ValidateEntry(good))
	assert.NoError(t, s.ValidateEntry(form.Entry{"score": "3.5"}))

	bad := form.Entry{"score": 11, "mail": "nope", "on": "05/01/2024", "kind": "b", "ok": "yes", "ghost": 1}
	var ve *form.ValidationError
	require.ErrorAs(t, s.ValidateEntry(bad), &ve)
	got := map[string]string{}
	for _, fe := range ve.Fields {
		got[fe.FieldID] = fe.Reason
	}
	assert.Equal(t, map[string]string{
		"ghost": "is not a field of this form",
		"score": "must be at most 10",
		"mail":  "must be a valid email address",
		"on":    "must be a date in YYYY-MM-DD form",
		"kind":  `"b" is not one of the options`,
		"ok":    "must be true or false",
	}, got)
}

func TestValidateNumberRejectsNonFinite(t *testing.T) {
	lo, hi := 0.0, 10.0
	s := schemaOf(form.FieldInstance{ID: "score", Type: form.TypeNumber, Attributes: &form.NumberAttributes{Base: form.Base{Label: "Score"}, Min: &lo, Max: &hi}})

	for _, v := range []any{"NaN", "nan", "Inf", "-Infinity", json.Number("NaN"), math.NaN(), math.Inf(1)} {
		assert.Error(t, s.ValidateEntry(form.Entry{"score": v}), "%v", v)
	}
	assert.NoError(t, s.ValidateEntry(form.Entry{"score": " 4 "}))
}

func TestValidateRowsIgnoresBlankRows(t *testing.T) {
	s := schemaOf(text("name", true))

	assert.NoError(t, s.ValidateRows([]form.Entry{{}, {"name": "A"}, {}}))

	err := s.ValidateRows([]form.Entry{{}})
	var re *form.RowsError
	require.ErrorAs(t, err, &re, "a lone blank row is still validated")
	assert.Equal(t, []int{1}, re.Rows)
}

func TestValidateRowsReportsEveryFailingRow(t *testing.T) {
	s := schemaOf(text("name", true), text("dept", true), number("n", false))

	rows := []form.Entry{
		{"n": 1},
		{"name": "B", "dept": "CS"},
		{"name": "", "dept": ""},
		{"name": "D"},
	}
	err := s.ValidateRows(rows)
	var re *form.RowsError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []int{1, 4}, re.Rows, "rows are listed once each, blank row 3 skipped")
	assert.Len(t, re.Fields[1], 2)
	assert.EqualError(t, err, "please complete all required fields in rows: 1, 4")
}

func TestEndToEndSingleEntrySubmission(t *testing.T) {
	s := schemaOf(text("f1", true), number("f2", false))

	err := s.ValidateEntry(form.Entry{"f2": 5})
	var ve *form.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"f1"}, ve.Missing())

	assert.NoError(t, s.ValidateEntry(form.Entry{"f1": "x", "f2": 5}))
}
