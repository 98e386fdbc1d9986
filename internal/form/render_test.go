package form_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parisxmas/oxikpi/internal/form"
)

func TestRenderControls(t *testing.T) {
	lo := 1.0
	cases := []struct {
		field     form.FieldInstance
		kind      form.ControlKind
		inputType string
	}{
		{text("t", false), form.ControlInput, "text"},
		{form.FieldInstance{ID: "e", Type: form.TypeEmail, Attributes: &form.TextAttributes{}}, form.ControlInput, "email"},
		{form.FieldInstance{ID: "d", Type: form.TypeDate, Attributes: &form.TextAttributes{}}, form.ControlInput, "date"},
		{form.FieldInstance{ID: "n", Type: form.TypeNumber, Attributes: &form.NumberAttributes{Min: &lo}}, form.ControlInput, "number"},
		{form.FieldInstance{ID: "ta", Type: form.TypeTextarea, Attributes: &form.TextareaAttributes{}}, form.ControlTextarea, ""},
		{form.FieldInstance{ID: "s", Type: form.TypeSelect, Attributes: &form.ChoiceAttributes{}}, form.ControlSelect, ""},
		{form.FieldInstance{ID: "r", Type: form.TypeRadio, Attributes: &form.ChoiceAttributes{}}, form.ControlRadio, ""},
		{form.FieldInstance{ID: "c", Type: form.TypeCheckbox, Attributes: &form.TextAttributes{}}, form.ControlCheckbox, ""},
		{form.FieldInstance{ID: "f", Type: form.TypeFile, Attributes: &form.FileAttributes{Multiple: true}}, form.ControlFile, ""},
	}
	for _, tc := range cases {
		c := form.Render(tc.field, nil)
		assert.Equal(t, tc.kind, c.Kind, tc.field.ID)
		assert.Equal(t, tc.inputType, c.InputType, tc.field.ID)
	}

	n := form.Render(cases[3].field, 4)
	assert.Equal(t, &lo, n.Min)
	assert.Equal(t, 4, n.Value)
	assert.Equal(t, 3, form.Render(cases[4].field, nil).Rows)
	assert.True(t, form.Render(cases[8].field, nil).Multiple)
}

func TestRenderUnsupportedType(t *testing.T) {
	f := form.FieldInstance{ID: "sig", Type: "signature", Attributes: &form.UnknownAttributes{Base: form.Base{Label: "Sign"}}}
	c := form.Render(f, "x")
	assert.Equal(t, form.ControlUnsupported, c.Kind)
	assert.Equal(t, "Unsupported field type: signature", c.Message)
	assert.Equal(t, "Sign", c.Label)
}

func TestLayoutSplitsInlineAndModalColumns(t *testing.T) {
	s := schemaOf(
		text("name", true),
		form.FieldInstance{ID: "notes", Type: form.TypeTextarea, Attributes: &form.TextareaAttributes{Base: form.Base{Label: "Notes"}}},
		number("n", false),
		form.FieldInstance{ID: "proof", Type: form.TypeFile, Attributes: &form.FileAttributes{Base: form.Base{Label: "Proof", Required: true}}},
	)
	inline, modal := s.Layout()
	assert.Equal(t, []form.Column{
		{FieldID: "name", Type: form.TypeText, Header: "name *", Required: true},
		{FieldID: "n", Type: form.TypeNumber, Header: "n"},
	}, inline)
	assert.Equal(t, []form.Column{
		{FieldID: "notes", Type: form.TypeTextarea, Header: "Notes"},
		{FieldID: "proof", Type: form.TypeFile, Header: "Proof *", Required: true},
	}, modal)
}
