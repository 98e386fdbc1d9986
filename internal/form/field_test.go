package form_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/oxikpi/internal/form"
)

const schemaJSON = `{
	"id": "12",
	"title": "Research output",
	"value": 20,
	"elements": [
		{"id": "title", "type": "text", "attributes": {"label": "Paper title", "required": true}},
		{"id": "count", "type": "number", "attributes": {"label": "Citations", "min": 0, "max": 500}},
		{"id": "venue", "type": "select", "attributes": {"label": "Venue", "options": [{"label": "Journal", "value": "journal"}, {"label": "Conference", "value": "conf"}]}},
		{"id": "proof", "type": "file", "attributes": {"label": "Proof", "acceptedFileTypes": ".pdf"}},
		{"id": "legacy", "type": "signature", "attributes": {"label": "Sign", "pen": "blue"}}
	]
}`

func TestSchemaDecodesTypedAttributes(t *testing.T) {
	var s form.Schema
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), &s))
	require.Len(t, s.Elements, 5)

	num, ok := s.Elements[1].Attributes.(*form.NumberAttributes)
	require.True(t, ok)
	require.NotNil(t, num.Min)
	assert.Equal(t, 0.0, *num.Min)
	assert.Equal(t, 500.0, *num.Max)

	choice, ok := s.Elements[2].Attributes.(*form.ChoiceAttributes)
	require.True(t, ok)
	assert.Equal(t, []form.Option{{Label: "Journal", Value: "journal"}, {Label: "Conference", Value: "conf"}}, choice.Options)

	file, ok := s.Elements[3].Attributes.(*form.FileAttributes)
	require.True(t, ok)
	assert.Equal(t, ".pdf", file.AcceptedFileTypes)
	assert.False(t, file.Multiple)

	assert.True(t, s.Elements[0].Required())
	assert.Equal(t, "Paper title", s.Elements[0].Label())
}

func TestUnknownFieldTypeRoundTrips(t *testing.T) {
	var s form.Schema
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), &s))

	legacy := s.Elements[4]
	_, ok := legacy.Attributes.(*form.UnknownAttributes)
	require.True(t, ok)
	assert.Equal(t, "Sign", legacy.Label())

	out, err := json.Marshal(legacy)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"legacy","type":"signature","attributes":{"label":"Sign","pen":"blue"}}`, string(out))
}

func TestCheckRejectsBrokenSchemas(t *testing.T) {
	lo, hi := 10.0, 1.0
	s := form.Schema{
		Title: "Broken",
		Elements: []form.FieldInstance{
			{ID: "a", Type: form.TypeText, Attributes: &form.TextAttributes{Base: form.Base{Label: "A"}}},
			{ID: "a", Type: form.TypeText, Attributes: &form.TextAttributes{Base: form.Base{Label: "A again"}}},
			{ID: "n", Type: form.TypeNumber, Attributes: &form.NumberAttributes{Min: &lo, Max: &hi}},
			{ID: "s", Type: form.TypeSelect, Attributes: &form.TextAttributes{}},
		},
	}
	err := s.Check()
	var ve *form.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 3)
	assert.Equal(t, "duplicate field id", ve.Fields[0].Reason)
	assert.Equal(t, "n", ve.Fields[1].FieldID)
	assert.Equal(t, "s", ve.Fields[2].FieldID)
}

func TestFieldTypeClassification(t *testing.T) {
	for _, ft := range []form.FieldType{form.TypeTextarea, form.TypeRadio, form.TypeFile} {
		assert.True(t, ft.Complex(), ft)
	}
	for _, ft := range []form.FieldType{form.TypeText, form.TypeNumber, form.TypeEmail, form.TypeDate, form.TypeSelect, form.TypeCheckbox} {
		assert.False(t, ft.Complex(), ft)
		assert.True(t, ft.Valid(), ft)
	}
	assert.False(t, form.FieldType("signature").Valid())
}
