package form

import "fmt"

// ControlKind names the input control a field renders to.
type ControlKind string

const (
	ControlInput       ControlKind = "input"
	ControlTextarea    ControlKind = "textarea"
	ControlSelect      ControlKind = "select"
	ControlCheckbox    ControlKind = "checkbox"
	ControlRadio       ControlKind = "radio"
	ControlFile        ControlKind = "file"
	ControlUnsupported ControlKind = "unsupported"
)

// Control is the render description of one field bound to a value.
type Control struct {
	FieldID     string      `json:"fieldId"`
	Kind        ControlKind `json:"kind"`
	InputType   string      `json:"inputType,omitempty"`
	Label       string      `json:"label"`
	Placeholder string      `json:"placeholder,omitempty"`
	Required    bool        `json:"required,omitempty"`
	Value       any         `json:"value,omitempty"`
	Min         *float64    `json:"min,omitempty"`
	Max         *float64    `json:"max,omitempty"`
	Rows        int         `json:"rows,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Accept      string      `json:"accept,omitempty"`
	Multiple    bool        `json:"multiple,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Render maps a field and its current value to a control. It never fails:
// unknown types produce an unsupported placeholder control.
func Render(f FieldInstance, value any) Control {
	c := Control{
		FieldID:     f.ID,
		Label:       f.Label(),
		Placeholder: f.Placeholder(),
		Required:    f.Required(),
		Value:       value,
	}
	switch f.Type {
	case TypeText, TypeEmail, TypeDate:
		c.Kind = ControlInput
		c.InputType = string(f.Type)
	case TypeNumber:
		c.Kind = ControlInput
		c.InputType = "number"
		if a, ok := f.Attributes.(*NumberAttributes); ok {
			c.Min, c.Max = a.Min, a.Max
		}
	case TypeTextarea:
		c.Kind = ControlTextarea
		c.Rows = 3
		if a, ok := f.Attributes.(*TextareaAttributes); ok && a.Rows > 0 {
			c.Rows = a.Rows
		}
	case TypeSelect, TypeRadio:
		c.Kind = ControlSelect
		if f.Type == TypeRadio {
			c.Kind = ControlRadio
		}
		if a, ok := f.Attributes.(*ChoiceAttributes); ok {
			c.Options = a.Options
		}
	case TypeCheckbox:
		c.Kind = ControlCheckbox
	case TypeFile:
		c.Kind = ControlFile
		if a, ok := f.Attributes.(*FileAttributes); ok {
			c.Accept, c.Multiple = a.AcceptedFileTypes, a.Multiple
		}
	default:
		c.Kind = ControlUnsupported
		c.Message = fmt.Sprintf("Unsupported field type: %s", f.Type)
	}
	return c
}

// Controls renders every field of the schema against e, in schema order.
func (s *Schema) Controls(e Entry) []Control {
	out := make([]Control, len(s.Elements))
	for i, f := range s.Elements {
		out[i] = Render(f, e[f.ID])
	}
	return out
}

// Column is one table header.
type Column struct {
	FieldID  string    `json:"fieldId"`
	Type     FieldType `json:"type"`
	Header   string    `json:"header"`
	Required bool      `json:"required,omitempty"`
}

func column(f FieldInstance) Column {
	header := f.Label()
	if f.Required() {
		header += " *"
	}
	return Column{FieldID: f.ID, Type: f.Type, Header: header, Required: f.Required()}
}

// Layout returns the inline columns and the modal-edited columns of the table
// view of the schema.
func (s *Schema) Layout() (inline, modal []Column) {
	inline = []Column{}
	modal = []Column{}
	for _, f := range s.Elements {
		if f.Type.Complex() {
			modal = append(modal, column(f))
		} else {
			inline = append(inline, column(f))
		}
	}
	return inline, modal
}
