package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Entry is one record filled in against a schema, keyed by field id.
// Values are string, number, bool, Option, FileRef or a list of FileRef,
// or their decoded JSON equivalents.
type Entry map[string]any

// Clone returns a shallow copy; values are treated as immutable.
func (e Entry) Clone() Entry {
	c := make(Entry, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// Blank reports whether no field of the entry holds a value.
func (e Entry) Blank() bool {
	for _, v := range e {
		if !IsEmpty(v) {
			return false
		}
	}
	return true
}

// FileRef points at an uploaded document.
type FileRef struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// IsEmpty reports whether v counts as absent: nil, the empty string, an empty
// file selection, or an option or file reference without a value.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case []FileRef:
		return len(x) == 0
	case FileRef:
		return x.ID == ""
	case *FileRef:
		return x == nil || x.ID == ""
	case Option:
		return x.Value == ""
	case *Option:
		return x == nil || x.Value == ""
	case map[string]any:
		if len(x) == 0 {
			return true
		}
		if val, ok := x["value"]; ok {
			return IsEmpty(val)
		}
		if id, ok := x["id"]; ok {
			return IsEmpty(id)
		}
	}
	return false
}

var validate = validator.New()

// checkValue verifies that a non-empty value conforms to the field type.
func checkValue(f FieldInstance, v any) error {
	switch f.Type {
	case TypeText, TypeTextarea:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("must be text")
		}
	case TypeEmail:
		s, ok := v.(string)
		if !ok || validate.Var(s, "email") != nil {
			return fmt.Errorf("must be a valid email address")
		}
	case TypeDate:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("must be a date")
		}
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return fmt.Errorf("must be a date in YYYY-MM-DD form")
		}
	case TypeNumber:
		n, ok := toNumber(v)
		if !ok {
			return fmt.Errorf("must be a number")
		}
		if a, ok := f.Attributes.(*NumberAttributes); ok {
			if a.Min != nil && n < *a.Min {
				return fmt.Errorf("must be at least %g", *a.Min)
			}
			if a.Max != nil && n > *a.Max {
				return fmt.Errorf("must be at most %g", *a.Max)
			}
		}
	case TypeCheckbox:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("must be true or false")
		}
	case TypeSelect, TypeRadio:
		val, ok := optionValue(v)
		if !ok {
			return fmt.Errorf("must be one of the options")
		}
		if a, ok := f.Attributes.(*ChoiceAttributes); ok && len(a.Options) > 0 {
			for _, o := range a.Options {
				if o.Value == val {
					return nil
				}
			}
			return fmt.Errorf("%q is not one of the options", val)
		}
	case TypeFile:
		refs, ok := fileRefs(v)
		if !ok {
			return fmt.Errorf("must reference an uploaded file")
		}
		if a, ok := f.Attributes.(*FileAttributes); ok && !a.Multiple && len(refs) > 1 {
			return fmt.Errorf("accepts a single file")
		}
	}
	return nil
}

// toNumber converts v to a finite float64.
func toNumber(v any) (float64, bool) {
	n, ok := rawNumber(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func rawNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		n, err := x.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return n, err == nil
	}
	return 0, false
}

func optionValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case Option:
		return x.Value, true
	case *Option:
		return x.Value, true
	case map[string]any:
		s, ok := x["value"].(string)
		return s, ok
	}
	return "", false
}

func fileRefs(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return []string{x}, true
	case FileRef:
		return []string{x.ID}, true
	case *FileRef:
		return []string{x.ID}, true
	case []FileRef:
		ids := make([]string, len(x))
		for i, r := range x {
			ids[i] = r.ID
		}
		return ids, true
	case []string:
		return x, true
	case map[string]any:
		id, ok := x["id"].(string)
		return []string{id}, ok
	case []any:
		ids := make([]string, 0, len(x))
		for _, item := range x {
			sub, ok := fileRefs(item)
			if !ok || len(sub) != 1 {
				return nil, false
			}
			ids = append(ids, sub[0])
		}
		return ids, true
	}
	return nil, false
}
