package kpi

import "strings"

// Selection is an ordered set of KPI form ids picked for assignment.
type Selection struct {
	ids []string
}

func (s *Selection) Has(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Select adds id unless it is already selected.
func (s *Selection) Select(id string) {
	if !s.Has(id) {
		s.ids = append(s.ids, id)
	}
}

// Toggle flips the selection state of one id.
func (s *Selection) Toggle(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, id)
}

// ToggleAll clears the selection when every one of all is selected and
// otherwise selects each of all exactly once.
func (s *Selection) ToggleAll(all []string) {
	if len(s.ids) == len(all) {
		s.ids = nil
		return
	}
	s.ids = nil
	for _, id := range all {
		s.Select(id)
	}
}

func (s *Selection) Clear() { s.ids = nil }

func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// FormID strips the "form-" prefix the builder puts on draggable KPI ids.
func FormID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "form-")
}
