package models

import "github.com/parisxmas/oxikpi/internal/form"

// Submission is one single-entry response to a form.
type Submission struct {
	ID        string     `json:"id,omitempty"`
	FormID    string     `json:"formId"`
	Data      form.Entry `json:"data"`
	Files     []string   `json:"files,omitempty"` // document IDs
	CreatedBy string     `json:"createdBy"`
	CreatedAt string     `json:"createdAt"`
	UpdatedAt string     `json:"updatedAt"`
}
