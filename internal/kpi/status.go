// Package kpi models KPI assignments to department pillars and the QOC review
// workflow over their submitted data.
package kpi

import (
	"errors"
	"fmt"
)

// Status is the review state of an assigned KPI.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRedo     Status = "redo"
)

var ErrInvalidDecision = errors.New("decision must be approved or redo")

// ParseDecision accepts the two review outcomes.
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRedo:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

// BadgeVariant is the tone a status is shown with.
type BadgeVariant string

const (
	BadgeNeutral  BadgeVariant = "neutral"
	BadgePositive BadgeVariant = "positive"
	BadgeNegative BadgeVariant = "negative"
)

type Badge struct {
	Variant BadgeVariant `json:"variant"`
	Label   string       `json:"label"`
}

// BadgeFor maps a status to its badge. Unknown statuses are shown as pending.
func BadgeFor(s Status) Badge {
	switch s {
	case StatusApproved:
		return Badge{Variant: BadgePositive, Label: "Approved"}
	case StatusRedo:
		return Badge{Variant: BadgeNegative, Label: "Needs Revision"}
	default:
		return Badge{Variant: BadgeNeutral, Label: "Pending Review"}
	}
}
