package kpi

import (
	"errors"
	"fmt"
	"time"

	"github.com/parisxmas/oxikpi/internal/form"
)

var (
	ErrNotFound        = errors.New("assigned KPI not found")
	ErrAlreadyReviewed = errors.New("assigned KPI has already been reviewed")
	ErrLocked          = errors.New("approved KPI data can no longer be changed")
)

// AssignedKPI is one KPI form assigned to a department pillar, with the data
// faculty submitted against it and the QOC verdict.
type AssignedKPI struct {
	ID             string       `json:"assignedKpiId"`
	FormID         string       `json:"formId"`
	KPIName        string       `json:"kpiName"`
	KPIDescription string       `json:"kpiDescription,omitempty"`
	DepartmentID   string       `json:"departmentId"`
	PillarID       string       `json:"pillarId"`
	Status         Status       `json:"status"`
	Remark         string       `json:"remark,omitempty"`
	FormInput      []form.Entry `json:"formInput,omitempty"`
	AssignedBy     string       `json:"assignedBy,omitempty"`
	SubmittedBy    string       `json:"submittedBy,omitempty"`
	SubmittedAt    string       `json:"submittedAt,omitempty"`
	ReviewedBy     string       `json:"reviewedBy,omitempty"`
	ReviewedAt     string       `json:"reviewedAt,omitempty"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
}

// Review records a QOC decision. Only pending KPIs can be reviewed; a KPI sent
// back for redo becomes reviewable again once new data is submitted.
func (a *AssignedKPI) Review(decision Status, remark, reviewer string, at time.Time) error {
	if decision != StatusApproved && decision != StatusRedo {
		return fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}
	if a.Status != StatusPending && a.Status != "" {
		return fmt.Errorf("%w: status is %s", ErrAlreadyReviewed, a.Status)
	}
	ts := at.UTC().Format(time.RFC3339)
	a.Status = decision
	a.Remark = remark
	a.ReviewedBy = reviewer
	a.ReviewedAt = ts
	a.UpdatedAt = ts
	return nil
}

// Submit replaces the submitted rows. Resubmitting after a redo reopens the
// KPI for review.
func (a *AssignedKPI) Submit(rows []form.Entry, by string, at time.Time) error {
	if a.Status == StatusApproved {
		return ErrLocked
	}
	ts := at.UTC().Format(time.RFC3339)
	a.FormInput = rows
	a.Status = StatusPending
	a.SubmittedBy = by
	a.SubmittedAt = ts
	a.UpdatedAt = ts
	return nil
}

// Badge returns the display badge of the current status.
func (a *AssignedKPI) Badge() Badge { return BadgeFor(a.Status) }

// Filter selects assigned KPIs. Empty fields match anything.
type Filter struct {
	DepartmentID string
	PillarID     string
	FormID       string
	Status       Status
}

func (f Filter) Match(a *AssignedKPI) bool {
	return (f.DepartmentID == "" || a.DepartmentID == f.DepartmentID) &&
		(f.PillarID == "" || a.PillarID == f.PillarID) &&
		(f.FormID == "" || a.FormID == f.FormID) &&
		(f.Status == "" || a.Status == f.Status)
}
