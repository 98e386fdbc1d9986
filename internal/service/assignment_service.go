package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
)

// AssignmentService assigns KPI forms to department pillars.
type AssignmentService struct {
	assigned    AssignedStore
	forms       FormStore
	departments DepartmentStore
}

func NewAssignmentService(assigned AssignedStore, forms FormStore, departments DepartmentStore) *AssignmentService {
	return &AssignmentService{assigned: assigned, forms: forms, departments: departments}
}

type AssignInput struct {
	DepartmentID string
	PillarID     string
	// KPIIDs may carry the builder's "form-" prefix.
	KPIIDs []string
	// SelectAll assigns every form that exists.
	SelectAll bool
}

type AssignResult struct {
	Assigned []kpi.AssignedKPI `json:"assigned"`
	// Skipped lists form ids already assigned to the pillar.
	Skipped []string `json:"skipped"`
}

// Assign creates one pending assigned KPI per selected form. Forms already
// assigned to the same department pillar are skipped.
func (s *AssignmentService) Assign(ctx context.Context, in AssignInput, assignedBy string) (*AssignResult, error) {
	if strings.TrimSpace(in.DepartmentID) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "please select a department")
	}
	if strings.TrimSpace(in.PillarID) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "please select a pillar")
	}

	dept, err := s.departments.FindByID(ctx, in.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, errors.Wrapf(ErrNotFound, "department %s", in.DepartmentID)
	}
	if _, ok := dept.Pillar(in.PillarID); !ok {
		return nil, errors.Wrapf(ErrNotFound, "pillar %s", in.PillarID)
	}

	var sel kpi.Selection
	if in.SelectAll {
		all, err := s.forms.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(all))
		for i, f := range all {
			ids[i] = f.ID
		}
		sel.ToggleAll(ids)
	} else {
		for _, id := range in.KPIIDs {
			if id = kpi.FormID(id); id != "" {
				sel.Select(id)
			}
		}
	}
	if sel.Len() == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "please select at least one KPI")
	}

	res := &AssignResult{Assigned: []kpi.AssignedKPI{}, Skipped: []string{}}
	for _, formID := range sel.IDs() {
		schema, err := s.forms.FindByID(ctx, formID)
		if err != nil {
			return nil, err
		}
		if schema == nil {
			return nil, errors.Wrapf(ErrNotFound, "form %s", formID)
		}
		n, err := s.assigned.Count(ctx, kpi.Filter{DepartmentID: dept.ID, PillarID: in.PillarID, FormID: formID})
		if err != nil {
			return nil, err
		}
		if n > 0 {
			res.Skipped = append(res.Skipped, formID)
			continue
		}
		now := timestamp()
		a := kpi.AssignedKPI{
			FormID:         formID,
			KPIName:        schema.Title,
			KPIDescription: schema.Description,
			DepartmentID:   dept.ID,
			PillarID:       in.PillarID,
			Status:         kpi.StatusPending,
			FormInput:      []form.Entry{},
			AssignedBy:     assignedBy,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		id, err := s.assigned.Create(ctx, &a)
		if err != nil {
			return nil, err
		}
		a.ID = id
		res.Assigned = append(res.Assigned, a)
	}
	return res, nil
}

// List returns assigned KPIs matching f.
func (s *AssignmentService) List(ctx context.Context, f kpi.Filter) ([]kpi.AssignedKPI, error) {
	return s.assigned.Find(ctx, f)
}

func (s *AssignmentService) Get(ctx context.Context, id string) (*kpi.AssignedKPI, error) {
	a, err := s.assigned.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errors.Wrapf(kpi.ErrNotFound, "assigned KPI %s", id)
	}
	return a, nil
}
