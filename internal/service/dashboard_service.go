package service

import (
	"context"

	"github.com/parisxmas/oxikpi/internal/kpi"
)

type DashboardService struct {
	stores Stores
}

func NewDashboardService(stores Stores) *DashboardService {
	return &DashboardService{stores: stores}
}

type FormStat struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Value         float64 `json:"value"`
	FieldCount    int     `json:"fieldCount"`
	AssignedCount int     `json:"assignedCount"`
	CreatedAt     string  `json:"createdAt"`
}

type Stats struct {
	FormCount       int                `json:"formCount"`
	DepartmentCount int                `json:"departmentCount"`
	SubmissionCount int                `json:"submissionCount"`
	DocumentCount   int                `json:"documentCount"`
	AssignedCount   int                `json:"assignedCount"`
	ByStatus        map[kpi.Status]int `json:"byStatus"`
	Forms           []FormStat         `json:"forms"`
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	forms, err := s.stores.Forms.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	depts, err := s.stores.Departments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	assigned, err := s.stores.Assigned.Find(ctx, kpi.Filter{})
	if err != nil {
		return nil, err
	}
	subs, err := s.stores.Submissions.Count(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.stores.Documents.Count(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		FormCount:       len(forms),
		DepartmentCount: len(depts),
		SubmissionCount: subs,
		DocumentCount:   docs,
		AssignedCount:   len(assigned),
		ByStatus:        map[kpi.Status]int{kpi.StatusPending: 0, kpi.StatusApproved: 0, kpi.StatusRedo: 0},
		Forms:           make([]FormStat, 0, len(forms)),
	}
	perForm := map[string]int{}
	for _, a := range assigned {
		status := a.Status
		if status == "" {
			status = kpi.StatusPending
		}
		st.ByStatus[status]++
		perForm[a.FormID]++
	}
	for _, f := range forms {
		st.Forms = append(st.Forms, FormStat{
			ID:            f.ID,
			Title:         f.Title,
			Value:         f.Value,
			FieldCount:    len(f.Elements),
			AssignedCount: perForm[f.ID],
			CreatedAt:     f.CreatedAt,
		})
	}
	return st, nil
}
