package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/models"
)

type DepartmentService struct {
	departments DepartmentStore
	users       UserStore
	assigned    AssignedStore
}

func NewDepartmentService(departments DepartmentStore, users UserStore, assigned AssignedStore) *DepartmentService {
	return &DepartmentService{departments: departments, users: users, assigned: assigned}
}

// List returns every department with member and per-pillar assignment counts.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	depts, err := s.departments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range depts {
		if err := s.decorate(ctx, &depts[i]); err != nil {
			return nil, err
		}
	}
	return depts, nil
}

func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	d, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.Wrapf(ErrNotFound, "department %s", id)
	}
	if err := s.decorate(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DepartmentService) decorate(ctx context.Context, d *models.Department) error {
	n, err := s.users.CountByDepartment(ctx, d.ID)
	if err != nil {
		return err
	}
	d.MembersCount = n
	if d.HODID != "" && d.HODName == "" {
		if hod, err := s.users.FindByID(ctx, d.HODID); err == nil && hod != nil {
			d.HODName = hod.Name
		}
	}
	if d.Pillars == nil {
		d.Pillars = []models.Pillar{}
	}
	for i := range d.Pillars {
		c, err := s.assigned.Count(ctx, kpi.Filter{DepartmentID: d.ID, PillarID: d.Pillars[i].ID})
		if err != nil {
			return err
		}
		d.Pillars[i].AssignedKPICount = c
	}
	return nil
}

func (s *DepartmentService) Create(ctx context.Context, name, hodID string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(ErrInvalidInput, "department name is required")
	}
	d := &models.Department{Name: name, HODID: hodID, Pillars: []models.Pillar{}, CreatedAt: timestamp()}
	id, err := s.departments.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

// AddPillar appends a named pillar. Pillar names are unique per department.
func (s *DepartmentService) AddPillar(ctx context.Context, deptID, name string) (*models.Pillar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(ErrInvalidInput, "pillar name is required")
	}
	d, err := s.departments.FindByID(ctx, deptID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.Wrapf(ErrNotFound, "department %s", deptID)
	}
	for _, p := range d.Pillars {
		if strings.EqualFold(p.Name, name) {
			return nil, errors.Wrapf(ErrConflict, "pillar %q", name)
		}
	}
	p := models.Pillar{ID: uuid.NewString(), Name: name}
	d.Pillars = append(d.Pillars, p)
	if err := s.departments.Update(ctx, deptID, d); err != nil {
		return nil, err
	}
	return &p, nil
}
