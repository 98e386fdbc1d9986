// Package memory is an in-process backend for every service store. Ids are
// sequential decimal strings, like OxiDB's auto-increment ids.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/models"
	"github.com/parisxmas/oxikpi/internal/service"
)

// seq hands out ids.
type seq struct{ n int }

func (s *seq) next() string {
	s.n++
	return strconv.Itoa(s.n)
}

// New returns a fresh, empty set of stores.
func New() service.Stores {
	return service.Stores{
		Users:       &Users{byID: map[string]models.User{}},
		Forms:       &Forms{byID: map[string]*form.Schema{}},
		Departments: &Departments{byID: map[string]models.Department{}},
		Assigned:    &Assigned{board: kpi.NewBoard()},
		Submissions: &Submissions{byID: map[string]models.Submission{}},
		Documents:   &Documents{byID: map[string]models.Document{}, blobs: map[string][]byte{}},
	}
}

type Users struct {
	mu   sync.RWMutex
	ids  seq
	byID map[string]models.User
}

func (s *Users) Create(_ context.Context, u *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return "", errors.Wrap(service.ErrConflict, "users: email")
		}
	}
	c := *u
	c.ID = s.ids.next()
	s.byID[c.ID] = c
	return c.ID, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Users) CountByDepartment(_ context.Context, departmentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.byID {
		if u.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

type Forms struct {
	mu    sync.RWMutex
	ids   seq
	order []string
	byID  map[string]*form.Schema
}

func (s *Forms) Create(_ context.Context, f *form.Schema) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := f.Clone()
	c.ID = s.ids.next()
	s.byID[c.ID] = c
	s.order = append(s.order, c.ID)
	return c.ID, nil
}

// FindAll lists forms newest first.
func (s *Forms) FindAll(_ context.Context) ([]form.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]form.Schema, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.byID[s.order[i]].Clone())
	}
	return out, nil
}

func (s *Forms) FindByID(_ context.Context, id string) (*form.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return f.Clone(), nil
}

func (s *Forms) Update(_ context.Context, id string, f *form.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	c := f.Clone()
	c.ID = id
	s.byID[id] = c
	return nil
}

func (s *Forms) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Forms) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

type Departments struct {
	mu   sync.RWMutex
	ids  seq
	byID map[string]models.Department
}

func cloneDepartment(d models.Department) models.Department {
	d.Pillars = append([]models.Pillar(nil), d.Pillars...)
	return d
}

func (s *Departments) Create(_ context.Context, d *models.Department) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Name == d.Name {
			return "", errors.Wrap(service.ErrConflict, "departments: name")
		}
	}
	c := cloneDepartment(*d)
	c.ID = s.ids.next()
	s.byID[c.ID] = c
	return c.ID, nil
}

// FindAll lists departments by name.
func (s *Departments) FindAll(_ context.Context) ([]models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Department, 0, len(s.byID))
	for _, d := range s.byID {
		out = append(out, cloneDepartment(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Departments) FindByID(_ context.Context, id string) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	c := cloneDepartment(d)
	return &c, nil
}

func (s *Departments) Update(_ context.Context, id string, d *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	c := cloneDepartment(*d)
	c.ID = id
	s.byID[id] = c
	return nil
}

// Assigned keeps assigned KPIs on a kpi.Board behind a lock.
type Assigned struct {
	mu    sync.RWMutex
	ids   seq
	board *kpi.Board
}

func (s *Assigned) Create(_ context.Context, a *kpi.AssignedKPI) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	c.ID = s.ids.next()
	s.board.Put(c)
	return c.ID, nil
}

func (s *Assigned) FindByID(_ context.Context, id string) (*kpi.AssignedKPI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.board.Get(id)
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Assigned) Find(_ context.Context, f kpi.Filter) ([]kpi.AssignedKPI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.List(f), nil
}

func (s *Assigned) Update(_ context.Context, a *kpi.AssignedKPI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.board.Get(a.ID); !ok {
		return nil
	}
	s.board.Put(*a)
	return nil
}

func (s *Assigned) Count(_ context.Context, f kpi.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.board.List(f)), nil
}

type Submissions struct {
	mu    sync.RWMutex
	ids   seq
	order []string
	byID  map[string]models.Submission
}

func (s *Submissions) Create(_ context.Context, sub *models.Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sub
	c.ID = s.ids.next()
	c.Data = sub.Data.Clone()
	s.byID[c.ID] = c
	s.order = append(s.order, c.ID)
	return c.ID, nil
}

// FindByFormID pages through a form's submissions, newest first.
func (s *Submissions) FindByFormID(_ context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []models.Submission
	for i := len(s.order) - 1; i >= 0; i-- {
		if sub, ok := s.byID[s.order[i]]; ok && sub.FormID == formID {
			all = append(all, sub)
		}
	}
	total := len(all)
	if skip > total {
		skip = total
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return append([]models.Submission{}, all...), total, nil
}

func (s *Submissions) FindByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *Submissions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *Submissions) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

type Documents struct {
	mu    sync.RWMutex
	ids   seq
	byID  map[string]models.Document
	blobs map[string][]byte
}

func (s *Documents) Create(_ context.Context, d *models.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *d
	c.ID = s.ids.next()
	s.byID[c.ID] = c
	return c.ID, nil
}

func (s *Documents) FindByID(_ context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *Documents) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *Documents) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *Documents) PutBlob(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *Documents) GetBlob(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.Errorf("blob %q not found", key)
	}
	return append([]byte(nil), data...), nil
}

func (s *Documents) DeleteBlob(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
