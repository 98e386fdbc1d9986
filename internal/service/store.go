package service

import (
	"context"
	"errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrForbidden          = errors.New("not allowed for this role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// Stores return (nil, nil) when a single lookup finds nothing and ErrConflict
// when a unique constraint is violated.

type UserStore interface {
	Create(ctx context.Context, u *models.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountByDepartment(ctx context.Context, departmentID string) (int, error)
}

type FormStore interface {
	Create(ctx context.Context, f *form.Schema) (string, error)
	FindAll(ctx context.Context) ([]form.Schema, error)
	FindByID(ctx context.Context, id string) (*form.Schema, error)
	Update(ctx context.Context, id string, f *form.Schema) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type DepartmentStore interface {
	Create(ctx context.Context, d *models.Department) (string, error)
	FindAll(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Update(ctx context.Context, id string, d *models.Department) error
}

type AssignedStore interface {
	Create(ctx context.Context, a *kpi.AssignedKPI) (string, error)
	FindByID(ctx context.Context, id string) (*kpi.AssignedKPI, error)
	Find(ctx context.Context, f kpi.Filter) ([]kpi.AssignedKPI, error)
	Update(ctx context.Context, a *kpi.AssignedKPI) error
	Count(ctx context.Context, f kpi.Filter) (int, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, s *models.Submission) (string, error)
	FindByFormID(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) (string, error)
	FindByID(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	PutBlob(ctx context.Context, key string, data []byte, contentType string) error
	GetBlob(ctx context.Context, key string) ([]byte, error)
	DeleteBlob(ctx context.Context, key string) error
}

// Stores bundles every store a backend provides.
type Stores struct {
	Users       UserStore
	Forms       FormStore
	Departments DepartmentStore
	Assigned    AssignedStore
	Submissions SubmissionStore
	Documents   DocumentStore
}
