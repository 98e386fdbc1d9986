package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/models"
	"github.com/parisxmas/oxikpi/internal/oxidb"
)

const DepartmentsCollection = "_kpi_departments"

// DepartmentRepo stores departments with their pillars embedded.
type DepartmentRepo struct {
	pool *db.Pool
}

func NewDepartmentRepo(pool *db.Pool) *DepartmentRepo {
	return &DepartmentRepo{pool: pool}
}

func (r *DepartmentRepo) EnsureIndexes(ctx context.Context) error {
	return r.pool.Get().CreateUniqueIndex(ctx, DepartmentsCollection, "name")
}

func (r *DepartmentRepo) Create(ctx context.Context, d *models.Department) (string, error) {
	doc, err := toDoc(d, "id")
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, DepartmentsCollection, doc)
	if err != nil {
		return "", insertErr(err, "departments: insert")
	}
	return extractID(result), nil
}

func (r *DepartmentRepo) FindAll(ctx context.Context) ([]models.Department, error) {
	docs, err := r.pool.Get().Find(ctx, DepartmentsCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"name": 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "departments: find")
	}
	return decodeAll[models.Department](docs, "id"), nil
}

func (r *DepartmentRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	doc, err := r.pool.Get().FindOne(ctx, DepartmentsCollection, byID(id))
	if err != nil {
		return nil, errors.Wrap(err, "departments: find")
	}
	if doc == nil {
		return nil, nil
	}
	var d models.Department
	if err := fromDoc(doc, "id", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepo) Update(ctx context.Context, id string, d *models.Department) error {
	doc, err := toDoc(d, "id")
	if err != nil {
		return err
	}
	_, err = r.pool.Get().UpdateOne(ctx, DepartmentsCollection, byID(id), map[string]any{"$set": doc})
	return errors.Wrap(err, "departments: update")
}
