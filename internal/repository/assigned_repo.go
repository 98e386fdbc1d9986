package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/kpi"
	"github.com/parisxmas/oxikpi/internal/oxidb"
)

const AssignedCollection = "_kpi_assigned"

// assignedKey is the JSON name AssignedKPI exposes its id under.
const assignedKey = "assignedKpiId"

type AssignedRepo struct {
	pool *db.Pool
}

func NewAssignedRepo(pool *db.Pool) *AssignedRepo {
	return &AssignedRepo{pool: pool}
}

func (r *AssignedRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	for _, field := range []string{"departmentId", "pillarId", "formId", "status"} {
		if err := c.CreateIndex(ctx, AssignedCollection, field); err != nil {
			return err
		}
	}
	return c.CreateCompositeIndex(ctx, AssignedCollection, []string{"departmentId", "pillarId"})
}

func (r *AssignedRepo) Create(ctx context.Context, a *kpi.AssignedKPI) (string, error) {
	doc, err := toDoc(a, assignedKey)
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, AssignedCollection, doc)
	if err != nil {
		return "", insertErr(err, "assigned: insert")
	}
	return extractID(result), nil
}

func (r *AssignedRepo) FindByID(ctx context.Context, id string) (*kpi.AssignedKPI, error) {
	doc, err := r.pool.Get().FindOne(ctx, AssignedCollection, byID(id))
	if err != nil {
		return nil, errors.Wrap(err, "assigned: find")
	}
	if doc == nil {
		return nil, nil
	}
	var a kpi.AssignedKPI
	if err := fromDoc(doc, assignedKey, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignedRepo) Find(ctx context.Context, f kpi.Filter) ([]kpi.AssignedKPI, error) {
	docs, err := r.pool.Get().Find(ctx, AssignedCollection, filterQuery(f), &oxidb.FindOptions{
		Sort: map[string]any{"createdAt": 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "assigned: find")
	}
	return decodeAll[kpi.AssignedKPI](docs, assignedKey), nil
}

func (r *AssignedRepo) Update(ctx context.Context, a *kpi.AssignedKPI) error {
	doc, err := toDoc(a, assignedKey)
	if err != nil {
		return err
	}
	_, err = r.pool.Get().UpdateOne(ctx, AssignedCollection, byID(a.ID), map[string]any{"$set": doc})
	return errors.Wrap(err, "assigned: update")
}

func (r *AssignedRepo) Count(ctx context.Context, f kpi.Filter) (int, error) {
	n, err := r.pool.Get().Count(ctx, AssignedCollection, filterQuery(f))
	return n, errors.Wrap(err, "assigned: count")
}

func filterQuery(f kpi.Filter) map[string]any {
	q := map[string]any{}
	if f.DepartmentID != "" {
		q["departmentId"] = f.DepartmentID
	}
	if f.PillarID != "" {
		q["pillarId"] = f.PillarID
	}
	if f.FormID != "" {
		q["formId"] = f.FormID
	}
	if f.Status != "" {
		q["status"] = string(f.Status)
	}
	return q
}
