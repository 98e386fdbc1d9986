package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/oxidb"
)

const FormsCollection = "_kpi_forms"

// FormRepo stores KPI form schemas. Elements keep their tagged
// {id,type,attributes} JSON shape.
type FormRepo struct {
	pool *db.Pool
}

func NewFormRepo(pool *db.Pool) *FormRepo {
	return &FormRepo{pool: pool}
}

func (r *FormRepo) EnsureIndexes(ctx context.Context) error {
	return r.pool.Get().CreateIndex(ctx, FormsCollection, "createdAt")
}

func (r *FormRepo) Create(ctx context.Context, f *form.Schema) (string, error) {
	doc, err := toDoc(f, "id")
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, FormsCollection, doc)
	if err != nil {
		return "", insertErr(err, "forms: insert")
	}
	return extractID(result), nil
}

func (r *FormRepo) FindAll(ctx context.Context) ([]form.Schema, error) {
	docs, err := r.pool.Get().Find(ctx, FormsCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{"createdAt": -1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "forms: find")
	}
	return decodeAll[form.Schema](docs, "id"), nil
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*form.Schema, error) {
	doc, err := r.pool.Get().FindOne(ctx, FormsCollection, byID(id))
	if err != nil {
		return nil, errors.Wrap(err, "forms: find")
	}
	if doc == nil {
		return nil, nil
	}
	var f form.Schema
	if err := fromDoc(doc, "id", &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FormRepo) Update(ctx context.Context, id string, f *form.Schema) error {
	doc, err := toDoc(f, "id")
	if err != nil {
		return err
	}
	_, err = r.pool.Get().UpdateOne(ctx, FormsCollection, byID(id), map[string]any{"$set": doc})
	return errors.Wrap(err, "forms: update")
}

func (r *FormRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Get().DeleteOne(ctx, FormsCollection, byID(id))
	return errors.Wrap(err, "forms: delete")
}

func (r *FormRepo) Count(ctx context.Context) (int, error) {
	n, err := r.pool.Get().Count(ctx, FormsCollection, map[string]any{})
	return n, errors.Wrap(err, "forms: count")
}
