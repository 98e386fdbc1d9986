package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/models"
	"github.com/parisxmas/oxikpi/internal/oxidb"
)

const SubmissionsCollection = "_kpi_submissions"

type SubmissionRepo struct {
	pool *db.Pool
}

func NewSubmissionRepo(pool *db.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, SubmissionsCollection, "formId"); err != nil {
		return err
	}
	return c.CreateCompositeIndex(ctx, SubmissionsCollection, []string{"formId", "createdAt"})
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (string, error) {
	doc, err := toDoc(sub, "id")
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, SubmissionsCollection, doc)
	if err != nil {
		return "", insertErr(err, "submissions: insert")
	}
	return extractID(result), nil
}

func (r *SubmissionRepo) FindByFormID(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	c := r.pool.Get()
	query := map[string]any{"formId": formID}

	total, err := c.Count(ctx, SubmissionsCollection, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "submissions: count")
	}

	docs, err := c.Find(ctx, SubmissionsCollection, query, &oxidb.FindOptions{
		Sort:  map[string]any{"createdAt": -1},
		Skip:  &skip,
		Limit: &limit,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "submissions: find")
	}
	return decodeAll[models.Submission](docs, "id"), total, nil
}

func (r *SubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	doc, err := r.pool.Get().FindOne(ctx, SubmissionsCollection, byID(id))
	if err != nil {
		return nil, errors.Wrap(err, "submissions: find")
	}
	if doc == nil {
		return nil, nil
	}
	var s models.Submission
	if err := fromDoc(doc, "id", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Get().DeleteOne(ctx, SubmissionsCollection, byID(id))
	return errors.Wrap(err, "submissions: delete")
}

func (r *SubmissionRepo) Count(ctx context.Context) (int, error) {
	n, err := r.pool.Get().Count(ctx, SubmissionsCollection, map[string]any{})
	return n, errors.Wrap(err, "submissions: count")
}
