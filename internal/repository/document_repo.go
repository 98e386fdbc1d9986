package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/db"
	"github.com/parisxmas/oxikpi/internal/models"
)

const (
	DocumentsCollection = "_kpi_documents"
	BlobBucket          = "kpi_files"
)

// DocumentRepo stores document metadata in a collection and file bodies in
// the blob bucket.
type DocumentRepo struct {
	pool *db.Pool
}

func NewDocumentRepo(pool *db.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func (r *DocumentRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, DocumentsCollection, "formId"); err != nil {
		return err
	}
	return c.CreateIndex(ctx, DocumentsCollection, "submissionId")
}

func (r *DocumentRepo) EnsureBucket(ctx context.Context) error {
	return r.pool.Get().CreateBucket(ctx, BlobBucket)
}

func (r *DocumentRepo) Create(ctx context.Context, d *models.Document) (string, error) {
	doc, err := toDoc(d, "id")
	if err != nil {
		return "", err
	}
	result, err := r.pool.Get().Insert(ctx, DocumentsCollection, doc)
	if err != nil {
		return "", insertErr(err, "documents: insert")
	}
	return extractID(result), nil
}

func (r *DocumentRepo) FindByID(ctx context.Context, id string) (*models.Document, error) {
	doc, err := r.pool.Get().FindOne(ctx, DocumentsCollection, byID(id))
	if err != nil {
		return nil, errors.Wrap(err, "documents: find")
	}
	if doc == nil {
		return nil, nil
	}
	var d models.Document
	if err := fromDoc(doc, "id", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Get().DeleteOne(ctx, DocumentsCollection, byID(id))
	return errors.Wrap(err, "documents: delete")
}

func (r *DocumentRepo) Count(ctx context.Context) (int, error) {
	n, err := r.pool.Get().Count(ctx, DocumentsCollection, map[string]any{})
	return n, errors.Wrap(err, "documents: count")
}

func (r *DocumentRepo) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	return errors.Wrap(r.pool.Get().PutObject(ctx, BlobBucket, key, data, contentType), "documents: put blob")
}

func (r *DocumentRepo) GetBlob(ctx context.Context, key string) ([]byte, error) {
	data, _, err := r.pool.Get().GetObject(ctx, BlobBucket, key)
	return data, errors.Wrap(err, "documents: get blob")
}

func (r *DocumentRepo) DeleteBlob(ctx context.Context, key string) error {
	return errors.Wrap(r.pool.Get().DeleteObject(ctx, BlobBucket, key), "documents: delete blob")
}
