package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/form"
	"github.com/parisxmas/oxikpi/internal/models"
)

// SubmissionService stores single-entry responses to a form.
type SubmissionService struct {
	subs  SubmissionStore
	forms FormStore
}

func NewSubmissionService(subs SubmissionStore, forms FormStore) *SubmissionService {
	return &SubmissionService{subs: subs, forms: forms}
}

func (s *SubmissionService) Create(ctx context.Context, formID string, data form.Entry, fileIDs []string, createdBy string) (*models.Submission, error) {
	schema, err := s.forms.FindByID(ctx, formID)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, errors.Wrapf(ErrNotFound, "form %s", formID)
	}

	var sub *models.Submission
	err = form.NewForm(schema, data).Submit(ctx, func(ctx context.Context, e form.Entry) error {
		now := timestamp()
		candidate := &models.Submission{
			FormID:    formID,
			Data:      e,
			Files:     fileIDs,
			CreatedBy: createdBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		id, err := s.subs.Create(ctx, candidate)
		if err != nil {
			return err
		}
		candidate.ID = id
		sub = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) List(ctx context.Context, formID string, skip, limit int) ([]models.Submission, int, error) {
	return s.subs.FindByFormID(ctx, formID, skip, limit)
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errors.Wrapf(ErrNotFound, "submission %s", id)
	}
	return sub, nil
}

func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.subs.Delete(ctx, id)
}
