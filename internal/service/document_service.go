package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/parisxmas/oxikpi/internal/models"
)

// DocumentService stores uploaded files referenced by file field values.
type DocumentService struct {
	docs DocumentStore
}

func NewDocumentService(docs DocumentStore) *DocumentService {
	return &DocumentService{docs: docs}
}

type UploadInput struct {
	FileName     string
	Data         []byte
	ContentType  string
	FormID       string
	SubmissionID string
	UploadedBy   string
}

func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*models.Document, error) {
	if len(in.Data) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "file data is empty")
	}
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(in.FileName)
	}

	blobKey := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(in.FileName))
	if err := s.docs.PutBlob(ctx, blobKey, in.Data, contentType); err != nil {
		return nil, errors.Wrap(err, "upload blob")
	}

	doc := &models.Document{
		FileName:     in.FileName,
		ContentType:  contentType,
		Size:         int64(len(in.Data)),
		BlobKey:      blobKey,
		FormID:       in.FormID,
		SubmissionID: in.SubmissionID,
		UploadedBy:   in.UploadedBy,
		CreatedAt:    timestamp(),
	}
	id, err := s.docs.Create(ctx, doc)
	if err != nil {
		s.docs.DeleteBlob(ctx, blobKey)
		return nil, err
	}
	doc.ID = id
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.Wrapf(ErrNotFound, "document %s", id)
	}
	return doc, nil
}

func (s *DocumentService) Download(ctx context.Context, id string) ([]byte, *models.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.docs.GetBlob(ctx, doc.BlobKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "download blob")
	}
	return data, doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.docs.DeleteBlob(ctx, doc.BlobKey)
	return s.docs.Delete(ctx, id)
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".zip":  "application/zip",
}

func detectContentType(fileName string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return "application/octet-stream"
}
