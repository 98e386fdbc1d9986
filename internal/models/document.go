package models

import "github.com/parisxmas/oxikpi/internal/form"

type Document struct {
	ID           string `json:"id,omitempty"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
	BlobKey      string `json:"blobKey"`
	FormID       string `json:"formId,omitempty"`
	SubmissionID string `json:"submissionId,omitempty"`
	UploadedBy   string `json:"uploadedBy"`
	CreatedAt    string `json:"createdAt"`
}

// ToFileRef is the value stored in a file field once the upload is done.
func (d *Document) ToFileRef() form.FileRef {
	return form.FileRef{ID: d.ID, FileName: d.FileName, ContentType: d.ContentType, Size: d.Size}
}
